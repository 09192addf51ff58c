package phase

import (
	"fmt"
	"sort"

	"github.com/lunban/lunban/pkg/model"
)

const (
	// maxOffs 每名员工每月休息日上限
	maxOffs = 5
	// maxConsecutiveWorkDays 连续工作天数上限
	maxConsecutiveWorkDays = 7
	// idealOffGap 两次休息之间的理想间隔
	idealOffGap = 6
	// gapPenalty 间隔落在 5..7 之外时的罚分
	gapPenalty = 100
	// noPriorOffScore 从未休息过的员工走兜底逻辑
	noPriorOffScore = 1 << 30
	// fallbackScore 兜底选项的统一罚分
	fallbackScore = 1000
)

// OffDay 休息日分配阶段
//
// 先对连续工作超限的员工强制休息，再按周打分挑选休息日
// （偏好与上次休息间隔约 6 天、避开重复星期几），
// 最后兜底保证每天恰好一人休息。
type OffDay struct{}

// Name 返回阶段名称
func (p *OffDay) Name() string { return "off_day" }

// Run 执行休息日分配
func (p *OffDay) Run(ctx *Context) error {
	days := ctx.Matrix.Days()

	lastOffDay := make(map[string]int, len(ctx.Roster))
	weekdayOffs := make(map[string]map[int]bool, len(ctx.Roster))
	for _, emp := range ctx.Roster {
		lastOffDay[emp] = -10
		weekdayOffs[emp] = make(map[int]bool)
	}

	// 连续工作超限时在第一个空位强制休息
	for day := 0; day < days; day++ {
		for _, emp := range ctx.Roster {
			if ctx.Matrix.Get(emp, day) != model.Unset || ctx.OffsPerDay[day] != 0 {
				continue
			}
			if ctx.Tallies[emp].Of(model.Off) >= maxOffs {
				continue
			}
			if workStreakBefore(ctx.Matrix.Row(emp), day) > maxConsecutiveWorkDays {
				assignOff(ctx, emp, day, lastOffDay, weekdayOffs)
				ctx.Log.RepairMove(p.Name(), emp, day, model.Unset.String(), model.Off.String())
			}
		}
	}

	// 按周为每名员工挑选一个休息日
	totalWeeks := (days + 6) / 7
	for week := 0; week < totalWeeks; week++ {
		weekStart := week * 7
		weekEnd := weekStart + 7
		if weekEnd > days {
			weekEnd = days
		}

		shuffled := append([]string(nil), ctx.Roster...)
		ctx.Shuffle(shuffled)

		for _, emp := range shuffled {
			if ctx.Tallies[emp].Of(model.Off) >= maxOffs {
				continue
			}
			if hasOffInRange(ctx.Matrix.Row(emp), weekStart, weekEnd) {
				continue
			}
			day, ok := pickOffDay(ctx, emp, weekStart, weekEnd, lastOffDay[emp], weekdayOffs[emp])
			if ok {
				assignOff(ctx, emp, day, lastOffDay, weekdayOffs)
			}
		}
	}

	// 兜底：每天必须恰好一人休息
	for day := 0; day < days; day++ {
		if ctx.OffsPerDay[day] != 0 {
			continue
		}
		var candidates []string
		for _, emp := range ctx.Roster {
			if ctx.Matrix.Get(emp, day) == model.Unset && ctx.Tallies[emp].Of(model.Off) < maxOffs {
				candidates = append(candidates, emp)
			}
		}
		if len(candidates) > 0 {
			emp := ctx.Choice(candidates)
			ctx.Matrix.Set(emp, day, model.Off)
			ctx.Tallies[emp].Inc(model.Off)
			ctx.OffsPerDay[day] = 1
		} else {
			ctx.Log.RuleViolation(p.Name(), fmt.Sprintf("第 %d 天找不到可休息的员工", day+1))
		}
	}
	return nil
}

// assignOff 记录一次休息分配及其打分簿记
func assignOff(ctx *Context, emp string, day int, lastOffDay map[string]int, weekdayOffs map[string]map[int]bool) {
	ctx.Matrix.Set(emp, day, model.Off)
	ctx.Tallies[emp].Inc(model.Off)
	lastOffDay[emp] = day
	weekdayOffs[emp][day%7] = true
	ctx.OffsPerDay[day]++
}

// workStreakBefore 返回 day 之前紧邻的连续工作天数
func workStreakBefore(row []model.Code, day int) int {
	streak := 0
	for d := day - 1; d >= 0; d-- {
		if !row[d].Working() {
			break
		}
		streak++
	}
	return streak
}

// hasOffInRange 判断员工在 [start, end) 内是否已有休息日
func hasOffInRange(row []model.Code, start, end int) bool {
	for d := start; d < end; d++ {
		if row[d] == model.Off {
			return true
		}
	}
	return false
}

// offOption 一个候选休息日及其得分（越小越好）
type offOption struct {
	primary   int
	secondary int
	day       int
}

// pickOffDay 在一周内为员工挑选得分最低的休息日
//
// 主分：与上次休息的间隔在 5..7 天内时取距 6 的偏差，否则罚 100；
// 从未休息过的员工没有可比间隔，直接走兜底。次分：重复上次休息的
// 星期几加一分。全部候选都 >= 罚分线时退回本周最早的空位。
func pickOffDay(ctx *Context, emp string, weekStart, weekEnd, lastOff int, usedWeekdays map[int]bool) (int, bool) {
	var options []offOption
	for d := weekStart; d < weekEnd; d++ {
		if ctx.Matrix.Get(emp, d) != model.Unset || ctx.OffsPerDay[d] > 0 {
			continue
		}
		primary := noPriorOffScore
		if lastOff >= 0 {
			gap := d - lastOff
			if gap >= 5 && gap <= 7 {
				primary = gap - idealOffGap
				if primary < 0 {
					primary = -primary
				}
			} else {
				primary = gapPenalty
			}
		}
		secondary := 0
		if usedWeekdays[d%7] {
			secondary = 1
		}
		options = append(options, offOption{primary: primary, secondary: secondary, day: d})
	}

	minPrimary := noPriorOffScore
	for _, opt := range options {
		if opt.primary < minPrimary {
			minPrimary = opt.primary
		}
	}

	if len(options) == 0 || minPrimary >= gapPenalty {
		options = options[:0]
		for d := weekStart; d < weekEnd; d++ {
			if ctx.Matrix.Get(emp, d) == model.Unset && ctx.OffsPerDay[d] == 0 {
				options = append(options, offOption{primary: fallbackScore, day: d})
			}
		}
	}
	if len(options) == 0 {
		return 0, false
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].primary != options[j].primary {
			return options[i].primary < options[j].primary
		}
		return options[i].secondary < options[j].secondary
	})
	return options[0].day, true
}
