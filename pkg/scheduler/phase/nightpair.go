package phase

import (
	"fmt"

	"github.com/lunban/lunban/pkg/model"
)

// minPairGap 同一员工两次夜班对之间的最小间隔天数
const minPairGap = 10

// NightPair 夜班对分配阶段
//
// 以 10 天以上的间隔为员工轮流安排连续两天夜班，夜班对结束后的
// 第三天强制休息。未能覆盖夜班对的日期补一个单独夜班。
type NightPair struct{}

// Name 返回阶段名称
func (p *NightPair) Name() string { return "night_pair" }

// Run 执行夜班对分配
func (p *NightPair) Run(ctx *Context) error {
	days := ctx.Matrix.Days()

	lastPairEnd := make(map[string]int, len(ctx.Roster))
	for _, emp := range ctx.Roster {
		lastPairEnd[emp] = -100
	}
	nightAssigned := make([]bool, days)

	for day := 0; day+1 < days; day++ {
		if nightAssigned[day] || nightAssigned[day+1] {
			continue
		}

		var candidates []string
		for _, emp := range ctx.Roster {
			if lastPairEnd[emp]+minPairGap > day {
				continue
			}
			row := ctx.Matrix.Row(emp)
			if row[day] != model.Unset || row[day+1] != model.Unset {
				continue
			}
			// 夜班对之后的休息日必须可用
			if day+2 < days && (row[day+2] != model.Unset || ctx.OffsPerDay[day+2] != 0) {
				continue
			}
			candidates = append(candidates, emp)
		}
		if len(candidates) == 0 {
			continue
		}

		// 取最久没排过夜班对的员工
		best := candidates[0]
		for _, emp := range candidates[1:] {
			if lastPairEnd[emp] < lastPairEnd[best] {
				best = emp
			}
		}

		ctx.Matrix.Set(best, day, model.Night)
		ctx.Matrix.Set(best, day+1, model.Night)
		nightAssigned[day] = true
		nightAssigned[day+1] = true
		lastPairEnd[best] = day + 1
		if day+2 < days {
			ctx.Matrix.Set(best, day+2, model.Off)
			ctx.OffsPerDay[day+2] = 1
		}
	}

	// 未覆盖的日期补单个夜班
	for day := 0; day < days; day++ {
		if nightAssigned[day] {
			continue
		}
		var candidates []string
		for _, emp := range ctx.Roster {
			if ctx.Matrix.Get(emp, day) == model.Unset && ctx.Viable(emp, day, model.Night) {
				candidates = append(candidates, emp)
			}
		}
		if len(candidates) > 0 {
			emp := ctx.Choice(candidates)
			ctx.Matrix.Set(emp, day, model.Night)
			ctx.Log.RepairMove(p.Name(), emp, day, model.Unset.String(), model.Night.String())
		} else {
			ctx.Log.RuleViolation(p.Name(), fmt.Sprintf("第 %d 天无法安排夜班", day+1))
		}
	}
	return nil
}
