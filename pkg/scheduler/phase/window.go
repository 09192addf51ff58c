package phase

import (
	"fmt"
	"sort"

	"github.com/lunban/lunban/pkg/model"
)

// patternWindow 初排窗口长度，同时是模式复制的周期
const patternWindow = 28

// InitialWindow 首 28 天初排阶段
//
// 逐天按 中班、早班、夜班 的顺序补齐缺口，优先分配该班次
// 累计次数最少的员工。无法满足任何班次的员工留空待修复。
type InitialWindow struct{}

// Name 返回阶段名称
func (p *InitialWindow) Name() string { return "initial_window" }

// Run 执行首 28 天初排
func (p *InitialWindow) Run(ctx *Context) error {
	days := ctx.Matrix.Days()
	limit := patternWindow
	if days < limit {
		limit = days
	}

	for day := 0; day < limit; day++ {
		if ctx.Matrix.UnsetCount(day) == 0 {
			continue
		}

		p.fillDeficit(ctx, day, model.Evening, model.TargetEvening)
		p.fillDeficit(ctx, day, model.Morning, model.TargetMorning)
		p.fillDeficit(ctx, day, model.Night, model.TargetNight)

		// 兜底：还空着的员工按偏好顺序尝试分配
		for _, emp := range ctx.Roster {
			if ctx.Matrix.Get(emp, day) != model.Unset {
				continue
			}
			count := ctx.Matrix.DayCount(day)
			var preferred []model.Code
			if count.Of(model.Evening) < model.TargetEvening {
				preferred = append(preferred, model.Evening)
			}
			preferred = append(preferred, model.Morning)
			if count.Of(model.Night) < model.TargetNight {
				preferred = append(preferred, model.Night)
			}

			assigned := false
			for _, code := range preferred {
				if ctx.Viable(emp, day, code) {
					ctx.Matrix.Set(emp, day, code)
					ctx.Tallies[emp].Inc(code)
					assigned = true
					break
				}
			}
			if !assigned {
				ctx.Log.RuleViolation(p.Name(),
					fmt.Sprintf("员工 %s 第 %d 天无合法班次, 留空待修复", emp, day+1))
			}
		}
	}
	return nil
}

// fillDeficit 把某班次补齐到目标人数，优先选累计最少的员工
func (p *InitialWindow) fillDeficit(ctx *Context, day int, code model.Code, target int) {
	count := ctx.Matrix.DayCount(day)
	needed := target - count.Of(code)
	if needed <= 0 {
		return
	}

	var candidates []string
	for _, emp := range ctx.Roster {
		if ctx.Matrix.Get(emp, day) == model.Unset && ctx.Viable(emp, day, code) {
			candidates = append(candidates, emp)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return ctx.Tallies[candidates[i]].Of(code) < ctx.Tallies[candidates[j]].Of(code)
	})

	if len(candidates) > needed {
		candidates = candidates[:needed]
	}
	for _, emp := range candidates {
		ctx.Matrix.Set(emp, day, code)
		ctx.Tallies[emp].Inc(code)
	}
}
