package phase

import (
	"fmt"

	"github.com/lunban/lunban/pkg/model"
)

// NightBlock 夜班对保障阶段
//
// 整月没有连续两天夜班的员工，找到第一个可以合法转换的
// 相邻日对改为夜-夜。第二天的合法性在第一天试放夜班之后
// 再判定，避免造出三连夜。找不到窗口只告警不强改。
type NightBlock struct{}

// Name 返回阶段名称
func (p *NightBlock) Name() string { return "night_block" }

// Run 执行夜班对保障
func (p *NightBlock) Run(ctx *Context) error {
	days := ctx.Matrix.Days()
	for _, emp := range ctx.Roster {
		if ctx.Matrix.HasNightPair(emp) {
			continue
		}

		converted := false
		for day := 0; day+1 < days; day++ {
			c1 := ctx.Matrix.Get(emp, day)
			c2 := ctx.Matrix.Get(emp, day+1)
			if c1 == model.Night || c2 == model.Night {
				continue
			}
			if !ctx.Viable(emp, day, model.Night) {
				continue
			}

			// 试放第一天再检查第二天的衔接
			ctx.Matrix.Set(emp, day, model.Night)
			if !ctx.Viable(emp, day+1, model.Night) {
				ctx.Matrix.Set(emp, day, c1)
				continue
			}
			ctx.Matrix.Set(emp, day+1, model.Night)

			t := ctx.Tallies[emp]
			t.Dec(c1)
			t.Dec(c2)
			t.Inc(model.Night)
			t.Inc(model.Night)

			// 占用了休息日时释放当天的休息名额
			if c1 == model.Off && ctx.OffsPerDay[day] > 0 {
				ctx.OffsPerDay[day]--
			}
			if c2 == model.Off && ctx.OffsPerDay[day+1] > 0 {
				ctx.OffsPerDay[day+1]--
			}

			ctx.Log.RepairMove(p.Name(), emp, day, c1.String(), model.Night.String())
			ctx.Log.RepairMove(p.Name(), emp, day+1, c2.String(), model.Night.String())
			converted = true
			break
		}

		if !converted {
			ctx.Log.RuleViolation(p.Name(),
				fmt.Sprintf("员工 %s 整月找不到可转换的夜班对窗口", emp))
		}
	}
	return nil
}
