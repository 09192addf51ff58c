package phase

import "github.com/lunban/lunban/pkg/model"

// Replicate 28 天模式复制阶段
//
// 第 29 天起复制第 day mod 28 天的班次；复制不合法时按
// 中、早、夜 的顺序找替代，仍不合法则留空待修复。
type Replicate struct{}

// Name 返回阶段名称
func (p *Replicate) Name() string { return "replicate" }

// Run 执行模式复制
func (p *Replicate) Run(ctx *Context) error {
	days := ctx.Matrix.Days()
	for day := patternWindow; day < days; day++ {
		template := day % patternWindow
		for _, emp := range ctx.Roster {
			if ctx.Matrix.Get(emp, day) != model.Unset {
				continue
			}
			code := ctx.Matrix.Get(emp, template)
			if code == model.Unset {
				continue
			}
			if !ctx.Viable(emp, day, code) {
				code = model.Unset
				for _, alt := range []model.Code{model.Evening, model.Morning, model.Night} {
					if ctx.Viable(emp, day, alt) {
						code = alt
						break
					}
				}
				if code == model.Unset {
					continue
				}
			}
			ctx.Matrix.Set(emp, day, code)
			ctx.Tallies[emp].Inc(code)
		}
	}
	return nil
}
