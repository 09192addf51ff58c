package phase

import (
	"fmt"
	"sort"

	"github.com/lunban/lunban/pkg/model"
)

// FinalCorrect 终末修正阶段
//
// 三轮扫描：夜班次日的早班改为中班（或休息）；连续夜班后
// 未休息的格子强制休息；疲劳模式末尾的早班强制休息。
// 强制休息导致当天人数跌破目标时尽量从别的班次回填。
type FinalCorrect struct{}

// Name 返回阶段名称
func (p *FinalCorrect) Name() string { return "final_correct" }

// Run 执行终末修正
func (p *FinalCorrect) Run(ctx *Context) error {
	p.fixMorningAfterNight(ctx)
	days := ctx.Matrix.Days()
	for _, emp := range ctx.Roster {
		p.enforceRestAfterNightPair(ctx, emp, days)
		p.fixFatigueMornings(ctx, emp, days)
	}
	return nil
}

// fixMorningAfterNight 修复所有夜班次日紧跟早班的格子
func (p *FinalCorrect) fixMorningAfterNight(ctx *Context) {
	days := ctx.Matrix.Days()
	for _, emp := range ctx.Roster {
		row := ctx.Matrix.Row(emp)
		for day := 1; day < days; day++ {
			if row[day] != model.Morning || row[day-1] != model.Night {
				continue
			}
			ctx.Log.RuleViolation(p.Name(),
				fmt.Sprintf("员工 %s 第 %d 天夜班后接早班, 尝试修复", emp, day+1))

			if ctx.Viable(emp, day, model.Evening) {
				ctx.Move(emp, day, model.Morning, model.Evening)
				ctx.Log.RepairMove(p.Name(), emp, day, model.Morning.String(), model.Evening.String())
				p.mitigateEveningOverflow(ctx, emp, day)
			} else if ctx.OffsPerDay[day] == 0 {
				// 改中班不合法, 退而改休息
				ctx.Move(emp, day, model.Morning, model.Off)
				ctx.OffsPerDay[day] = 1
				ctx.Log.RepairMove(p.Name(), emp, day, model.Morning.String(), model.Off.String())
			} else {
				ctx.Log.CriticalGap(p.Name(), day,
					fmt.Sprintf("员工 %s 夜班后接早班且无法修复", emp))
			}
		}
	}
}

// mitigateEveningOverflow 早改中导致中班超编时, 把另一名中班员工换回早班
func (p *FinalCorrect) mitigateEveningOverflow(ctx *Context, moved string, day int) {
	count := ctx.Matrix.DayCount(day)
	if count.Of(model.Evening) <= model.TargetEvening {
		return
	}
	ctx.Log.RuleViolation(p.Name(),
		fmt.Sprintf("第 %d 天修复后中班超编, 尝试缓解", day+1))
	if count.Of(model.Morning) >= model.TargetMorning {
		return
	}

	var candidates []string
	for _, emp := range ctx.Roster {
		if emp != moved && ctx.Matrix.Get(emp, day) == model.Evening {
			candidates = append(candidates, emp)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return ctx.Tallies[candidates[i]].Of(model.Morning) < ctx.Tallies[candidates[j]].Of(model.Morning)
	})

	for _, emp := range candidates {
		if ctx.Viable(emp, day, model.Morning) {
			ctx.Move(emp, day, model.Evening, model.Morning)
			ctx.Log.RepairMove(p.Name(), emp, day, model.Evening.String(), model.Morning.String())
			return
		}
	}
	ctx.Log.RuleViolation(p.Name(),
		fmt.Sprintf("第 %d 天中班超编无法缓解", day+1))
}

// enforceRestAfterNightPair 连续两天夜班后的格子必须休息
func (p *FinalCorrect) enforceRestAfterNightPair(ctx *Context, emp string, days int) {
	row := ctx.Matrix.Row(emp)
	for day := 2; day < days; day++ {
		if row[day-2] != model.Night || row[day-1] != model.Night {
			continue
		}
		if row[day] == model.Off || row[day] == model.Unset {
			continue
		}

		orig := row[day]
		ctx.Log.RuleViolation(p.Name(),
			fmt.Sprintf("员工 %s 第 %d 天连续夜班后未休息（原为%s）, 强制休息", emp, day+1, orig))
		ctx.Move(emp, day, orig, model.Off)
		ctx.OffsPerDay[day] = 1

		// 回填时优先借早班员工
		p.backfill(ctx, emp, day, orig, nil, func(cur model.Code) bool {
			return cur != model.Morning
		})
	}
}

// fixFatigueMornings 疲劳模式末尾的早班强制休息
func (p *FinalCorrect) fixFatigueMornings(ctx *Context, emp string, days int) {
	row := ctx.Matrix.Row(emp)
	for day := 3; day < days; day++ {
		if row[day] != model.Morning {
			continue
		}

		nem := row[day-2] == model.Night && row[day-1] == model.Evening
		nee := row[day-3] == model.Night && row[day-2] == model.Evening && row[day-1] == model.Evening
		nene := day >= 4 && row[day-4] == model.Night && row[day-3] == model.Evening &&
			row[day-2] == model.Night && row[day-1] == model.Evening
		enee := day >= 4 && row[day-4] == model.Evening && row[day-3] == model.Night &&
			row[day-2] == model.Evening && row[day-1] == model.Evening

		if nem {
			// 夜-中-早本应被合法性判定挡住, 走到这里说明上游有漏洞
			ctx.Log.CriticalGap(p.Name(), day,
				fmt.Sprintf("员工 %s 出现夜-中-早序列, 强制早班改休息", emp))
		} else if nee || nene || enee {
			ctx.Log.RuleViolation(p.Name(),
				fmt.Sprintf("员工 %s 第 %d 天疲劳模式后接早班, 强制休息", emp, day+1))
		} else {
			continue
		}

		ctx.Move(emp, day, model.Morning, model.Off)
		ctx.OffsPerDay[day] = 1

		// 回填只借中班和夜班员工, 并列时少动夜班
		p.backfill(ctx, emp, day, model.Morning,
			[]model.Code{model.Evening, model.Night}, func(cur model.Code) bool {
				return cur == model.Night
			})
	}
}

// backfill 强制休息导致某班次跌破目标时, 从其他班次借人回填
//
// fromCodes 为空表示任何在岗班次都可借; penalize 返回 true 的
// 当前班次在并列时排最后。
func (p *FinalCorrect) backfill(ctx *Context, vacated string, day int, code model.Code, fromCodes []model.Code, penalize func(model.Code) bool) {
	count := ctx.Matrix.DayCount(day)
	if count.Of(code) >= code.Target() {
		return
	}
	ctx.Log.RuleViolation(p.Name(),
		fmt.Sprintf("第 %d 天%s人数 %d 跌破目标 %d, 尝试回填", day+1, code, count.Of(code), code.Target()))

	var candidates []string
	for _, emp := range ctx.Roster {
		if emp == vacated {
			continue
		}
		cur := ctx.Matrix.Get(emp, day)
		if !cur.Working() {
			continue
		}
		if fromCodes != nil && !containsCode(fromCodes, cur) {
			continue
		}
		if ctx.Viable(emp, day, code) {
			candidates = append(candidates, emp)
		}
	}
	if len(candidates) == 0 {
		ctx.Log.RuleViolation(p.Name(),
			fmt.Sprintf("第 %d 天找不到%s的回填人选", day+1, code))
		return
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ti := ctx.Tallies[candidates[i]].Of(code)
		tj := ctx.Tallies[candidates[j]].Of(code)
		if ti != tj {
			return ti < tj
		}
		pi := penalize(ctx.Matrix.Get(candidates[i], day))
		pj := penalize(ctx.Matrix.Get(candidates[j], day))
		return !pi && pj
	})

	emp := candidates[0]
	cur := ctx.Matrix.Get(emp, day)
	ctx.Move(emp, day, cur, code)
	ctx.Log.RepairMove(p.Name(), emp, day, cur.String(), code.String())
}

// containsCode 判断班次集合是否包含某代码
func containsCode(codes []model.Code, code model.Code) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
