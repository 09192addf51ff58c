package phase

import (
	"fmt"
	"sort"

	"github.com/lunban/lunban/pkg/model"
)

// maxPresenceIterations 单天覆盖检查的迭代上限
const maxPresenceIterations = 5

// Presence 覆盖保障阶段
//
// 比数量平衡更强的修复：只要当天有人上班，早、中、夜三种班次
// 就都必须有人。缺口从超出目标的班次借人，借不到再从恰好
// 达标的班次借。
type Presence struct{}

// Name 返回阶段名称
func (p *Presence) Name() string { return "presence" }

// donor 候选借调员工及其当前班次
type donor struct {
	emp    string
	origin model.Code
}

// Run 执行覆盖保障
func (p *Presence) Run(ctx *Context) error {
	days := ctx.Matrix.Days()
	for day := 0; day < days; day++ {
		needsCheck := true
		iter := 0
		for needsCheck && iter < maxPresenceIterations {
			needsCheck = false
			iter++
			count := ctx.Matrix.DayCount(day)
			if count.WorkingTotal() == 0 {
				continue
			}

			if count.Of(model.Evening) == 0 {
				ctx.Log.RuleViolation(p.Name(),
					fmt.Sprintf("第 %d 天中班空缺, 尝试修复（第 %d 轮）", day+1, iter))
				needsCheck = true
				if p.fixMissing(ctx, day, count, model.Evening,
					[2]model.Code{model.Morning, model.Night}, model.Night) {
					continue
				}
			}

			if count.Of(model.Morning) == 0 {
				ctx.Log.RuleViolation(p.Name(),
					fmt.Sprintf("第 %d 天早班空缺, 尝试修复（第 %d 轮）", day+1, iter))
				needsCheck = true
				if p.fixMissing(ctx, day, count, model.Morning,
					[2]model.Code{model.Evening, model.Night}, model.Night) {
					continue
				}
			}

			if count.Of(model.Night) == 0 {
				ctx.Log.RuleViolation(p.Name(),
					fmt.Sprintf("第 %d 天夜班空缺, 尝试修复（第 %d 轮）", day+1, iter))
				needsCheck = true
				if p.fixMissing(ctx, day, count, model.Night,
					[2]model.Code{model.Morning, model.Evening}, model.Evening) {
					continue
				}
			}
		}
		if iter >= maxPresenceIterations {
			ctx.Log.CriticalGap(p.Name(), day,
				fmt.Sprintf("%d 轮迭代后覆盖仍不稳定", maxPresenceIterations))
		}
	}
	return nil
}

// fixMissing 从其他班次借一名员工填补空缺班次
//
// 候选优先来自超出目标的班次，没有盈余时从恰好达标的班次借；
// 排序偏好（可合法转入, 该班次累计少, 不动 penalized 班次）的员工。
func (p *Presence) fixMissing(ctx *Context, day int, count model.CodeCount, missing model.Code, origins [2]model.Code, penalized model.Code) bool {
	var candidates []donor
	for _, origin := range origins {
		if count.Of(origin) > origin.Target() {
			for _, emp := range ctx.Holders(day, origin) {
				candidates = append(candidates, donor{emp: emp, origin: origin})
			}
		}
	}
	if len(candidates) == 0 {
		for _, origin := range origins {
			if count.Of(origin) == origin.Target() {
				for _, emp := range ctx.Holders(day, origin) {
					candidates = append(candidates, donor{emp: emp, origin: origin})
				}
			}
		}
	}

	if len(candidates) > 0 {
		sort.SliceStable(candidates, func(i, j int) bool {
			vi := ctx.Viable(candidates[i].emp, day, missing)
			vj := ctx.Viable(candidates[j].emp, day, missing)
			if vi != vj {
				return vi
			}
			ti := ctx.Tallies[candidates[i].emp].Of(missing)
			tj := ctx.Tallies[candidates[j].emp].Of(missing)
			if ti != tj {
				return ti < tj
			}
			pi := candidates[i].origin == penalized
			pj := candidates[j].origin == penalized
			return !pi && pj
		})
		for _, c := range candidates {
			if ctx.Viable(c.emp, day, missing) {
				ctx.Move(c.emp, day, c.origin, missing)
				ctx.Log.RepairMove(p.Name(), c.emp, day, c.origin.String(), missing.String())
				return true
			}
		}
	}

	ctx.Log.CriticalGap(p.Name(), day,
		fmt.Sprintf("无员工可合法转入%s", missing))
	return false
}
