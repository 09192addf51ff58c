package phase

import (
	"sort"

	"github.com/lunban/lunban/pkg/model"
)

// maxBalanceIterations 单天平衡的迭代上限
const maxBalanceIterations = 7

// Balance 数量平衡阶段
//
// 逐天迭代修复：中班、夜班超出目标时把负担最重的员工转去早班，
// 低于目标时从早班盈余中补充。所有移动都要通过合法性判定。
type Balance struct{}

// Name 返回阶段名称
func (p *Balance) Name() string { return "balance" }

// Run 执行数量平衡
func (p *Balance) Run(ctx *Context) error {
	// 前面阶段的计数簿记存在缺口, 以矩阵现状整体重算
	ctx.RecomputeTallies()

	days := ctx.Matrix.Days()
	for day := 0; day < days; day++ {
		for iter := 0; iter < maxBalanceIterations; iter++ {
			if !p.balanceDay(ctx, day) {
				break
			}
		}
	}
	return nil
}

// balanceDay 对单天做一轮平衡, 返回是否发生了移动
func (p *Balance) balanceDay(ctx *Context, day int) bool {
	st := newDayState(ctx, day)
	made := false

	// 中班: 严格两人
	e := st.count.Of(model.Evening)
	if e > model.TargetEvening {
		if p.drainToMorning(ctx, st, day, model.Evening, e-model.TargetEvening) {
			made = true
		}
	} else if e < model.TargetEvening {
		if p.fillFromMorning(ctx, st, day, model.Evening, model.TargetEvening-e) {
			made = true
		}
	}

	// 夜班: 严格一人
	n := st.count.Of(model.Night)
	if n > model.TargetNight {
		if p.drainToMorning(ctx, st, day, model.Night, n-model.TargetNight) {
			made = true
		}
	} else if n < model.TargetNight {
		if p.fillFromMorning(ctx, st, day, model.Night, model.TargetNight-n) {
			made = true
		}
	}

	return made
}

// drainToMorning 把某班次累计最多的员工逐个转去早班
func (p *Balance) drainToMorning(ctx *Context, st *dayState, day int, code model.Code, over int) bool {
	candidates := append([]string(nil), st.holders[code]...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return ctx.Tallies[candidates[i]].Of(code) > ctx.Tallies[candidates[j]].Of(code)
	})

	moved := 0
	for _, emp := range candidates {
		if moved >= over {
			break
		}
		if !ctx.Viable(emp, day, model.Morning) {
			continue
		}
		st.move(ctx, emp, day, code, model.Morning)
		ctx.Log.RepairMove(p.Name(), emp, day, code.String(), model.Morning.String())
		moved++
	}
	return moved > 0
}

// fillFromMorning 从早班盈余中为某班次补人
func (p *Balance) fillFromMorning(ctx *Context, st *dayState, day int, code model.Code, needed int) bool {
	if st.count.Of(model.Morning) <= model.TargetMorning {
		return false
	}

	donors := append([]string(nil), st.holders[model.Morning]...)
	sort.SliceStable(donors, func(i, j int) bool {
		vi := ctx.Viable(donors[i], day, code)
		vj := ctx.Viable(donors[j], day, code)
		if vi != vj {
			return vi
		}
		return ctx.Tallies[donors[i]].Of(code) < ctx.Tallies[donors[j]].Of(code)
	})

	found := 0
	for _, emp := range donors {
		if found >= needed {
			break
		}
		if !ctx.Viable(emp, day, code) {
			continue
		}
		st.move(ctx, emp, day, model.Morning, code)
		ctx.Log.RepairMove(p.Name(), emp, day, model.Morning.String(), code.String())
		found++
	}
	return found > 0
}

// dayState 平衡迭代内单天的增量簿记
type dayState struct {
	count   model.CodeCount
	holders map[model.Code][]string
}

// newDayState 从矩阵现状生成单天簿记
func newDayState(ctx *Context, day int) *dayState {
	st := &dayState{holders: make(map[model.Code][]string, len(model.WorkingCodes))}
	st.count = ctx.Matrix.DayCount(day)
	for _, code := range model.WorkingCodes {
		st.holders[code] = ctx.Holders(day, code)
	}
	return st
}

// move 移动员工并同步单天簿记与全月计数
func (s *dayState) move(ctx *Context, emp string, day int, from, to model.Code) {
	ctx.Move(emp, day, from, to)
	s.count.Dec(from)
	s.count.Inc(to)
	s.holders[from] = removeString(s.holders[from], emp)
	s.holders[to] = append(s.holders[to], emp)
}

// removeString 从切片中删除首个匹配项并保持顺序
func removeString(list []string, target string) []string {
	for i, s := range list {
		if s == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
