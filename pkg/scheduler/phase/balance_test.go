package phase

import (
	"testing"

	"github.com/lunban/lunban/pkg/model"
)

func TestBalance_DrainsEveningSurplus(t *testing.T) {
	ctx := newTestContext(t, 2)
	setDay(t, ctx, 0,
		model.Evening, model.Evening, model.Evening,
		model.Morning, model.Morning, model.Night)
	// e3 在第二天还有一个中班, 负担最重
	ctx.Matrix.Set("e3", 1, model.Evening)
	p := &Balance{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("平衡失败: %v", err)
	}

	count := ctx.Matrix.DayCount(0)
	if count.Of(model.Evening) != model.TargetEvening {
		t.Errorf("中班应降到目标人数: %d", count.Of(model.Evening))
	}
	if count.Of(model.Morning) != 3 {
		t.Errorf("早班应接收转出的员工: %d", count.Of(model.Morning))
	}
	// 中班累计最多的员工先被转走
	if got := ctx.Matrix.Get("e3", 0); got != model.Morning {
		t.Errorf("e3 应被转去早班, 实际 %s", got)
	}
	if ctx.Matrix.Get("e3", 1) != model.Evening {
		t.Error("第二天的中班不应被波及")
	}
}

func TestBalance_FillsEveningFromMorningSurplus(t *testing.T) {
	ctx := newTestContext(t, 1)
	setDay(t, ctx, 0,
		model.Evening, model.Morning, model.Morning,
		model.Morning, model.Morning, model.Night)
	p := &Balance{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("平衡失败: %v", err)
	}

	count := ctx.Matrix.DayCount(0)
	if count.Of(model.Evening) != model.TargetEvening {
		t.Errorf("中班应补到目标人数: %d", count.Of(model.Evening))
	}
	if count.Of(model.Morning) != 3 {
		t.Errorf("早班盈余应减少一人: %d", count.Of(model.Morning))
	}
}

func TestBalance_FillsMissingNight(t *testing.T) {
	ctx := newTestContext(t, 1)
	setDay(t, ctx, 0,
		model.Morning, model.Morning, model.Morning,
		model.Evening, model.Evening, model.Off)
	p := &Balance{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("平衡失败: %v", err)
	}

	count := ctx.Matrix.DayCount(0)
	if count.Of(model.Night) != model.TargetNight {
		t.Errorf("夜班应补到目标人数: %d", count.Of(model.Night))
	}
	if count.Of(model.Morning) != model.TargetMorning {
		t.Errorf("早班应回到目标人数: %d", count.Of(model.Morning))
	}
}

func TestBalance_NoFillWithoutMorningSurplus(t *testing.T) {
	ctx := newTestContext(t, 1)
	// 早班恰好达标, 不能拆借
	setDay(t, ctx, 0,
		model.Evening, model.Morning, model.Morning,
		model.Night, model.Off, model.Off)
	p := &Balance{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("平衡失败: %v", err)
	}

	count := ctx.Matrix.DayCount(0)
	if count.Of(model.Evening) != 1 {
		t.Errorf("早班无盈余时中班缺口应保留: %d", count.Of(model.Evening))
	}
	if count.Of(model.Morning) != model.TargetMorning {
		t.Errorf("早班人数不应变化: %d", count.Of(model.Morning))
	}
}

func TestBalance_SkipsIllegalMoves(t *testing.T) {
	ctx := newTestContext(t, 2)
	// e1 第一天夜班, 第二天的中班不能转成早班
	ctx.Matrix.Set("e1", 0, model.Night)
	setDay(t, ctx, 1,
		model.Evening, model.Evening, model.Evening,
		model.Morning, model.Morning, model.Off)
	p := &Balance{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("平衡失败: %v", err)
	}

	// 三人并列时本该先转第一个, 但 e1 刚下夜班不能上早班
	if got := ctx.Matrix.Get("e1", 1); got != model.Evening {
		t.Errorf("e1 不应被转去早班, 实际 %s", got)
	}
	if got := ctx.Matrix.Get("e2", 1); got != model.Morning {
		t.Errorf("e2 应顶替被跳过的 e1, 实际 %s", got)
	}
	if count := ctx.Matrix.DayCount(1); count.Of(model.Evening) != model.TargetEvening {
		t.Errorf("第 2 天中班人数错误: %d", count.Of(model.Evening))
	}
}

func TestBalance_RecomputesStaleTallies(t *testing.T) {
	ctx := newTestContext(t, 1)
	setDay(t, ctx, 0,
		model.Evening, model.Evening, model.Evening,
		model.Morning, model.Morning, model.Night)
	// 故意污染计数, Run 开头的整体重算应把它纠正
	ctx.Tallies["e1"].Inc(model.Evening)
	ctx.Tallies["e1"].Inc(model.Evening)
	p := &Balance{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("平衡失败: %v", err)
	}

	if got := ctx.Tallies["e2"].Of(model.Evening) + ctx.Tallies["e2"].Of(model.Morning); got != 1 {
		t.Errorf("重算后 e2 的计数应与矩阵一致: %d", got)
	}
	// 污染的计数被重算覆盖, 三人并列取花名册顺序
	if got := ctx.Matrix.Get("e1", 0); got != model.Morning {
		t.Errorf("重算后 e1 应第一个被转走, 实际 %s", got)
	}
}
