package phase

import (
	"testing"

	"github.com/lunban/lunban/pkg/model"
)

func TestInitialWindow_FirstDayExact(t *testing.T) {
	ctx := newTestContext(t, 3)
	p := &InitialWindow{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("初排失败: %v", err)
	}

	// 空矩阵上的第一天: 中班补两人、早班补两人、夜班补一人,
	// 第六人兜底进早班, 全部按花名册顺序
	wantDay0 := map[string]model.Code{
		"e1": model.Evening, "e2": model.Evening,
		"e3": model.Morning, "e4": model.Morning,
		"e5": model.Night, "e6": model.Morning,
	}
	for emp, want := range wantDay0 {
		if got := ctx.Matrix.Get(emp, 0); got != want {
			t.Errorf("第 1 天员工 %s 班次错误: 期望 %s, 实际 %s", emp, want, got)
		}
	}
}

func TestInitialWindow_MaintainsDailyTargets(t *testing.T) {
	ctx := newTestContext(t, 7)
	p := &InitialWindow{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("初排失败: %v", err)
	}

	for day := 0; day < 7; day++ {
		count := ctx.Matrix.DayCount(day)
		if count.Of(model.Evening) != model.TargetEvening {
			t.Errorf("第 %d 天中班人数错误: %d", day+1, count.Of(model.Evening))
		}
		if count.Of(model.Night) != model.TargetNight {
			t.Errorf("第 %d 天夜班人数错误: %d", day+1, count.Of(model.Night))
		}
		if count.Of(model.Morning) < model.TargetMorning {
			t.Errorf("第 %d 天早班人数不足: %d", day+1, count.Of(model.Morning))
		}
	}
}

func TestInitialWindow_LeavesIllegalCellUnset(t *testing.T) {
	ctx := newTestContext(t, 3)
	// 夜班对阶段留下的连续夜班
	ctx.Matrix.Set("e6", 0, model.Night)
	ctx.Matrix.Set("e6", 1, model.Night)
	p := &InitialWindow{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("初排失败: %v", err)
	}

	// 连续两个夜班后休息规则禁止任何工作班次,
	// 格子应留空待后续修复
	if got := ctx.Matrix.Get("e6", 2); got != model.Unset {
		t.Errorf("连续夜班后无合法班次, 应留空, 实际 %s", got)
	}
}

func TestInitialWindow_RespectsPreassigned(t *testing.T) {
	ctx := newTestContext(t, 2)
	// 模拟夜班对阶段的结果
	ctx.Matrix.Set("e6", 0, model.Night)
	ctx.Matrix.Set("e6", 1, model.Night)
	p := &InitialWindow{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("初排失败: %v", err)
	}

	if ctx.Matrix.Get("e6", 0) != model.Night {
		t.Error("预分配的夜班被覆盖")
	}
	// 夜班已达标, 不应再补第二个
	if count := ctx.Matrix.DayCount(0); count.Of(model.Night) != 1 {
		t.Errorf("第 1 天夜班人数错误: %d", count.Of(model.Night))
	}
}

func TestInitialWindow_StopsAtPatternWindow(t *testing.T) {
	ctx := newTestContext(t, 30)
	p := &InitialWindow{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("初排失败: %v", err)
	}

	// 第 29、30 天留给模式复制阶段
	for day := patternWindow; day < 30; day++ {
		if unset := ctx.Matrix.UnsetCount(day); unset != len(ctx.Roster) {
			t.Errorf("第 %d 天不应被初排触碰: %d 个格子已分配", day+1, len(ctx.Roster)-unset)
		}
	}
}
