package phase

import (
	"math/rand"
	"testing"

	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/model"
)

// testRoster 六人花名册, 刚好满足最小规模
var testRoster = []string{"e1", "e2", "e3", "e4", "e5", "e6"}

// newTestContext 创建固定种子的测试上下文
func newTestContext(t *testing.T, days int) *Context {
	t.Helper()
	return NewContext(model.NewMatrix(testRoster, days), rand.New(rand.NewSource(1)))
}

// setDay 设置某天全员班次并同步计数与休息名额
func setDay(t *testing.T, ctx *Context, day int, codes ...model.Code) {
	t.Helper()
	if len(codes) != len(ctx.Roster) {
		t.Fatalf("setDay 需要 %d 个班次, 收到 %d 个", len(ctx.Roster), len(codes))
	}
	for i, emp := range ctx.Roster {
		ctx.Matrix.Set(emp, day, codes[i])
		if codes[i] == model.Off {
			ctx.OffsPerDay[day]++
		}
	}
}

func TestContext_Move(t *testing.T) {
	ctx := newTestContext(t, 3)
	ctx.Matrix.Set("e1", 0, model.Morning)
	ctx.Tallies["e1"].Inc(model.Morning)

	ctx.Move("e1", 0, model.Morning, model.Evening)

	if got := ctx.Matrix.Get("e1", 0); got != model.Evening {
		t.Errorf("移动后班次错误: 期望 Evening, 实际 %s", got)
	}
	if ctx.Tallies["e1"].Of(model.Morning) != 0 {
		t.Errorf("早班计数未减少: %d", ctx.Tallies["e1"].Of(model.Morning))
	}
	if ctx.Tallies["e1"].Of(model.Evening) != 1 {
		t.Errorf("中班计数未增加: %d", ctx.Tallies["e1"].Of(model.Evening))
	}
}

func TestContext_MoveFromUnset(t *testing.T) {
	ctx := newTestContext(t, 3)

	// 从未分配格子移入时不应产生负计数
	ctx.Move("e1", 0, model.Unset, model.Night)

	if ctx.Tallies["e1"].Of(model.Night) != 1 {
		t.Errorf("夜班计数错误: %d", ctx.Tallies["e1"].Of(model.Night))
	}
	total := ctx.Tallies["e1"].WorkingTotal() + ctx.Tallies["e1"].Of(model.Off)
	if total != 1 {
		t.Errorf("总计数应为 1, 实际 %d", total)
	}
}

func TestContext_RecomputeTallies(t *testing.T) {
	ctx := newTestContext(t, 2)
	// 直接改矩阵, 绕过计数
	ctx.Matrix.Set("e1", 0, model.Night)
	ctx.Matrix.Set("e1", 1, model.Night)
	ctx.Matrix.Set("e2", 0, model.Off)

	ctx.RecomputeTallies()

	if ctx.Tallies["e1"].Of(model.Night) != 2 {
		t.Errorf("重算后 e1 夜班计数错误: %d", ctx.Tallies["e1"].Of(model.Night))
	}
	if ctx.Tallies["e2"].Of(model.Off) != 1 {
		t.Errorf("重算后 e2 休息计数错误: %d", ctx.Tallies["e2"].Of(model.Off))
	}
	if ctx.Tallies["e3"].WorkingTotal() != 0 {
		t.Errorf("未分配员工计数应为零")
	}
}

func TestContext_Holders(t *testing.T) {
	ctx := newTestContext(t, 1)
	setDay(t, ctx, 0,
		model.Morning, model.Morning, model.Evening,
		model.Evening, model.Night, model.Off)

	holders := ctx.Holders(0, model.Morning)
	if len(holders) != 2 || holders[0] != "e1" || holders[1] != "e2" {
		t.Errorf("早班持有者错误: %v", holders)
	}
	if n := ctx.Holders(0, model.Night); len(n) != 1 || n[0] != "e5" {
		t.Errorf("夜班持有者错误: %v", n)
	}
}

// recordPhase 记录执行顺序的桩阶段
type recordPhase struct {
	name string
	log  *[]string
	err  error
}

func (p *recordPhase) Name() string { return p.name }

func (p *recordPhase) Run(ctx *Context) error {
	*p.log = append(*p.log, p.name)
	return p.err
}

func TestPipeline_RunsInOrder(t *testing.T) {
	ctx := newTestContext(t, 1)
	var order []string
	pipeline := NewPipeline(
		&recordPhase{name: "a", log: &order},
		&recordPhase{name: "b", log: &order},
		&recordPhase{name: "c", log: &order},
	)

	if err := pipeline.Run(ctx); err != nil {
		t.Fatalf("流水线执行失败: %v", err)
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("阶段执行顺序错误: %v", order)
	}
}

func TestPipeline_StopsOnError(t *testing.T) {
	ctx := newTestContext(t, 1)
	var order []string
	failErr := errors.New(errors.CodeInternal, "故意失败")
	pipeline := NewPipeline(
		&recordPhase{name: "a", log: &order},
		&recordPhase{name: "b", log: &order, err: failErr},
		&recordPhase{name: "c", log: &order},
	)

	err := pipeline.Run(ctx)
	if err == nil {
		t.Fatal("期望失败被上抛")
	}
	if errors.GetCode(err) != errors.CodeInternal {
		t.Errorf("错误码错误: %v", errors.GetCode(err))
	}
	if len(order) != 2 {
		t.Errorf("失败后不应继续执行, 实际执行了 %v", order)
	}
}

func TestDefault_PhaseOrder(t *testing.T) {
	phases := Default()
	want := []string{
		"night_pair", "off_day", "initial_window", "replicate",
		"balance", "presence", "night_block", "final_correct",
	}
	if len(phases) != len(want) {
		t.Fatalf("阶段数量错误: 期望 %d, 实际 %d", len(want), len(phases))
	}
	for i, ph := range phases {
		if ph.Name() != want[i] {
			t.Errorf("第 %d 个阶段错误: 期望 %s, 实际 %s", i, want[i], ph.Name())
		}
	}
}
