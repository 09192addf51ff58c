package phase

import (
	"testing"

	"github.com/lunban/lunban/pkg/model"
)

func TestNightPair_CoversMonth(t *testing.T) {
	ctx := newTestContext(t, 14)
	p := &NightPair{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("夜班对分配失败: %v", err)
	}

	// 每天恰好一个夜班
	for day := 0; day < 14; day++ {
		count := ctx.Matrix.DayCount(day)
		if count.Of(model.Night) != 1 {
			t.Errorf("第 %d 天夜班人数错误: %d", day+1, count.Of(model.Night))
		}
	}
}

func TestNightPair_RestAfterPair(t *testing.T) {
	ctx := newTestContext(t, 14)
	p := &NightPair{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("夜班对分配失败: %v", err)
	}

	// 连续两天夜班后的第三天必须休息
	for _, emp := range ctx.Roster {
		row := ctx.Matrix.Row(emp)
		for day := 0; day+2 < 14; day++ {
			if row[day] == model.Night && row[day+1] == model.Night {
				if row[day+2] != model.Off {
					t.Errorf("员工 %s 第 %d 天夜班对后未休息: %s", emp, day+3, row[day+2])
				}
				if ctx.OffsPerDay[day+2] != 1 {
					t.Errorf("第 %d 天休息名额未登记", day+3)
				}
			}
		}
	}
}

func TestNightPair_RotatesRoster(t *testing.T) {
	ctx := newTestContext(t, 12)
	p := &NightPair{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("夜班对分配失败: %v", err)
	}

	// 六个连续的夜班对应轮满六名员工
	pairHolders := make(map[string]bool)
	for _, emp := range ctx.Roster {
		if ctx.Matrix.HasNightPair(emp) {
			pairHolders[emp] = true
		}
	}
	if len(pairHolders) != 6 {
		t.Errorf("期望 6 名员工获得夜班对, 实际 %d", len(pairHolders))
	}
}

func TestNightPair_MinGapBetweenPairs(t *testing.T) {
	ctx := newTestContext(t, 28)
	p := &NightPair{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("夜班对分配失败: %v", err)
	}

	// 同一员工两次夜班对的间隔不少于 10 天
	for _, emp := range ctx.Roster {
		row := ctx.Matrix.Row(emp)
		lastPairEnd := -100
		for day := 0; day+1 < 28; day++ {
			if row[day] == model.Night && row[day+1] == model.Night {
				if lastPairEnd >= 0 && day-lastPairEnd < minPairGap {
					t.Errorf("员工 %s 夜班对间隔过近: 上一对止于第 %d 天, 新一对起于第 %d 天",
						emp, lastPairEnd+1, day+1)
				}
				lastPairEnd = day + 1
			}
		}
	}
}

func TestNightPair_SingleNightFallback(t *testing.T) {
	ctx := newTestContext(t, 3)
	p := &NightPair{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("夜班对分配失败: %v", err)
	}

	// 前两天由夜班对覆盖, 第三天是强制休息日, 只能补单个夜班
	for day := 0; day < 3; day++ {
		if count := ctx.Matrix.DayCount(day); count.Of(model.Night) != 1 {
			t.Errorf("第 %d 天夜班人数错误: %d", day+1, count.Of(model.Night))
		}
	}
	// 第三天的夜班不能是刚下夜班对的员工
	var pairEmp string
	for _, emp := range ctx.Roster {
		if ctx.Matrix.Get(emp, 0) == model.Night {
			pairEmp = emp
		}
	}
	if ctx.Matrix.Get(pairEmp, 2) == model.Night {
		t.Errorf("夜班对员工 %s 不应连上第三天夜班", pairEmp)
	}
}

func TestNightPair_SkipsOccupiedCells(t *testing.T) {
	ctx := newTestContext(t, 4)
	// e1 前两天已被占用
	ctx.Matrix.Set("e1", 0, model.Evening)
	ctx.Matrix.Set("e1", 1, model.Evening)
	p := &NightPair{}

	if err := p.Run(ctx); err != nil {
		t.Fatalf("夜班对分配失败: %v", err)
	}

	if ctx.Matrix.Get("e1", 0) != model.Evening || ctx.Matrix.Get("e1", 1) != model.Evening {
		t.Error("已占用格子不应被夜班对覆盖")
	}
	if count := ctx.Matrix.DayCount(0); count.Of(model.Night) != 1 {
		t.Errorf("第 1 天夜班人数错误: %d", count.Of(model.Night))
	}
}
