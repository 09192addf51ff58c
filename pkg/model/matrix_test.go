package model

import "testing"

func TestNewMatrix(t *testing.T) {
	roster := []string{"e1", "e2", "e3"}
	m := NewMatrix(roster, 30)

	if m.Days() != 30 {
		t.Errorf("Days() = %d, expected 30", m.Days())
	}
	if m.Size() != 3 {
		t.Errorf("Size() = %d, expected 3", m.Size())
	}
	for _, emp := range roster {
		if !m.Has(emp) {
			t.Errorf("矩阵应包含员工 %s", emp)
		}
		for d := 0; d < 30; d++ {
			if m.Get(emp, d) != Unset {
				t.Fatalf("新矩阵格子 (%s,%d) 应为 Unset", emp, d)
			}
		}
	}
}

func TestMatrix_SetGet(t *testing.T) {
	m := NewMatrix([]string{"e1", "e2"}, 7)

	m.Set("e1", 0, Night)
	m.Set("e1", 1, Night)
	m.Set("e2", 0, Morning)

	if m.Get("e1", 0) != Night {
		t.Errorf("Get(e1,0) = %v, expected Night", m.Get("e1", 0))
	}
	if m.Get("e2", 0) != Morning {
		t.Errorf("Get(e2,0) = %v, expected Morning", m.Get("e2", 0))
	}

	// 越界访问返回 Unset 且不崩溃
	if m.Get("e1", 7) != Unset {
		t.Error("越界天数应返回 Unset")
	}
	if m.Get("missing", 0) != Unset {
		t.Error("未知员工应返回 Unset")
	}
	m.Set("e1", -1, Off)
	m.Set("missing", 0, Off)
}

func TestMatrix_DayCount(t *testing.T) {
	m := NewMatrix([]string{"e1", "e2", "e3", "e4"}, 3)
	m.Set("e1", 0, Morning)
	m.Set("e2", 0, Morning)
	m.Set("e3", 0, Night)
	// e4 当天未分配

	count := m.DayCount(0)
	if count.Of(Morning) != 2 {
		t.Errorf("早班人数 = %d, expected 2", count.Of(Morning))
	}
	if count.Of(Night) != 1 {
		t.Errorf("夜班人数 = %d, expected 1", count.Of(Night))
	}
	if m.UnsetCount(0) != 1 {
		t.Errorf("未分配人数 = %d, expected 1", m.UnsetCount(0))
	}
}

func TestMatrix_Tally(t *testing.T) {
	m := NewMatrix([]string{"e1"}, 5)
	m.Set("e1", 0, Morning)
	m.Set("e1", 1, Morning)
	m.Set("e1", 2, Night)
	m.Set("e1", 3, Off)

	tally := m.Tally("e1")
	if tally.Of(Morning) != 2 || tally.Of(Night) != 1 || tally.Of(Off) != 1 {
		t.Errorf("统计结果异常: %v", tally)
	}
	if tally.WorkingTotal() != 3 {
		t.Errorf("工作天数 = %d, expected 3", tally.WorkingTotal())
	}
}

func TestMatrix_HasNightPair(t *testing.T) {
	m := NewMatrix([]string{"e1", "e2"}, 5)
	m.Set("e1", 1, Night)
	m.Set("e1", 2, Night)
	m.Set("e2", 0, Night)
	m.Set("e2", 2, Night)

	if !m.HasNightPair("e1") {
		t.Error("e1 存在连续夜班对, 应返回true")
	}
	if m.HasNightPair("e2") {
		t.Error("e2 的夜班不连续, 应返回false")
	}
}

func TestMatrix_Clone(t *testing.T) {
	m := NewMatrix([]string{"e1", "e2"}, 4)
	m.Set("e1", 0, Night)

	c := m.Clone()
	if !m.Equal(c) {
		t.Error("克隆矩阵应与原矩阵一致")
	}

	c.Set("e1", 1, Morning)
	if m.Get("e1", 1) != Unset {
		t.Error("修改克隆不应影响原矩阵")
	}
	if m.Equal(c) {
		t.Error("修改后两矩阵不应相等")
	}
}

func TestMatrix_Employees(t *testing.T) {
	roster := []string{"c", "a", "b"}
	m := NewMatrix(roster, 2)

	got := m.Employees()
	for i, emp := range roster {
		if got[i] != emp {
			t.Errorf("Employees()[%d] = %s, expected %s（应保持花名册顺序）", i, got[i], emp)
		}
	}
}
