package validator

import (
	"strings"
	"testing"

	"github.com/lunban/lunban/pkg/model"
)

// buildMatrix 构造测试矩阵, 每个元素是一名员工整月的班次
func buildMatrix(t *testing.T, days int, rows [][]model.Code) *model.Matrix {
	t.Helper()
	names := []string{"e1", "e2", "e3", "e4", "e5", "e6"}
	if len(rows) != len(names) {
		t.Fatalf("需要 %d 行, 收到 %d 行", len(names), len(rows))
	}
	m := model.NewMatrix(names, days)
	for i, row := range rows {
		for day, code := range row {
			m.Set(names[i], day, code)
		}
	}
	return m
}

func TestValidate_CleanSchedule(t *testing.T) {
	m := buildMatrix(t, 2, [][]model.Code{
		{model.Morning, model.Morning},
		{model.Morning, model.Evening},
		{model.Evening, model.Evening},
		{model.Evening, model.Morning},
		{model.Night, model.Off},
		{model.Off, model.Night},
	})

	report := Validate(m)

	if !report.Clean() {
		t.Errorf("合规矩阵应通过验证: %d 错误 %d 警告",
			report.ErrorCount(), report.WarningCount())
	}
}

func TestValidate_UnresolvedCells(t *testing.T) {
	m := buildMatrix(t, 1, [][]model.Code{
		{model.Morning},
		{model.Morning},
		{model.Evening},
		{model.Evening},
		{model.Night},
		{model.Unset},
	})

	report := Validate(m)

	var found *Finding
	for i := range report.Errors {
		if report.Errors[i].Kind == FindingUnresolvedCell {
			found = &report.Errors[i]
		}
	}
	if found == nil {
		t.Fatal("未分配格子应产生错误")
	}
	if found.Employee != "e6" {
		t.Errorf("错误应标注员工: %s", found.Employee)
	}
	if found.Day != 1 {
		t.Errorf("天数应从 1 起始: %d", found.Day)
	}
}

func TestValidate_PerCellErrors(t *testing.T) {
	// 两个未分配格子要产生两条错误
	m := buildMatrix(t, 1, [][]model.Code{
		{model.Morning},
		{model.Morning},
		{model.Evening},
		{model.Evening},
		{model.Unset},
		{model.Unset},
	})

	report := Validate(m)

	unresolved := 0
	for _, f := range report.Errors {
		if f.Kind == FindingUnresolvedCell {
			unresolved++
		}
	}
	if unresolved != 2 {
		t.Errorf("期望 2 条未分配错误, 实际 %d", unresolved)
	}
}

func TestValidate_PresenceViolation(t *testing.T) {
	// 有人上班但夜班无人
	m := buildMatrix(t, 1, [][]model.Code{
		{model.Morning},
		{model.Morning},
		{model.Evening},
		{model.Evening},
		{model.Morning},
		{model.Off},
	})

	report := Validate(m)

	found := false
	for _, f := range report.Errors {
		if f.Kind == FindingPresenceViolation {
			found = true
			if !strings.Contains(f.Message, "夜=0") {
				t.Errorf("错误信息应包含夜班人数: %s", f.Message)
			}
		}
	}
	if !found {
		t.Error("覆盖空缺应产生错误")
	}
}

func TestValidate_BalanceWarning(t *testing.T) {
	// 三班都有人但中班只有一人
	m := buildMatrix(t, 1, [][]model.Code{
		{model.Morning},
		{model.Morning},
		{model.Morning},
		{model.Evening},
		{model.Night},
		{model.Off},
	})

	report := Validate(m)

	if report.ErrorCount() != 0 {
		t.Errorf("覆盖成立时不应有错误: %v", report.Errors)
	}
	found := false
	for _, f := range report.Warnings {
		if f.Kind == FindingBalanceWarning {
			found = true
		}
	}
	if !found {
		t.Error("人数偏离目标应产生警告")
	}
}

func TestValidate_OffCount(t *testing.T) {
	// 两人休息, 超出名额
	m := buildMatrix(t, 1, [][]model.Code{
		{model.Morning},
		{model.Morning},
		{model.Evening},
		{model.Evening},
		{model.Off},
		{model.Off},
	})

	report := Validate(m)

	found := false
	for _, f := range report.Errors {
		if f.Kind == FindingOffCount {
			found = true
		}
	}
	if !found {
		t.Error("休息人数不为一应产生错误")
	}
}

func TestValidate_AllOffDaySkipsPresence(t *testing.T) {
	// 全员休息: 不做覆盖检查, 但休息人数仍然违规
	m := buildMatrix(t, 1, [][]model.Code{
		{model.Off}, {model.Off}, {model.Off},
		{model.Off}, {model.Off}, {model.Off},
	})

	report := Validate(m)

	for _, f := range report.Errors {
		if f.Kind == FindingPresenceViolation {
			t.Error("无人上班的天不应报覆盖空缺")
		}
	}
	found := false
	for _, f := range report.Errors {
		if f.Kind == FindingOffCount {
			found = true
		}
	}
	if !found {
		t.Error("六人休息应报休息人数错误")
	}
}
