package scenario

import (
	"fmt"
	"testing"

	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/stats"
)

// securityMonth 二十八天的排班月份
var securityMonth = model.MonthRef{Year: 2027, Month: 2}

// TestSecurityTeamLargeRoster 十二人保安队排班
func TestSecurityTeamLargeRoster(t *testing.T) {
	roster := securityRoster(12)
	days := securityMonth.Days()
	result := mustGenerate(t, roster, days, 12)

	t.Logf("生成耗时: %v", result.Duration)
	if result.Statistics.Unresolved != 0 {
		t.Fatalf("存在未解决格子: %d", result.Statistics.Unresolved)
	}

	// 大花名册下早班吸收盈余人力, 夜班保持一人
	for day := 0; day < days; day++ {
		count := result.Matrix.DayCount(day)
		if count.Of(model.Morning) < model.TargetMorning {
			t.Errorf("第 %d 天早班人数 %d 低于下限", day+1, count.Of(model.Morning))
		}
		if count.Of(model.Night) < 1 {
			t.Errorf("第 %d 天没有夜班", day+1)
		}
	}

	count := result.Matrix.DayCount(0)
	t.Logf("首日人数: 早=%d 中=%d 夜=%d 休=%d",
		count.Of(model.Morning), count.Of(model.Evening),
		count.Of(model.Night), count.Of(model.Off))
}

// TestSecurityTeamFairness 大花名册下的公平性指标
func TestSecurityTeamFairness(t *testing.T) {
	roster := securityRoster(12)
	days := securityMonth.Days()
	result := mustGenerate(t, roster, days, 12)

	fairness := stats.NewFairnessAnalyzer().Analyze(result.Matrix, securityMonth)

	t.Logf("工作量基尼系数: %.3f", fairness.WorkloadGini)
	t.Logf("人均工作天数: %.1f, 极差: %d", fairness.AvgWorkDays, fairness.WorkDaysRange)
	t.Logf("综合公平性评分: %.1f", fairness.OverallFairnessScore)

	if len(fairness.EmployeeStats) != len(roster) {
		t.Errorf("员工统计数量错误: %d", len(fairness.EmployeeStats))
	}
	if fairness.WorkloadGini > 0.2 {
		t.Errorf("工作量分配不均: 基尼系数 %.3f", fairness.WorkloadGini)
	}
	if fairness.OverallFairnessScore < 50 {
		t.Errorf("综合公平性评分过低: %.1f", fairness.OverallFairnessScore)
	}

	// 全员排满时各人天数合计恒等于格子总数
	totalDays := 0
	for _, stat := range fairness.EmployeeStats {
		totalDays += stat.WorkDays + stat.OffDays
	}
	if totalDays != len(roster)*days {
		t.Errorf("天数合计 %d 不等于 %d", totalDays, len(roster)*days)
	}
}

// TestSecurityTeamDeterminism 固定种子可复现同一排班
func TestSecurityTeamDeterminism(t *testing.T) {
	roster := securityRoster(12)
	days := securityMonth.Days()

	first := mustGenerate(t, roster, days, 777)
	second := mustGenerate(t, roster, days, 777)

	if !first.Matrix.Equal(second.Matrix) {
		t.Error("相同种子生成的排班不一致")
	}
	if first.Report.ErrorCount() != second.Report.ErrorCount() {
		t.Errorf("相同种子的报告错误数不一致: %d vs %d",
			first.Report.ErrorCount(), second.Report.ErrorCount())
	}
}

// 辅助函数

// securityRoster 生成指定人数的保安花名册
func securityRoster(count int) []string {
	roster := make([]string, count)
	for i := range roster {
		roster[i] = fmt.Sprintf("保安%02d", i+1)
	}
	return roster
}
