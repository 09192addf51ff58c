package stats

import (
	"math"
	"sort"
	"time"

	"github.com/lunban/lunban/pkg/model"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 工作量公平性
	WorkloadGini     float64 `json:"workload_gini"`     // 工作天数基尼系数 (0=完全公平, 1=完全不公平)
	WorkloadVariance float64 `json:"workload_variance"` // 工作天数方差
	WorkloadStdDev   float64 `json:"workload_std_dev"`  // 工作天数标准差
	AvgWorkDays      float64 `json:"avg_work_days"`     // 人均工作天数
	MaxWorkDays      int     `json:"max_work_days"`     // 最多工作天数
	MinWorkDays      int     `json:"min_work_days"`     // 最少工作天数
	WorkDaysRange    int     `json:"work_days_range"`   // 工作天数极差

	// 班次类型公平性
	ShiftTypeDistribution map[string]float64 `json:"shift_type_distribution"` // 各班次类型占比 (%)
	NightShiftGini        float64            `json:"night_shift_gini"`        // 夜班分配基尼系数
	OffDayGini            float64            `json:"off_day_gini"`            // 休息日分配基尼系数
	WeekendShiftGini      float64            `json:"weekend_shift_gini"`      // 周末班分配基尼系数

	// 员工级别统计
	EmployeeStats []EmployeeStat `json:"employee_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 综合公平性评分 (0-100)
}

// EmployeeStat 员工统计
type EmployeeStat struct {
	EmployeeName  string  `json:"employee_name"`
	WorkDays      int     `json:"work_days"`
	MorningShifts int     `json:"morning_shifts"`
	EveningShifts int     `json:"evening_shifts"`
	NightShifts   int     `json:"night_shifts"`
	OffDays       int     `json:"off_days"`
	WeekendShifts int     `json:"weekend_shifts"`
	Deviation     float64 `json:"deviation"` // 与人均工作天数的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct{}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{}
}

// Analyze 分析排班矩阵的公平性
func (f *FairnessAnalyzer) Analyze(matrix *model.Matrix, ref model.MonthRef) *FairnessMetrics {
	employees := matrix.Employees()
	if len(employees) == 0 || matrix.Days() == 0 {
		return &FairnessMetrics{
			ShiftTypeDistribution: make(map[string]float64),
			OverallFairnessScore:  100,
		}
	}

	employeeStats := f.calculateEmployeeStats(matrix, ref)

	workDays := make([]float64, len(employeeStats))
	nightShifts := make([]float64, len(employeeStats))
	offDays := make([]float64, len(employeeStats))
	weekendShifts := make([]float64, len(employeeStats))
	for i, stat := range employeeStats {
		workDays[i] = float64(stat.WorkDays)
		nightShifts[i] = float64(stat.NightShifts)
		offDays[i] = float64(stat.OffDays)
		weekendShifts[i] = float64(stat.WeekendShifts)
	}

	avgWork := f.calculateMean(workDays)
	variance := f.calculateVariance(workDays, avgWork)
	stdDev := math.Sqrt(variance)
	maxWork, minWork := f.calculateRange(workDays)

	for i := range employeeStats {
		if avgWork > 0 {
			employeeStats[i].Deviation = (float64(employeeStats[i].WorkDays) - avgWork) / avgWork * 100
		}
	}

	workloadGini := f.calculateGini(workDays)
	nightGini := f.calculateGini(nightShifts)
	offGini := f.calculateGini(offDays)
	weekendGini := f.calculateGini(weekendShifts)

	return &FairnessMetrics{
		WorkloadGini:          workloadGini,
		WorkloadVariance:      variance,
		WorkloadStdDev:        stdDev,
		AvgWorkDays:           avgWork,
		MaxWorkDays:           int(maxWork),
		MinWorkDays:           int(minWork),
		WorkDaysRange:         int(maxWork - minWork),
		ShiftTypeDistribution: f.calculateShiftTypeDistribution(matrix),
		NightShiftGini:        nightGini,
		OffDayGini:            offGini,
		WeekendShiftGini:      weekendGini,
		EmployeeStats:         employeeStats,
		OverallFairnessScore:  f.calculateOverallScore(workloadGini, nightGini, offGini, stdDev, avgWork),
	}
}

// calculateEmployeeStats 计算员工统计数据
func (f *FairnessAnalyzer) calculateEmployeeStats(matrix *model.Matrix, ref model.MonthRef) []EmployeeStat {
	employees := matrix.Employees()
	result := make([]EmployeeStat, 0, len(employees))

	for _, emp := range employees {
		tally := matrix.Tally(emp)
		stat := EmployeeStat{
			EmployeeName:  emp,
			WorkDays:      tally.WorkingTotal(),
			MorningShifts: tally.Of(model.Morning),
			EveningShifts: tally.Of(model.Evening),
			NightShifts:   tally.Of(model.Night),
			OffDays:       tally.Of(model.Off),
		}
		for day := 0; day < matrix.Days(); day++ {
			if matrix.Get(emp, day).Working() && f.isWeekend(ref, day+1) {
				stat.WeekendShifts++
			}
		}
		result = append(result, stat)
	}

	// 按工作天数排序
	sort.Slice(result, func(i, j int) bool {
		return result[i].WorkDays > result[j].WorkDays
	})

	return result
}

// isWeekend 判断某月第 day 天是否是周末
func (f *FairnessAnalyzer) isWeekend(ref model.MonthRef, day int) bool {
	weekday := model.WeekdayOfDay(ref.Year, ref.Month, day)
	return weekday == time.Saturday || weekday == time.Sunday
}

// calculateMean 计算平均值
func (f *FairnessAnalyzer) calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateVariance 计算方差
func (f *FairnessAnalyzer) calculateVariance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// calculateRange 计算极值
func (f *FairnessAnalyzer) calculateRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// calculateGini 计算基尼系数
func (f *FairnessAnalyzer) calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// calculateShiftTypeDistribution 计算班次类型占比
func (f *FairnessAnalyzer) calculateShiftTypeDistribution(matrix *model.Matrix) map[string]float64 {
	typeCounts := make(map[model.Code]int)
	total := 0
	for _, count := range matrix.TallyAll() {
		for _, code := range model.WorkingCodes {
			typeCounts[code] += count.Of(code)
			total += count.Of(code)
		}
	}

	distribution := make(map[string]float64, len(model.WorkingCodes))
	for _, code := range model.WorkingCodes {
		if total > 0 {
			distribution[code.String()] = float64(typeCounts[code]) / float64(total) * 100
		} else {
			distribution[code.String()] = 0
		}
	}
	return distribution
}

// calculateOverallScore 计算综合公平性评分
func (f *FairnessAnalyzer) calculateOverallScore(workloadGini, nightGini, offGini, stdDev, avgWork float64) float64 {
	// 各项权重
	const (
		workloadWeight = 0.4
		nightWeight    = 0.25
		offWeight      = 0.25
		stdDevWeight   = 0.1
	)

	// 基尼系数转换为分数 (0=100分, 1=0分)
	workloadScore := (1 - workloadGini) * 100
	nightScore := (1 - nightGini) * 100
	offScore := (1 - offGini) * 100

	// 标准差评分（变异系数越低分数越高）
	cvScore := 100.0
	if avgWork > 0 {
		cv := stdDev / avgWork
		cvScore = math.Max(0, 100-cv*200)
	}

	score := workloadWeight*workloadScore +
		nightWeight*nightScore +
		offWeight*offScore +
		stdDevWeight*cvScore

	return math.Max(0, math.Min(100, score))
}

// CompareSchedules 比较两个排班方案的公平性
func (f *FairnessAnalyzer) CompareSchedules(before, after *model.Matrix, ref model.MonthRef) map[string]float64 {
	metricsBefore := f.Analyze(before, ref)
	metricsAfter := f.Analyze(after, ref)

	return map[string]float64{
		"workload_gini_diff":   metricsAfter.WorkloadGini - metricsBefore.WorkloadGini,
		"night_gini_diff":      metricsAfter.NightShiftGini - metricsBefore.NightShiftGini,
		"off_gini_diff":        metricsAfter.OffDayGini - metricsBefore.OffDayGini,
		"overall_score_diff":   metricsAfter.OverallFairnessScore - metricsBefore.OverallFairnessScore,
		"before_overall_score": metricsBefore.OverallFairnessScore,
		"after_overall_score":  metricsAfter.OverallFairnessScore,
	}
}
