// Package stats 提供排班统计分析功能
package stats

import (
	"github.com/lunban/lunban/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	// 整体覆盖率
	TotalCells      int     `json:"total_cells"`      // 总格子数（员工数×天数）
	AssignedCells   int     `json:"assigned_cells"`   // 已分配格子数（含休息）
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	// 按日期统计
	DailyCoverage map[int]DayCoverage `json:"daily_coverage"` // 每日覆盖情况（键为天序号）

	// 按班次类型统计
	ShiftTypeCoverage map[string]float64 `json:"shift_type_coverage"` // 各班次达标天数占比 (%)

	// 目标满足度
	TargetDays   int     `json:"target_days"`   // 人数目标完全达标的天数
	PresenceDays int     `json:"presence_days"` // 早/中/夜均有人的天数
	TargetRate   float64 `json:"target_rate"`   // 达标率 (%)
	PresenceRate float64 `json:"presence_rate"` // 在岗率 (%)

	// 问题识别
	UncoveredDays []UncoveredDay    `json:"uncovered_days"` // 缺岗天
	Understaffed  []UnderstaffedDay `json:"understaffed"`   // 人手不足的天/班次
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Day           int            `json:"day"`
	Date          string         `json:"date"`
	AssignedCells int            `json:"assigned_cells"`
	CoverageRate  float64        `json:"coverage_rate"`
	ShiftCounts   map[string]int `json:"shift_counts"`
	MeetsTargets  bool           `json:"meets_targets"`
	MeetsPresence bool           `json:"meets_presence"`
}

// UncoveredDay 某班次无人的天
type UncoveredDay struct {
	Day           int      `json:"day"`
	Date          string   `json:"date"`
	MissingShifts []string `json:"missing_shifts"`
}

// UnderstaffedDay 人手不足的天/班次
type UnderstaffedDay struct {
	Day      int    `json:"day"`
	Date     string `json:"date"`
	Shift    string `json:"shift"`
	Required int    `json:"required"`
	Assigned int    `json:"assigned"`
	Shortage int    `json:"shortage"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 分析矩阵的覆盖率
func (c *CoverageAnalyzer) Analyze(matrix *model.Matrix, ref model.MonthRef) *CoverageMetrics {
	days := matrix.Days()
	roster := matrix.Size()
	if days == 0 || roster == 0 {
		return &CoverageMetrics{
			DailyCoverage:     make(map[int]DayCoverage),
			ShiftTypeCoverage: make(map[string]float64),
			OverallCoverage:   100,
			TargetRate:        100,
			PresenceRate:      100,
		}
	}

	totalCells := days * roster
	assignedCells := 0
	targetDays := 0
	presenceDays := 0

	// 各班次的达标天数
	shiftTargetDays := make(map[model.Code]int)

	dailyCoverage := make(map[int]DayCoverage, days)
	var uncovered []UncoveredDay
	var understaffed []UnderstaffedDay

	for day := 0; day < days; day++ {
		count := matrix.DayCount(day)
		date := model.FormatDate(model.DateOfDay(ref.Year, ref.Month, day+1))

		dayAssigned := roster - matrix.UnsetCount(day)
		assignedCells += dayAssigned

		meetsTargets := count.MeetsTargets()
		meetsPresence := count.MeetsPresence()
		if meetsTargets {
			targetDays++
		}
		if meetsPresence {
			presenceDays++
		}

		shiftCounts := make(map[string]int, len(model.WorkingCodes)+1)
		var missing []string
		for _, code := range model.WorkingCodes {
			actual := count.Of(code)
			shiftCounts[code.String()] = actual
			if actual >= code.Target() {
				shiftTargetDays[code]++
			} else {
				understaffed = append(understaffed, UnderstaffedDay{
					Day:      day + 1,
					Date:     date,
					Shift:    code.String(),
					Required: code.Target(),
					Assigned: actual,
					Shortage: code.Target() - actual,
				})
			}
			if actual == 0 {
				missing = append(missing, code.String())
			}
		}
		shiftCounts[model.Off.String()] = count.Of(model.Off)

		if len(missing) > 0 {
			uncovered = append(uncovered, UncoveredDay{
				Day:           day + 1,
				Date:          date,
				MissingShifts: missing,
			})
		}

		rate := 0.0
		if roster > 0 {
			rate = float64(dayAssigned) / float64(roster) * 100
		}
		dailyCoverage[day+1] = DayCoverage{
			Day:           day + 1,
			Date:          date,
			AssignedCells: dayAssigned,
			CoverageRate:  rate,
			ShiftCounts:   shiftCounts,
			MeetsTargets:  meetsTargets,
			MeetsPresence: meetsPresence,
		}
	}

	shiftTypeCoverage := make(map[string]float64, len(model.WorkingCodes))
	for _, code := range model.WorkingCodes {
		shiftTypeCoverage[code.String()] = float64(shiftTargetDays[code]) / float64(days) * 100
	}

	return &CoverageMetrics{
		TotalCells:        totalCells,
		AssignedCells:     assignedCells,
		OverallCoverage:   float64(assignedCells) / float64(totalCells) * 100,
		DailyCoverage:     dailyCoverage,
		ShiftTypeCoverage: shiftTypeCoverage,
		TargetDays:        targetDays,
		PresenceDays:      presenceDays,
		TargetRate:        float64(targetDays) / float64(days) * 100,
		PresenceRate:      float64(presenceDays) / float64(days) * 100,
		UncoveredDays:     uncovered,
		Understaffed:      understaffed,
	}
}
