// Package validator 提供排班验证功能
package validator

import (
	"fmt"

	"github.com/lunban/lunban/pkg/model"
)

// FindingKind 问题类型
type FindingKind string

const (
	// FindingUnresolvedCell 流水线结束后仍未分配的格子
	FindingUnresolvedCell FindingKind = "unresolved_cell"
	// FindingPresenceViolation 当天有人上班但某工作班次无人
	FindingPresenceViolation FindingKind = "presence_violation"
	// FindingOffCount 当天休息人数不等于一
	FindingOffCount FindingKind = "off_count"
	// FindingBalanceWarning 覆盖成立但人数偏离目标
	FindingBalanceWarning FindingKind = "balance_warning"
)

// 严重级别
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Finding 单个验证发现
type Finding struct {
	Kind     FindingKind `json:"kind"`
	Severity string      `json:"severity"`
	Day      int         `json:"day"`
	Employee string      `json:"employee,omitempty"`
	Message  string      `json:"message"`
}

// Report 验证报告
type Report struct {
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// Clean 检查报告是否完全干净
func (r *Report) Clean() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// ErrorCount 返回错误数
func (r *Report) ErrorCount() int {
	return len(r.Errors)
}

// WarningCount 返回警告数
func (r *Report) WarningCount() int {
	return len(r.Warnings)
}

func (r *Report) addError(f Finding) {
	f.Severity = SeverityError
	r.Errors = append(r.Errors, f)
}

func (r *Report) addWarning(f Finding) {
	f.Severity = SeverityWarning
	r.Warnings = append(r.Warnings, f)
}

// Validate 只读校验整个矩阵, 不做任何修改
//
// 错误级：未分配格子（每格一条）、覆盖空缺、休息人数不为一。
// 警告级：覆盖成立但人数偏离目标（夜=1、中=2、早>=2）。
func Validate(matrix *model.Matrix) *Report {
	report := &Report{}
	days := matrix.Days()
	employees := matrix.Employees()

	for day := 0; day < days; day++ {
		count := matrix.DayCount(day)

		for _, emp := range employees {
			if matrix.Get(emp, day) == model.Unset {
				report.addError(Finding{
					Kind:     FindingUnresolvedCell,
					Day:      day + 1,
					Employee: emp,
					Message:  fmt.Sprintf("员工 %s 第 %d 天没有班次", emp, day+1),
				})
			}
		}

		if count.WorkingTotal() > 0 {
			if !count.MeetsPresence() {
				report.addError(Finding{
					Kind: FindingPresenceViolation,
					Day:  day + 1,
					Message: fmt.Sprintf("第 %d 天覆盖空缺: 早=%d 中=%d 夜=%d",
						day+1, count.Of(model.Morning), count.Of(model.Evening), count.Of(model.Night)),
				})
			} else if !count.MeetsTargets() {
				report.addWarning(Finding{
					Kind: FindingBalanceWarning,
					Day:  day + 1,
					Message: fmt.Sprintf("第 %d 天人数偏离目标: 早=%d 中=%d 夜=%d（期望 夜=%d 中=%d 早>=%d）",
						day+1, count.Of(model.Morning), count.Of(model.Evening), count.Of(model.Night),
						model.TargetNight, model.TargetEvening, model.TargetMorning),
				})
			}
		}

		if off := count.Of(model.Off); off != model.TargetOff {
			report.addError(Finding{
				Kind:    FindingOffCount,
				Day:     day + 1,
				Message: fmt.Sprintf("第 %d 天休息人数为 %d（要求恰好 %d 人）", day+1, off, model.TargetOff),
			})
		}
	}
	return report
}
