// Package swap 提供换班/调班功能
//
// 调班（Adjust）和互换（Swap）是针对已生成排班的点操作，
// 不走生成流水线。默认只做单日回看的硬性检查；开启合法性
// 强制后按完整的四天回看判定把关。
package swap

import (
	"fmt"

	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/logger"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/rule"
)

// Options 调班选项
type Options struct {
	// EnforceLegality 为真时新班次必须通过完整的合法性判定
	EnforceLegality bool `json:"enforce_legality"`
}

// 调整动作
const (
	ActionCreated   = "created"
	ActionAdjusted  = "adjusted"
	ActionUnchanged = "unchanged"
)

// AdjustResult 单格调整结果
type AdjustResult struct {
	Employee string     `json:"employee"`
	Day      int        `json:"day"`
	Action   string     `json:"action"`
	Previous model.Code `json:"previous"`
	Current  model.Code `json:"current"`
}

// Adjust 把员工某天的班次改为 newCode
//
// 原格子未分配时视为新建。调整后重算当天人数仅用于日志, 失衡
// 不阻止写入。默认不做合法性把关, 开启强制后非法放置被拒绝。
func Adjust(matrix *model.Matrix, emp string, day int, newCode model.Code, opts Options) (*AdjustResult, error) {
	if !matrix.Has(emp) {
		return nil, errors.NotFound("员工", emp)
	}
	if day < 0 || day >= matrix.Days() {
		return nil, errors.InvalidInput("day", fmt.Sprintf("第 %d 天超出当月范围", day+1))
	}
	if !newCode.Valid() {
		return nil, errors.InvalidInput("shift", fmt.Sprintf("未知班次代码 %d", newCode))
	}

	prev := matrix.Get(emp, day)
	if prev == newCode {
		return &AdjustResult{
			Employee: emp, Day: day,
			Action: ActionUnchanged, Previous: prev, Current: newCode,
		}, nil
	}

	if opts.EnforceLegality && !rule.Viable(matrix.Row(emp), day, newCode) {
		return nil, errors.InvalidTransition(
			fmt.Sprintf("员工 %s 第 %d 天不能排%s", emp, day+1, newCode))
	}

	matrix.Set(emp, day, newCode)
	action := ActionAdjusted
	if prev == model.Unset {
		action = ActionCreated
	}

	// 当天人数只做遥测, 不拦截
	count := matrix.DayCount(day)
	logger.Debug().
		Str("employee", emp).
		Int("day", day+1).
		Str("from", prev.String()).
		Str("to", newCode.String()).
		Int("morning", count.Of(model.Morning)).
		Int("evening", count.Of(model.Evening)).
		Int("night", count.Of(model.Night)).
		Int("off", count.Of(model.Off)).
		Msg("手工调班")

	return &AdjustResult{
		Employee: emp, Day: day,
		Action: action, Previous: prev, Current: newCode,
	}, nil
}

// SwapResult 互换结果
type SwapResult struct {
	Day      int        `json:"day"`
	EmpA     string     `json:"employee_a"`
	EmpB     string     `json:"employee_b"`
	NewCodeA model.Code `json:"new_code_a"`
	NewCodeB model.Code `json:"new_code_b"`
}

// Swap 互换两名员工某天的班次
//
// 未分配格子按休息处理。两人班次相同时拒绝（无意义）。
// 硬性检查只回看前一天：互换不得造成 夜班后接早班 或
// 夜班后接夜班。开启合法性强制后双方新班次还要通过完整判定。
func Swap(matrix *model.Matrix, empA, empB string, day int, opts Options) (*SwapResult, error) {
	if empA == empB {
		return nil, errors.InvalidInput("employee", "不能与自己互换")
	}
	if !matrix.Has(empA) {
		return nil, errors.NotFound("员工", empA)
	}
	if !matrix.Has(empB) {
		return nil, errors.NotFound("员工", empB)
	}
	if day < 0 || day >= matrix.Days() {
		return nil, errors.InvalidInput("day", fmt.Sprintf("第 %d 天超出当月范围", day+1))
	}

	codeA := matrix.Get(empA, day)
	if codeA == model.Unset {
		codeA = model.Off
	}
	codeB := matrix.Get(empB, day)
	if codeB == model.Unset {
		codeB = model.Off
	}
	if codeA == codeB {
		return nil, errors.InvalidInput("shift", "两人当天班次相同, 互换无意义")
	}

	prevA := matrix.Get(empA, day-1)
	prevB := matrix.Get(empB, day-1)

	switch {
	case codeB == model.Morning && prevA == model.Night:
		return nil, errors.InvalidTransition(
			fmt.Sprintf("员工 %s 前一天是夜班, 不能换入早班", empA))
	case codeA == model.Morning && prevB == model.Night:
		return nil, errors.InvalidTransition(
			fmt.Sprintf("员工 %s 前一天是夜班, 不能换入早班", empB))
	case codeB == model.Night && prevA == model.Night:
		return nil, errors.InvalidTransition(
			fmt.Sprintf("员工 %s 前一天是夜班, 不能换入夜班", empA))
	case codeA == model.Night && prevB == model.Night:
		return nil, errors.InvalidTransition(
			fmt.Sprintf("员工 %s 前一天是夜班, 不能换入夜班", empB))
	}

	if opts.EnforceLegality {
		if !rule.Viable(matrix.Row(empA), day, codeB) {
			return nil, errors.InvalidTransition(
				fmt.Sprintf("员工 %s 第 %d 天不能排%s", empA, day+1, codeB))
		}
		if !rule.Viable(matrix.Row(empB), day, codeA) {
			return nil, errors.InvalidTransition(
				fmt.Sprintf("员工 %s 第 %d 天不能排%s", empB, day+1, codeA))
		}
	}

	matrix.Set(empA, day, codeB)
	matrix.Set(empB, day, codeA)

	logger.Info().
		Str("employee_a", empA).
		Str("employee_b", empB).
		Int("day", day+1).
		Str("code_a", codeB.String()).
		Str("code_b", codeA.String()).
		Msg("互换班次")

	return &SwapResult{
		Day:  day,
		EmpA: empA, EmpB: empB,
		NewCodeA: codeB, NewCodeB: codeA,
	}, nil
}
