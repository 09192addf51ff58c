// Package rule 实现班次衔接的合法性判定
//
// 判定只依赖同一员工最近四天的历史班次，规则如下：
//   - 休息日永远合法
//   - 连续两天夜班后必须休息
//   - 夜班次日不得排早班
//   - 夜班最多连续两天
//   - 夜-中 之后不得排早班
//   - 夜-中-中、夜-中-夜-中、中-夜-中-中 之后不得排早班
//
// 未分配（Unset）的历史格子不参与任何模式匹配。
package rule

import "github.com/lunban/lunban/pkg/model"

// Viable 判断在 row 的第 day 天（0 起始）放置 code 是否合法
func Viable(row []model.Code, day int, code model.Code) bool {
	if day < 0 || day >= len(row) {
		return false
	}
	if !code.Valid() {
		return false
	}
	if code == model.Off {
		return true
	}

	prev1 := lookback(row, day, 1)
	prev2 := lookback(row, day, 2)

	// 连续两天夜班后只能休息
	if day >= 2 && prev2 == model.Night && prev1 == model.Night {
		return false
	}

	// 夜班次日不得排早班
	if code == model.Morning && prev1 == model.Night {
		return false
	}

	// 夜班最多连续两天
	if code == model.Night && prev1 == model.Night && prev2 == model.Night {
		return false
	}

	// 夜-中 之后不得排早班
	if code == model.Morning && day >= 2 && prev1 == model.Evening && prev2 == model.Night {
		return false
	}

	// 更长的疲劳模式之后不得排早班
	if code == model.Morning {
		if day >= 3 && matchTail(row, day, model.Night, model.Evening, model.Evening) {
			return false
		}
		if day >= 4 {
			if matchTail(row, day, model.Night, model.Evening, model.Night, model.Evening) {
				return false
			}
			if matchTail(row, day, model.Evening, model.Night, model.Evening, model.Evening) {
				return false
			}
		}
	}

	return true
}

// CreatesMorningAfterNight 判断第 day 天的夜班是否与次日已排的早班冲突
func CreatesMorningAfterNight(row []model.Code, day int) bool {
	if day < 0 || day+1 >= len(row) {
		return false
	}
	return row[day] == model.Night && row[day+1] == model.Morning
}

// lookback 返回 day 前第 n 天的班次，越界返回 Unset
func lookback(row []model.Code, day, n int) model.Code {
	idx := day - n
	if idx < 0 {
		return model.Unset
	}
	return row[idx]
}

// matchTail 判断 day 之前的若干天是否恰好为给定模式（按时间顺序）
func matchTail(row []model.Code, day int, pattern ...model.Code) bool {
	start := day - len(pattern)
	if start < 0 {
		return false
	}
	for i, code := range pattern {
		if row[start+i] != code {
			return false
		}
	}
	return true
}
