// Package pairing 生成按天分组的搭班报告
//
// 搭班视图把每天每个班次的员工两两配对, 供店面张贴交接表使用。
// 夜班和中班只展示第一组, 早班全部展示; 班次人数偏离目标时
// 记录警告但不影响输出。
package pairing

import (
	"fmt"
	"math/rand"

	"github.com/lunban/lunban/pkg/logger"
	"github.com/lunban/lunban/pkg/model"
)

// MissingPartner 中班缺员时的占位标记
const MissingPartner = "MISSING PARTNER (Check Logs)"

// Pair 一组搭班, 第二人可能为空（奇数人数时）
type Pair [2]*string

// DayPairings 单天的搭班结果
type DayPairings struct {
	Date     string            `json:"date"`
	DayName  string            `json:"day_name"`
	Pairings map[string][]Pair `json:"pairings"`
}

// Report 整月搭班报告, 键为天序号（1 起始）
type Report map[int]*DayPairings

// Build 从矩阵生成搭班报告
//
// 每个班次内的顺序随机打乱, rng 由调用方注入以便复现。
func Build(matrix *model.Matrix, ref model.MonthRef, rng *rand.Rand) Report {
	report := make(Report, matrix.Days())
	days := matrix.Days()

	for day := 0; day < days; day++ {
		date := model.DateOfDay(ref.Year, ref.Month, day+1)
		out := &DayPairings{
			Date:     model.FormatDate(date),
			DayName:  date.Weekday().String(),
			Pairings: make(map[string][]Pair),
		}

		for _, code := range []model.Code{model.Morning, model.Evening, model.Night} {
			names := holders(matrix, day, code)
			if len(names) == 0 {
				continue
			}
			rng.Shuffle(len(names), func(i, j int) {
				names[i], names[j] = names[j], names[i]
			})

			logDeviation(day, code, names)

			pairs := buildPairs(code, names)
			if len(pairs) > 0 {
				out.Pairings[code.String()] = pairs
			}
		}

		report[day+1] = out
	}
	return report
}

// buildPairs 按班次规则把名单组成搭班对
func buildPairs(code model.Code, names []string) []Pair {
	var pairs []Pair
	switch code {
	case model.Night:
		// 只展示第一组
		pairs = append(pairs, makePair(names, 0))
	case model.Evening:
		p := makePair(names, 0)
		if p[1] == nil {
			marker := MissingPartner
			p[1] = &marker
		}
		pairs = append(pairs, p)
	case model.Morning:
		for idx := 0; idx < len(names); idx += 2 {
			pairs = append(pairs, makePair(names, idx))
		}
	}
	return pairs
}

// makePair 从 idx 起取两人组对, 第二人可能缺席
func makePair(names []string, idx int) Pair {
	var p Pair
	p[0] = &names[idx]
	if idx+1 < len(names) {
		p[1] = &names[idx+1]
	}
	return p
}

// logDeviation 班次人数偏离目标时告警
func logDeviation(day int, code model.Code, names []string) {
	actual := len(names)
	target := code.Target()
	switch {
	case (code == model.Evening || code == model.Night) && actual != target:
		logger.Warn().
			Int("day", day+1).
			Str("shift", code.String()).
			Int("expected", target).
			Int("found", actual).
			Msg("搭班人数偏离目标")
	case code == model.Morning && actual < target:
		logger.Warn().
			Int("day", day+1).
			Str("shift", code.String()).
			Int("expected", target).
			Int("found", actual).
			Msg(fmt.Sprintf("早班人数不足 %d 人", target))
	}
}

// holders 收集某天持有某班次的员工（花名册顺序）
func holders(matrix *model.Matrix, day int, code model.Code) []string {
	var result []string
	for _, emp := range matrix.Employees() {
		if matrix.Get(emp, day) == code {
			result = append(result, emp)
		}
	}
	return result
}
