// Package swap 提供换班/调班功能
package swap

import (
	"sort"

	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/rule"
)

// Recommendation 换班推荐
type Recommendation struct {
	Employee  string     `json:"employee"`
	TheirCode model.Code `json:"their_code"`
	Legal     bool       `json:"legal"`
	Issues    []string   `json:"issues,omitempty"`
	Rank      int        `json:"rank"`
}

// RecommendOptions 推荐选项
type RecommendOptions struct {
	// MaxRecommendations 最大推荐数量
	MaxRecommendations int
	// IncludeIllegal 为真时连同不合法的候选一起返回（带原因）
	IncludeIllegal bool
}

// DefaultRecommendOptions 返回默认选项
func DefaultRecommendOptions() *RecommendOptions {
	return &RecommendOptions{
		MaxRecommendations: 5,
		IncludeIllegal:     false,
	}
}

// Recommender 换班推荐器
//
// 针对某员工某天的班次, 评估花名册里其余员工作为互换对象的
// 可行性：双方新班次都要通过完整合法性判定, 且互换不得给
// 次日已排的班次制造夜班后接早班。
type Recommender struct{}

// NewRecommender 创建换班推荐器
func NewRecommender() *Recommender {
	return &Recommender{}
}

// Recommend 为 (emp, day) 列出可互换的员工
func (r *Recommender) Recommend(matrix *model.Matrix, emp string, day int, options *RecommendOptions) []Recommendation {
	if options == nil {
		options = DefaultRecommendOptions()
	}
	if !matrix.Has(emp) || day < 0 || day >= matrix.Days() {
		return nil
	}

	myCode := matrix.Get(emp, day)
	if myCode == model.Unset {
		myCode = model.Off
	}

	var candidates []Recommendation
	for _, other := range matrix.Employees() {
		if other == emp {
			continue
		}
		theirCode := matrix.Get(other, day)
		if theirCode == model.Unset {
			theirCode = model.Off
		}
		if theirCode == myCode {
			continue
		}

		rec := Recommendation{Employee: other, TheirCode: theirCode, Legal: true}
		r.evaluate(matrix, emp, other, day, myCode, theirCode, &rec)

		if rec.Legal || options.IncludeIllegal {
			candidates = append(candidates, rec)
		}
	}

	// 合法的排前面, 其余保持花名册顺序
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Legal && !candidates[j].Legal
	})
	if len(candidates) > options.MaxRecommendations {
		candidates = candidates[:options.MaxRecommendations]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates
}

// evaluate 检查一次互换的合法性并记录问题
func (r *Recommender) evaluate(matrix *model.Matrix, emp, other string, day int, myCode, theirCode model.Code, rec *Recommendation) {
	if !rule.Viable(matrix.Row(emp), day, theirCode) {
		rec.Legal = false
		rec.Issues = append(rec.Issues, "换入班次对发起人不合法")
	}
	if !rule.Viable(matrix.Row(other), day, myCode) {
		rec.Legal = false
		rec.Issues = append(rec.Issues, "换出班次对对方不合法")
	}

	// 互换后不能给次日已排的早班制造夜班前置
	if futureConflict(matrix.Row(emp), day, theirCode) {
		rec.Legal = false
		rec.Issues = append(rec.Issues, "发起人次日已排早班, 不能换入夜班")
	}
	if futureConflict(matrix.Row(other), day, myCode) {
		rec.Legal = false
		rec.Issues = append(rec.Issues, "对方次日已排早班, 不能换入夜班")
	}
}

// futureConflict 判断把 code 放到 day 后是否与次日已排班次冲突
func futureConflict(row []model.Code, day int, code model.Code) bool {
	if code != model.Night {
		return false
	}
	tmp := make([]model.Code, len(row))
	copy(tmp, row)
	tmp[day] = model.Night
	return rule.CreatesMorningAfterNight(tmp, day)
}
