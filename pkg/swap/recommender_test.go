package swap

import (
	"testing"

	"github.com/lunban/lunban/pkg/model"
)

// recommenderMatrix 第 0 天张三值夜班, 第 1 天花名册各有安排
//
//	张三: 夜 休   李四: 休 早   王五: 早 中
//	赵六: 中 休   钱七: 休 夜   孙八: 早 早
func recommenderMatrix(t *testing.T) *model.Matrix {
	t.Helper()
	return buildMatrix(t, 2, map[string][]model.Code{
		"张三": {model.Night, model.Off},
		"李四": {model.Off, model.Morning},
		"王五": {model.Morning, model.Evening},
		"赵六": {model.Evening, model.Off},
		"钱七": {model.Off, model.Night},
		"孙八": {model.Morning, model.Morning},
	})
}

func TestRecommend_LegalFirst(t *testing.T) {
	m := recommenderMatrix(t)
	r := NewRecommender()

	// 张三第 0 天夜班: 第 1 天不能换入早班(李四/孙八),
	// 换入中班(王五)或第二个夜班(钱七)都合法, 赵六与张三同为休息被跳过
	recs := r.Recommend(m, "张三", 1, &RecommendOptions{
		MaxRecommendations: 10,
		IncludeIllegal:     true,
	})

	if len(recs) != 4 {
		t.Fatalf("期望 4 个候选, 实际 %d", len(recs))
	}

	wantOrder := []struct {
		emp   string
		code  model.Code
		legal bool
	}{
		{"王五", model.Evening, true},
		{"钱七", model.Night, true},
		{"李四", model.Morning, false},
		{"孙八", model.Morning, false},
	}
	for i, want := range wantOrder {
		got := recs[i]
		if got.Employee != want.emp {
			t.Errorf("第 %d 位候选错误: 期望 %s, 实际 %s", i+1, want.emp, got.Employee)
		}
		if got.TheirCode != want.code {
			t.Errorf("候选 %s 的班次错误: %s", want.emp, got.TheirCode)
		}
		if got.Legal != want.legal {
			t.Errorf("候选 %s 合法性错误: %v", want.emp, got.Legal)
		}
		if got.Rank != i+1 {
			t.Errorf("候选 %s 名次错误: %d", want.emp, got.Rank)
		}
	}
	if len(recs[2].Issues) == 0 {
		t.Error("不合法的候选应带原因")
	}
}

func TestRecommend_DefaultExcludesIllegal(t *testing.T) {
	m := recommenderMatrix(t)
	r := NewRecommender()

	recs := r.Recommend(m, "张三", 1, nil)

	if len(recs) != 2 {
		t.Fatalf("默认只返回合法候选, 期望 2 个, 实际 %d", len(recs))
	}
	for _, rec := range recs {
		if !rec.Legal {
			t.Errorf("默认结果混入了不合法候选: %s", rec.Employee)
		}
		if len(rec.Issues) != 0 {
			t.Errorf("合法候选不应带原因: %v", rec.Issues)
		}
	}
}

func TestRecommend_MaxTruncation(t *testing.T) {
	m := recommenderMatrix(t)
	r := NewRecommender()

	recs := r.Recommend(m, "张三", 1, &RecommendOptions{
		MaxRecommendations: 1,
		IncludeIllegal:     true,
	})

	if len(recs) != 1 {
		t.Fatalf("期望截断到 1 个, 实际 %d", len(recs))
	}
	if recs[0].Employee != "王五" || recs[0].Rank != 1 {
		t.Errorf("截断后应保留排名第一的候选: %s (rank %d)", recs[0].Employee, recs[0].Rank)
	}
}

func TestRecommend_FutureConflictForCandidate(t *testing.T) {
	// 李四次日已排早班, 接过张三的夜班会造成夜班后接早班
	m := buildMatrix(t, 3, map[string][]model.Code{
		"张三": {model.Off, model.Night, model.Off},
		"李四": {model.Off, model.Evening, model.Morning},
	})
	r := NewRecommender()

	recs := r.Recommend(m, "张三", 1, &RecommendOptions{
		MaxRecommendations: 10,
		IncludeIllegal:     true,
	})

	var rec *Recommendation
	for i := range recs {
		if recs[i].Employee == "李四" {
			rec = &recs[i]
		}
	}
	if rec == nil {
		t.Fatal("李四应出现在候选里")
	}
	if rec.Legal {
		t.Error("接过夜班会与次日早班冲突, 不应合法")
	}
	found := false
	for _, issue := range rec.Issues {
		if issue == "对方次日已排早班, 不能换入夜班" {
			found = true
		}
	}
	if !found {
		t.Errorf("缺少次日冲突的原因: %v", rec.Issues)
	}
}

func TestRecommend_FutureConflictForRequester(t *testing.T) {
	// 张三次日已排早班, 换入钱七的夜班同样冲突
	m := buildMatrix(t, 3, map[string][]model.Code{
		"张三": {model.Off, model.Evening, model.Morning},
		"钱七": {model.Off, model.Night, model.Off},
	})
	r := NewRecommender()

	recs := r.Recommend(m, "张三", 1, &RecommendOptions{
		MaxRecommendations: 10,
		IncludeIllegal:     true,
	})

	var rec *Recommendation
	for i := range recs {
		if recs[i].Employee == "钱七" {
			rec = &recs[i]
		}
	}
	if rec == nil {
		t.Fatal("钱七应出现在候选里")
	}
	if rec.Legal {
		t.Error("张三次日已排早班, 换入夜班不应合法")
	}
}

func TestRecommend_SameEffectiveCodeSkipped(t *testing.T) {
	// 未分配格子按休息比较: 全员休息时没有可换对象
	m := buildMatrix(t, 1, map[string][]model.Code{
		"李四": {model.Off},
	})
	r := NewRecommender()

	if recs := r.Recommend(m, "张三", 0, nil); len(recs) != 0 {
		t.Errorf("全员同班次时应无候选: %d", len(recs))
	}
}

func TestRecommend_InvalidTarget(t *testing.T) {
	m := recommenderMatrix(t)
	r := NewRecommender()

	if recs := r.Recommend(m, "路人甲", 1, nil); recs != nil {
		t.Error("未知员工应返回空")
	}
	if recs := r.Recommend(m, "张三", 9, nil); recs != nil {
		t.Error("越界天数应返回空")
	}
}
