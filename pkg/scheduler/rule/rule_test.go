package rule

import (
	"testing"

	"github.com/lunban/lunban/pkg/model"
)

// row 构建一行班次序列, 其余格子为 Unset
func row(days int, prefix ...model.Code) []model.Code {
	r := make([]model.Code, days)
	for i := range r {
		r[i] = model.Unset
	}
	copy(r, prefix)
	return r
}

func TestViable_Basic(t *testing.T) {
	tests := []struct {
		name     string
		row      []model.Code
		day      int
		code     model.Code
		expected bool
	}{
		{"休息永远合法", row(7, model.Night, model.Night), 2, model.Off, true},
		{"未分配不合法", row(7), 0, model.Unset, false},
		{"越界天数不合法", row(7), 7, model.Morning, false},
		{"负数天不合法", row(7), -1, model.Morning, false},
		{"空白历史早班合法", row(7), 0, model.Morning, true},
		{"空白历史夜班合法", row(7), 0, model.Night, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Viable(tt.row, tt.day, tt.code); result != tt.expected {
				t.Errorf("Viable() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestViable_AfterNightPair(t *testing.T) {
	// 连续两天夜班后只能休息
	r := row(7, model.Night, model.Night)

	if Viable(r, 2, model.Morning) {
		t.Error("夜夜之后不应允许早班")
	}
	if Viable(r, 2, model.Evening) {
		t.Error("夜夜之后不应允许中班")
	}
	if Viable(r, 2, model.Night) {
		t.Error("夜夜之后不应允许第三个夜班")
	}
	if !Viable(r, 2, model.Off) {
		t.Error("夜夜之后应允许休息")
	}
}

func TestViable_MorningAfterNight(t *testing.T) {
	r := row(7, model.Night)

	if Viable(r, 1, model.Morning) {
		t.Error("夜班次日不应允许早班")
	}
	if !Viable(r, 1, model.Evening) {
		t.Error("夜班次日应允许中班")
	}
	if !Viable(r, 1, model.Night) {
		t.Error("夜班次日应允许第二个夜班")
	}
}

func TestViable_MorningAfterNightEvening(t *testing.T) {
	// 夜-中 之后不得排早班
	r := row(7, model.Night, model.Evening)

	if Viable(r, 2, model.Morning) {
		t.Error("夜-中之后不应允许早班")
	}
	if !Viable(r, 2, model.Evening) {
		t.Error("夜-中之后应允许中班")
	}
	if !Viable(r, 2, model.Night) {
		t.Error("夜-中之后应允许夜班")
	}
}

func TestViable_FatiguePatterns(t *testing.T) {
	tests := []struct {
		name    string
		history []model.Code
	}{
		{"夜中中", []model.Code{model.Night, model.Evening, model.Evening}},
		{"夜中夜中", []model.Code{model.Night, model.Evening, model.Night, model.Evening}},
		{"中夜中中", []model.Code{model.Evening, model.Night, model.Evening, model.Evening}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := row(10, tt.history...)
			day := len(tt.history)
			if Viable(r, day, model.Morning) {
				t.Errorf("%s 之后不应允许早班", tt.name)
			}
			if !Viable(r, day, model.Evening) {
				t.Errorf("%s 之后应允许中班", tt.name)
			}
		})
	}
}

func TestViable_PatternWithUnsetGap(t *testing.T) {
	// 历史中存在未分配格子时模式不成立
	r := row(10)
	r[0] = model.Night
	r[1] = model.Evening
	// r[2] 保持 Unset
	if !Viable(r, 3, model.Morning) {
		t.Error("历史存在未分配格子时疲劳模式不应匹配")
	}
}

func TestViable_EveningEveningAllowsMorning(t *testing.T) {
	// 中-中 本身不阻止早班, 必须有前置夜班
	r := row(7, model.Evening, model.Evening)
	if !Viable(r, 2, model.Morning) {
		t.Error("中-中之后应允许早班")
	}
}

func TestViable_OffResetsHistory(t *testing.T) {
	// 夜-休 之后早班合法
	r := row(7, model.Night, model.Off)
	if !Viable(r, 2, model.Morning) {
		t.Error("夜-休之后应允许早班")
	}
}

func TestCreatesMorningAfterNight(t *testing.T) {
	r := row(7, model.Night, model.Morning)
	if !CreatesMorningAfterNight(r, 0) {
		t.Error("夜班次日已排早班, 应检出冲突")
	}

	r2 := row(7, model.Night, model.Evening)
	if CreatesMorningAfterNight(r2, 0) {
		t.Error("夜班次日为中班, 不应检出冲突")
	}

	// 月末最后一天没有次日
	r3 := row(7)
	r3[6] = model.Night
	if CreatesMorningAfterNight(r3, 6) {
		t.Error("最后一天不应检出冲突")
	}
}
