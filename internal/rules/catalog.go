// Package rules 对外描述排班引擎实际执行的规则
//
// 目录内容与引擎行为一一对应：硬规则违反即非法（生成拒绝、手工调整
// 拒绝或验证报错），软规则是生成流水线的优化目标，偏离只产生警告。
package rules

// RuleParam 规则参数说明
type RuleParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, string
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
}

// RuleDefinition 单条规则定义
type RuleDefinition struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Kind        string      `json:"kind"`     // hard 硬规则, soft 软规则
	Category    string      `json:"category"` // 分类
	Description string      `json:"description"`
	Stages      []string    `json:"stages"` // 生效环节: generate/adjust/swap/validate
	Params      []RuleParam `json:"params"`
}

// CatalogResponse 规则目录响应
type CatalogResponse struct {
	Catalog []RuleDefinition `json:"catalog"`
}

// GetCatalog 返回完整规则目录
func GetCatalog() []RuleDefinition {
	return []RuleDefinition{
		// =====================================================
		// 休息保障
		// =====================================================
		{
			Name:        "rest_after_night_pair",
			DisplayName: "连夜后强制休息",
			Kind:        "hard",
			Category:    "休息保障",
			Description: "连续两天夜班之后的一天只能休息，任何工作班次都不合法。",
			Stages:      []string{"generate", "adjust", "swap"},
			Params:      []RuleParam{},
		},
		{
			Name:        "max_consecutive_nights",
			DisplayName: "夜班连班上限",
			Kind:        "hard",
			Category:    "休息保障",
			Description: "夜班最多连续两天，第三天不得再排夜班。",
			Stages:      []string{"generate", "adjust", "swap"},
			Params: []RuleParam{
				{Name: "max_nights", Type: "int", Description: "最大连续夜班天数", Default: "2"},
			},
		},
		{
			Name:        "daily_off",
			DisplayName: "每日休息名额",
			Kind:        "hard",
			Category:    "休息保障",
			Description: "每天必须恰好有一人休息，多于或少于一人都视为错误。",
			Stages:      []string{"generate", "validate"},
			Params: []RuleParam{
				{Name: "off_count", Type: "int", Description: "每日休息人数", Default: "1"},
			},
		},

		// =====================================================
		// 疲劳防护
		// =====================================================
		{
			Name:        "no_morning_after_night",
			DisplayName: "夜班次日禁早班",
			Kind:        "hard",
			Category:    "疲劳防护",
			Description: "夜班下班时间与早班上班时间相接，夜班次日不得排早班。",
			Stages:      []string{"generate", "adjust", "swap"},
			Params:      []RuleParam{},
		},
		{
			Name:        "no_morning_after_night_evening",
			DisplayName: "夜-中后禁早班",
			Kind:        "hard",
			Category:    "疲劳防护",
			Description: "夜班紧接中班已经连续晚下班两天，再排早班会压缩睡眠，禁止。",
			Stages:      []string{"generate", "adjust", "swap"},
			Params:      []RuleParam{},
		},
		{
			Name:        "fatigue_tail_guard",
			DisplayName: "疲劳尾序禁早班",
			Kind:        "hard",
			Category:    "疲劳防护",
			Description: "最近几天依次为 夜-中-中、夜-中-夜-中 或 中-夜-中-中 时，次日不得排早班。",
			Stages:      []string{"generate", "adjust", "swap"},
			Params:      []RuleParam{},
		},

		// =====================================================
		// 排班模式
		// =====================================================
		{
			Name:        "night_pairing",
			DisplayName: "夜班成对",
			Kind:        "soft",
			Category:    "排班模式",
			Description: "生成流水线把夜班安排为连续两天一组，后接休息日。手工调整可以打破成对结构，只要不触犯硬规则。",
			Stages:      []string{"generate"},
			Params:      []RuleParam{},
		},
		{
			Name:        "night_pair_gap",
			DisplayName: "夜班对最小间隔",
			Kind:        "soft",
			Category:    "排班模式",
			Description: "同一员工两组夜班之间保持最小间隔，避免夜班在月内扎堆。",
			Stages:      []string{"generate"},
			Params: []RuleParam{
				{Name: "min_gap_days", Type: "int", Description: "两组夜班的最小间隔(天)", Default: "10"},
			},
		},
		{
			Name:        "night_block_guarantee",
			DisplayName: "夜班经历保障",
			Kind:        "soft",
			Category:    "排班模式",
			Description: "每名员工当月至少经历一组连续夜班，整月没排到的由生成流水线补排一组。",
			Stages:      []string{"generate"},
			Params:      []RuleParam{},
		},

		// =====================================================
		// 覆盖要求
		// =====================================================
		{
			Name:        "shift_presence",
			DisplayName: "班次齐备",
			Kind:        "hard",
			Category:    "覆盖要求",
			Description: "只要当天有人上班，早、中、夜三种班次就都必须有人，缺一即为覆盖空缺。",
			Stages:      []string{"generate", "validate"},
			Params:      []RuleParam{},
		},
		{
			Name:        "morning_floor",
			DisplayName: "早班下限",
			Kind:        "soft",
			Category:    "覆盖要求",
			Description: "每天早班至少两人，早班吸收其余班次的富余人力，低于下限产生警告。",
			Stages:      []string{"generate", "validate"},
			Params: []RuleParam{
				{Name: "min_count", Type: "int", Description: "每日早班最少人数", Default: "2"},
			},
		},
		{
			Name:        "evening_quota",
			DisplayName: "中班定额",
			Kind:        "soft",
			Category:    "覆盖要求",
			Description: "每天中班目标恰好两人，偏离定额产生警告。",
			Stages:      []string{"generate", "validate"},
			Params: []RuleParam{
				{Name: "target", Type: "int", Description: "每日中班人数", Default: "2"},
			},
		},
		{
			Name:        "night_quota",
			DisplayName: "夜班定额",
			Kind:        "soft",
			Category:    "覆盖要求",
			Description: "每天夜班目标恰好一人，偏离定额产生警告。",
			Stages:      []string{"generate", "validate"},
			Params: []RuleParam{
				{Name: "target", Type: "int", Description: "每日夜班人数", Default: "1"},
			},
		},

		// =====================================================
		// 公平性
		// =====================================================
		{
			Name:        "workload_balance",
			DisplayName: "工作量均衡",
			Kind:        "soft",
			Category:    "公平性",
			Description: "生成时优先选择当月班次较少的员工，整月工作量在员工间尽量均摊，统计接口用基尼系数度量。",
			Stages:      []string{"generate"},
			Params:      []RuleParam{},
		},
		{
			Name:        "night_spread",
			DisplayName: "夜班均摊",
			Kind:        "soft",
			Category:    "公平性",
			Description: "夜班对按花名册顺序轮转，整月夜班数在员工间均摊。",
			Stages:      []string{"generate"},
			Params:      []RuleParam{},
		},

		// =====================================================
		// 花名册
		// =====================================================
		{
			Name:        "min_roster_size",
			DisplayName: "花名册下限",
			Kind:        "hard",
			Category:    "花名册",
			Description: "少于六人无法同时满足覆盖与休息规则，生成请求直接拒绝。",
			Stages:      []string{"generate"},
			Params: []RuleParam{
				{Name: "min_size", Type: "int", Description: "最少员工数", Default: "6"},
			},
		},
	}
}