// Package model 定义排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// Code 班次代码
// 存储与接口均使用数值形式；语义以名称为准
type Code int

const (
	// Unset 表示尚未决定的格子，不会被持久化
	Unset Code = -1

	Off     Code = 0 // 休息
	Morning Code = 1 // 早班
	Evening Code = 2 // 中班
	Night   Code = 3 // 夜班
)

// WorkingCodes 按分配优先顺序排列的工作班次
var WorkingCodes = []Code{Morning, Evening, Night}

// 每日人数目标：早班至少2人，中班严格2人，夜班严格1人，休息恰好1人
const (
	TargetMorning = 2
	TargetEvening = 2
	TargetNight   = 1
	TargetOff     = 1
)

// MinRosterSize 生成排班所需的最少员工数
const MinRosterSize = TargetMorning + TargetEvening + TargetNight + TargetOff

// codeNames 班次代码到名称的映射
var codeNames = map[Code]string{
	Off:     "Off",
	Morning: "Morning",
	Evening: "Evening",
	Night:   "Night",
}

// String 返回班次名称
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Unset"
}

// Valid 检查是否为合法的持久化代码（0-3）
func (c Code) Valid() bool {
	return c >= Off && c <= Night
}

// Assigned 检查格子是否已分配（包括休息）
func (c Code) Assigned() bool {
	return c != Unset
}

// Working 检查是否为工作班次（早/中/夜）
func (c Code) Working() bool {
	return c == Morning || c == Evening || c == Night
}

// Target 返回该班次的每日人数目标（早班为下限，其余为精确值）
func (c Code) Target() int {
	switch c {
	case Morning:
		return TargetMorning
	case Evening:
		return TargetEvening
	case Night:
		return TargetNight
	case Off:
		return TargetOff
	}
	return 0
}

// CodeCount 各班次代码的人数统计
type CodeCount [4]int

// Inc 增加某班次计数
func (c *CodeCount) Inc(code Code) {
	if code.Valid() {
		c[code]++
	}
}

// Dec 减少某班次计数
func (c *CodeCount) Dec(code Code) {
	if code.Valid() {
		c[code]--
	}
}

// Of 返回某班次的计数
func (c CodeCount) Of(code Code) int {
	if !code.Valid() {
		return 0
	}
	return c[code]
}

// WorkingTotal 返回工作班次（早/中/夜）人数合计
func (c CodeCount) WorkingTotal() int {
	return c[Morning] + c[Evening] + c[Night]
}

// MeetsTargets 检查是否满足全部数值目标（N=1、E=2、M>=2）
func (c CodeCount) MeetsTargets() bool {
	return c[Night] == TargetNight && c[Evening] == TargetEvening && c[Morning] >= TargetMorning
}

// MeetsPresence 检查早/中/夜是否都至少有一人
func (c CodeCount) MeetsPresence() bool {
	return c[Morning] > 0 && c[Evening] > 0 && c[Night] > 0
}

// Assignment 一名员工某一天的班次记录
// 存储是稀疏的：没有记录的日期按休息处理
type Assignment struct {
	BaseModel
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	Day        int       `json:"day" db:"day"` // 当月第几天（从1开始）
	Shift      Code      `json:"shift" db:"shift"`
	ShiftDate  string    `json:"shift_date" db:"shift_date"` // YYYY-MM-DD
}
