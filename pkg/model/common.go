// Package model 定义排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MonthRef 月份引用（年+月）
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// String 返回 YYYY-MM 格式
func (m MonthRef) String() string {
	return time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// Valid 检查年月组合是否合法
func (m MonthRef) Valid() bool {
	return m.Month >= 1 && m.Month <= 12 && m.Year >= 2000 && m.Year <= 2100
}

// Days 返回该月天数
func (m MonthRef) Days() int {
	return DaysInMonth(m.Year, m.Month)
}

// Before 检查是否早于另一个月份
func (m MonthRef) Before(other MonthRef) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}
