// Package model 定义排班引擎的核心数据模型
package model

// Matrix 一次生成运行的排班矩阵
// 每名员工对应一行长度为 days 的班次序列；未决定的格子为 Unset。
// 矩阵由单次生成/调整调用独占，引擎内部不加锁。
type Matrix struct {
	days  int
	order []string
	rows  map[string][]Code
}

// NewMatrix 创建空矩阵，所有格子为 Unset
// roster 的顺序决定遍历顺序，只影响并列时的取舍
func NewMatrix(roster []string, days int) *Matrix {
	m := &Matrix{
		days:  days,
		order: make([]string, len(roster)),
		rows:  make(map[string][]Code, len(roster)),
	}
	copy(m.order, roster)
	for _, emp := range roster {
		row := make([]Code, days)
		for i := range row {
			row[i] = Unset
		}
		m.rows[emp] = row
	}
	return m
}

// Days 返回矩阵天数
func (m *Matrix) Days() int {
	return m.days
}

// Employees 返回按花名册顺序排列的员工列表
func (m *Matrix) Employees() []string {
	result := make([]string, len(m.order))
	copy(result, m.order)
	return result
}

// Size 返回员工数
func (m *Matrix) Size() int {
	return len(m.order)
}

// Has 检查员工是否在矩阵中
func (m *Matrix) Has(emp string) bool {
	_, ok := m.rows[emp]
	return ok
}

// Row 返回员工的班次序列（底层切片，修改请通过 Set）
func (m *Matrix) Row(emp string) []Code {
	return m.rows[emp]
}

// Get 返回某员工某天的班次
func (m *Matrix) Get(emp string, day int) Code {
	row, ok := m.rows[emp]
	if !ok || day < 0 || day >= m.days {
		return Unset
	}
	return row[day]
}

// Set 设置某员工某天的班次
func (m *Matrix) Set(emp string, day int, code Code) {
	row, ok := m.rows[emp]
	if !ok || day < 0 || day >= m.days {
		return
	}
	row[day] = code
}

// DayCount 重新统计某天各班次人数（从不跨修改缓存）
func (m *Matrix) DayCount(day int) CodeCount {
	var count CodeCount
	for _, emp := range m.order {
		count.Inc(m.rows[emp][day])
	}
	return count
}

// UnsetCount 返回某天未分配的格子数
func (m *Matrix) UnsetCount(day int) int {
	n := 0
	for _, emp := range m.order {
		if m.rows[emp][day] == Unset {
			n++
		}
	}
	return n
}

// Tally 统计某员工整月各班次次数
func (m *Matrix) Tally(emp string) CodeCount {
	var count CodeCount
	for _, code := range m.rows[emp] {
		count.Inc(code)
	}
	return count
}

// TallyAll 统计所有员工整月各班次次数
func (m *Matrix) TallyAll() map[string]CodeCount {
	result := make(map[string]CodeCount, len(m.order))
	for _, emp := range m.order {
		result[emp] = m.Tally(emp)
	}
	return result
}

// HasNightPair 检查员工是否存在连续两天夜班
func (m *Matrix) HasNightPair(emp string) bool {
	row := m.rows[emp]
	for d := 0; d+1 < m.days; d++ {
		if row[d] == Night && row[d+1] == Night {
			return true
		}
	}
	return false
}

// Clone 复制矩阵
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{
		days:  m.days,
		order: make([]string, len(m.order)),
		rows:  make(map[string][]Code, len(m.rows)),
	}
	copy(c.order, m.order)
	for emp, row := range m.rows {
		newRow := make([]Code, len(row))
		copy(newRow, row)
		c.rows[emp] = newRow
	}
	return c
}

// Equal 比较两个矩阵是否完全一致
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || m.days != other.days || len(m.order) != len(other.order) {
		return false
	}
	for i, emp := range m.order {
		if other.order[i] != emp {
			return false
		}
		otherRow, ok := other.rows[emp]
		if !ok {
			return false
		}
		for d, code := range m.rows[emp] {
			if otherRow[d] != code {
				return false
			}
		}
	}
	return true
}
