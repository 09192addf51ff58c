// Package model 定义排班引擎的核心数据模型
package model

// Employee 员工
type Employee struct {
	BaseModel
	Name     string `json:"name" db:"name"`
	Code     string `json:"code" db:"code"`
	Phone    string `json:"phone,omitempty" db:"phone"`
	Email    string `json:"email,omitempty" db:"email"`
	Role     string `json:"role" db:"role"`
	Status   string `json:"status" db:"status"` // active/inactive/leave
	HireDate string `json:"hire_date,omitempty" db:"hire_date"`
}

// IsActive 检查员工是否在职
func (e *Employee) IsActive() bool {
	return e.Status == "active"
}
