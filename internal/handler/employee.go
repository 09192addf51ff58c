package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/lunban/lunban/internal/repository"
	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/model"
)

// EmployeeHandler 员工管理处理器
type EmployeeHandler struct {
	employees   *repository.EmployeeRepository
	assignments *repository.AssignmentRepository
}

// NewEmployeeHandler 创建员工管理处理器
func NewEmployeeHandler(employees *repository.EmployeeRepository, assignments *repository.AssignmentRepository) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, assignments: assignments}
}

// Collection 处理员工集合的创建与列表
func (h *EmployeeHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST和GET方法"))
	}
}

// Item 处理单个员工的查询、更新与删除
func (h *EmployeeHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r.URL.Path, "/api/v1/employees/")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET、PUT和DELETE方法"))
	}
}

// CreateEmployeeRequest 创建员工请求
type CreateEmployeeRequest struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	HireDate string `json:"hire_date,omitempty"`
}

// create 创建员工
//
// 姓名必须唯一: 排班矩阵和搭班报告都以姓名为键。
func (h *EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if appErr := validateCreateEmployee(&req); appErr != nil {
		respondError(w, appErr)
		return
	}

	ctx := r.Context()
	byName, err := h.employees.GetByName(ctx, req.Name)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if byName != nil {
		respondError(w, errors.New(errors.CodeAlreadyExists,
			fmt.Sprintf("员工 '%s' 已存在", req.Name)))
		return
	}
	byCode, err := h.employees.GetByCode(ctx, req.Code)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if byCode != nil {
		respondError(w, errors.New(errors.CodeAlreadyExists,
			fmt.Sprintf("工号 '%s' 已被占用", req.Code)))
		return
	}

	emp := &model.Employee{
		Name:     req.Name,
		Code:     req.Code,
		Phone:    req.Phone,
		Email:    req.Email,
		Role:     req.Role,
		Status:   "active",
		HireDate: req.HireDate,
	}
	if err := h.employees.Create(ctx, emp); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建员工失败"))
		return
	}

	respondJSON(w, http.StatusCreated, emp)
}

// validateCreateEmployee 校验创建员工请求
func validateCreateEmployee(req *CreateEmployeeRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.Name == "" {
		ve.Add("name", "姓名不能为空")
	}
	if req.Code == "" {
		ve.Add("code", "工号不能为空")
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// list 员工列表, 支持状态/角色过滤和关键字搜索
func (h *EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.DefaultListFilter()
	if s := q.Get("status"); s != "" {
		filter = filter.WithStatus(s)
	}
	if role := q.Get("role"); role != "" {
		filter = filter.WithRole(role)
	}
	filter.Search = q.Get("search")
	if limit := intParam(r, "limit"); limit > 0 {
		filter = filter.WithLimit(limit)
	}
	if offset := intParam(r, "offset"); offset > 0 {
		filter = filter.WithOffset(offset)
	}

	employees, total, err := h.employees.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工列表失败"))
		return
	}
	if employees == nil {
		employees = []*model.Employee{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":     total,
		"count":     len(employees),
		"employees": employees,
	})
}

func (h *EmployeeHandler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	emp, err := h.employees.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if emp == nil {
		respondError(w, errors.NotFound("员工", id.String()))
		return
	}
	respondJSON(w, http.StatusOK, emp)
}

// UpdateEmployeeRequest 更新员工请求, 留空的字段不变更
type UpdateEmployeeRequest struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Status   string `json:"status,omitempty"`
	HireDate string `json:"hire_date,omitempty"`
}

func (h *EmployeeHandler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	ctx := r.Context()
	emp, err := h.employees.GetByID(ctx, id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if emp == nil {
		respondError(w, errors.NotFound("员工", id.String()))
		return
	}

	if req.Name != "" && req.Name != emp.Name {
		dup, err := h.employees.GetByName(ctx, req.Name)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
			return
		}
		if dup != nil {
			respondError(w, errors.New(errors.CodeAlreadyExists,
				fmt.Sprintf("员工 '%s' 已存在", req.Name)))
			return
		}
		emp.Name = req.Name
	}
	if req.Phone != "" {
		emp.Phone = req.Phone
	}
	if req.Email != "" {
		emp.Email = req.Email
	}
	if req.Role != "" {
		emp.Role = req.Role
	}
	if req.HireDate != "" {
		emp.HireDate = req.HireDate
	}
	if req.Status != "" {
		switch req.Status {
		case "active", "inactive", "leave":
			emp.Status = req.Status
		default:
			respondError(w, errors.InvalidInput("status", "必须为 active/inactive/leave"))
			return
		}
	}

	if err := h.employees.Update(ctx, emp); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新员工失败"))
		return
	}
	respondJSON(w, http.StatusOK, emp)
}

// delete 级联删除班次记录后软删除员工
func (h *EmployeeHandler) delete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	emp, err := h.employees.GetByID(ctx, id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if emp == nil {
		respondError(w, errors.NotFound("员工", id.String()))
		return
	}

	removed, err := h.assignments.DeleteByEmployee(ctx, id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除员工班次失败"))
		return
	}
	if err := h.employees.Delete(ctx, id); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除员工失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"deleted":             emp.Name,
		"removed_assignments": removed,
	})
}