// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
)

// AssignmentRecord 带员工姓名的班次记录
type AssignmentRecord struct {
	model.Assignment
	EmployeeName string `json:"employee_name"`
}

// AssignmentRepository 班次记录仓储
//
// 存储是稀疏的：只保存在岗班次（早/中/夜）。休息不落库,
// 调成休息等价于删除该员工当天的记录。
type AssignmentRepository struct {
	db DB
}

// NewAssignmentRepository 创建班次记录仓储
func NewAssignmentRepository(db DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// CreateBatch 批量写入班次记录
func (r *AssignmentRepository) CreateBatch(ctx context.Context, assignments []*model.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	var values []string
	var args []interface{}
	argIndex := 1

	now := time.Now()
	for _, a := range assignments {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.CreatedAt = now
		a.UpdatedAt = now

		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			argIndex, argIndex+1, argIndex+2, argIndex+3, argIndex+4, argIndex+5, argIndex+6,
		))
		args = append(args,
			a.ID, a.EmployeeID, a.Day, a.Shift, a.ShiftDate, a.CreatedAt, a.UpdatedAt,
		)
		argIndex += 7
	}

	query := fmt.Sprintf(`
		INSERT INTO shift_assignments (
			id, employee_id, day, shift, shift_date, created_at, updated_at
		) VALUES %s
	`, strings.Join(values, ", "))

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("批量写入班次记录失败: %w", err)
	}

	return nil
}

// Upsert 写入或覆盖某员工某天的班次
func (r *AssignmentRepository) Upsert(ctx context.Context, a *model.Assignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
		INSERT INTO shift_assignments (
			id, employee_id, day, shift, shift_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT uq_assignment_employee_date
		DO UPDATE SET day = EXCLUDED.day, shift = EXCLUDED.shift, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.EmployeeID, a.Day, a.Shift, a.ShiftDate, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("写入班次记录失败: %w", err)
	}

	return nil
}

// DeleteByEmployeeDate 删除某员工某天的班次记录
//
// 记录本就不存在时静默返回：稀疏存储下休息没有记录。
func (r *AssignmentRepository) DeleteByEmployeeDate(ctx context.Context, employeeID uuid.UUID, date string) error {
	query := `DELETE FROM shift_assignments WHERE employee_id = $1 AND shift_date = $2`

	if _, err := r.db.ExecContext(ctx, query, employeeID, date); err != nil {
		return fmt.Errorf("删除班次记录失败: %w", err)
	}
	return nil
}

// DeleteByEmployee 删除某员工的全部班次记录, 返回删除的行数
//
// 员工下线时级联使用。
func (r *AssignmentRepository) DeleteByEmployee(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	query := `DELETE FROM shift_assignments WHERE employee_id = $1`

	result, err := r.db.ExecContext(ctx, query, employeeID)
	if err != nil {
		return 0, fmt.Errorf("删除员工班次记录失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}

// ListByMonth 获取整月班次记录（带员工姓名, 按日期和花名册顺序）
func (r *AssignmentRepository) ListByMonth(ctx context.Context, ref model.MonthRef) ([]*AssignmentRecord, error) {
	first, last := monthRange(ref)
	query := `
		SELECT a.id, a.employee_id, a.day, a.shift,
			to_char(a.shift_date, 'YYYY-MM-DD'), a.created_at, a.updated_at, e.name
		FROM shift_assignments a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.shift_date >= $1 AND a.shift_date <= $2
		ORDER BY a.shift_date, e.name
	`

	rows, err := r.db.QueryContext(ctx, query, first, last)
	if err != nil {
		return nil, fmt.Errorf("查询整月班次失败: %w", err)
	}
	defer rows.Close()

	var records []*AssignmentRecord
	for rows.Next() {
		rec := &AssignmentRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.Day, &rec.Shift,
			&rec.ShiftDate, &rec.CreatedAt, &rec.UpdatedAt, &rec.EmployeeName,
		); err != nil {
			return nil, fmt.Errorf("扫描班次记录失败: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// ListByEmployeeMonth 获取某员工整月的班次记录
func (r *AssignmentRepository) ListByEmployeeMonth(ctx context.Context, employeeID uuid.UUID, ref model.MonthRef) ([]*model.Assignment, error) {
	first, last := monthRange(ref)
	query := `
		SELECT id, employee_id, day, shift,
			to_char(shift_date, 'YYYY-MM-DD'), created_at, updated_at
		FROM shift_assignments
		WHERE employee_id = $1 AND shift_date >= $2 AND shift_date <= $3
		ORDER BY shift_date
	`

	rows, err := r.db.QueryContext(ctx, query, employeeID, first, last)
	if err != nil {
		return nil, fmt.Errorf("查询员工班次失败: %w", err)
	}
	defer rows.Close()

	var assignments []*model.Assignment
	for rows.Next() {
		a := &model.Assignment{}
		if err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.Day, &a.Shift,
			&a.ShiftDate, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描班次记录失败: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}

// CountByMonth 统计某月已有的班次记录数
func (r *AssignmentRepository) CountByMonth(ctx context.Context, ref model.MonthRef) (int, error) {
	first, last := monthRange(ref)
	query := `SELECT COUNT(*) FROM shift_assignments WHERE shift_date >= $1 AND shift_date <= $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, first, last).Scan(&count); err != nil {
		return 0, fmt.Errorf("统计班次记录失败: %w", err)
	}
	return count, nil
}

// DeleteMonth 删除某月全部班次记录, 返回删除的行数
func (r *AssignmentRepository) DeleteMonth(ctx context.Context, ref model.MonthRef) (int64, error) {
	first, last := monthRange(ref)
	query := `DELETE FROM shift_assignments WHERE shift_date >= $1 AND shift_date <= $2`

	result, err := r.db.ExecContext(ctx, query, first, last)
	if err != nil {
		return 0, fmt.Errorf("删除整月班次失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}

// monthRange 返回某月首末两天的日期串
func monthRange(ref model.MonthRef) (string, string) {
	first := model.FormatDate(model.DateOfDay(ref.Year, ref.Month, 1))
	last := model.FormatDate(model.DateOfDay(ref.Year, ref.Month, ref.Days()))
	return first, last
}