package validator

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
)

// RecordFindingType 落库记录审计发现类型
type RecordFindingType string

const (
	RecordDuplicate    RecordFindingType = "duplicate"     // 同员工同日期重复记录
	RecordDayRange     RecordFindingType = "day_range"     // 天序号越界
	RecordDateMismatch RecordFindingType = "date_mismatch" // 日期与天序号不符
	RecordBadShift     RecordFindingType = "bad_shift"     // 落库了非在岗班次
)

// RecordFinding 落库记录审计发现
type RecordFinding struct {
	Type       RecordFindingType `json:"type"`
	EmployeeID uuid.UUID         `json:"employee_id"`
	Date       string            `json:"date"`
	Day        int               `json:"day"`
	Message    string            `json:"message"`
	Records    []uuid.UUID       `json:"records,omitempty"`
}

type recordKey struct {
	employee uuid.UUID
	date     string
}

// AuditRecords 审计某月的落库排班记录
//
// 存储是稀疏的：只允许在岗班次落库, 每名员工每天至多一条记录,
// shift_date 必须与 day 指向同一天。这里只查存储形态,
// 班次序列的合法性由矩阵验证器负责。
func AuditRecords(records []*model.Assignment, ref model.MonthRef) []RecordFinding {
	var findings []RecordFinding

	seen := make(map[recordKey][]uuid.UUID)
	for _, rec := range records {
		key := recordKey{employee: rec.EmployeeID, date: rec.ShiftDate}
		seen[key] = append(seen[key], rec.ID)

		if rec.Day < 1 || rec.Day > ref.Days() {
			findings = append(findings, RecordFinding{
				Type:       RecordDayRange,
				EmployeeID: rec.EmployeeID,
				Date:       rec.ShiftDate,
				Day:        rec.Day,
				Message:    fmt.Sprintf("天序号 %d 超出当月范围 1-%d", rec.Day, ref.Days()),
				Records:    []uuid.UUID{rec.ID},
			})
		} else if want := model.FormatDate(model.DateOfDay(ref.Year, ref.Month, rec.Day)); rec.ShiftDate != want {
			findings = append(findings, RecordFinding{
				Type:       RecordDateMismatch,
				EmployeeID: rec.EmployeeID,
				Date:       rec.ShiftDate,
				Day:        rec.Day,
				Message:    fmt.Sprintf("日期 %s 与天序号 %d 不符, 应为 %s", rec.ShiftDate, rec.Day, want),
				Records:    []uuid.UUID{rec.ID},
			})
		}

		if !rec.Shift.Working() {
			findings = append(findings, RecordFinding{
				Type:       RecordBadShift,
				EmployeeID: rec.EmployeeID,
				Date:       rec.ShiftDate,
				Day:        rec.Day,
				Message:    fmt.Sprintf("落库班次 %s 不是在岗班次", rec.Shift),
				Records:    []uuid.UUID{rec.ID},
			})
		}
	}

	for key, ids := range seen {
		if len(ids) < 2 {
			continue
		}
		findings = append(findings, RecordFinding{
			Type:       RecordDuplicate,
			EmployeeID: key.employee,
			Date:       key.date,
			Message:    fmt.Sprintf("同一员工在 %s 有 %d 条记录", key.date, len(ids)),
			Records:    ids,
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Date != findings[j].Date {
			return findings[i].Date < findings[j].Date
		}
		if findings[i].Type != findings[j].Type {
			return findings[i].Type < findings[j].Type
		}
		return findings[i].EmployeeID.String() < findings[j].EmployeeID.String()
	})
	return findings
}
