// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lunban/lunban/internal/config"
	"github.com/lunban/lunban/internal/database"
	"github.com/lunban/lunban/internal/metrics"
	"github.com/lunban/lunban/internal/repository"
	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/pairing"
	"github.com/lunban/lunban/pkg/scheduler"
	"github.com/lunban/lunban/pkg/swap"
	"github.com/lunban/lunban/pkg/validator"
)

// ShiftHandler 排班处理器
type ShiftHandler struct {
	db          *database.DB
	employees   *repository.EmployeeRepository
	assignments *repository.AssignmentRepository
	generator   *scheduler.Generator
	recommender *swap.Recommender
	cfg         config.SchedulerConfig
}

// NewShiftHandler 创建排班处理器
func NewShiftHandler(
	db *database.DB,
	employees *repository.EmployeeRepository,
	assignments *repository.AssignmentRepository,
	cfg config.SchedulerConfig,
) *ShiftHandler {
	return &ShiftHandler{
		db:          db,
		employees:   employees,
		assignments: assignments,
		generator:   scheduler.NewGenerator(),
		recommender: swap.NewRecommender(),
		cfg:         cfg,
	}
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	Month      string                `json:"month"`
	Roster     []string              `json:"roster"`
	Replaced   int64                 `json:"replaced,omitempty"`
	Persisted  int                   `json:"persisted"`
	Statistics *scheduler.Statistics `json:"statistics"`
	Report     *validator.Report     `json:"report"`
	Duration   string                `json:"duration"`
}

// Generate 为某月生成整月排班并落库
//
// 缺省排当前月份; 过去的月份和超前一年以上的月份拒绝。该月已有
// 排班时需要 force=true 才会整月替换。落库只写工作班次, 休息日
// 不产生记录。
func (h *ShiftHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	ref, appErr := monthParam(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	current := currentMonth()
	if ref.Before(current) {
		respondError(w, errors.New(errors.CodeIllegalMonth, "不能为过去的月份排班"))
		return
	}
	if monthsApart(current, ref) > 12 {
		respondError(w, errors.New(errors.CodeIllegalMonth, "最多提前一年排班"))
		return
	}
	force := boolParam(r, "force")
	seed := int64Param(r, "seed")

	ctx := r.Context()
	existing, err := h.assignments.CountByMonth(ctx, ref)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询已有排班失败"))
		return
	}
	if existing > 0 && !force {
		respondError(w, errors.ScheduleConflict(ref.String(), existing))
		return
	}

	actives, err := h.employees.ListActive(ctx)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	roster := make([]string, len(actives))
	idByName := make(map[string]uuid.UUID, len(actives))
	for i, emp := range actives {
		roster[i] = emp.Name
		idByName[emp.Name] = emp.ID
	}

	result, appErr := h.runGenerator(ctx, ref, roster, seed)
	if appErr != nil {
		metrics.RecordGeneration(ref.String(), false, 0, 0)
		respondError(w, appErr)
		return
	}

	// 删旧写新在同一事务里完成, 失败时保留旧排班
	batch := assignmentsFromMatrix(result.Matrix, ref, idByName)
	var replaced int64
	err = h.db.Transaction(ctx, func(tx *sql.Tx) error {
		repo := repository.NewAssignmentRepository(tx)
		n, err := repo.DeleteMonth(ctx, ref)
		if err != nil {
			return err
		}
		replaced = n
		return repo.CreateBatch(ctx, batch)
	})
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "写入排班失败"))
		return
	}

	metrics.RecordGeneration(ref.String(), true, result.Statistics.Unresolved, result.Duration)

	respondJSON(w, http.StatusOK, GenerateResponse{
		Month:      ref.String(),
		Roster:     roster,
		Replaced:   replaced,
		Persisted:  len(batch),
		Statistics: result.Statistics,
		Report:     result.Report,
		Duration:   result.Duration.String(),
	})
}

// runGenerator 在超时保护下运行生成引擎
func (h *ShiftHandler) runGenerator(ctx context.Context, ref model.MonthRef, roster []string, seed int64) (*scheduler.Result, *errors.AppError) {
	timeout := h.cfg.GenerateTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result *scheduler.Result
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		result, err := h.generator.Generate(roster, scheduler.Options{TotalDays: ref.Days(), Seed: seed})
		ch <- outcome{result, err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, appError(out.err)
		}
		return out.result, nil
	case <-genCtx.Done():
		return nil, errors.New(errors.CodeTimeout, "排班计算超时")
	}
}

// MonthResponse 整月排班响应
type MonthResponse struct {
	Month       string                         `json:"month"`
	Count       int                            `json:"count"`
	Assignments []*repository.AssignmentRecord `json:"assignments"`
}

// Months 处理整月排班的查询与删除
func (h *ShiftHandler) Months(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listMonth(w, r)
	case http.MethodDelete:
		h.deleteMonth(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和DELETE方法"))
	}
}

func (h *ShiftHandler) listMonth(w http.ResponseWriter, r *http.Request) {
	ref, appErr := monthParam(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	records, err := h.assignments.ListByMonth(r.Context(), ref)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询排班失败"))
		return
	}
	if records == nil {
		records = []*repository.AssignmentRecord{}
	}

	respondJSON(w, http.StatusOK, MonthResponse{
		Month:       ref.String(),
		Count:       len(records),
		Assignments: records,
	})
}

func (h *ShiftHandler) deleteMonth(w http.ResponseWriter, r *http.Request) {
	ref, appErr := monthParam(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	if ref.Before(currentMonth()) {
		respondError(w, errors.New(errors.CodeIllegalMonth, "不能删除过去月份的排班"))
		return
	}

	deleted, err := h.assignments.DeleteMonth(r.Context(), ref)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除排班失败"))
		return
	}

	message := fmt.Sprintf("已删除 %d 条排班记录", deleted)
	if deleted == 0 {
		message = "该月没有排班记录"
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"month":   ref.String(),
		"deleted": deleted,
		"message": message,
	})
}

// DayShift 员工某天的班次
type DayShift struct {
	Day     int    `json:"day"`
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Shift   string `json:"shift"`
}

// EmployeeMonthResponse 员工整月排班响应
type EmployeeMonthResponse struct {
	EmployeeID     string         `json:"employee_id"`
	EmployeeName   string         `json:"employee_name"`
	Month          string         `json:"month"`
	Days           []DayShift     `json:"days"`
	ShiftCounts    map[string]int `json:"shift_counts"`
	VariedWeekoffs bool           `json:"varied_weekoffs"`
}

// EmployeeMonth 查询单个员工的整月排班
//
// 稀疏存储下没有记录的日期读作休息。当月休息日多于一天且落在
// 不止一个星期几上时置 varied_weekoffs 标记。
func (h *ShiftHandler) EmployeeMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	id, appErr := pathID(r.URL.Path, "/api/v1/shifts/employee/")
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	ref, appErr := monthParam(r)
	if appErr != nil {
		respondError(w, appErr)
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

	rows, err := h.assignments.ListByEmployeeMonth(ctx, id, ref)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工排班失败"))
		return
	}

	days := ref.Days()
	codes := make([]model.Code, days) // 零值即休息
	for _, a := range rows {
		if a.Day >= 1 && a.Day <= days {
			codes[a.Day-1] = a.Shift
		}
	}

	out := make([]DayShift, days)
	counts := make(map[string]int, 4)
	offWeekdays := make(map[time.Weekday]bool)
	for i, code := range codes {
		date := model.DateOfDay(ref.Year, ref.Month, i+1)
		out[i] = DayShift{
			Day:     i + 1,
			Date:    model.FormatDate(date),
			Weekday: date.Weekday().String(),
			Shift:   code.String(),
		}
		counts[code.String()]++
		if code == model.Off {
			offWeekdays[date.Weekday()] = true
		}
	}

	respondJSON(w, http.StatusOK, EmployeeMonthResponse{
		EmployeeID:     emp.ID.String(),
		EmployeeName:   emp.Name,
		Month:          ref.String(),
		Days:           out,
		ShiftCounts:    counts,
		VariedWeekoffs: counts[model.Off.String()] > 1 && len(offWeekdays) > 1,
	})
}

// PairingResponse 搭班报告响应
type PairingResponse struct {
	Month  string         `json:"month"`
	Report pairing.Report `json:"report"`
}

// Pairing 生成整月搭班报告
//
// 组内顺序随机, 传入 seed 可复现同一份报告。
func (h *ShiftHandler) Pairing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	ref, appErr := monthParam(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	matrix, appErr := storedMonthMatrix(r.Context(), h.assignments, ref)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	seed := int64Param(r, "seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	report := pairing.Build(matrix, ref, rand.New(rand.NewSource(seed)))

	respondJSON(w, http.StatusOK, PairingResponse{Month: ref.String(), Report: report})
}

// ValidateResponse 排班校验响应
type ValidateResponse struct {
	Month  string            `json:"month"`
	Clean  bool              `json:"clean"`
	Report *validator.Report `json:"report"`
}

// Validate 校验某月已存储的排班
//
// 该月没有任何记录的员工不参与校验。
func (h *ShiftHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}
	ref, appErr := monthParam(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	matrix, appErr := storedMonthMatrix(r.Context(), h.assignments, ref)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	report := validator.Validate(matrix)
	respondJSON(w, http.StatusOK, ValidateResponse{
		Month:  ref.String(),
		Clean:  report.Clean(),
		Report: report,
	})
}

// AdjustRequest 手工调班请求, days 与 shifts 为平行数组（天从1起）
type AdjustRequest struct {
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	EmployeeID      string `json:"employee_id"`
	Days            []int  `json:"days"`
	Shifts          []int  `json:"shifts"`
	EnforceLegality *bool  `json:"enforce_legality,omitempty"`
}

// AdjustItem 单天调整结果
type AdjustItem struct {
	Day      int    `json:"day"`
	Action   string `json:"action"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// Adjust 手工调整某员工若干天的班次
//
// 全部天数通过检查后才落库, 任何一天失败整个请求不产生写入。
// 是否做完整合法性把关默认取配置, 请求可单独覆盖。
func (h *ShiftHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if appErr := validateAdjustRequest(&req); appErr != nil {
		respondError(w, appErr)
		return
	}
	ref := model.MonthRef{Year: req.Year, Month: req.Month}
	if !ref.Valid() {
		respondError(w, errors.IllegalMonth(req.Year, req.Month))
		return
	}
	empID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		respondError(w, errors.InvalidInput("employee_id", "无效的员工ID格式"))
		return
	}

	ctx := r.Context()
	emp, err := h.employees.GetByID(ctx, empID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if emp == nil {
		respondError(w, errors.NotFound("员工", req.EmployeeID))
		return
	}

	matrix, _, appErr := h.rosterMatrix(ctx, ref)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	opts := swap.Options{EnforceLegality: h.cfg.EnforceManualLegality}
	if req.EnforceLegality != nil {
		opts.EnforceLegality = *req.EnforceLegality
	}

	results := make([]*swap.AdjustResult, 0, len(req.Days))
	for i, day := range req.Days {
		res, err := swap.Adjust(matrix, emp.Name, day-1, model.Code(req.Shifts[i]), opts)
		if err != nil {
			respondError(w, appError(err))
			return
		}
		results = append(results, res)
	}

	items := make([]AdjustItem, 0, len(results))
	for _, res := range results {
		if res.Action != swap.ActionUnchanged {
			if appErr := h.persistCell(ctx, empID, ref, res.Day, res.Current); appErr != nil {
				respondError(w, appErr)
				return
			}
		}
		metrics.RecordAdjustment(res.Action)
		items = append(items, AdjustItem{
			Day:      res.Day + 1,
			Action:   res.Action,
			Previous: res.Previous.String(),
			Current:  res.Current.String(),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"month":    ref.String(),
		"employee": emp.Name,
		"results":  items,
	})
}

// validateAdjustRequest 校验调班请求
func validateAdjustRequest(req *AdjustRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.EmployeeID == "" {
		ve.Add("employee_id", "员工ID不能为空")
	}
	if len(req.Days) == 0 {
		ve.Add("days", "调整天数不能为空")
	}
	if len(req.Days) != len(req.Shifts) {
		ve.Add("shifts", "days 与 shifts 长度必须一致")
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// SwapShiftRequest 互换请求（day 从1起）
type SwapShiftRequest struct {
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	EmployeeAID     string `json:"employee_a_id"`
	EmployeeBID     string `json:"employee_b_id"`
	Day             int    `json:"day"`
	EnforceLegality *bool  `json:"enforce_legality,omitempty"`
}

// SwapShiftResponse 互换响应
type SwapShiftResponse struct {
	Month     string `json:"month"`
	Day       int    `json:"day"`
	EmployeeA string `json:"employee_a"`
	EmployeeB string `json:"employee_b"`
	NewShiftA string `json:"new_shift_a"`
	NewShiftB string `json:"new_shift_b"`
}

// Swap 互换两名员工某天的班次
func (h *ShiftHandler) Swap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req SwapShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	ref := model.MonthRef{Year: req.Year, Month: req.Month}
	if !ref.Valid() {
		respondError(w, errors.IllegalMonth(req.Year, req.Month))
		return
	}
	idA, err := uuid.Parse(req.EmployeeAID)
	if err != nil {
		respondError(w, errors.InvalidInput("employee_a_id", "无效的员工ID格式"))
		return
	}
	idB, err := uuid.Parse(req.EmployeeBID)
	if err != nil {
		respondError(w, errors.InvalidInput("employee_b_id", "无效的员工ID格式"))
		return
	}

	ctx := r.Context()
	empA, err := h.employees.GetByID(ctx, idA)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if empA == nil {
		respondError(w, errors.NotFound("员工", req.EmployeeAID))
		return
	}
	empB, err := h.employees.GetByID(ctx, idB)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if empB == nil {
		respondError(w, errors.NotFound("员工", req.EmployeeBID))
		return
	}

	matrix, _, appErr := h.rosterMatrix(ctx, ref)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	opts := swap.Options{EnforceLegality: h.cfg.EnforceManualLegality}
	if req.EnforceLegality != nil {
		opts.EnforceLegality = *req.EnforceLegality
	}

	result, err := swap.Swap(matrix, empA.Name, empB.Name, req.Day-1, opts)
	if err != nil {
		metrics.RecordSwap(false)
		respondError(w, appError(err))
		return
	}

	if appErr := h.persistCell(ctx, empA.ID, ref, result.Day, result.NewCodeA); appErr != nil {
		respondError(w, appErr)
		return
	}
	if appErr := h.persistCell(ctx, empB.ID, ref, result.Day, result.NewCodeB); appErr != nil {
		respondError(w, appErr)
		return
	}
	metrics.RecordSwap(true)

	respondJSON(w, http.StatusOK, SwapShiftResponse{
		Month:     ref.String(),
		Day:       result.Day + 1,
		EmployeeA: empA.Name,
		EmployeeB: empB.Name,
		NewShiftA: result.NewCodeA.String(),
		NewShiftB: result.NewCodeB.String(),
	})
}

// SwapCandidatesResponse 换班推荐响应
type SwapCandidatesResponse struct {
	Month      string                `json:"month"`
	Day        int                   `json:"day"`
	Employee   string                `json:"employee"`
	MyShift    string                `json:"my_shift"`
	Candidates []swap.Recommendation `json:"candidates"`
}

// SwapCandidates 列出某员工某天可互换的对象
//
// 候选在完整合法性判定下评估; include_illegal=true 时不合法的
// 候选连同原因一起返回。
func (h *ShiftHandler) SwapCandidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	ref, appErr := monthParam(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	raw := r.URL.Query().Get("employee_id")
	if raw == "" {
		respondError(w, errors.InvalidInput("employee_id", "不能为空"))
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, errors.InvalidInput("employee_id", "无效的员工ID格式"))
		return
	}
	day := intParam(r, "day")
	if day < 1 || day > ref.Days() {
		respondError(w, errors.InvalidInput("day", "超出当月范围"))
		return
	}

	ctx := r.Context()
	emp, err := h.employees.GetByID(ctx, id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if emp == nil {
		respondError(w, errors.NotFound("员工", raw))
		return
	}

	matrix, _, appErr := h.rosterMatrix(ctx, ref)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	if !matrix.Has(emp.Name) {
		respondError(w, errors.NotFound("在职员工", emp.Name))
		return
	}

	opts := swap.DefaultRecommendOptions()
	if max := intParam(r, "max"); max > 0 {
		opts.MaxRecommendations = max
	}
	if boolParam(r, "include_illegal") {
		opts.IncludeIllegal = true
	}

	recs := h.recommender.Recommend(matrix, emp.Name, day-1, opts)
	if recs == nil {
		recs = []swap.Recommendation{}
	}
	myShift := matrix.Get(emp.Name, day-1)

	respondJSON(w, http.StatusOK, SwapCandidatesResponse{
		Month:      ref.String(),
		Day:        day,
		Employee:   emp.Name,
		MyShift:    myShift.String(),
		Candidates: recs,
	})
}

// rosterMatrix 以在职花名册为行装入某月排班
//
// 手工调整面向在职员工, 包括该月还没有任何记录的员工;
// 缺失的格子读作休息。
func (h *ShiftHandler) rosterMatrix(ctx context.Context, ref model.MonthRef) (*model.Matrix, map[string]uuid.UUID, *errors.AppError) {
	actives, err := h.employees.ListActive(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败")
	}
	names := make([]string, len(actives))
	ids := make(map[string]uuid.UUID, len(actives))
	for i, emp := range actives {
		names[i] = emp.Name
		ids[emp.Name] = emp.ID
	}

	matrix := model.NewMatrix(names, ref.Days())
	fillOff(matrix)

	records, err := h.assignments.ListByMonth(ctx, ref)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeDatabaseError, "查询排班失败")
	}
	for _, rec := range records {
		if matrix.Has(rec.EmployeeName) && rec.Day >= 1 && rec.Day <= ref.Days() {
			matrix.Set(rec.EmployeeName, rec.Day-1, rec.Shift)
		}
	}
	return matrix, ids, nil
}

// persistCell 把一个格子落库: 工作班次写行, 休息删行
func (h *ShiftHandler) persistCell(ctx context.Context, employeeID uuid.UUID, ref model.MonthRef, day int, code model.Code) *errors.AppError {
	date := model.FormatDate(model.DateOfDay(ref.Year, ref.Month, day+1))
	if code.Working() {
		a := &model.Assignment{
			EmployeeID: employeeID,
			Day:        day + 1,
			Shift:      code,
			ShiftDate:  date,
		}
		if err := h.assignments.Upsert(ctx, a); err != nil {
			return errors.Wrap(err, errors.CodeDatabaseError, "写入班次失败")
		}
		return nil
	}
	if err := h.assignments.DeleteByEmployeeDate(ctx, employeeID, date); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "删除班次失败")
	}
	return nil
}

// storedMonthMatrix 把某月已存储的排班装入矩阵
//
// 花名册取该月出现过记录的员工（按姓名排序）, 缺失的格子读作休息;
// 整月没有记录时返回 NotFound。
func storedMonthMatrix(ctx context.Context, assignments *repository.AssignmentRepository, ref model.MonthRef) (*model.Matrix, *errors.AppError) {
	records, err := assignments.ListByMonth(ctx, ref)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询排班失败")
	}
	if len(records) == 0 {
		return nil, errors.NotFound("排班", ref.String())
	}

	seen := make(map[string]bool)
	var names []string
	for _, rec := range records {
		if !seen[rec.EmployeeName] {
			seen[rec.EmployeeName] = true
			names = append(names, rec.EmployeeName)
		}
	}
	sort.Strings(names)

	matrix := model.NewMatrix(names, ref.Days())
	fillOff(matrix)
	for _, rec := range records {
		if rec.Day >= 1 && rec.Day <= ref.Days() {
			matrix.Set(rec.EmployeeName, rec.Day-1, rec.Shift)
		}
	}
	return matrix, nil
}

// fillOff 把矩阵所有格子置为休息
func fillOff(matrix *model.Matrix) {
	for _, name := range matrix.Employees() {
		for day := 0; day < matrix.Days(); day++ {
			matrix.Set(name, day, model.Off)
		}
	}
}

// assignmentsFromMatrix 把矩阵里的工作班次转成待落库的记录
func assignmentsFromMatrix(matrix *model.Matrix, ref model.MonthRef, idByName map[string]uuid.UUID) []*model.Assignment {
	var batch []*model.Assignment
	for _, emp := range matrix.Employees() {
		for day := 0; day < matrix.Days(); day++ {
			code := matrix.Get(emp, day)
			if !code.Working() {
				continue
			}
			batch = append(batch, &model.Assignment{
				EmployeeID: idByName[emp],
				Day:        day + 1,
				Shift:      code,
				ShiftDate:  model.FormatDate(model.DateOfDay(ref.Year, ref.Month, day+1)),
			})
		}
	}
	return batch
}

// monthParam 解析 year/month 查询参数, 缺省取当前月份
func monthParam(r *http.Request) (model.MonthRef, *errors.AppError) {
	ref := currentMonth()
	q := r.URL.Query()
	if y := q.Get("year"); y != "" {
		v, err := strconv.Atoi(y)
		if err != nil {
			return ref, errors.InvalidInput("year", "必须为整数")
		}
		ref.Year = v
	}
	if m := q.Get("month"); m != "" {
		v, err := strconv.Atoi(m)
		if err != nil {
			return ref, errors.InvalidInput("month", "必须为整数")
		}
		ref.Month = v
	}
	if !ref.Valid() {
		return ref, errors.IllegalMonth(ref.Year, ref.Month)
	}
	return ref, nil
}

// currentMonth 当前月份（UTC）
func currentMonth() model.MonthRef {
	now := time.Now().UTC()
	return model.MonthRef{Year: now.Year(), Month: int(now.Month())}
}

// monthsApart 两个月份相隔的月数
func monthsApart(from, to model.MonthRef) int {
	return (to.Year-from.Year)*12 + to.Month - from.Month
}

// intParam 解析整数查询参数, 缺省或非法返回 0
func intParam(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

// int64Param 解析64位整数查询参数, 缺省或非法返回 0
func int64Param(r *http.Request, name string) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// boolParam 解析布尔查询参数, 缺省或非法返回 false
func boolParam(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return false
	}
	return v
}

// pathID 从URL路径提取末段的UUID
func pathID(path, prefix string) (uuid.UUID, *errors.AppError) {
	raw := strings.TrimPrefix(path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		return uuid.Nil, errors.InvalidInput("id", "路径中缺少有效的ID")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.InvalidInput("id", "无效的ID格式")
	}
	return id, nil
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}

// appError 把任意错误归一为应用错误
func appError(err error) *errors.AppError {
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		return ae
	}
	return errors.Wrap(err, errors.CodeInternal, "内部错误")
}