package handler

import (
	"net/http"

	"github.com/lunban/lunban/internal/metrics"
	"github.com/lunban/lunban/internal/repository"
	"github.com/lunban/lunban/internal/rules"
	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/stats"
)

// ReportHandler 统计报表处理器
type ReportHandler struct {
	assignments *repository.AssignmentRepository
	coverage    *stats.CoverageAnalyzer
	fairness    *stats.FairnessAnalyzer
}

// NewReportHandler 创建统计报表处理器
func NewReportHandler(assignments *repository.AssignmentRepository) *ReportHandler {
	return &ReportHandler{
		assignments: assignments,
		coverage:    stats.NewCoverageAnalyzer(),
		fairness:    stats.NewFairnessAnalyzer(),
	}
}

// CoverageResponse 覆盖率响应
type CoverageResponse struct {
	Month string                 `json:"month"`
	Data  *stats.CoverageMetrics `json:"data"`
}

// Coverage 某月排班的覆盖率分析
func (h *ReportHandler) Coverage(w http.ResponseWriter, r *http.Request) {
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

	m := h.coverage.Analyze(matrix, ref)
	metrics.SetCoverageRate(ref.String(), m.OverallCoverage)

	respondJSON(w, http.StatusOK, CoverageResponse{Month: ref.String(), Data: m})
}

// FairnessResponse 公平性响应
type FairnessResponse struct {
	Month string                 `json:"month"`
	Data  *stats.FairnessMetrics `json:"data"`
}

// Fairness 某月排班的公平性分析
func (h *ReportHandler) Fairness(w http.ResponseWriter, r *http.Request) {
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

	m := h.fairness.Analyze(matrix, ref)
	month := ref.String()
	metrics.SetFairnessGini(month, "workload", m.WorkloadGini)
	metrics.SetFairnessGini(month, "night", m.NightShiftGini)
	metrics.SetFairnessGini(month, "off", m.OffDayGini)
	metrics.SetOverallScore(month, m.OverallFairnessScore)

	respondJSON(w, http.StatusOK, FairnessResponse{Month: month, Data: m})
}

// Rules 排班规则目录
func (h *ReportHandler) Rules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	respondJSON(w, http.StatusOK, rules.CatalogResponse{Catalog: rules.GetCatalog()})
}