// Package scheduler 提供轮班排班生成引擎
//
// 引擎对一份花名册和当月天数做整月排班：夜班对分配、休息日分配、
// 首28天初排、模式复制、数量平衡、覆盖保障、夜班对保障、终末修正
// 依次执行，最后由验证器产出结构化报告。引擎本身不做任何 I/O，
// 持久化在边界层完成。
package scheduler

import (
	"math/rand"
	"time"

	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/logger"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/phase"
	"github.com/lunban/lunban/pkg/validator"
)

// Options 生成选项
type Options struct {
	// TotalDays 当月天数
	TotalDays int `json:"total_days"`
	// Seed 随机种子, 固定种子可复现结果; 0 表示按时间播种
	Seed int64 `json:"seed,omitempty"`
}

// Statistics 生成统计
type Statistics struct {
	Employees  int `json:"employees"`
	Days       int `json:"days"`
	Assigned   int `json:"assigned"`
	Unresolved int `json:"unresolved"`
	Errors     int `json:"errors"`
	Warnings   int `json:"warnings"`
}

// Result 生成结果
type Result struct {
	Matrix     *model.Matrix     `json:"-"`
	Report     *validator.Report `json:"report"`
	Statistics *Statistics       `json:"statistics"`
	Duration   time.Duration     `json:"duration"`
}

// Generator 排班生成器
//
// 单次 Generate 调用独占一个矩阵, 生成器本身无状态, 可并发复用。
type Generator struct {
	phases []phase.Phase
	logger *logger.SchedulerLogger
}

// NewGenerator 创建使用标准流水线的生成器
func NewGenerator() *Generator {
	return &Generator{
		phases: phase.Default(),
		logger: logger.NewSchedulerLogger(),
	}
}

// NewGeneratorWithPhases 创建自定义流水线的生成器（测试用）
func NewGeneratorWithPhases(phases ...phase.Phase) *Generator {
	return &Generator{
		phases: phases,
		logger: logger.NewSchedulerLogger(),
	}
}

// Generate 为花名册生成整月排班
//
// 花名册少于最低人数直接拒绝, 不产出部分结果。返回的矩阵
// 可能包含验证报告中标记的未解决格子, 调用方自行决定取舍。
func (g *Generator) Generate(roster []string, opts Options) (*Result, error) {
	if len(roster) < model.MinRosterSize {
		return nil, errors.InsufficientRoster(len(roster), model.MinRosterSize)
	}
	if opts.TotalDays < 1 {
		return nil, errors.InvalidInput("total_days", "必须为正整数")
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := time.Now()
	g.logger.StartGeneration(len(roster), opts.TotalDays)

	matrix := model.NewMatrix(roster, opts.TotalDays)
	ctx := phase.NewContext(matrix, rng)
	if err := phase.NewPipeline(g.phases...).Run(ctx); err != nil {
		return nil, err
	}

	report := validator.Validate(matrix)
	duration := time.Since(start)
	g.logger.GenerationComplete(duration, report.ErrorCount(), report.WarningCount())

	return &Result{
		Matrix:     matrix,
		Report:     report,
		Statistics: buildStatistics(matrix, report),
		Duration:   duration,
	}, nil
}

// Validate 对现有矩阵做只读校验
func (g *Generator) Validate(matrix *model.Matrix) *validator.Report {
	return validator.Validate(matrix)
}

// buildStatistics 汇总生成结果的统计数据
func buildStatistics(matrix *model.Matrix, report *validator.Report) *Statistics {
	unresolved := 0
	for day := 0; day < matrix.Days(); day++ {
		unresolved += matrix.UnsetCount(day)
	}
	total := matrix.Size() * matrix.Days()
	return &Statistics{
		Employees:  matrix.Size(),
		Days:       matrix.Days(),
		Assigned:   total - unresolved,
		Unresolved: unresolved,
		Errors:     report.ErrorCount(),
		Warnings:   report.WarningCount(),
	}
}
