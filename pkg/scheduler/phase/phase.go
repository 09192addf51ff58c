// Package phase 实现排班流水线的各个阶段
//
// 各阶段按固定顺序依次修改同一个排班矩阵：夜班对分配、休息日分配、
// 首28天初排、28天模式复制、数量平衡、覆盖保障、夜班对保障、终末修正。
// 后面的阶段可以推翻前面阶段的决定，这是一条修复流水线而非单次遍历。
package phase

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/logger"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/rule"
)

// Phase 流水线阶段
type Phase interface {
	// Name 返回阶段名称
	Name() string

	// Run 在共享上下文上执行阶段逻辑
	Run(ctx *Context) error
}

// Context 流水线共享上下文
//
// Tallies 是各阶段维护的增量计数，不保证与矩阵实时一致：
// 夜班对分配不计数，平衡阶段开始时会整体重算。
// OffsPerDay 记录每天已分配的休息名额（每天恰好一人休息）。
type Context struct {
	Matrix     *model.Matrix
	Roster     []string
	Tallies    map[string]*model.CodeCount
	OffsPerDay []int
	RNG        *rand.Rand
	Log        *logger.SchedulerLogger
}

// NewContext 创建流水线上下文
func NewContext(matrix *model.Matrix, rng *rand.Rand) *Context {
	roster := matrix.Employees()
	tallies := make(map[string]*model.CodeCount, len(roster))
	for _, emp := range roster {
		tallies[emp] = &model.CodeCount{}
	}
	return &Context{
		Matrix:     matrix,
		Roster:     roster,
		Tallies:    tallies,
		OffsPerDay: make([]int, matrix.Days()),
		RNG:        rng,
		Log:        logger.NewSchedulerLogger(),
	}
}

// Viable 判断员工某天放置某班次是否合法
func (c *Context) Viable(emp string, day int, code model.Code) bool {
	return rule.Viable(c.Matrix.Row(emp), day, code)
}

// RecomputeTallies 按矩阵现状重算所有员工的班次计数
func (c *Context) RecomputeTallies() {
	for _, emp := range c.Roster {
		t := c.Matrix.Tally(emp)
		c.Tallies[emp] = &t
	}
}

// Move 把员工某天的班次从 from 改为 to 并同步计数
func (c *Context) Move(emp string, day int, from, to model.Code) {
	c.Matrix.Set(emp, day, to)
	t := c.Tallies[emp]
	t.Dec(from)
	t.Inc(to)
}

// Shuffle 原地打乱员工列表
func (c *Context) Shuffle(names []string) {
	c.RNG.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})
}

// Choice 随机挑选一名员工
func (c *Context) Choice(names []string) string {
	return names[c.RNG.Intn(len(names))]
}

// Holders 返回某天持有某班次的员工（花名册顺序）
func (c *Context) Holders(day int, code model.Code) []string {
	var result []string
	for _, emp := range c.Roster {
		if c.Matrix.Get(emp, day) == code {
			result = append(result, emp)
		}
	}
	return result
}

// Pipeline 按顺序执行各阶段
type Pipeline struct {
	phases []Phase
}

// NewPipeline 创建流水线
func NewPipeline(phases ...Phase) *Pipeline {
	return &Pipeline{phases: phases}
}

// Default 返回标准的生成阶段序列
func Default() []Phase {
	return []Phase{
		&NightPair{},
		&OffDay{},
		&InitialWindow{},
		&Replicate{},
		&Balance{},
		&Presence{},
		&NightBlock{},
		&FinalCorrect{},
	}
}

// Run 依次执行所有阶段
func (p *Pipeline) Run(ctx *Context) error {
	for _, ph := range p.phases {
		start := time.Now()
		ctx.Log.PhaseStart(ph.Name())
		if err := ph.Run(ctx); err != nil {
			return errors.Wrap(err, errors.CodeInternal,
				fmt.Sprintf("阶段 %s 执行失败", ph.Name()))
		}
		ctx.Log.PhaseDone(ph.Name(), time.Since(start))
	}
	return nil
}
