// Package metrics 提供Prometheus文本格式的监控指标
package metrics

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// 指标名称
const (
	MetricHTTPRequests       = "lunban_http_requests_total"
	MetricHTTPDuration       = "lunban_http_request_duration_seconds"
	MetricGenerations        = "lunban_schedule_generations_total"
	MetricGenerationDuration = "lunban_schedule_generation_duration_seconds"
	MetricUnresolvedCells    = "lunban_schedule_unresolved_cells"
	MetricAdjustments        = "lunban_manual_adjustments_total"
	MetricSwaps              = "lunban_shift_swaps_total"
	MetricFairnessGini       = "lunban_fairness_gini"
	MetricCoverageRate       = "lunban_coverage_rate"
	MetricOverallScore       = "lunban_fairness_overall_score"
	MetricDBConnections      = "lunban_db_connections"
)

// Registry 指标注册表
type Registry struct {
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	mu         sync.RWMutex
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Gauge 仪表盘
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	counts  map[string][]int
	sums    map[string]float64
	mu      sync.RWMutex
}

var (
	registry *Registry
	once     sync.Once
)

// GetRegistry 获取全局注册表
func GetRegistry() *Registry {
	once.Do(func() {
		registry = &Registry{
			counters:   make(map[string]*Counter),
			gauges:     make(map[string]*Gauge),
			histograms: make(map[string]*Histogram),
		}
		initDefaultMetrics()
	})
	return registry
}

// initDefaultMetrics 初始化默认指标
func initDefaultMetrics() {
	registry.NewCounter(MetricHTTPRequests, "HTTP请求总数", []string{"method", "path", "status"})
	registry.NewHistogram(MetricHTTPDuration, "HTTP请求延迟",
		[]string{"method", "path"},
		[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0})

	registry.NewCounter(MetricGenerations, "整月排班生成次数", []string{"month", "status"})
	registry.NewHistogram(MetricGenerationDuration, "整月排班生成延迟",
		[]string{"month"},
		[]float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0})
	registry.NewGauge(MetricUnresolvedCells, "最近一次生成的未解决格子数", []string{"month"})

	registry.NewCounter(MetricAdjustments, "手工调班次数", []string{"action"})
	registry.NewCounter(MetricSwaps, "换班次数", []string{"status"})

	registry.NewGauge(MetricFairnessGini, "公平性基尼系数", []string{"month", "metric_type"})
	registry.NewGauge(MetricCoverageRate, "班次覆盖率", []string{"month"})
	registry.NewGauge(MetricOverallScore, "综合公平性评分", []string{"month"})
	registry.NewGauge(MetricDBConnections, "数据库连接数", []string{"state"})
}

// NewCounter 创建计数器
func (r *Registry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	counter := &Counter{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.counters[name] = counter
	return counter
}

// NewGauge 创建仪表盘
func (r *Registry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	gauge := &Gauge{
		Name:   name,
		Help:   help,
		Labels: labels,
		values: make(map[string]float64),
	}
	r.gauges[name] = gauge
	return gauge
}

// NewHistogram 创建直方图
func (r *Registry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	histogram := &Histogram{
		Name:    name,
		Help:    help,
		Labels:  labels,
		Buckets: buckets,
		counts:  make(map[string][]int),
		sums:    make(map[string]float64),
	}
	r.histograms[name] = histogram
	return histogram
}

// GetCounter 获取计数器
func (r *Registry) GetCounter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// GetGauge 获取仪表盘
func (r *Registry) GetGauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// GetHistogram 获取直方图
func (r *Registry) GetHistogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Inc 增加
func (g *Gauge) Inc(labelValues ...string) {
	g.Add(1, labelValues...)
}

// Dec 减少
func (g *Gauge) Dec(labelValues ...string) {
	g.Add(-1, labelValues...)
}

// Add 增加指定值
func (g *Gauge) Add(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] += value
}

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	if _, exists := h.counts[key]; !exists {
		h.counts[key] = make([]int, len(h.Buckets)+1)
	}

	// 每个观测值只落入第一个能容纳它的桶, 导出时再累计
	placed := false
	for i, bucket := range h.Buckets {
		if value <= bucket {
			h.counts[key][i]++
			placed = true
			break
		}
	}
	if !placed {
		h.counts[key][len(h.Buckets)]++
	}
	h.sums[key] += value
}

// labelKey 生成标签键
func labelKey(labels []string) string {
	return strings.Join(labels, ",")
}

// Handler 返回Prometheus文本格式的指标HTTP处理器
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		reg := GetRegistry()
		reg.mu.RLock()
		defer reg.mu.RUnlock()

		for _, counter := range reg.counters {
			counter.write(w)
		}
		for _, gauge := range reg.gauges {
			gauge.write(w)
		}
		for _, histogram := range reg.histograms {
			histogram.write(w)
		}
	})
}

// write 导出计数器
func (c *Counter) write(w http.ResponseWriter) {
	fmt.Fprintf(w, "# HELP %s %s\n", c.Name, c.Help)
	fmt.Fprintf(w, "# TYPE %s counter\n", c.Name)

	c.mu.RLock()
	defer c.mu.RUnlock()
	for key, value := range c.values {
		if key == "" {
			fmt.Fprintf(w, "%s %f\n", c.Name, value)
		} else {
			fmt.Fprintf(w, "%s{%s} %f\n", c.Name, formatLabels(c.Labels, key), value)
		}
	}
}

// write 导出仪表盘
func (g *Gauge) write(w http.ResponseWriter) {
	fmt.Fprintf(w, "# HELP %s %s\n", g.Name, g.Help)
	fmt.Fprintf(w, "# TYPE %s gauge\n", g.Name)

	g.mu.RLock()
	defer g.mu.RUnlock()
	for key, value := range g.values {
		if key == "" {
			fmt.Fprintf(w, "%s %f\n", g.Name, value)
		} else {
			fmt.Fprintf(w, "%s{%s} %f\n", g.Name, formatLabels(g.Labels, key), value)
		}
	}
}

// write 导出直方图（桶计数按 le 累计）
func (h *Histogram) write(w http.ResponseWriter) {
	fmt.Fprintf(w, "# HELP %s %s\n", h.Name, h.Help)
	fmt.Fprintf(w, "# TYPE %s histogram\n", h.Name)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for key, counts := range h.counts {
		cumulative := 0
		for i, bucket := range h.Buckets {
			cumulative += counts[i]
			if key == "" {
				fmt.Fprintf(w, "%s_bucket{le=\"%f\"} %d\n", h.Name, bucket, cumulative)
			} else {
				fmt.Fprintf(w, "%s_bucket{%s,le=\"%f\"} %d\n", h.Name, formatLabels(h.Labels, key), bucket, cumulative)
			}
		}
		cumulative += counts[len(h.Buckets)]
		if key == "" {
			fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", h.Name, cumulative)
			fmt.Fprintf(w, "%s_sum %f\n", h.Name, h.sums[key])
			fmt.Fprintf(w, "%s_count %d\n", h.Name, cumulative)
		} else {
			fmt.Fprintf(w, "%s_bucket{%s,le=\"+Inf\"} %d\n", h.Name, formatLabels(h.Labels, key), cumulative)
			fmt.Fprintf(w, "%s_sum{%s} %f\n", h.Name, formatLabels(h.Labels, key), h.sums[key])
			fmt.Fprintf(w, "%s_count{%s} %d\n", h.Name, formatLabels(h.Labels, key), cumulative)
		}
	}
}

// formatLabels 格式化标签
func formatLabels(names []string, values string) string {
	vals := strings.Split(values, ",")
	parts := make([]string, 0, len(names))
	for i, name := range names {
		val := ""
		if i < len(vals) {
			val = vals[i]
		}
		parts = append(parts, fmt.Sprintf("%s=%q", name, val))
	}
	return strings.Join(parts, ",")
}

// RecordRequest 记录HTTP请求指标
func RecordRequest(method, path string, status int, duration time.Duration) {
	reg := GetRegistry()

	if counter := reg.GetCounter(MetricHTTPRequests); counter != nil {
		counter.Inc(method, path, fmt.Sprintf("%d", status))
	}
	if histogram := reg.GetHistogram(MetricHTTPDuration); histogram != nil {
		histogram.Observe(duration.Seconds(), method, path)
	}
}

// RecordGeneration 记录整月排班生成指标
func RecordGeneration(month string, success bool, unresolved int, duration time.Duration) {
	reg := GetRegistry()

	status := "success"
	if !success {
		status = "failure"
	}
	if counter := reg.GetCounter(MetricGenerations); counter != nil {
		counter.Inc(month, status)
	}
	if histogram := reg.GetHistogram(MetricGenerationDuration); histogram != nil {
		histogram.Observe(duration.Seconds(), month)
	}
	if gauge := reg.GetGauge(MetricUnresolvedCells); gauge != nil {
		gauge.Set(float64(unresolved), month)
	}
}

// RecordAdjustment 记录手工调班指标
func RecordAdjustment(action string) {
	if counter := GetRegistry().GetCounter(MetricAdjustments); counter != nil {
		counter.Inc(action)
	}
}

// RecordSwap 记录换班指标
func RecordSwap(success bool) {
	status := "success"
	if !success {
		status = "rejected"
	}
	if counter := GetRegistry().GetCounter(MetricSwaps); counter != nil {
		counter.Inc(status)
	}
}

// SetFairnessGini 设置公平性基尼系数
func SetFairnessGini(month, metricType string, gini float64) {
	if gauge := GetRegistry().GetGauge(MetricFairnessGini); gauge != nil {
		gauge.Set(gini, month, metricType)
	}
}

// SetCoverageRate 设置覆盖率
func SetCoverageRate(month string, rate float64) {
	if gauge := GetRegistry().GetGauge(MetricCoverageRate); gauge != nil {
		gauge.Set(rate, month)
	}
}

// SetOverallScore 设置综合公平性评分
func SetOverallScore(month string, score float64) {
	if gauge := GetRegistry().GetGauge(MetricOverallScore); gauge != nil {
		gauge.Set(score, month)
	}
}

// SetDBConnections 设置数据库连接数
func SetDBConnections(state string, n int) {
	if gauge := GetRegistry().GetGauge(MetricDBConnections); gauge != nil {
		gauge.Set(float64(n), state)
	}
}