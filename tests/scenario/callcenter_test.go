package scenario

import (
	"fmt"
	"testing"

	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/scheduler"
)

// callCenterRoster 客服中心六人班组
var callCenterRoster = []string{"张三", "李四", "王五", "赵六", "钱七", "孙八"}

// TestCallCenterInsufficientRoster 人数不足时拒绝排班
func TestCallCenterInsufficientRoster(t *testing.T) {
	short := callCenterRoster[:5]

	result, err := scheduler.NewGenerator().Generate(short, scheduler.Options{TotalDays: 30})
	if err == nil {
		t.Fatal("五人花名册应该被拒绝")
	}
	if errors.GetCode(err) != errors.CodeInsufficientRoster {
		t.Errorf("错误码错误: %v", errors.GetCode(err))
	}
	if result != nil {
		t.Error("拒绝排班时不应产出部分结果")
	}

	t.Logf("拒绝原因: %v", err)
}

// TestCallCenterInvalidDays 非法天数被拒绝
func TestCallCenterInvalidDays(t *testing.T) {
	for _, days := range []int{0, -1} {
		_, err := scheduler.NewGenerator().Generate(callCenterRoster, scheduler.Options{TotalDays: days})
		if err == nil {
			t.Errorf("天数 %d 应该被拒绝", days)
			continue
		}
		if errors.GetCode(err) != errors.CodeInvalidInput {
			t.Errorf("天数 %d 的错误码错误: %v", days, errors.GetCode(err))
		}
	}
}

// TestCallCenterMonthLengths 四种月长都能排满
func TestCallCenterMonthLengths(t *testing.T) {
	for _, days := range []int{28, 29, 30, 31} {
		t.Run(fmt.Sprintf("%d天", days), func(t *testing.T) {
			result := mustGenerate(t, callCenterRoster, days, int64(days))

			if result.Matrix.Days() != days {
				t.Errorf("矩阵天数错误: %d", result.Matrix.Days())
			}
			if result.Statistics.Unresolved != 0 {
				t.Errorf("存在未解决格子: %d", result.Statistics.Unresolved)
			}
			for _, emp := range callCenterRoster {
				if !result.Matrix.HasNightPair(emp) {
					t.Errorf("员工 %s 没有连续夜班对", emp)
				}
			}
			t.Logf("%d 天: 错误=%d 警告=%d", days,
				result.Report.ErrorCount(), result.Report.WarningCount())
		})
	}
}

// TestCallCenterTimeSeeded 零种子走时间播种
func TestCallCenterTimeSeeded(t *testing.T) {
	result := mustGenerate(t, callCenterRoster, 28, 0)

	if result.Statistics.Assigned != len(callCenterRoster)*28 {
		t.Errorf("已分配格子数错误: %d", result.Statistics.Assigned)
	}
	t.Logf("时间播种生成完成: 耗时 %v", result.Duration)
}
