package model

import "time"

// DaysInMonth 返回某年某月的天数（自动处理闰年）
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthStart 返回某月第一天的零点时间
func MonthStart(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// DateOfDay 返回某月第 day 天（1 起始）的日期
func DateOfDay(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// FormatDate 统一的日期存储格式 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekdayOfDay 返回某月第 day 天（1 起始）的星期
func WeekdayOfDay(year, month, day int) time.Weekday {
	return DateOfDay(year, month, day).Weekday()
}
