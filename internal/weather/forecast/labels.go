package forecast

import "time"

var weekdays = [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// WeekdayLabel 返回中文星期。
func WeekdayLabel(t time.Time) string {
	return weekdays[t.Weekday()]
}

// Describe 将天气状态码映射为中文描述。
func Describe(weatherID int) string {
	switch {
	case weatherID >= 200 && weatherID < 300:
		return "雷雨"
	case weatherID >= 300 && weatherID < 400:
		return "毛毛雨"
	case weatherID == 500:
		return "小雨"
	case weatherID == 501:
		return "中雨"
	case weatherID >= 502 && weatherID < 600:
		return "大雨"
	case weatherID >= 600 && weatherID < 700:
		return "雪"
	case weatherID >= 700 && weatherID < 800:
		return "雾"
	case weatherID == 800:
		return "晴"
	case weatherID == 801:
		return "少云"
	case weatherID == 802:
		return "多云"
	case weatherID >= 803:
		return "阴"
	}
	return "未知"
}

// 顺时针，从北开始，每 45° 一档。
var compass = [8]string{"北风", "东北风", "东风", "东南风", "南风", "西南风", "西风", "西北风"}

// CompassLabel 将角度映射到最近的 8 方位风向。
func CompassLabel(deg float64) string {
	idx := int(roundHalfUp(deg/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return compass[idx]
}

// CompassLabels 返回全部 8 个风向标签。
func CompassLabels() []string {
	return compass[:]
}
