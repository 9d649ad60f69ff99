package storytools

import (
	"fmt"
	"math"
)

// 分段时长参数：每段目标时长为 5-7 秒，取均值 6 秒
const (
	MinSecondsPerSegment = 5
	MaxSecondsPerSegment = 7
)

// AvgSecondsPerSegment 每段平均时长（秒）
func AvgSecondsPerSegment() float64 {
	return float64(MinSecondsPerSegment+MaxSecondsPerSegment) / 2
}

// SegmentCount 根据旁白音频时长计算分段数量
// N = ceil(audioDuration / 6)
func SegmentCount(audioDuration float64) int {
	if audioDuration <= 0 {
		return 0
	}
	return int(math.Ceil(audioDuration / AvgSecondsPerSegment()))
}

// SegmentWindow 计算第 i 段（0-based）的起止秒数
// 时间戳由服务端确定性计算，不信任模型返回的时间戳
func SegmentWindow(i, n int, audioDuration float64) (start, end int) {
	per := audioDuration / float64(n)
	start = int(math.Round(float64(i) * per))
	end = int(math.Round(float64(i+1) * per))
	return start, end
}

// SegmentTimestamp 生成第 i 段的展示时间戳，形如 "0-6s"
func SegmentTimestamp(i, n int, audioDuration float64) string {
	start, end := SegmentWindow(i, n, audioDuration)
	return fmt.Sprintf("%d-%ds", start, end)
}
