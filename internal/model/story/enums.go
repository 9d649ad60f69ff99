package story

// VideoStatus 视频任务状态
// 空字符串表示尚未开始
type VideoStatus string

const (
	VideoStatusProcessing VideoStatus = "PROCESSING" // 任务已提交，轮询中
	VideoStatusCompleted  VideoStatus = "COMPLETED"  // 任务成功，video_url 已写入
	VideoStatusFailed     VideoStatus = "FAILED"     // 任务失败或轮询出错
)

// String 返回状态的字符串表示
func (s VideoStatus) String() string {
	return string(s)
}

// Terminal 是否为终态
func (s VideoStatus) Terminal() bool {
	return s == VideoStatusCompleted || s == VideoStatusFailed
}
