package storytools

import (
	"fmt"
)

// DefaultAspectRatio 未识别比例时的兜底值
const DefaultAspectRatio = "1:1"

// validAspectRatios 全链路支持的宽高比白名单
var validAspectRatios = []string{
	"1:1", "16:9", "3:2", "2:3", "4:5", "5:4", "9:16", "3:4", "4:3",
}

// ValidAspectRatios 返回支持的宽高比列表（副本）
func ValidAspectRatios() []string {
	out := make([]string, len(validAspectRatios))
	copy(out, validAspectRatios)
	return out
}

// NormalizeAspectRatio 校验宽高比，不在白名单内的静默回退到 1:1
func NormalizeAspectRatio(ratio string) string {
	for _, r := range validAspectRatios {
		if r == ratio {
			return ratio
		}
	}
	return DefaultAspectRatio
}

// CompositionHint 根据宽高比返回构图提示词
// 三个桶：9:16 → vertical，16:9 → horizontal，其余 → square
func CompositionHint(ratio string) string {
	switch ratio {
	case "9:16":
		return "vertical"
	case "16:9":
		return "horizontal"
	default:
		return "square"
	}
}

// BuildImagePrompt 构建单镜头的完整图片提示词
// 格式：场景描述。分段文本。风格。比例与构图提示
func BuildImagePrompt(sceneDescription, segmentText, stylePrompt, ratio string) string {
	r := NormalizeAspectRatio(ratio)
	return fmt.Sprintf("%s. %s. Style: %s. Aspect ratio %s, composition optimized for %s format.",
		sceneDescription, segmentText, stylePrompt, r, CompositionHint(r))
}

// BuildStylePrompt 构建风格样片提示词（无镜头上下文时）
func BuildStylePrompt(stylePrompt, ratio string) string {
	r := NormalizeAspectRatio(ratio)
	return fmt.Sprintf("%s. Aspect ratio %s, composition optimized for %s format.",
		stylePrompt, r, CompositionHint(r))
}
