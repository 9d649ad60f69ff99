package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Slot 分镜实体（一个带时间戳的旁白分段）
// 说明：Slot 归属且仅归属于一个 Project，index 在项目内唯一且连续（0-based）
// 重新切分时整表替换；图片/视频字段随任务完成逐个原地更新
type Slot struct {
	ID               string `bson:"id" json:"id"`                               // 分镜ID（UUID）
	ProjectID        string `bson:"project_id" json:"project_id"`               // 关联的项目ID
	Index            int    `bson:"index" json:"index"`                         // 顺序索引（0-based，项目内唯一、连续）
	TextSegment      string `bson:"text_segment" json:"text_segment"`           // 该段旁白文本
	SceneDescription string `bson:"scene_description" json:"scene_description"` // 切分时产出的场景简述
	Timestamp        string `bson:"timestamp" json:"timestamp"`                 // 展示时间戳，形如 "0-6s"（服务端计算）

	ImagePrompt        string              `bson:"image_prompt,omitempty" json:"image_prompt,omitempty"`               // 扩写后的完整图片提示词
	ContinuityMetadata *ContinuityMetadata `bson:"continuity_metadata,omitempty" json:"continuity_metadata,omitempty"` // 视觉连续性元数据
	ImageURL           string              `bson:"image_url,omitempty" json:"image_url,omitempty"`                     // 生成的图片URL

	VideoPrompt string      `bson:"video_prompt,omitempty" json:"video_prompt,omitempty"` // 视频生成提示词
	VideoURL    string      `bson:"video_url,omitempty" json:"video_url,omitempty"`       // 生成的视频URL
	VideoStatus VideoStatus `bson:"video_status,omitempty" json:"video_status,omitempty"` // 视频任务状态（空表示未开始）
	VideoJobID  string      `bson:"video_job_id,omitempty" json:"video_job_id,omitempty"` // 视频任务ID（提交时写入，状态查询按此定位分镜）

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ContinuityMetadata 视觉连续性元数据
// 记录跨分镜需要保持稳定的元素与允许演化的元素
type ContinuityMetadata struct {
	ElementsToMaintain []string `bson:"elements_to_maintain" json:"elementsToMaintain"`
	ElementsToEvolve   []string `bson:"elements_to_evolve" json:"elementsToEvolve"`
}

// Collection 返回集合名称
func (s *Slot) Collection() string {
	return "slots"
}

// EnsureIndexes 创建和维护索引
func (s *Slot) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(s.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "index", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_project_index_unique"),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}},
			Options: options.Index().SetName("idx_project_id"),
		},
		{
			Keys:    bson.D{{Key: "video_job_id", Value: 1}},
			Options: options.Index().SetName("idx_video_job_id"),
		},
		{
			Keys:    bson.D{{Key: "video_status", Value: 1}},
			Options: options.Index().SetName("idx_video_status"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
