package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Project 项目实体
// 一个项目对应一篇定稿旁白脚本及其派生的全部分镜（Slot）
// final_script 创建后不可变；旁白、风格字段由各阶段独立写入
type Project struct {
	ID            string  `bson:"id" json:"id"`                                             // 项目ID（UUID）
	FinalScript   string  `bson:"final_script" json:"final_script"`                         // 定稿旁白脚本（创建时写入，不可变）
	TTSAudioURL   string  `bson:"tts_audio_url,omitempty" json:"tts_audio_url,omitempty"`   // 旁白音频URL
	AudioDuration float64 `bson:"audio_duration,omitempty" json:"audio_duration,omitempty"` // 旁白音频时长（秒）

	StylePrompt     string `bson:"style_prompt,omitempty" json:"style_prompt,omitempty"`           // 已确认的全局风格描述
	AspectRatio     string `bson:"aspect_ratio,omitempty" json:"aspect_ratio,omitempty"`           // 已确认的宽高比
	StylePreviewURL string `bson:"style_preview_url,omitempty" json:"style_preview_url,omitempty"` // 最近一次风格样片URL

	// 最近一次样片的指纹，用于确认风格时的失效校验
	// 修改提示词或比例后必须重新出样片才能确认
	SampleStylePrompt string `bson:"sample_style_prompt,omitempty" json:"sample_style_prompt,omitempty"`
	SampleAspectRatio string `bson:"sample_aspect_ratio,omitempty" json:"sample_aspect_ratio,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (p *Project) Collection() string {
	return "projects"
}

// EnsureIndexes 创建和维护索引
func (p *Project) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(p.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
