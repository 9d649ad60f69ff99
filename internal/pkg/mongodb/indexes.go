package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"storyreel/internal/model/story"
)

// EnsureIndexes 创建所有模型的索引
// 应用启动时调用，模型通过 Model 接口声明各自的索引
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	models := []Model{
		&story.Project{},
		&story.Slot{},
	}

	return EnsureAllIndexes(ctx, db, models...)
}
