package story

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storyreel/internal/model/story"
)

// ProjectRepository 项目仓库接口
type ProjectRepository interface {
	Create(ctx context.Context, project *story.Project) error
	FindByID(ctx context.Context, id string) (*story.Project, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
}

// ProjectRepo 项目仓库实现
type ProjectRepo struct {
	coll *mongo.Collection
}

// NewProjectRepo 创建项目仓库
func NewProjectRepo(db *mongo.Database) *ProjectRepo {
	var p story.Project
	return &ProjectRepo{coll: db.Collection(p.Collection())}
}

// Create 创建项目
func (r *ProjectRepo) Create(ctx context.Context, project *story.Project) error {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, project)
	return err
}

// FindByID 根据ID查询项目
func (r *ProjectRepo) FindByID(ctx context.Context, id string) (*story.Project, error) {
	var project story.Project
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Update 更新项目字段（整字段替换式更新）
func (r *ProjectRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	res, err := r.coll.UpdateOne(
		ctx,
		bson.M{"id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
