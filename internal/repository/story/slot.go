package story

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storyreel/internal/model/story"
)

// SlotUpdate 单个分镜的字段更新，用于批量原子提交
type SlotUpdate struct {
	SlotID string
	Fields map[string]interface{}
}

// SlotRepository 分镜仓库接口
type SlotRepository interface {
	FindByID(ctx context.Context, id string) (*story.Slot, error)
	FindByProjectID(ctx context.Context, projectID string) ([]*story.Slot, error)
	FindByVideoJobID(ctx context.Context, jobID string) (*story.Slot, error)

	// ReplaceByProjectID 整体替换项目的分镜列表（删除旧列表+写入新列表，单事务）
	// 重新切分时调用，不做增量合并
	ReplaceByProjectID(ctx context.Context, projectID string, slots []*story.Slot) error

	Update(ctx context.Context, id string, updates map[string]interface{}) error

	// BatchUpdate 批量更新多个分镜（单事务，全部成功或全部回滚）
	BatchUpdate(ctx context.Context, updates []SlotUpdate) error
}

// SlotRepo 分镜仓库实现
type SlotRepo struct {
	coll *mongo.Collection
}

// NewSlotRepo 创建分镜仓库
func NewSlotRepo(db *mongo.Database) *SlotRepo {
	var s story.Slot
	return &SlotRepo{coll: db.Collection(s.Collection())}
}

// FindByID 根据ID查询分镜
func (r *SlotRepo) FindByID(ctx context.Context, id string) (*story.Slot, error) {
	var slot story.Slot
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindByProjectID 查询项目的所有分镜（按 index 排序）
func (r *SlotRepo) FindByProjectID(ctx context.Context, projectID string) ([]*story.Slot, error) {
	filter := bson.M{"project_id": projectID}
	opts := options.Find().SetSort(bson.M{"index": 1})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var slots []*story.Slot
	if err := cur.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// FindByVideoJobID 根据视频任务ID查询分镜
// 任务提交时将 job_id 写入分镜，状态查询按此定位，支持多任务并行
func (r *SlotRepo) FindByVideoJobID(ctx context.Context, jobID string) (*story.Slot, error) {
	var slot story.Slot
	if err := r.coll.FindOne(ctx, bson.M{"video_job_id": jobID}).Decode(&slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ReplaceByProjectID 整体替换项目的分镜列表
func (r *SlotRepo) ReplaceByProjectID(ctx context.Context, projectID string, slots []*story.Slot) error {
	now := time.Now()
	docs := make([]interface{}, len(slots))
	for i, slot := range slots {
		slot.CreatedAt = now
		slot.UpdatedAt = now
		docs[i] = slot
	}

	session, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.coll.DeleteMany(sc, bson.M{"project_id": projectID}); err != nil {
			return nil, fmt.Errorf("delete slots: %w", err)
		}
		if len(docs) == 0 {
			return nil, nil
		}
		if _, err := r.coll.InsertMany(sc, docs); err != nil {
			return nil, fmt.Errorf("insert slots: %w", err)
		}
		return nil, nil
	})
	return err
}

// Update 更新分镜字段
func (r *SlotRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
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

// BatchUpdate 批量更新多个分镜（单事务）
// 任一更新失败则整体回滚，不允许半更新状态落库
func (r *SlotRepo) BatchUpdate(ctx context.Context, updates []SlotUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	session, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	now := time.Now()
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, u := range updates {
			u.Fields["updated_at"] = now
			res, err := r.coll.UpdateOne(
				sc,
				bson.M{"id": u.SlotID},
				bson.M{"$set": u.Fields},
			)
			if err != nil {
				return nil, fmt.Errorf("update slot %s: %w", u.SlotID, err)
			}
			if res.MatchedCount == 0 {
				return nil, fmt.Errorf("update slot %s: %w", u.SlotID, mongo.ErrNoDocuments)
			}
		}
		return nil, nil
	})
	return err
}
