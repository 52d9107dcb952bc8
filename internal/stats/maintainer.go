package stats

import (
	"context"
	"fmt"
	"time"
)

// Maintainer 负责把单条记录的增量折叠进对应的聚合行。
// 读-改-写之间没有锁或事务，同键并发更新可能丢失其中一次的效果，
// 这是在单用户低并发假设下接受的行为。
type Maintainer struct {
	store Store
}

// NewMaintainer 构造 Maintainer
func NewMaintainer(store Store) *Maintainer {
	return &Maintainer{store: store}
}

// ApplyDelta 读取当前聚合行（缺失按零值行处理），应用带符号增量后写回。
//
// 仅在新增时推进 maxWeight 与 lastWorkoutDate；删除时两者保持不变，
// 重算真实的最大值/最近日期需要全量扫描，这里有意不做。
// 删除也不校验行是否存在，数值字段因此可能为负（已知的漂移形态）。
func (m *Maintainer) ApplyDelta(ctx context.Context, userID uint, exerciseName string, delta Delta) error {
	if delta.Sign != SignAdd && delta.Sign != SignRemove {
		return fmt.Errorf("invalid delta sign %d", delta.Sign)
	}

	agg, err := m.store.Get(ctx, userID, exerciseName)
	if err != nil {
		return fmt.Errorf("load aggregate: %w", err)
	}

	if agg == nil {
		agg = &ExerciseAggregate{UserID: userID, ExerciseName: exerciseName}
	}

	weight := 0.0
	if delta.Weight != nil {
		weight = *delta.Weight
	}
	volume := float64(delta.Sets) * float64(delta.Reps) * weight

	agg.TotalWorkouts += delta.Sign
	agg.TotalSets += delta.Sign * delta.Sets
	agg.TotalReps += delta.Sign * delta.Reps
	agg.TotalVolume += float64(delta.Sign) * volume
	agg.LastUpdated = time.Now().UTC()

	if delta.Sign == SignAdd {
		if weight > agg.MaxWeight {
			agg.MaxWeight = weight
		}
		agg.LastWorkoutDate = delta.Date
	}

	if err := m.store.Put(ctx, agg); err != nil {
		return fmt.Errorf("store aggregate: %w", err)
	}

	return nil
}
