package stats

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore 是 Store 的进程内实现，供测试及 memory 模式使用。
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]ExerciseAggregate
}

// NewMemoryStore 构造空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]ExerciseAggregate)}
}

func memoryKey(userID uint, exerciseName string) string {
	return fmt.Sprintf("%d/%s", userID, exerciseName)
}

// Get 返回聚合行的副本，不存在时返回 (nil, nil)
func (s *MemoryStore) Get(ctx context.Context, userID uint, exerciseName string) (*ExerciseAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[memoryKey(userID, exerciseName)]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

// Put 覆盖写入聚合行
func (s *MemoryStore) Put(ctx context.Context, agg *ExerciseAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[memoryKey(agg.UserID, agg.ExerciseName)] = *agg
	return nil
}

// ListByUser 返回指定用户的全部聚合行，按动作名称排序
func (s *MemoryStore) ListByUser(ctx context.Context, userID uint) ([]ExerciseAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []ExerciseAggregate
	for _, row := range s.rows {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ExerciseName < rows[j].ExerciseName
	})

	return rows, nil
}
