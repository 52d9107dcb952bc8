package stats

import (
	"context"
	"time"
)

// ExerciseAggregate 是按 (用户, 动作名称) 维护的累计统计行。
// 它由 Maintainer 在训练记录变更时增量更新，属于派生数据，
// 不保证与记录表的真实折叠结果始终一致（部分失败后允许漂移）。
type ExerciseAggregate struct {
	UserID          uint      `json:"user_id"`
	ExerciseName    string    `json:"exercise_name"`
	TotalWorkouts   int       `json:"total_workouts"`
	TotalSets       int       `json:"total_sets"`
	TotalReps       int       `json:"total_reps"`
	TotalVolume     float64   `json:"total_volume"`
	MaxWeight       float64   `json:"max_weight"`
	LastWorkoutDate time.Time `json:"last_workout_date"`
	LastUpdated     time.Time `json:"last_updated"`
}

// 增量方向
const (
	SignAdd    = 1
	SignRemove = -1
)

// Delta 描述一条训练记录对聚合行的带符号贡献。
// Weight 为空按 0 计（自重训练）。
type Delta struct {
	Sets   int
	Reps   int
	Weight *float64
	Date   time.Time
	Sign   int
}

// Store 抽象聚合行的持久化，按 (userID, exerciseName) 定位。
// Get 在行不存在时返回 (nil, nil)。
type Store interface {
	Get(ctx context.Context, userID uint, exerciseName string) (*ExerciseAggregate, error)
	Put(ctx context.Context, agg *ExerciseAggregate) error
	ListByUser(ctx context.Context, userID uint) ([]ExerciseAggregate, error)
}
