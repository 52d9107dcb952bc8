package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/workoutlog/internal/db"
	"github.com/workoutlog/internal/stats"
	"gorm.io/gorm"
)

var (
	// ErrWorkoutNotFound 在指定记录不存在时返回
	ErrWorkoutNotFound = errors.New("workout record not found")
	// ErrWorkoutForbidden 在记录不属于当前用户时返回
	ErrWorkoutForbidden = errors.New("workout record belongs to another user")
)

// ValidationError 表示字段级校验失败
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// WorkoutInput 定义创建/更新训练记录时可配置字段
type WorkoutInput struct {
	Date         time.Time
	ExerciseName string
	Sets         int
	Reps         int
	Weight       *float64
	Notes        string
}

// WorkoutService 负责训练记录的增删改查，并在每次变更后
// 触发对应聚合行的增量调整。聚合侧失败只记日志，不影响记录写入。
type WorkoutService struct {
	db         *gorm.DB
	aggregates *stats.Maintainer
}

// NewWorkoutService 构造 WorkoutService
func NewWorkoutService(gdb *gorm.DB, aggregates *stats.Maintainer) *WorkoutService {
	return &WorkoutService{db: gdb, aggregates: aggregates}
}

// Create 校验输入并插入一条新记录，随后向聚合行追加该记录的贡献
func (s *WorkoutService) Create(ctx context.Context, userID uint, input WorkoutInput) (*db.WorkoutRecord, error) {
	if err := validateWorkoutInput(input); err != nil {
		return nil, err
	}

	record := db.WorkoutRecord{
		UserID:       userID,
		Date:         input.Date,
		ExerciseName: strings.TrimSpace(input.ExerciseName),
		Sets:         input.Sets,
		Reps:         input.Reps,
		Weight:       input.Weight,
		Notes:        strings.TrimSpace(input.Notes),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create workout record: %w", err)
	}

	s.applyDelta(ctx, userID, record.ExerciseName, stats.Delta{
		Sets:   record.Sets,
		Reps:   record.Reps,
		Weight: record.Weight,
		Date:   record.Date,
		Sign:   stats.SignAdd,
	})

	return &record, nil
}

// Update 更新指定记录。先对旧值做一次扣减、对新值做一次追加——
// 若动作名称变了，两次增量会落在不同的聚合键上；随后保存记录行。
func (s *WorkoutService) Update(ctx context.Context, userID uint, id string, input WorkoutInput) (*db.WorkoutRecord, error) {
	existing, err := s.loadOwned(userID, id)
	if err != nil {
		return nil, err
	}

	if err := validateWorkoutInput(input); err != nil {
		return nil, err
	}

	s.applyDelta(ctx, userID, existing.ExerciseName, stats.Delta{
		Sets:   existing.Sets,
		Reps:   existing.Reps,
		Weight: existing.Weight,
		Date:   existing.Date,
		Sign:   stats.SignRemove,
	})

	newExercise := strings.TrimSpace(input.ExerciseName)
	s.applyDelta(ctx, userID, newExercise, stats.Delta{
		Sets:   input.Sets,
		Reps:   input.Reps,
		Weight: input.Weight,
		Date:   input.Date,
		Sign:   stats.SignAdd,
	})

	existing.Date = input.Date
	existing.ExerciseName = newExercise
	existing.Sets = input.Sets
	existing.Reps = input.Reps
	existing.Weight = input.Weight
	existing.Notes = strings.TrimSpace(input.Notes)

	if err := s.db.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("update workout record: %w", err)
	}

	return existing, nil
}

// Delete 删除指定记录，并从聚合行中扣除其贡献
func (s *WorkoutService) Delete(ctx context.Context, userID uint, id string) error {
	existing, err := s.loadOwned(userID, id)
	if err != nil {
		return err
	}

	s.applyDelta(ctx, userID, existing.ExerciseName, stats.Delta{
		Sets:   existing.Sets,
		Reps:   existing.Reps,
		Weight: existing.Weight,
		Date:   existing.Date,
		Sign:   stats.SignRemove,
	})

	if err := s.db.Delete(&db.WorkoutRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete workout record: %w", err)
	}

	return nil
}

// Get 返回属于当前用户的单条记录
func (s *WorkoutService) Get(userID uint, id string) (*db.WorkoutRecord, error) {
	return s.loadOwned(userID, id)
}

// List 返回用户的全部记录，按训练日期倒序
func (s *WorkoutService) List(userID uint) ([]db.WorkoutRecord, error) {
	var records []db.WorkoutRecord
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC, created_at DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list workout records: %w", err)
	}
	return records, nil
}

func (s *WorkoutService) loadOwned(userID uint, id string) (*db.WorkoutRecord, error) {
	var record db.WorkoutRecord
	if err := s.db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("find workout record: %w", err)
	}

	if record.UserID != userID {
		return nil, ErrWorkoutForbidden
	}

	return &record, nil
}

// applyDelta 把增量写入聚合行。聚合是尽力而为的旁路更新：
// 失败只记日志，不回滚已提交的记录变更，也不重试。
func (s *WorkoutService) applyDelta(ctx context.Context, userID uint, exerciseName string, delta stats.Delta) {
	if err := s.aggregates.ApplyDelta(ctx, userID, exerciseName, delta); err != nil {
		log.Printf("aggregate update failed (user=%d exercise=%q sign=%+d): %v", userID, exerciseName, delta.Sign, err)
	}
}

func validateWorkoutInput(input WorkoutInput) error {
	if strings.TrimSpace(input.ExerciseName) == "" {
		return &ValidationError{Field: "exercise_name", Message: "exercise name is required"}
	}

	if input.Sets < 1 {
		return &ValidationError{Field: "sets", Message: "sets must be at least 1"}
	}

	if input.Reps < 1 {
		return &ValidationError{Field: "reps", Message: "reps must be at least 1"}
	}

	if input.Weight != nil && *input.Weight < 0 {
		return &ValidationError{Field: "weight", Message: "weight must not be negative"}
	}

	if input.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "date is required"}
	}

	return nil
}
