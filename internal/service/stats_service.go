package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/workoutlog/internal/db"
	"github.com/workoutlog/internal/stats"
	"gorm.io/gorm"
)

// ErrNoExerciseHistory 在用户没有指定动作的任何记录时返回
var ErrNoExerciseHistory = errors.New("no workouts found for this exercise")

// ExerciseSummary 是按动作分组、直接从记录表折叠出的统计。
// 这是权威口径，与旁路维护的聚合行无关，因此永远一致。
type ExerciseSummary struct {
	ExerciseName  string  `json:"exercise_name"`
	TotalWorkouts int     `json:"total_workouts"`
	TotalSets     int     `json:"total_sets"`
	TotalReps     int     `json:"total_reps"`
	MaxWeight     float64 `json:"max_weight"`
}

// MonthCount 表示某月的训练次数
type MonthCount struct {
	Month int `json:"month"`
	Count int `json:"count"`
}

// MonthlyStats 汇总一年 12 个月的训练次数
type MonthlyStats struct {
	Year   int          `json:"year"`
	Months []MonthCount `json:"monthly_stats"`
}

// ProgressionPoint 是单次训练在进展曲线上的一个点
type ProgressionPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	Volume float64 `json:"volume"`
}

// ExerciseProgression 是某个动作按日期排序的重量/容量推移
type ExerciseProgression struct {
	ExerciseName  string             `json:"exercise_name"`
	TotalWorkouts int                `json:"total_workouts"`
	TotalVolume   float64            `json:"total_volume"`
	Progression   []ProgressionPoint `json:"progression"`
}

// StatsService 负责统计查询：记录表侧的现算口径，
// 以及聚合存储侧的预计算口径（可能漂移，供对照）。
type StatsService struct {
	db    *gorm.DB
	store stats.Store
}

// NewStatsService 构造 StatsService
func NewStatsService(gdb *gorm.DB, store stats.Store) *StatsService {
	return &StatsService{db: gdb, store: store}
}

// TotalsForUser 返回用户的记录总数，直接 COUNT 记录表
func (s *StatsService) TotalsForUser(userID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&db.WorkoutRecord{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count workout records: %w", err)
	}
	return count, nil
}

// ByExercise 按动作分组现算统计，按动作名称排序返回
func (s *StatsService) ByExercise(userID uint) ([]ExerciseSummary, error) {
	var summaries []ExerciseSummary
	if err := s.db.Model(&db.WorkoutRecord{}).
		Select("exercise_name, COUNT(*) AS total_workouts, SUM(sets) AS total_sets, SUM(reps) AS total_reps, MAX(COALESCE(weight, 0)) AS max_weight").
		Where("user_id = ?", userID).
		Group("exercise_name").
		Order("exercise_name ASC").
		Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("group workout records: %w", err)
	}
	return summaries, nil
}

// AggregatesForUser 返回聚合存储中的预计算行，用于与现算口径对照
func (s *StatsService) AggregatesForUser(ctx context.Context, userID uint) ([]stats.ExerciseAggregate, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list aggregates: %w", err)
	}
	return rows, nil
}

// Monthly 把指定年份的记录按月份分桶，固定返回 12 个月
func (s *StatsService) Monthly(userID uint, year int) (*MonthlyStats, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var records []db.WorkoutRecord
	if err := s.db.Where("user_id = ?", userID).
		Where("date >= ? AND date < ?", start, end).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list workout records for year: %w", err)
	}

	result := &MonthlyStats{
		Year:   year,
		Months: make([]MonthCount, 12),
	}
	for i := range result.Months {
		result.Months[i].Month = i + 1
	}

	for _, record := range records {
		result.Months[int(record.Date.Month())-1].Count++
	}

	return result, nil
}

// Progression 返回某动作按日期升序的推移序列及总容量
func (s *StatsService) Progression(userID uint, exerciseName string) (*ExerciseProgression, error) {
	var records []db.WorkoutRecord
	if err := s.db.Where("user_id = ? AND exercise_name = ?", userID, exerciseName).
		Order("date ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list exercise records: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrNoExerciseHistory
	}

	result := &ExerciseProgression{
		ExerciseName:  exerciseName,
		TotalWorkouts: len(records),
		Progression:   make([]ProgressionPoint, 0, len(records)),
	}

	for _, record := range records {
		weight := 0.0
		if record.Weight != nil {
			weight = *record.Weight
		}
		volume := record.Volume()

		result.Progression = append(result.Progression, ProgressionPoint{
			Date:   record.Date.Format("2006-01-02"),
			Weight: weight,
			Volume: volume,
		})
		result.TotalVolume += volume
	}

	return result, nil
}
