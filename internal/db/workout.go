package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkoutRecord 记录一次训练条目，是训练数据的权威来源。
// ID 使用字符串 uuid，在创建钩子中生成；
// user_id + date 建复合索引，按用户列表查询走该路径。
// Weight 为空表示自重训练（无负重），参与统计时按 0 计。
type WorkoutRecord struct {
	ID           string    `gorm:"primaryKey;size:36"`
	UserID       uint      `gorm:"index:idx_workout_records_user_date;not null"`
	Date         time.Time `gorm:"index:idx_workout_records_user_date;not null"`
	ExerciseName string    `gorm:"not null"`
	Sets         int       `gorm:"not null"`
	Reps         int       `gorm:"not null"`
	Weight       *float64
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BeforeCreate 生成主键
func (r *WorkoutRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Volume 返回该条记录的训练容量：组数 × 次数 × 重量。
func (r *WorkoutRecord) Volume() float64 {
	weight := 0.0
	if r.Weight != nil {
		weight = *r.Weight
	}
	return float64(r.Sets) * float64(r.Reps) * weight
}
