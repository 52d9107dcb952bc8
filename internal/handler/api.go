package handler

import (
	"github.com/workoutlog/internal/service"
	"github.com/workoutlog/internal/stats"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	workouts *service.WorkoutService
	stats    *service.StatsService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, store stats.Store) *API {
	maintainer := stats.NewMaintainer(store)

	return &API{
		db:       gdb,
		workouts: service.NewWorkoutService(gdb, maintainer),
		stats:    service.NewStatsService(gdb, store),
	}
}
