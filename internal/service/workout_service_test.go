package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/workoutlog/internal/db"
	"github.com/workoutlog/internal/stats"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupWorkoutTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.WorkoutRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateWorkoutUpdatesAggregate(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	store := stats.NewMemoryStore()
	svc := NewWorkoutService(gdb, stats.NewMaintainer(store))
	ctx := context.Background()

	recordA, err := svc.Create(ctx, 1, WorkoutInput{
		Date:         date(2024, 3, 15),
		ExerciseName: "Bench",
		Sets:         3,
		Reps:         10,
		Weight:       floatPtr(60),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if recordA.ID == "" {
		t.Fatal("expected record to have an id")
	}

	agg, _ := store.Get(ctx, 1, "Bench")
	if agg == nil {
		t.Fatal("expected aggregate row after create")
	}
	if agg.TotalWorkouts != 1 || agg.TotalSets != 3 || agg.TotalReps != 10 || agg.TotalVolume != 1800 || agg.MaxWeight != 60 {
		t.Fatalf("unexpected aggregate after first create: %+v", agg)
	}

	if _, err := svc.Create(ctx, 1, WorkoutInput{
		Date:         date(2024, 3, 17),
		ExerciseName: "Bench",
		Sets:         4,
		Reps:         8,
		Weight:       floatPtr(70),
	}); err != nil {
		t.Fatalf("second Create returned error: %v", err)
	}

	agg, _ = store.Get(ctx, 1, "Bench")
	if agg.TotalWorkouts != 2 || agg.TotalSets != 7 || agg.TotalReps != 18 || agg.TotalVolume != 4040 || agg.MaxWeight != 70 {
		t.Fatalf("unexpected aggregate after second create: %+v", agg)
	}

	if err := svc.Delete(ctx, 1, recordA.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	// 删除 A 后计数和总量回退；maxWeight 有意保持 70 不重算
	agg, _ = store.Get(ctx, 1, "Bench")
	if agg.TotalWorkouts != 1 || agg.TotalSets != 4 || agg.TotalReps != 8 || agg.TotalVolume != 2240 {
		t.Fatalf("unexpected aggregate after delete: %+v", agg)
	}
	if agg.MaxWeight != 70 {
		t.Fatalf("expected max weight to remain 70, got %v", agg.MaxWeight)
	}

	var remaining int64
	gdb.Model(&db.WorkoutRecord{}).Where("user_id = ?", 1).Count(&remaining)
	if remaining != 1 {
		t.Fatalf("expected 1 record to remain, got %d", remaining)
	}
}

func TestCreateWorkoutValidation(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	svc := NewWorkoutService(gdb, stats.NewMaintainer(stats.NewMemoryStore()))
	ctx := context.Background()

	cases := []struct {
		name  string
		input WorkoutInput
		field string
	}{
		{name: "missing exercise", input: WorkoutInput{Date: date(2024, 1, 1), Sets: 3, Reps: 10}, field: "exercise_name"},
		{name: "zero sets", input: WorkoutInput{Date: date(2024, 1, 1), ExerciseName: "Bench", Sets: 0, Reps: 10}, field: "sets"},
		{name: "zero reps", input: WorkoutInput{Date: date(2024, 1, 1), ExerciseName: "Bench", Sets: 3, Reps: 0}, field: "reps"},
		{name: "negative weight", input: WorkoutInput{Date: date(2024, 1, 1), ExerciseName: "Bench", Sets: 3, Reps: 10, Weight: floatPtr(-1)}, field: "weight"},
		{name: "missing date", input: WorkoutInput{ExerciseName: "Bench", Sets: 3, Reps: 10}, field: "date"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, tt.input)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if validationErr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, validationErr.Field)
			}
		})
	}

	var count int64
	gdb.Model(&db.WorkoutRecord{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no records after failed validations, got %d", count)
	}
}

func TestUpdateWorkoutMovesAggregateBetweenExercises(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	store := stats.NewMemoryStore()
	svc := NewWorkoutService(gdb, stats.NewMaintainer(store))
	ctx := context.Background()

	record, err := svc.Create(ctx, 1, WorkoutInput{
		Date:         date(2024, 5, 1),
		ExerciseName: "Bench",
		Sets:         3,
		Reps:         10,
		Weight:       floatPtr(60),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.Update(ctx, 1, record.ID, WorkoutInput{
		Date:         date(2024, 5, 2),
		ExerciseName: "Incline Bench",
		Sets:         4,
		Reps:         8,
		Weight:       floatPtr(50),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.ExerciseName != "Incline Bench" {
		t.Fatalf("expected exercise name to update, got %s", updated.ExerciseName)
	}

	// 旧键扣除旧贡献，不得重复计数
	oldAgg, _ := store.Get(ctx, 1, "Bench")
	if oldAgg.TotalWorkouts != 0 || oldAgg.TotalSets != 0 || oldAgg.TotalReps != 0 || oldAgg.TotalVolume != 0 {
		t.Fatalf("expected old aggregate to be debited, got %+v", oldAgg)
	}

	// 新键记入新贡献
	newAgg, _ := store.Get(ctx, 1, "Incline Bench")
	if newAgg == nil {
		t.Fatal("expected new aggregate row")
	}
	if newAgg.TotalWorkouts != 1 || newAgg.TotalSets != 4 || newAgg.TotalReps != 8 || newAgg.TotalVolume != 1600 || newAgg.MaxWeight != 50 {
		t.Fatalf("unexpected new aggregate: %+v", newAgg)
	}
}

func TestUpdateWorkoutSameExerciseAdjustsInPlace(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	store := stats.NewMemoryStore()
	svc := NewWorkoutService(gdb, stats.NewMaintainer(store))
	ctx := context.Background()

	record, err := svc.Create(ctx, 1, WorkoutInput{
		Date:         date(2024, 5, 1),
		ExerciseName: "Squat",
		Sets:         5,
		Reps:         5,
		Weight:       floatPtr(100),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Update(ctx, 1, record.ID, WorkoutInput{
		Date:         date(2024, 5, 1),
		ExerciseName: "Squat",
		Sets:         3,
		Reps:         5,
		Weight:       floatPtr(110),
	}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	agg, _ := store.Get(ctx, 1, "Squat")
	if agg.TotalWorkouts != 1 || agg.TotalSets != 3 || agg.TotalReps != 5 {
		t.Fatalf("unexpected counters after in-place update: %+v", agg)
	}
	if agg.TotalVolume != 1650 {
		t.Fatalf("expected volume 1650, got %v", agg.TotalVolume)
	}
	if agg.MaxWeight != 110 {
		t.Fatalf("expected max weight 110, got %v", agg.MaxWeight)
	}
}

func TestWorkoutOwnershipChecks(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	store := stats.NewMemoryStore()
	svc := NewWorkoutService(gdb, stats.NewMaintainer(store))
	ctx := context.Background()

	record, err := svc.Create(ctx, 1, WorkoutInput{
		Date:         date(2024, 2, 1),
		ExerciseName: "Deadlift",
		Sets:         1,
		Reps:         5,
		Weight:       floatPtr(140),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Update(ctx, 2, record.ID, WorkoutInput{
		Date:         date(2024, 2, 2),
		ExerciseName: "Deadlift",
		Sets:         9,
		Reps:         9,
	}); !errors.Is(err, ErrWorkoutForbidden) {
		t.Fatalf("expected ErrWorkoutForbidden on update, got %v", err)
	}

	if err := svc.Delete(ctx, 2, record.ID); !errors.Is(err, ErrWorkoutForbidden) {
		t.Fatalf("expected ErrWorkoutForbidden on delete, got %v", err)
	}

	if _, err := svc.Get(2, record.ID); !errors.Is(err, ErrWorkoutForbidden) {
		t.Fatalf("expected ErrWorkoutForbidden on get, got %v", err)
	}

	// 双方存储均未被改动
	reloaded, err := svc.Get(1, record.ID)
	if err != nil {
		t.Fatalf("owner Get returned error: %v", err)
	}
	if reloaded.Sets != 1 || reloaded.Reps != 5 {
		t.Fatalf("expected record to be untouched, got %+v", reloaded)
	}

	agg, _ := store.Get(ctx, 1, "Deadlift")
	if agg.TotalWorkouts != 1 || agg.TotalSets != 1 || agg.TotalReps != 5 {
		t.Fatalf("expected aggregate to be untouched, got %+v", agg)
	}

	if _, err := svc.Update(ctx, 1, "missing-id", WorkoutInput{
		Date:         date(2024, 2, 2),
		ExerciseName: "Deadlift",
		Sets:         1,
		Reps:         1,
	}); !errors.Is(err, ErrWorkoutNotFound) {
		t.Fatalf("expected ErrWorkoutNotFound, got %v", err)
	}
}

// brokenStore 模拟聚合存储不可用
type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, userID uint, exerciseName string) (*stats.ExerciseAggregate, error) {
	return nil, errors.New("stats store unavailable")
}

func (brokenStore) Put(ctx context.Context, agg *stats.ExerciseAggregate) error {
	return errors.New("stats store unavailable")
}

func (brokenStore) ListByUser(ctx context.Context, userID uint) ([]stats.ExerciseAggregate, error) {
	return nil, errors.New("stats store unavailable")
}

func TestAggregateFailureDoesNotBlockRecordWrites(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	svc := NewWorkoutService(gdb, stats.NewMaintainer(brokenStore{}))
	ctx := context.Background()

	record, err := svc.Create(ctx, 1, WorkoutInput{
		Date:         date(2024, 7, 1),
		ExerciseName: "Row",
		Sets:         3,
		Reps:         8,
		Weight:       floatPtr(40),
	})
	if err != nil {
		t.Fatalf("Create should succeed despite aggregate failure, got %v", err)
	}

	if _, err := svc.Update(ctx, 1, record.ID, WorkoutInput{
		Date:         date(2024, 7, 2),
		ExerciseName: "Row",
		Sets:         4,
		Reps:         8,
		Weight:       floatPtr(42.5),
	}); err != nil {
		t.Fatalf("Update should succeed despite aggregate failure, got %v", err)
	}

	if err := svc.Delete(ctx, 1, record.ID); err != nil {
		t.Fatalf("Delete should succeed despite aggregate failure, got %v", err)
	}

	var count int64
	gdb.Model(&db.WorkoutRecord{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected record to be deleted, got %d remaining", count)
	}
}

func TestListWorkoutsOrderedByDateDesc(t *testing.T) {
	gdb, cleanup := setupWorkoutTestDB(t)
	defer cleanup()

	svc := NewWorkoutService(gdb, stats.NewMaintainer(stats.NewMemoryStore()))
	ctx := context.Background()

	for _, d := range []time.Time{date(2024, 1, 10), date(2024, 3, 5), date(2024, 2, 20)} {
		if _, err := svc.Create(ctx, 1, WorkoutInput{
			Date:         d,
			ExerciseName: "Bench",
			Sets:         3,
			Reps:         10,
		}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	records, err := svc.List(1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	for i := 1; i < len(records); i++ {
		if records[i].Date.After(records[i-1].Date) {
			t.Fatalf("expected records ordered by date desc, got %v before %v", records[i-1].Date, records[i].Date)
		}
	}
}
