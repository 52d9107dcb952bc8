package stats

import (
	"testing"
	"time"
)

func TestAggregateItemRoundTrip(t *testing.T) {
	lastWorkout := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	lastUpdated := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

	agg := &ExerciseAggregate{
		UserID:          7,
		ExerciseName:    "Bench",
		TotalWorkouts:   2,
		TotalSets:       7,
		TotalReps:       18,
		TotalVolume:     4040,
		MaxWeight:       70,
		LastWorkoutDate: lastWorkout,
		LastUpdated:     lastUpdated,
	}

	got := fromItem(toItem(agg))

	if got.UserID != agg.UserID || got.ExerciseName != agg.ExerciseName {
		t.Fatalf("key fields lost in conversion: %+v", got)
	}
	if got.TotalVolume != agg.TotalVolume || got.MaxWeight != agg.MaxWeight {
		t.Fatalf("numeric fields lost in conversion: %+v", got)
	}
	if !got.LastWorkoutDate.Equal(lastWorkout) || !got.LastUpdated.Equal(lastUpdated) {
		t.Fatalf("dates lost in conversion: %+v", got)
	}
}

func TestAggregateItemZeroDates(t *testing.T) {
	item := toItem(&ExerciseAggregate{UserID: 1, ExerciseName: "Squat"})
	if item.LastWorkoutDate != "" || item.LastUpdated != "" {
		t.Fatalf("expected zero dates to serialize as empty strings, got %+v", item)
	}

	got := fromItem(item)
	if !got.LastWorkoutDate.IsZero() || !got.LastUpdated.IsZero() {
		t.Fatalf("expected empty strings to parse back to zero dates, got %+v", got)
	}
}
