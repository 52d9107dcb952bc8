package handler

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/workoutlog/internal/db"
	"github.com/workoutlog/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const dateFormat = "2006-01-02"

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type workoutPayload struct {
	Date         string   `json:"date"`
	ExerciseName string   `json:"exercise_name"`
	Sets         int      `json:"sets"`
	Reps         int      `json:"reps"`
	Weight       *float64 `json:"weight"`
	Notes        string   `json:"notes"`
}

type workoutView struct {
	ID           string   `json:"id"`
	Date         string   `json:"date"`
	ExerciseName string   `json:"exercise_name"`
	Sets         int      `json:"sets"`
	Reps         int      `json:"reps"`
	Weight       *float64 `json:"weight,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	NotesHTML    string   `json:"notes_html,omitempty"`
}

func newWorkoutView(record *db.WorkoutRecord, withNotesHTML bool) workoutView {
	view := workoutView{
		ID:           record.ID,
		Date:         record.Date.Format(dateFormat),
		ExerciseName: record.ExerciseName,
		Sets:         record.Sets,
		Reps:         record.Reps,
		Weight:       record.Weight,
		Notes:        record.Notes,
	}
	if withNotesHTML {
		view.NotesHTML = renderNotesHTML(record.Notes)
	}
	return view
}

// renderNotesHTML 把备注按 Markdown 渲染并过滤为安全 HTML
func renderNotesHTML(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(notes), &buf); err != nil {
		return ""
	}

	return sanitizer.Sanitize(buf.String())
}

func (p workoutPayload) toInput(c *gin.Context) (service.WorkoutInput, bool) {
	input := service.WorkoutInput{
		ExerciseName: p.ExerciseName,
		Sets:         p.Sets,
		Reps:         p.Reps,
		Weight:       p.Weight,
		Notes:        p.Notes,
	}

	raw := strings.TrimSpace(p.Date)
	if raw == "" {
		// 交给服务层按缺失日期报校验错误
		return input, true
	}

	date, err := time.Parse(dateFormat, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "date must be in YYYY-MM-DD format",
			"field": "date",
		})
		return input, false
	}

	input.Date = date
	return input, true
}

// ListWorkouts 返回当前用户的全部训练记录
func (a *API) ListWorkouts(c *gin.Context) {
	records, err := a.workouts.List(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	views := make([]workoutView, 0, len(records))
	for i := range records {
		views = append(views, newWorkoutView(&records[i], false))
	}

	c.JSON(http.StatusOK, gin.H{"workouts": views})
}

// CreateWorkout 新建训练记录
func (a *API) CreateWorkout(c *gin.Context) {
	var payload workoutPayload
	if !bindJSON(c, &payload, "invalid workout payload") {
		return
	}

	input, ok := payload.toInput(c)
	if !ok {
		return
	}

	record, err := a.workouts.Create(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newWorkoutView(record, false))
}

// GetWorkout 返回单条记录详情，附带渲染后的备注 HTML
func (a *API) GetWorkout(c *gin.Context) {
	record, err := a.workouts.Get(currentUserID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newWorkoutView(record, true))
}

// UpdateWorkout 更新指定记录
func (a *API) UpdateWorkout(c *gin.Context) {
	var payload workoutPayload
	if !bindJSON(c, &payload, "invalid workout payload") {
		return
	}

	input, ok := payload.toInput(c)
	if !ok {
		return
	}

	record, err := a.workouts.Update(c.Request.Context(), currentUserID(c), c.Param("id"), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newWorkoutView(record, false))
}

// DeleteWorkout 删除指定记录
func (a *API) DeleteWorkout(c *gin.Context) {
	if err := a.workouts.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
