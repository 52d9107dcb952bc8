package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/workoutlog/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// respondServiceError 把服务层错误映射为对应的 HTTP 状态码
func respondServiceError(c *gin.Context, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrNoExerciseHistory):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWorkoutForbidden):
		respondError(c, http.StatusForbidden, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
