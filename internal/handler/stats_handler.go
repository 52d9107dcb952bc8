package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetTotals 返回用户的记录总数（记录表现算）
func (a *API) GetTotals(c *gin.Context) {
	total, err := a.stats.TotalsForUser(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_workouts": total})
}

// GetStatsByExercise 返回按动作分组的现算统计
func (a *API) GetStatsByExercise(c *gin.Context) {
	summaries, err := a.stats.ByExercise(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": summaries})
}

// GetAggregates 返回聚合存储中的预计算行（可能与现算口径存在漂移）
func (a *API) GetAggregates(c *gin.Context) {
	rows, err := a.stats.AggregatesForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"aggregates": rows})
}

// GetMonthlyStats 返回指定年份按月分桶的训练次数，year 缺省取当前年
func (a *API) GetMonthlyStats(c *gin.Context) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "year must be a number")
			return
		}
		year = parsed
	}

	result, err := a.stats.Monthly(currentUserID(c), year)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExerciseProgression 返回某动作按日期排序的重量/容量推移
func (a *API) GetExerciseProgression(c *gin.Context) {
	result, err := a.stats.Progression(currentUserID(c), c.Param("name"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
