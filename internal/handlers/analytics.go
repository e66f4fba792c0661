package handlers

import (
	"net/http"

	"github.com/21namanpandey/virtual-queue-management-system/internal/notify"
	"github.com/21namanpandey/virtual-queue-management-system/internal/queue"
	"github.com/21namanpandey/virtual-queue-management-system/internal/response"
	"github.com/21namanpandey/virtual-queue-management-system/internal/storage"

	"github.com/gin-gonic/gin"
)

type AnalyticsResponse struct {
	TotalUsersServed  int `json:"total_users_served"`
	TotalActiveQueues int `json:"total_active_queues"`
	AverageWaitTime   int `json:"average_wait_time"` // минуты, округлено
}

// GetAnalyticsHandler считает сводку по всем очередям (только админ)
// @Summary		Аналитика
// @Description	Сводные показатели по всем очередям. Сработавшие пороги кладут извещения в ящик запросившего админа; дедупликации между вызовами нет.
// @Tags			analytics
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	map[string]interface{}	"Сводные показатели"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/analytics [get]
func GetAnalyticsHandler(c *gin.Context) {
	adminID := c.GetUint("userID")

	stats, err := queue.CollectStats(storage.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка расчёта аналитики",
			Details: err.Error(),
		})
		return
	}

	for _, a := range stats.Advisories() {
		notify.Push(adminID, a.Title, a.Message)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": AnalyticsResponse{
			TotalUsersServed:  stats.TotalUsersServed,
			TotalActiveQueues: stats.TotalActiveQueues,
			AverageWaitTime:   stats.RoundedAverage(),
		},
	})
}
