package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"github.com/21namanpandey/virtual-queue-management-system/internal/queue"
	"github.com/21namanpandey/virtual-queue-management-system/internal/response"
	"github.com/21namanpandey/virtual-queue-management-system/internal/storage"

	"github.com/gin-gonic/gin"
)

// JoinedQueueItem — представление одной очереди, в которой пользователь стоит
// сейчас. Все производные поля (your_number, people_ahead, оценка ожидания)
// пересчитываются на каждый запрос и нигде не хранятся.
type JoinedQueueItem struct {
	QueueID                uint               `json:"queue_id"`
	Name                   string             `json:"name"`
	CurrentNumber          int                `json:"current_number"`
	MaxSize                int                `json:"max_size"`
	EstimatedTimePerPerson int                `json:"estimated_time_per_person"`
	Status                 models.QueueStatus `json:"status"`
	YourNumber             int                `json:"your_number"`
	PeopleAhead            int                `json:"people_ahead"`                  // для показа, не ниже 0
	EstimatedWaitTime      *int               `json:"estimated_wait_time"`          // nil — оценка ещё рассчитывается
	History                JoinedHistory      `json:"history"`
}

type JoinedHistory struct {
	Date     time.Time `json:"date"` // момент вступления
	WaitTime *int      `json:"wait_time"`
}

// GetJoinedQueuesHandler возвращает очереди пользователя с его позицией
// @Summary		Мои очереди
// @Description	Очереди, в которых пользователь стоит сейчас, с позицией и оценкой ожидания
// @Tags			profile
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	map[string]interface{}	"Список очередей с позициями"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/joined [get]
func GetJoinedQueuesHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	var entries []models.UserQueue
	if err := storage.DB.
		Where("user_id = ? AND status = ?", userID, models.StatusJoined).
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки записей пользователя",
			Details: err.Error(),
		})
		return
	}

	items := make([]JoinedQueueItem, 0, len(entries))
	for _, entry := range entries {
		var q models.Queue
		if err := storage.DB.First(&q, entry.QueueID).Error; err != nil {
			// Очередь удалили, пока пользователь в ней стоял.
			continue
		}

		joined, err := queue.JoinedMembers(storage.DB, q.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "DB_ERROR",
				Message: "Ошибка загрузки участников очереди",
				Details: err.Error(),
			})
			return
		}

		placement, ok := queue.ComputePlacement(&q, joined, userID)
		if !ok {
			continue
		}

		items = append(items, JoinedQueueItem{
			QueueID:                q.ID,
			Name:                   q.Name,
			CurrentNumber:          q.CurrentNumber,
			MaxSize:                q.MaxSize,
			EstimatedTimePerPerson: q.EstimatedTimePerPerson,
			Status:                 q.Status,
			YourNumber:             placement.Position,
			PeopleAhead:            placement.DisplayAhead(),
			EstimatedWaitTime:      placement.EstimatedWait,
			// В history активной записи wait_time — текущая оценка ожидания,
			// а не фактическое время: факт появляется только после выхода.
			History: JoinedHistory{
				Date:     entry.JoinedAt,
				WaitTime: placement.EstimatedWait,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

// GetQueueHistoryHandler возвращает историю участия пользователя
// @Summary		История очередей
// @Description	Завершённые и отменённые записи пользователя, свежие первыми
// @Tags			profile
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	map[string]interface{}	"История"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/history [get]
func GetQueueHistoryHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	items, err := queue.History(storage.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки истории",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

// DeleteQueueHistoryHandler удаляет одну запись истории
// @Summary		Удаление записи истории
// @Description	Удаляет завершённую запись. Активную запись (Joined) удалить нельзя.
// @Tags			profile
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		string						true	"ID записи"
// @Success		200	{object}	response.SuccessResponse	"Запись удалена"
// @Failure		404	{object}	response.ErrorResponse		"Запись не найдена (HISTORY_NOT_FOUND)"
// @Router			/api/queues/history/{id} [delete]
func DeleteQueueHistoryHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	entryID, err := strconv.Atoi(c.Param("id"))
	if err != nil || entryID <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_HISTORY_ID",
			Message: "Неверный идентификатор записи истории",
		})
		return
	}

	if err := queue.DeleteHistory(storage.DB, userID, uint(entryID)); err != nil {
		respondQueueError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Запись истории удалена",
	})
}

// DeleteAllQueueHistoryHandler удаляет всю историю пользователя
// @Summary		Очистка истории
// @Description	Удаляет все завершённые записи пользователя; активные не затрагиваются
// @Tags			profile
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"История очищена"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/history/all [delete]
func DeleteAllQueueHistoryHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	deleted, err := queue.DeleteAllHistory(storage.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при очистке истории",
			Details: err.Error(),
		})
		return
	}

	if deleted == 0 {
		c.JSON(http.StatusOK, response.SuccessResponse{
			Success: false,
			Message: "Записей истории для удаления не найдено",
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("Удалено записей истории: %d", deleted),
	})
}
