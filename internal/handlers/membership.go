package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"github.com/21namanpandey/virtual-queue-management-system/internal/notify"
	"github.com/21namanpandey/virtual-queue-management-system/internal/queue"
	"github.com/21namanpandey/virtual-queue-management-system/internal/response"
	"github.com/21namanpandey/virtual-queue-management-system/internal/storage"
	"github.com/21namanpandey/virtual-queue-management-system/internal/ws"

	"github.com/gin-gonic/gin"
)

// respondQueueError переводит ошибку бизнес-правила в код и статус API.
// Каждое проверяемое условие сохраняет свой отличимый код.
func respondQueueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queue.ErrQueueNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "QUEUE_NOT_FOUND",
			Message: "Очередь не найдена",
		})
	case errors.Is(err, queue.ErrQueuePaused):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "QUEUE_PAUSED",
			Message: "Очередь приостановлена",
		})
	case errors.Is(err, queue.ErrQueueFull):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "QUEUE_FULL",
			Message: "Очередь заполнена",
		})
	case errors.Is(err, queue.ErrAlreadyJoined):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "ALREADY_IN_QUEUE",
			Message: "Вы уже состоите в этой очереди",
		})
	case errors.Is(err, queue.ErrNotInQueue):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "NOT_IN_QUEUE",
			Message: "Активная запись в очереди не найдена",
		})
	case errors.Is(err, queue.ErrQueueEmpty):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "QUEUE_EMPTY",
			Message: "В очереди нет участников",
		})
	case errors.Is(err, queue.ErrHistoryNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "HISTORY_NOT_FOUND",
			Message: "Запись истории не найдена или не может быть удалена",
		})
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Внутренняя ошибка",
			Details: err.Error(),
		})
	}
}

// JoinQueueHandler обрабатывает запрос на вступление в очередь
// @Summary		Вступление в очередь
// @Description	Добавляет пользователя в очередь и увеличивает её размер
// @Tags			queue
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		string						true	"ID очереди"
// @Success		200	{object}	response.SuccessResponse	"Успешное вступление"
// @Failure		400	{object}	response.ErrorResponse		"QUEUE_PAUSED, QUEUE_FULL, ALREADY_IN_QUEUE, INVALID_QUEUE_ID"
// @Failure		404	{object}	response.ErrorResponse		"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id}/join [post]
func JoinQueueHandler(c *gin.Context) {
	queueID, ok := parseQueueID(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	q, err := queue.Join(storage.DB, userID, queueID)
	if err != nil {
		respondQueueError(c, err)
		return
	}

	notify.Push(userID, "Вы встали в очередь", fmt.Sprintf("Вы встали в очередь «%s».", q.Name))

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: ws.EventUserJoined,
		QueueID:   c.Param("id"),
		Data:      map[string]interface{}{"user_id": userID},
	})

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Вы успешно встали в очередь",
	})
}

// LeaveQueueHandler обрабатывает добровольный выход из очереди
// @Summary		Выход из очереди
// @Description	Переводит запись участия в Cancelled и уменьшает размер очереди
// @Tags			queue
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		string						true	"ID очереди"
// @Success		200	{object}	response.SuccessResponse	"Успешный выход"
// @Failure		400	{object}	response.ErrorResponse		"NOT_IN_QUEUE, INVALID_QUEUE_ID"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id}/leave [post]
func LeaveQueueHandler(c *gin.Context) {
	queueID, ok := parseQueueID(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	q, _, err := queue.Leave(storage.DB, userID, queueID)
	if err != nil {
		respondQueueError(c, err)
		return
	}

	if q != nil {
		notify.Push(userID, "Вы вышли из очереди", fmt.Sprintf("Вы покинули очередь «%s».", q.Name))
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: ws.EventUserLeft,
		QueueID:   c.Param("id"),
		Data:      map[string]interface{}{"user_id": userID},
	})

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Вы успешно вышли из очереди",
	})
}

// NextInQueueHandler вызывает следующего участника (только админ)
// @Summary		Вызов следующего
// @Description	Отмечает самую раннюю активную запись как Completed и двигает счётчик вызова
// @Tags			queue
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		string					true	"ID очереди"
// @Success		200	{object}	map[string]interface{}	"Обновлённая очередь"
// @Failure		400	{object}	response.ErrorResponse	"QUEUE_EMPTY, INVALID_QUEUE_ID"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id}/next [patch]
func NextInQueueHandler(c *gin.Context) {
	queueID, ok := parseQueueID(c)
	if !ok {
		return
	}

	q, served, err := queue.Advance(storage.DB, queueID)
	if err != nil {
		respondQueueError(c, err)
		return
	}

	if served != nil {
		notify.Push(served.UserID, "Подошла ваша очередь",
			fmt.Sprintf("Подошла ваша очередь в «%s».", q.Name))

		ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
			EventType: ws.EventUserServed,
			QueueID:   c.Param("id"),
			Data: map[string]interface{}{
				"user_id":        served.UserID,
				"current_number": q.CurrentNumber,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Вызван следующий участник очереди",
		"data":    q,
	})
}

// PauseQueueHandler приостанавливает или возобновляет очередь (только админ)
// @Summary		Пауза/возобновление очереди
// @Description	Переключает статус очереди между active и paused
// @Tags			queue
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		string					true	"ID очереди"
// @Success		200	{object}	map[string]interface{}	"Обновлённая очередь"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id}/pause [patch]
func PauseQueueHandler(c *gin.Context) {
	queueID, ok := parseQueueID(c)
	if !ok {
		return
	}

	q, err := queue.TogglePause(storage.DB, queueID)
	if err != nil {
		respondQueueError(c, err)
		return
	}

	notify.Push(q.AdminID, "Статус очереди изменён",
		fmt.Sprintf("Очередь «%s» теперь в статусе %s.", q.Name, q.Status))

	event := ws.EventQueuePaused
	if q.Status == models.QueueActive {
		event = ws.EventQueueResumed
	}
	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: event,
		QueueID:   c.Param("id"),
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Очередь переведена в статус %s", q.Status),
		"data":    q,
	})
}
