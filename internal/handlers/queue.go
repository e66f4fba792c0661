package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"github.com/21namanpandey/virtual-queue-management-system/internal/notify"
	"github.com/21namanpandey/virtual-queue-management-system/internal/queue"
	"github.com/21namanpandey/virtual-queue-management-system/internal/response"
	"github.com/21namanpandey/virtual-queue-management-system/internal/storage"
	"github.com/21namanpandey/virtual-queue-management-system/internal/ws"

	"github.com/gin-gonic/gin"
)

// parseQueueID достаёт идентификатор очереди из пути. false — ответ уже отправлен.
func parseQueueID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_QUEUE_ID",
			Message: "Неверный идентификатор очереди",
		})
		return 0, false
	}
	return uint(id), true
}

type CreateQueueRequest struct {
	Name                   string `json:"name" binding:"required"`
	Description            string `json:"description"`
	MaxSize                int    `json:"max_size" binding:"required,gte=1"`
	EstimatedTimePerPerson int    `json:"estimated_time_per_person" binding:"required,gt=0"`
}

// CreateQueueHandler создаёт новую очередь
// @Summary		Создание очереди
// @Description	Создаёт очередь с заданной вместимостью и временем обслуживания (только админ)
// @Tags			queue
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			queue	body		CreateQueueRequest		true	"Параметры очереди"
// @Success		201		{object}	map[string]interface{}	"Созданная очередь"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues [post]
func CreateQueueHandler(c *gin.Context) {
	var req CreateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	adminID := c.GetUint("userID")
	q := models.Queue{
		Name:                   req.Name,
		Description:            req.Description,
		MaxSize:                req.MaxSize,
		EstimatedTimePerPerson: req.EstimatedTimePerPerson,
		Status:                 models.QueueActive,
		AdminID:                adminID,
	}

	if err := storage.DB.Create(&q).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании очереди",
			Details: err.Error(),
		})
		return
	}

	notify.Push(adminID, "Очередь создана", fmt.Sprintf("Очередь «%s» создана.", q.Name))

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": q})
}

// GetQueuesHandler возвращает все очереди системы
// @Summary		Список очередей
// @Tags			queue
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	map[string]interface{}	"Список очередей"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues [get]
func GetQueuesHandler(c *gin.Context) {
	var queues []models.Queue
	if err := storage.DB.Find(&queues).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки очередей",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": queues})
}

type QueueMember struct {
	EntryID  uint       `json:"entry_id"`
	UserID   uint       `json:"user_id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Phone    string     `json:"phone"`
	JoinedAt time.Time  `json:"joined_at"`
	LeftAt   *time.Time `json:"left_at,omitempty"`
	WaitTime *int       `json:"wait_time,omitempty"`
}

type QueueDetailsResponse struct {
	Queue       models.Queue  `json:"queue"`
	JoinedUsers []QueueMember `json:"joined_users"`
	ServedUsers []QueueMember `json:"served_users"`
}

// GetQueueDetailsHandler возвращает очередь со списками ожидающих и обслуженных
// @Summary		Детали очереди
// @Description	Очередь, активные участники (в порядке вступления) и обслуженные (свежие первыми)
// @Tags			queue
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		string					true	"ID очереди"
// @Success		200	{object}	map[string]interface{}	"Детали очереди"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id} [get]
func GetQueueDetailsHandler(c *gin.Context) {
	queueID, ok := parseQueueID(c)
	if !ok {
		return
	}

	var q models.Queue
	if err := storage.DB.First(&q, queueID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "QUEUE_NOT_FOUND",
			Message: "Очередь не найдена",
		})
		return
	}

	var joined []models.UserQueue
	if err := storage.DB.Preload("User").
		Where("queue_id = ? AND status = ?", queueID, models.StatusJoined).
		Order("joined_at ASC, id ASC").Find(&joined).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки записей очереди",
			Details: err.Error(),
		})
		return
	}

	var served []models.UserQueue
	if err := storage.DB.Preload("User").
		Where("queue_id = ? AND status = ?", queueID, models.StatusCompleted).
		Order("left_at DESC").Find(&served).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки обслуженных участников",
			Details: err.Error(),
		})
		return
	}

	toMember := func(e models.UserQueue) QueueMember {
		return QueueMember{
			EntryID:  e.ID,
			UserID:   e.UserID,
			Name:     e.User.Name,
			Email:    e.User.Email,
			Phone:    e.User.Phone,
			JoinedAt: e.JoinedAt,
			LeftAt:   e.LeftAt,
			WaitTime: e.WaitTime,
		}
	}

	details := QueueDetailsResponse{Queue: q}
	for _, e := range joined {
		details.JoinedUsers = append(details.JoinedUsers, toMember(e))
	}
	for _, e := range served {
		details.ServedUsers = append(details.ServedUsers, toMember(e))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": details})
}

type UpdateQueueRequest struct {
	Name                   *string `json:"name"`
	Description            *string `json:"description"`
	MaxSize                *int    `json:"max_size" binding:"omitempty,gte=1"`
	EstimatedTimePerPerson *int    `json:"estimated_time_per_person" binding:"omitempty,gt=0"`
}

// UpdateQueueHandler обновляет параметры очереди
// @Summary		Обновление очереди
// @Description	Меняет название, описание, вместимость и время обслуживания (только админ). Счётчики и владельца поменять нельзя.
// @Tags			queue
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			id		path		string					true	"ID очереди"
// @Param			queue	body		UpdateQueueRequest		true	"Новые параметры"
// @Success		200		{object}	map[string]interface{}	"Обновлённая очередь"
// @Failure		404		{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id} [put]
func UpdateQueueHandler(c *gin.Context) {
	queueID, ok := parseQueueID(c)
	if !ok {
		return
	}

	var req UpdateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	var q models.Queue
	if err := storage.DB.First(&q, queueID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "QUEUE_NOT_FOUND",
			Message: "Очередь не найдена",
		})
		return
	}

	if req.Name != nil {
		q.Name = *req.Name
	}
	if req.Description != nil {
		q.Description = *req.Description
	}
	if req.MaxSize != nil {
		q.MaxSize = *req.MaxSize
	}
	if req.EstimatedTimePerPerson != nil {
		q.EstimatedTimePerPerson = *req.EstimatedTimePerPerson
	}

	if err := storage.DB.Save(&q).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при обновлении очереди",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": q})
}

// DeleteQueueHandler удаляет очередь и каскадно все записи участия
// @Summary		Удаление очереди
// @Tags			queue
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		string						true	"ID очереди"
// @Success		200	{object}	response.SuccessResponse	"Очередь удалена"
// @Failure		404	{object}	response.ErrorResponse		"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id} [delete]
func DeleteQueueHandler(c *gin.Context) {
	queueID, ok := parseQueueID(c)
	if !ok {
		return
	}

	q, err := queue.Delete(storage.DB, queueID)
	if err != nil {
		respondQueueError(c, err)
		return
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: ws.EventQueueDeleted,
		QueueID:   c.Param("id"),
		Data:      map[string]interface{}{"name": q.Name},
	})

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Очередь успешно удалена",
	})
}
