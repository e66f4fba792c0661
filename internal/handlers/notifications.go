package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"github.com/21namanpandey/virtual-queue-management-system/internal/response"
	"github.com/21namanpandey/virtual-queue-management-system/internal/storage"

	"github.com/gin-gonic/gin"
)

// GetNotificationsHandler возвращает ящик уведомлений пользователя
// @Summary		Уведомления
// @Description	Все уведомления текущего пользователя, свежие первыми
// @Tags			notifications
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	map[string]interface{}	"Уведомления"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/notifications [get]
func GetNotificationsHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	var notifications []models.Notification
	if err := storage.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки уведомлений",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": notifications})
}

// MarkNotificationReadHandler помечает уведомление прочитанным
// @Summary		Прочитать уведомление
// @Tags			notifications
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		string					true	"ID уведомления"
// @Success		200	{object}	map[string]interface{}	"Обновлённое уведомление"
// @Failure		404	{object}	response.ErrorResponse	"Уведомление не найдено (NOTIFICATION_NOT_FOUND)"
// @Router			/api/notifications/{id} [patch]
func MarkNotificationReadHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_NOTIFICATION_ID",
			Message: "Неверный идентификатор уведомления",
		})
		return
	}

	var n models.Notification
	if err := storage.DB.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "NOTIFICATION_NOT_FOUND",
			Message: "Уведомление не найдено",
		})
		return
	}

	n.IsRead = true
	if err := storage.DB.Save(&n).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при обновлении уведомления",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": n})
}

// DeleteNotificationHandler удаляет одно уведомление
// @Summary		Удаление уведомления
// @Tags			notifications
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		string						true	"ID уведомления"
// @Success		200	{object}	response.SuccessResponse	"Уведомление удалено"
// @Failure		404	{object}	response.ErrorResponse		"Уведомление не найдено (NOTIFICATION_NOT_FOUND)"
// @Router			/api/notifications/{id} [delete]
func DeleteNotificationHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_NOTIFICATION_ID",
			Message: "Неверный идентификатор уведомления",
		})
		return
	}

	res := storage.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении уведомления",
			Details: res.Error.Error(),
		})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "NOTIFICATION_NOT_FOUND",
			Message: "Уведомление не найдено",
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Уведомление удалено",
	})
}

// DeleteAllNotificationsHandler очищает ящик уведомлений пользователя
// @Summary		Очистка уведомлений
// @Tags			notifications
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Уведомления удалены"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/notifications [delete]
func DeleteAllNotificationsHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	res := storage.DB.Where("user_id = ?", userID).Delete(&models.Notification{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении уведомлений",
			Details: res.Error.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("Удалено уведомлений: %d", res.RowsAffected),
	})
}
