package handlers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"github.com/21namanpandey/virtual-queue-management-system/internal/notify"
	"github.com/21namanpandey/virtual-queue-management-system/internal/response"
	"github.com/21namanpandey/virtual-queue-management-system/internal/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type ProfileResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// @Summary		Профиль пользователя
// @Description	Возвращает профиль текущего пользователя
// @Tags			auth
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	ProfileResponse			"Профиль"
// @Failure		404	{object}	response.ErrorResponse	"Пользователь не найден (USER_NOT_FOUND)"
// @Router			/auth/profile [get]
func GetProfile(c *gin.Context) {
	userID := c.GetUint("userID")

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "USER_NOT_FOUND",
			Message: "Пользователь не найден",
		})
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Phone: user.Phone,
		Role:  user.Role,
	})
}

type EditProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// @Summary		Редактирование профиля
// @Description	Обновляет имя и телефон текущего пользователя
// @Tags			auth
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			profile	body		EditProfileRequest			true	"Новые данные"
// @Success		200		{object}	response.SuccessResponse	"Профиль обновлён"
// @Failure		404		{object}	response.ErrorResponse		"Пользователь не найден (USER_NOT_FOUND)"
// @Failure		500		{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/auth/profile/edit [put]
func EditProfile(c *gin.Context) {
	userID := c.GetUint("userID")

	var req EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "USER_NOT_FOUND",
			Message: "Пользователь не найден",
		})
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}

	if err := storage.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при обновлении профиля",
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Профиль успешно обновлён",
	})
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// @Summary		Запрос сброса пароля
// @Description	Генерирует токен сброса и доставляет ссылку уведомлением
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			email	body		ForgotPasswordRequest		true	"Email пользователя"
// @Success		200		{object}	response.SuccessResponse	"Ссылка отправлена"
// @Failure		404		{object}	response.ErrorResponse		"Пользователь не найден (USER_NOT_FOUND)"
// @Router			/auth/forgot-password [post]
func ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	var user models.User
	if err := storage.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "USER_NOT_FOUND",
			Message: "Пользователь не найден",
		})
		return
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "TOKEN_GENERATION_ERROR",
			Message: "Ошибка генерации токена сброса",
		})
		return
	}
	resetToken := hex.EncodeToString(raw)

	// В базе хранится только хеш токена.
	hashed := sha256.Sum256([]byte(resetToken))
	expire := time.Now().Add(10 * time.Minute)
	user.ResetPasswordToken = hex.EncodeToString(hashed[:])
	user.ResetPasswordExpire = &expire
	if err := storage.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при сохранении токена сброса",
		})
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", os.Getenv("CLIENT_URL"), resetToken)
	notify.Push(user.ID, "Запрошен сброс пароля",
		fmt.Sprintf("Вы запросили сброс пароля. Ссылка для сброса: %s. Действительна 10 минут.", resetURL))

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Ссылка для сброса пароля отправлена уведомлением",
	})
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// @Summary		Сброс пароля
// @Description	Устанавливает новый пароль по токену сброса
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			token		path		string						true	"Токен сброса"
// @Param			password	body		ResetPasswordRequest		true	"Новый пароль"
// @Success		200			{object}	response.SuccessResponse	"Пароль сброшен"
// @Failure		400			{object}	response.ErrorResponse		"Неверный или просроченный токен (INVALID_RESET_TOKEN)"
// @Router			/auth/reset-password/{token} [post]
func ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	hashed := sha256.Sum256([]byte(c.Param("token")))
	var user models.User
	if err := storage.DB.Where("reset_password_token = ? AND reset_password_expire > ?",
		hex.EncodeToString(hashed[:]), time.Now()).First(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_RESET_TOKEN",
			Message: "Неверный или просроченный токен сброса",
		})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "PASSWORD_HASH_ERROR",
			Message: "Ошибка при хешировании пароля",
		})
		return
	}

	user.PasswordHash = string(hashedPassword)
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	if err := storage.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при сохранении нового пароля",
		})
		return
	}

	notify.Push(user.ID, "Пароль сброшен",
		"Ваш пароль успешно изменён. Теперь вы можете войти с новым паролем.")

	c.JSON(http.StatusOK, response.SuccessResponse{
		Success: true,
		Message: "Пароль успешно сброшен",
	})
}
