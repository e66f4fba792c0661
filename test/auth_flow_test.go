package test

import (
	"net/http"
	"testing"

	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"github.com/21namanpandey/virtual-queue-management-system/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Проверяет регистрацию через реальный обработчик: приветственное
// уведомление, повторный email и секретный код администратора.
func TestRegisterFlow(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	t.Setenv("ADMIN_SECRET_CODE", "очень-секретно")

	registerURL := ts.URL + "/auth/register"

	// 1. Обычный пользователь регистрируется успешно.
	status, body := doJSON(t, http.MethodPost, registerURL, 0, "", map[string]interface{}{
		"name":     "Мария",
		"email":    "maria@example.com",
		"password": "секрет123",
		"phone":    "7",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])

	var user models.User
	require.NoError(t, storage.DB.Where("email = ?", "maria@example.com").First(&user).Error)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "секрет123", user.PasswordHash, "Пароль должен храниться в виде хеша")

	// Приветственное уведомление создаётся сразу после регистрации.
	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/notifications", user.ID, models.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	notifications := body["data"].([]interface{})
	require.Len(t, notifications, 1)
	n := notifications[0].(map[string]interface{})
	assert.Equal(t, "Добро пожаловать", n["title"])

	// 2. Повторная регистрация на тот же email отклоняется.
	status, body = doJSON(t, http.MethodPost, registerURL, 0, "", map[string]interface{}{
		"name":     "Мария-2",
		"email":    "maria@example.com",
		"password": "секрет456",
		"phone":    "8",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "EMAIL_EXISTS", body["code"])

	// 3. Роль admin требует верный секретный код.
	status, body = doJSON(t, http.MethodPost, registerURL, 0, "", map[string]interface{}{
		"name":        "Самозванец",
		"email":       "fake-admin@example.com",
		"password":    "секрет123",
		"phone":       "9",
		"role":        models.RoleAdmin,
		"secret_code": "не тот код",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "INVALID_SECRET_CODE", body["code"])

	status, _ = doJSON(t, http.MethodPost, registerURL, 0, "", map[string]interface{}{
		"name":        "Директор",
		"email":       "director@example.com",
		"password":    "секрет123",
		"phone":       "10",
		"role":        models.RoleAdmin,
		"secret_code": "очень-секретно",
	})
	require.Equal(t, http.StatusCreated, status)

	var admin models.User
	require.NoError(t, storage.DB.Where("email = ?", "director@example.com").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	// 4. Ошибка валидации: нет обязательных полей.
	status, body = doJSON(t, http.MethodPost, registerURL, 0, "", map[string]interface{}{
		"email": "не-email",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}
