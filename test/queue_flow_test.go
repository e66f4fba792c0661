package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/21namanpandey/virtual-queue-management-system/internal/auth"
	"github.com/21namanpandey/virtual-queue-management-system/internal/handlers"
	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"github.com/21namanpandey/virtual-queue-management-system/internal/storage"
	"github.com/21namanpandey/virtual-queue-management-system/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hubOnce sync.Once

// AuthMiddlewareTest подставляет пользователя и роль из заголовков запроса
// вместо разбора JWT.
func AuthMiddlewareTest() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := uint(1)
		if s := c.Request.Header.Get("X-Test-UserID"); s != "" {
			if id, err := strconv.Atoi(s); err == nil {
				userID = uint(id)
			}
		}
		role := c.Request.Header.Get("X-Test-Role")
		if role == "" {
			role = models.RoleUser
		}
		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	_ = godotenv.Load("../.env")

	gin.SetMode(gin.TestMode)

	storage.ConnectTestingDatabase()
	_ = storage.DB.Migrator().DropTable(&models.User{}, &models.Queue{}, &models.UserQueue{}, &models.Notification{})
	require.NoError(t, storage.DB.AutoMigrate(&models.User{}, &models.Queue{}, &models.UserQueue{}, &models.Notification{}),
		"Ошибка при миграции тестовой базы")

	hubOnce.Do(func() { go ws.HubInstance.Run() })

	r := gin.New()

	r.POST("/auth/register", handlers.Register)

	r.GET("/api/queues/:id/ws", ws.QueueWebSocketHandler)

	api := r.Group("/api", AuthMiddlewareTest())
	{
		queues := api.Group("/queues")
		{
			queues.GET("", handlers.GetQueuesHandler)
			queues.POST("", auth.AdminOnly(), handlers.CreateQueueHandler)

			queues.GET("/joined", handlers.GetJoinedQueuesHandler)
			queues.GET("/history", handlers.GetQueueHistoryHandler)
			queues.DELETE("/history/all", handlers.DeleteAllQueueHistoryHandler)
			queues.DELETE("/history/:id", handlers.DeleteQueueHistoryHandler)

			queues.GET("/:id", handlers.GetQueueDetailsHandler)
			queues.PUT("/:id", auth.AdminOnly(), handlers.UpdateQueueHandler)
			queues.DELETE("/:id", auth.AdminOnly(), handlers.DeleteQueueHandler)

			queues.POST("/:id/join", handlers.JoinQueueHandler)
			queues.POST("/:id/leave", handlers.LeaveQueueHandler)
			queues.PATCH("/:id/next", auth.AdminOnly(), handlers.NextInQueueHandler)
			queues.PATCH("/:id/pause", auth.AdminOnly(), handlers.PauseQueueHandler)
		}

		api.GET("/analytics", auth.AdminOnly(), handlers.GetAnalyticsHandler)

		notifications := api.Group("/notifications")
		{
			notifications.GET("", handlers.GetNotificationsHandler)
			notifications.PATCH("/:id", handlers.MarkNotificationReadHandler)
			notifications.DELETE("/:id", handlers.DeleteNotificationHandler)
			notifications.DELETE("", handlers.DeleteAllNotificationsHandler)
		}
	}

	return httptest.NewServer(r)
}

// doJSON выполняет запрос от имени пользователя и декодирует JSON-ответ.
func doJSON(t *testing.T, method, url string, userID uint, role string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-UserID", fmt.Sprintf("%d", userID))
	req.Header.Set("X-Test-Role", role)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var decoded map[string]interface{}
	_ = json.NewDecoder(res.Body).Decode(&decoded)
	return res.StatusCode, decoded
}

func TestQueueFlow(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	// Тестовые пользователи: админ и три участника.
	users := []models.User{
		{Name: "Админ", Email: "admin@example.com", PasswordHash: "x", Phone: "1", Role: models.RoleAdmin},
		{Name: "Иван", Email: "ivan@example.com", PasswordHash: "x", Phone: "2", Role: models.RoleUser},
		{Name: "Пётр", Email: "petr@example.com", PasswordHash: "x", Phone: "3", Role: models.RoleUser},
		{Name: "Анна", Email: "anna@example.com", PasswordHash: "x", Phone: "4", Role: models.RoleUser},
	}
	for i := range users {
		require.NoError(t, storage.DB.Create(&users[i]).Error)
	}
	admin, userA, userB, userC := users[0], users[1], users[2], users[3]

	// 1. Админ создаёт очередь на двоих, 5 минут на человека.
	status, body := doJSON(t, http.MethodPost, ts.URL+"/api/queues", admin.ID, models.RoleAdmin, map[string]interface{}{
		"name":                      "Касса",
		"description":               "Тестовая очередь",
		"max_size":                  2,
		"estimated_time_per_person": 5,
	})
	require.Equal(t, http.StatusCreated, status, "Админ не смог создать очередь")
	data := body["data"].(map[string]interface{})
	queueID := int(data["ID"].(float64))
	queuePath := ts.URL + "/api/queues/" + strconv.Itoa(queueID)

	// Обычному пользователю создание очереди запрещено.
	status, _ = doJSON(t, http.MethodPost, ts.URL+"/api/queues", userA.ID, models.RoleUser, map[string]interface{}{
		"name": "x", "max_size": 1, "estimated_time_per_person": 1,
	})
	assert.Equal(t, http.StatusForbidden, status)

	// 2. Подписываемся на события очереди по WebSocket.
	wsURL := "ws" + ts.URL[4:] + "/api/queues/" + strconv.Itoa(queueID) + "/ws"
	wsConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "Ошибка подключения к WS")
	defer wsConn.Close()
	time.Sleep(100 * time.Millisecond)

	// 3. Двое встают в очередь, третьему места нет.
	status, _ = doJSON(t, http.MethodPost, queuePath+"/join", userA.ID, models.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)

	// Пока есть место, повторное вступление отклоняется именно как дубликат.
	status, body = doJSON(t, http.MethodPost, queuePath+"/join", userA.ID, models.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ALREADY_IN_QUEUE", body["code"])

	status, _ = doJSON(t, http.MethodPost, queuePath+"/join", userB.ID, models.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, http.MethodPost, queuePath+"/join", userC.ID, models.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "QUEUE_FULL", body["code"])

	// WS-сигнал о первом вступлении.
	wsConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, wsPayload, err := wsConn.ReadMessage()
	require.NoError(t, err, "Ошибка чтения WS сообщения")
	var wsMsg map[string]interface{}
	require.NoError(t, json.Unmarshal(wsPayload, &wsMsg))
	assert.Equal(t, "user_joined", wsMsg["event_type"])

	// 4. Детали очереди: двое ожидают.
	status, body = doJSON(t, http.MethodGet, queuePath, userA.ID, models.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	details := body["data"].(map[string]interface{})
	joinedUsers := details["joined_users"].([]interface{})
	assert.Len(t, joinedUsers, 2)

	// 5. Позиция второго участника: номер 2, впереди один, оценка 5 минут.
	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/queues/joined", userB.ID, models.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	joinedList := body["data"].([]interface{})
	require.Len(t, joinedList, 1)
	item := joinedList[0].(map[string]interface{})
	assert.EqualValues(t, 2, item["your_number"])
	assert.EqualValues(t, 1, item["people_ahead"])
	assert.EqualValues(t, 5, item["estimated_wait_time"])

	// 6. Админ вызывает следующего: первым обслуживается Иван.
	status, body = doJSON(t, http.MethodPatch, queuePath+"/next", admin.ID, models.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	queueAfter := body["data"].(map[string]interface{})
	assert.EqualValues(t, 1, queueAfter["current_number"])
	assert.EqualValues(t, 1, queueAfter["current_size"])

	// Счётчик вызова обогнал ранг Петра: оценка "рассчитывается" (null).
	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/queues/joined", userB.ID, models.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	item = body["data"].([]interface{})[0].(map[string]interface{})
	assert.EqualValues(t, 0, item["people_ahead"])
	assert.Nil(t, item["estimated_wait_time"])

	// 7. Пётр выходит сам, его запись становится историей.
	status, _ = doJSON(t, http.MethodPost, queuePath+"/leave", userB.ID, models.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, http.MethodPost, queuePath+"/leave", userB.ID, models.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "NOT_IN_QUEUE", body["code"])

	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/queues/history", userB.ID, models.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	history := body["data"].([]interface{})
	require.Len(t, history, 1)
	record := history[0].(map[string]interface{})
	assert.Equal(t, "Касса", record["queue_name"])
	assert.Equal(t, string(models.StatusCancelled), record["status"])

	// 8. Вызов следующего в пустой очереди отклоняется без сдвига счётчика.
	status, body = doJSON(t, http.MethodPatch, queuePath+"/next", admin.ID, models.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "QUEUE_EMPTY", body["code"])

	// 9. Аналитика: одна активная очередь, один вызванный, очередь пуста.
	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/analytics", admin.ID, models.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	analytics := body["data"].(map[string]interface{})
	assert.EqualValues(t, 1, analytics["total_users_served"])
	assert.EqualValues(t, 1, analytics["total_active_queues"])
	assert.EqualValues(t, 0, analytics["average_wait_time"])

	// 10. Иван получил уведомление о своей очереди.
	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/notifications", userA.ID, models.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	notifications := body["data"].([]interface{})
	found := false
	for _, raw := range notifications {
		n := raw.(map[string]interface{})
		if n["title"] == "Подошла ваша очередь" {
			found = true
		}
	}
	assert.True(t, found, "Обслуженный участник должен получить уведомление о вызове")

	// 11. Очистка истории не трогает активные записи.
	status, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/queues/history/all", userB.ID, models.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/queues/history", userB.ID, models.RoleUser, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])
}
