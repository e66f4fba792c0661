package notify

import (
	"log"

	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"github.com/21namanpandey/virtual-queue-management-system/internal/storage"
)

// Push кладёт уведомление в почтовый ящик пользователя. Доставка не
// гарантируется ровно один раз: клиент забирает ящик опросом. Ошибка записи
// не должна ронять вызывающую операцию, поэтому только логируется.
func Push(userID uint, title, message string) {
	n := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
	}
	if err := storage.DB.Create(&n).Error; err != nil {
		log.Println("Ошибка создания уведомления:", err)
	}
}
