package tasks

import (
	"log"
	"time"

	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"github.com/21namanpandey/virtual-queue-management-system/internal/storage"

	"github.com/robfig/cron/v3"
)

// CleanOldNotifications удаляет прочитанные уведомления старше 30 дней,
// чтобы ящики пользователей не разрастались бесконечно.
func CleanOldNotifications() {
	threshold := time.Now().AddDate(0, 0, -30)
	res := storage.DB.Where("is_read = ? AND created_at < ?", true, threshold).
		Delete(&models.Notification{})
	if res.Error != nil {
		log.Println("Ошибка при удалении старых уведомлений:", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Удалено старых уведомлений: %d\n", res.RowsAffected)
	}
}

// CleanOrphanMemberships удаляет записи участия, очередь которых уже
// удалена. Удаление очереди каскадно чистит записи само, это страховка
// на случай сбоя между двумя шагами.
func CleanOrphanMemberships() {
	sub := storage.DB.Model(&models.Queue{}).Select("id")
	res := storage.DB.Where("queue_id NOT IN (?)", sub).Delete(&models.UserQueue{})
	if res.Error != nil {
		log.Println("Ошибка при удалении осиротевших записей очередей:", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Удалено осиротевших записей очередей: %d\n", res.RowsAffected)
	}
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Чистка уведомлений каждый день в 03:00.
	if _, err := c.AddFunc("0 0 3 * * *", CleanOldNotifications); err != nil {
		log.Println("Ошибка запуска cron-задачи CleanOldNotifications:", err)
	}

	// Страховочная чистка осиротевших записей каждые 6 часов.
	if _, err := c.AddFunc("0 0 */6 * * *", CleanOrphanMemberships); err != nil {
		log.Println("Ошибка запуска cron-задачи CleanOrphanMemberships:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
