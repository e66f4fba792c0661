package queue

import (
	"time"

	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"gorm.io/gorm"
)

// HistoryItem — завершённая запись участия, аннотированная именем очереди.
type HistoryItem struct {
	ID        uint                    `json:"id"`
	QueueName string                  `json:"queue_name"`
	Date      time.Time               `json:"date"` // left_at, либо joined_at если выхода не было
	WaitTime  *int                    `json:"wait_time"`
	Status    models.MembershipStatus `json:"status"`
}

// History возвращает все неактивные (Completed/Cancelled) записи пользователя,
// сначала самые свежие. Для удалённых очередей имя заменяется на "Unknown".
func History(db *gorm.DB, userID uint) ([]HistoryItem, error) {
	var entries []models.UserQueue
	if err := db.Where("user_id = ? AND status <> ?", userID, models.StatusJoined).
		Order("COALESCE(left_at, joined_at) DESC").Find(&entries).Error; err != nil {
		return nil, err
	}

	queueIDs := make([]uint, 0, len(entries))
	for _, e := range entries {
		queueIDs = append(queueIDs, e.QueueID)
	}

	names := make(map[uint]string)
	if len(queueIDs) > 0 {
		var queues []models.Queue
		if err := db.Where("id IN ?", queueIDs).Find(&queues).Error; err != nil {
			return nil, err
		}
		for _, q := range queues {
			names[q.ID] = q.Name
		}
	}

	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		name, ok := names[e.QueueID]
		if !ok {
			name = "Unknown"
		}
		date := e.JoinedAt
		if e.LeftAt != nil {
			date = *e.LeftAt
		}
		items = append(items, HistoryItem{
			ID:        e.ID,
			QueueName: name,
			Date:      date,
			WaitTime:  e.WaitTime,
			Status:    e.Status,
		})
	}
	return items, nil
}

// DeleteHistory удаляет одну завершённую запись пользователя.
// Активную (Joined) запись этим путём удалить нельзя.
func DeleteHistory(db *gorm.DB, userID, entryID uint) error {
	res := db.Where("id = ? AND user_id = ? AND status <> ?",
		entryID, userID, models.StatusJoined).Delete(&models.UserQueue{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrHistoryNotFound
	}
	return nil
}

// DeleteAllHistory удаляет все завершённые записи пользователя и возвращает
// число удалённых. Записи со статусом Joined не затрагиваются.
func DeleteAllHistory(db *gorm.DB, userID uint) (int64, error) {
	res := db.Where("user_id = ? AND status <> ?", userID, models.StatusJoined).
		Delete(&models.UserQueue{})
	return res.RowsAffected, res.Error
}
