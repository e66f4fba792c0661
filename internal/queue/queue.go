package queue

import (
	"errors"
	"time"

	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"gorm.io/gorm"
)

// Выражение для уменьшения current_size с нижней границей 0.
// CASE вместо GREATEST, чтобы одинаково работало в Postgres и SQLite.
const decrementSize = "CASE WHEN current_size > 0 THEN current_size - 1 ELSE 0 END"

// Join ставит пользователя в очередь и увеличивает current_size.
// Все проверки и инкремент выполняются в одной транзакции, сам инкремент —
// условным UPDATE, так что две конкурирующие заявки не переполнят очередь.
func Join(db *gorm.DB, userID, queueID uint) (*models.Queue, error) {
	var q models.Queue
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&q, queueID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQueueNotFound
			}
			return err
		}
		if q.Status != models.QueueActive {
			return ErrQueuePaused
		}
		if q.CurrentSize >= q.MaxSize {
			return ErrQueueFull
		}

		var existing models.UserQueue
		err := tx.Where("user_id = ? AND queue_id = ? AND status = ?",
			userID, queueID, models.StatusJoined).First(&existing).Error
		if err == nil {
			return ErrAlreadyJoined
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		res := tx.Model(&models.Queue{}).
			Where("id = ? AND status = ? AND current_size < max_size", queueID, models.QueueActive).
			UpdateColumn("current_size", gorm.Expr("current_size + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Очередь успели заполнить или приостановить между чтением и записью.
			return ErrQueueFull
		}
		q.CurrentSize++

		entry := models.UserQueue{
			UserID:   userID,
			QueueID:  queueID,
			Status:   models.StatusJoined,
			JoinedAt: time.Now(),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Leave переводит активную запись пользователя в Cancelled, фиксирует время
// выхода и ожидание в минутах, после чего уменьшает current_size.
func Leave(db *gorm.DB, userID, queueID uint) (*models.Queue, *models.UserQueue, error) {
	var q *models.Queue
	var entry models.UserQueue
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND queue_id = ? AND status = ?",
			userID, queueID, models.StatusJoined).First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotInQueue
			}
			return err
		}

		now := time.Now()
		wait := WaitMinutes(entry.JoinedAt, now)
		entry.Status = models.StatusCancelled
		entry.LeftAt = &now
		entry.WaitTime = &wait
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}

		var queue models.Queue
		if err := tx.First(&queue, queueID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Очередь уже удалили — запись всё равно закрыта.
				return nil
			}
			return err
		}
		if err := tx.Model(&models.Queue{}).Where("id = ?", queueID).
			UpdateColumn("current_size", gorm.Expr(decrementSize)).Error; err != nil {
			return err
		}
		if queue.CurrentSize > 0 {
			queue.CurrentSize--
		}
		q = &queue
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return q, &entry, nil
}

// Advance вызывает следующего участника: самая ранняя по joined_at запись
// становится Completed. Счётчики двигаются всегда, когда проверка
// current_size > 0 прошла, даже если записи Joined не нашлось — поведение
// исторически именно такое, и счётная арифметика на него завязана.
func Advance(db *gorm.DB, queueID uint) (*models.Queue, *models.UserQueue, error) {
	var q models.Queue
	var served *models.UserQueue
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&q, queueID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQueueNotFound
			}
			return err
		}
		if q.CurrentSize <= 0 {
			return ErrQueueEmpty
		}

		var entry models.UserQueue
		err := tx.Where("queue_id = ? AND status = ?", queueID, models.StatusJoined).
			Order("joined_at ASC, id ASC").First(&entry).Error
		switch {
		case err == nil:
			now := time.Now()
			wait := WaitMinutes(entry.JoinedAt, now)
			entry.Status = models.StatusCompleted
			entry.LeftAt = &now
			entry.WaitTime = &wait
			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
			served = &entry
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Участника нет, но счётчики всё равно двигаются.
		default:
			return err
		}

		if err := tx.Model(&models.Queue{}).Where("id = ?", queueID).
			UpdateColumns(map[string]interface{}{
				"current_number": gorm.Expr("current_number + 1"),
				"current_size":   gorm.Expr(decrementSize),
			}).Error; err != nil {
			return err
		}
		return tx.First(&q, queueID).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &q, served, nil
}

// TogglePause переключает очередь между active и paused.
// Записи участия не затрагиваются.
func TogglePause(db *gorm.DB, queueID uint) (*models.Queue, error) {
	var q models.Queue
	if err := db.First(&q, queueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueueNotFound
		}
		return nil, err
	}

	if q.Status == models.QueueActive {
		q.Status = models.QueuePaused
	} else {
		q.Status = models.QueueActive
	}
	if err := db.Save(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// Delete удаляет очередь вместе со всеми записями участия в ней.
func Delete(db *gorm.DB, queueID uint) (*models.Queue, error) {
	var q models.Queue
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&q, queueID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQueueNotFound
			}
			return err
		}
		if err := tx.Delete(&models.Queue{}, queueID).Error; err != nil {
			return err
		}
		return tx.Where("queue_id = ?", queueID).Delete(&models.UserQueue{}).Error
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}
