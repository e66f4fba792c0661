package queue

import (
	"fmt"
	"math"

	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"gorm.io/gorm"
)

// Stats — сводные показатели по всем очередям системы.
type Stats struct {
	// TotalUsersServed — сумма currentNumber по всем очередям. Это прокси
	// числа обслуженных, а не счёт по записям участия — упрощение сознательное.
	TotalUsersServed int

	// TotalActiveQueues — число очередей в статусе active.
	TotalActiveQueues int

	// AverageWaitTime — средневзвешенная оценка ожидания в минутах,
	// без округления. Пороговые проверки работают по сырому значению,
	// в ответ API уходит округлённое.
	AverageWaitTime float64
}

// RoundedAverage — среднее ожидание, округлённое до целых минут.
func (s Stats) RoundedAverage() int {
	return int(math.Round(s.AverageWaitTime))
}

// CollectStats агрегирует показатели по всем очередям (без фильтра по
// админу). Чистое чтение, состояние не меняет.
func CollectStats(db *gorm.DB) (Stats, error) {
	var queues []models.Queue
	if err := db.Find(&queues).Error; err != nil {
		return Stats{}, err
	}

	var s Stats
	weighted, totalSize := 0, 0
	for _, q := range queues {
		s.TotalUsersServed += q.CurrentNumber
		if q.Status == models.QueueActive {
			s.TotalActiveQueues++
		}
		weighted += q.EstimatedTimePerPerson * q.CurrentSize
		totalSize += q.CurrentSize
	}
	if totalSize == 0 {
		totalSize = 1
	}
	s.AverageWaitTime = float64(weighted) / float64(totalSize)
	return s, nil
}

// Advisory — пороговое извещение, адресуемое запросившему админу.
type Advisory struct {
	Title   string
	Message string
}

// Advisories возвращает извещения по сработавшим порогам. Дедупликации нет:
// пока условие держится, каждый вызов аналитики порождает извещение заново.
func (s Stats) Advisories() []Advisory {
	var out []Advisory
	if s.TotalUsersServed > 1000 {
		out = append(out, Advisory{
			Title:   "Рубеж достигнут: обслужено более 1000 пользователей",
			Message: fmt.Sprintf("Поздравляем! Всего обслужено %d пользователей.", s.TotalUsersServed),
		})
	}
	if s.AverageWaitTime > 20 {
		out = append(out, Advisory{
			Title: "Высокое среднее время ожидания",
			Message: fmt.Sprintf("Среднее ожидание по всем очередям — %d минут. Стоит пересмотреть их пропускную способность.",
				s.RoundedAverage()),
		})
	}
	if s.TotalActiveQueues == 0 {
		out = append(out, Advisory{
			Title:   "Нет активных очередей",
			Message: "Сейчас нет ни одной активной очереди. Проверьте и активируйте очереди при необходимости.",
		})
	}
	return out
}
