package queue

import (
	"math"
	"time"

	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"gorm.io/gorm"
)

// Placement — производное положение участника в очереди. Никогда не
// сохраняется: пересчитывается из Queue и UserQueue на каждый запрос,
// поэтому чтение безопасно при любом числе параллельных запросов.
type Placement struct {
	// Position — ранг участника (с единицы) по времени вступления
	// среди всех активных записей очереди.
	Position int

	// PeopleAhead — сырое значение position - currentNumber - 1.
	// Может быть отрицательным, если счётчик вызова обогнал наивный ранг;
	// для отображения используйте DisplayAhead.
	PeopleAhead int

	// EstimatedWait — оценка ожидания в минутах. nil, пока PeopleAhead < 0:
	// оценка ещё "рассчитывается", это не ноль.
	EstimatedWait *int
}

// DisplayAhead — значение peopleAhead для показа пользователю, не ниже нуля.
func (p Placement) DisplayAhead() int {
	if p.PeopleAhead < 0 {
		return 0
	}
	return p.PeopleAhead
}

// ComputePlacement ищет userID в списке активных участников joined
// (отсортированном по времени вступления) и считает производные величины.
// Второе значение false — пользователя в очереди нет.
func ComputePlacement(q *models.Queue, joined []models.UserQueue, userID uint) (Placement, bool) {
	position := 0
	for i := range joined {
		if joined[i].UserID == userID {
			position = i + 1
			break
		}
	}
	if position == 0 {
		return Placement{}, false
	}

	ahead := position - q.CurrentNumber - 1
	p := Placement{Position: position, PeopleAhead: ahead}
	if ahead >= 0 {
		wait := ahead * q.EstimatedTimePerPerson
		p.EstimatedWait = &wait
	}
	return p, true
}

// JoinedMembers возвращает активные записи очереди в порядке вступления.
// При равном joined_at порядок стабилен за счёт id.
func JoinedMembers(db *gorm.DB, queueID uint) ([]models.UserQueue, error) {
	var entries []models.UserQueue
	err := db.Where("queue_id = ? AND status = ?", queueID, models.StatusJoined).
		Order("joined_at ASC, id ASC").Find(&entries).Error
	return entries, err
}

// WaitMinutes — фактическое ожидание между вступлением и выходом,
// округлённое до целых минут.
func WaitMinutes(joinedAt, leftAt time.Time) int {
	return int(math.Round(leftAt.Sub(joinedAt).Minutes()))
}
