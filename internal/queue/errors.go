package queue

import "errors"

// Ошибки бизнес-правил. Обработчики транслируют их в коды и статусы API,
// всё остальное считается ошибкой хранилища.
var (
	ErrQueueNotFound   = errors.New("очередь не найдена")
	ErrQueuePaused     = errors.New("очередь приостановлена")
	ErrQueueFull       = errors.New("очередь заполнена")
	ErrAlreadyJoined   = errors.New("пользователь уже состоит в этой очереди")
	ErrNotInQueue      = errors.New("активная запись в очереди не найдена")
	ErrQueueEmpty      = errors.New("в очереди нет участников")
	ErrHistoryNotFound = errors.New("запись истории не найдена или не может быть удалена")
)
