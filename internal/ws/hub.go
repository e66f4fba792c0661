package ws

import "encoding/json"

// Типы событий очереди. Сообщения — только сигнал "состояние изменилось":
// клиент всегда перечитывает позицию и оценку через обычные запросы,
// а не доверяет данным из сообщения.
const (
	EventUserJoined   = "user_joined"
	EventUserLeft     = "user_left"
	EventUserServed   = "user_served"
	EventQueuePaused  = "queue_paused"
	EventQueueResumed = "queue_resumed"
	EventQueueDeleted = "queue_deleted"
)

// WSMessage — событие, рассылаемое подписчикам одной очереди.
type WSMessage struct {
	EventType string                 `json:"event_type"`
	QueueID   string                 `json:"queue_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Hub хранит подключения клиентов, сгруппированные по queueID.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMessage
}

type broadcastMessage struct {
	queueID string
	payload []byte
}

// Глобальный экземпляр хаба, запускается из main.
var HubInstance = NewHub()

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMessage, 64),
	}
}

// Run обрабатывает регистрацию, отключение и рассылку. Запускать в горутине.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.QueueID] == nil {
				h.clients[client.QueueID] = make(map[*Client]bool)
			}
			h.clients[client.QueueID][client] = true
		case client := <-h.unregister:
			if clients, ok := h.clients[client.QueueID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.QueueID)
					}
				}
			}
		case message := <-h.broadcast:
			for client := range h.clients[message.queueID] {
				select {
				case client.Send <- message.payload:
				default:
					close(client.Send)
					delete(h.clients[message.queueID], client)
				}
			}
		}
	}
}

// BroadcastWSMessage сериализует событие и отправляет его подписчикам очереди.
// Сигнал не критичен: если хаб не успевает, событие сбрасывается — клиенты
// и так опрашивают состояние.
func (h *Hub) BroadcastWSMessage(msg WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- broadcastMessage{queueID: msg.QueueID, payload: payload}:
	default:
	}
}
