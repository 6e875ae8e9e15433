package communication

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	EventBondProposed    = "BOND_PROPOSED"
	EventBondFunded      = "BOND_FUNDED"
	EventMovesCommitted  = "MOVES_COMMITTED"
	EventMovesRevealed   = "MOVES_REVEALED"
	EventBondSettled     = "BOND_SETTLED"
	EventBondTimedOut    = "BOND_TIMED_OUT"
	EventSuspiciousAgent = "SUSPICIOUS_AGENT"
	EventAgentRegistered = "AGENT_REGISTERED"
	EventRoundStory      = "ROUND_STORY"
)

type WebSocketManager struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan WSEvent
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
}

var (
	wsManager *WebSocketManager
	once      sync.Once
)

func GetWSManager() *WebSocketManager {
	once.Do(func() {
		wsManager = &WebSocketManager{
			clients:    make(map[*websocket.Conn]bool),
			broadcast:  make(chan WSEvent, 256),
			register:   make(chan *websocket.Conn),
			unregister: make(chan *websocket.Conn),
		}
		go wsManager.run()
	})
	return wsManager
}

func (manager *WebSocketManager) run() {
	for {
		select {
		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client] = true
			manager.mu.Unlock()

		case client := <-manager.unregister:
			manager.mu.Lock()
			if _, ok := manager.clients[client]; ok {
				delete(manager.clients, client)
				client.Close()
			}
			manager.mu.Unlock()

		case event := <-manager.broadcast:
			manager.mu.Lock()
			for client := range manager.clients {
				if err := client.WriteJSON(event); err != nil {
					log.Printf("WebSocket error: %v", err)
					client.Close()
					delete(manager.clients, client)
				}
			}
			manager.mu.Unlock()
		}
	}
}

// BroadcastEvent queues an event for every connected dashboard. The engine
// calls this inline, so a saturated queue drops the event rather than
// blocking settlement.
func BroadcastEvent(eventType string, payload interface{}) {
	event := WSEvent{
		Type:    eventType,
		Payload: payload,
	}
	select {
	case GetWSManager().broadcast <- event:
	default:
		log.Printf("WebSocket broadcast queue full, dropping %s", eventType)
	}
}

func (w *WebSocketManager) Register() chan<- *websocket.Conn {
	return w.register
}

func (w *WebSocketManager) Unregister() chan<- *websocket.Conn {
	return w.unregister
}
