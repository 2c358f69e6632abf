package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 개발용 - 모든 origin 허용
		return true
	},
}

// Event - 생성 스테이지 경계마다 발행되는 진행 이벤트
type Event struct {
	ProjectID string    `json:"projectId"`
	Stage     string    `json:"stage"`
	Percent   int       `json:"percent"`
	Timestamp time.Time `json:"timestamp"`
}

// Client - 연결된 구독자
type Client struct {
	conn      *websocket.Conn
	projectID string
	send      chan []byte
}

// Room - 프로젝트별 구독 방. 마지막 이벤트를 세션 스냅샷으로 들고 있다가
// 새 구독자에게 바로 내려준다.
type Room struct {
	projectID    string
	clients      map[*Client]bool
	mutex        sync.RWMutex
	lastEvent    *Event
	createdAt    time.Time
	lastActivity time.Time
}

// Hub - 프로젝트 진행 상황 브로드캐스트 허브
type Hub struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

// NewHub - Hub 생성
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]*Room),
	}
}

// getOrCreateRoom - 방 가져오기 또는 생성
func (h *Hub) getOrCreateRoom(projectID string) *Room {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.rooms[projectID]
	if !exists {
		now := time.Now()
		room = &Room{
			projectID:    projectID,
			clients:      make(map[*Client]bool),
			createdAt:    now,
			lastActivity: now,
		}
		h.rooms[projectID] = room
		log.Printf("✅ [Progress] Created room for project %s", projectID)
	}

	room.mutex.Lock()
	room.lastActivity = time.Now()
	room.mutex.Unlock()
	return room
}

// Publish - 오케스트레이터 observer. 스테이지 이벤트를 방 전체에 브로드캐스트.
func (h *Hub) Publish(projectID, stage string, percent int) {
	event := &Event{
		ProjectID: projectID,
		Stage:     stage,
		Percent:   percent,
		Timestamp: time.Now(),
	}

	h.mutex.RLock()
	room, exists := h.rooms[projectID]
	h.mutex.RUnlock()

	if !exists {
		// 구독자가 없어도 스냅샷은 남겨둔다
		room = h.getOrCreateRoom(projectID)
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ [Progress] Failed to marshal event: %v", err)
		return
	}

	room.mutex.Lock()
	defer room.mutex.Unlock()

	room.lastEvent = event
	room.lastActivity = time.Now()

	for client := range room.clients {
		select {
		case client.send <- messageBytes:
		default:
			close(client.send)
			delete(room.clients, client)
		}
	}

	log.Printf("📢 [Progress] %s: %s (%d%%) → %d subscriber(s)", projectID, stage, percent, len(room.clients))
}

// HandleWebSocket - GET /ws?project=<id>
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ [Progress] WebSocket upgrade failed: %v", err)
		return
	}

	projectID := r.URL.Query().Get("project")
	if projectID == "" {
		log.Printf("⚠️  [Progress] Missing project parameter")
		conn.Close()
		return
	}

	client := &Client{
		conn:      conn,
		projectID: projectID,
		send:      make(chan []byte, 64),
	}

	room := h.getOrCreateRoom(projectID)

	room.mutex.Lock()
	room.clients[client] = true
	snapshot := room.lastEvent
	clientCount := len(room.clients)
	room.mutex.Unlock()

	log.Printf("👤 [Progress] Subscriber joined project %s (subscribers: %d)", projectID, clientCount)

	// 마지막 스냅샷 즉시 전달 (중간 합류한 구독자도 현재 단계를 안다)
	if snapshot != nil {
		if data, err := json.Marshal(snapshot); err == nil {
			client.send <- data
		}
	}

	go client.writePump()
	go client.readPump(room)
}

// readPump - 연결 종료 감지 (구독자는 메시지를 보내지 않는다)
func (c *Client) readPump(room *Room) {
	defer func() {
		room.removeClient(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ [Progress] WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump - 클라이언트로 메시지 쓰기
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("❌ [Progress] WebSocket write error: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// removeClient - 구독자 제거
func (r *Room) removeClient(client *Client) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.clients[client]; exists {
		close(client.send)
		delete(r.clients, client)
		r.lastActivity = time.Now()
		log.Printf("👋 [Progress] Subscriber left project %s (remaining: %d)", r.projectID, len(r.clients))
	}
}

// StartCleanupRoutine - 비어있고 오래된 방 정리 (5분 주기)
func (h *Hub) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			h.cleanupStaleRooms()
		}
	}()

	log.Println("🔄 [Progress] Started room cleanup routine (5min)")
}

// cleanupStaleRooms - 구독자가 없고 2시간 이상 활동이 없는 방 제거
func (h *Hub) cleanupStaleRooms() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	staleThreshold := 2 * time.Hour
	now := time.Now()

	cleaned := 0
	for projectID, room := range h.rooms {
		room.mutex.RLock()
		isStale := len(room.clients) == 0 && now.Sub(room.lastActivity) > staleThreshold
		room.mutex.RUnlock()

		if isStale {
			delete(h.rooms, projectID)
			cleaned++
		}
	}

	if cleaned > 0 {
		log.Printf("🧹 [Progress] Cleaned up %d stale room(s) (active: %d)", cleaned, len(h.rooms))
	}
}
