package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/campusconnect/campus-events-api/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// LiveFeed fans out first-time check-ins to organizer dashboards
// subscribed per event
type LiveFeed struct {
	mu   sync.Mutex
	subs map[string]map[*websocket.Conn]bool
}

// NewLiveFeed creates an empty feed
func NewLiveFeed() *LiveFeed {
	return &LiveFeed{
		subs: make(map[string]map[*websocket.Conn]bool),
	}
}

// SubscribeHandler upgrades the connection and registers it for the
// event's check-in stream until the client disconnects
func (f *LiveFeed) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("failed to upgrade live feed connection",
			"eventId", eventID,
			"error", err)
		return
	}

	f.mu.Lock()
	if f.subs[eventID] == nil {
		f.subs[eventID] = make(map[*websocket.Conn]bool)
	}
	f.subs[eventID][conn] = true
	f.mu.Unlock()

	zap.S().Debugw("live feed subscriber added", "eventId", eventID)

	// Drain control frames; a read error means the client went away.
	go func() {
		defer f.remove(eventID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast pushes a check-in to every subscriber of its event.
// Connections that fail to write are dropped.
func (f *LiveFeed) Broadcast(eventID string, checkIn models.CheckInSummary) {
	f.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(f.subs[eventID]))
	for conn := range f.subs[eventID] {
		conns = append(conns, conn)
	}
	f.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(checkIn); err != nil {
			zap.S().Debugw("dropping dead live feed subscriber",
				"eventId", eventID,
				"error", err)
			f.remove(eventID, conn)
		}
	}
}

func (f *LiveFeed) remove(eventID string, conn *websocket.Conn) {
	f.mu.Lock()
	if f.subs[eventID] != nil {
		delete(f.subs[eventID], conn)
		if len(f.subs[eventID]) == 0 {
			delete(f.subs, eventID)
		}
	}
	f.mu.Unlock()
	conn.Close()
}
