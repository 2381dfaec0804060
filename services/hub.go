// services/hub.go - Live competition progress broadcasting.
package services

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Hub fans competition progress updates out to websocket subscribers. Writes
// happen after the recording transaction commits, so subscribers never see
// progress that later rolled back.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[*websocket.Conn]bool)}
}

// Subscribe registers a connection for one competition's updates.
func (h *Hub) Subscribe(competitionID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[competitionID] == nil {
		h.subs[competitionID] = make(map[*websocket.Conn]bool)
	}
	h.subs[competitionID][conn] = true
}

// Unsubscribe drops a connection.
func (h *Hub) Unsubscribe(competitionID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs[competitionID], conn)
	if len(h.subs[competitionID]) == 0 {
		delete(h.subs, competitionID)
	}
}

// Broadcast pushes one update to every subscriber of the competition.
// Dead connections are dropped on write failure.
func (h *Hub) Broadcast(update ProgressUpdate) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subs[update.CompetitionID]))
	for conn := range h.subs[update.CompetitionID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(update); err != nil {
			log.Printf("hub: dropping subscriber of competition %d: %v", update.CompetitionID, err)
			h.Unsubscribe(update.CompetitionID, conn)
			conn.Close()
		}
	}
}
