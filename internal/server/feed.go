package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/bizmate/internal/changelog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feedMessage is the outgoing websocket message format for the change
// log feed.
type feedMessage struct {
	Type    string            `json:"type"` // "entries" or "error"
	Entries []changelog.Entry `json:"entries,omitempty"`
	Error   string            `json:"error,omitempty"`
}

const feedPollInterval = 2 * time.Second

// handleChangeFeed streams new change log entries to the client. On
// connect it sends the most recent entries, then polls for anything
// newer and pushes it as it appears.
func (s *Server) handleChangeFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	// Drain client messages so pings and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("server: websocket read: %v", err)
				}
				return
			}
		}
	}()

	ctx := r.Context()

	initial, err := s.changes.Query(ctx, changelog.QueryFilter{Limit: 20})
	if err != nil {
		s.sendFeedError(conn, err.Error())
		return
	}
	lastSeen := time.Time{}
	if len(initial) > 0 {
		lastSeen = initial[0].CreatedAt
	}
	if err := s.sendFeed(conn, feedMessage{Type: "entries", Entries: initial}); err != nil {
		return
	}

	ticker := time.NewTicker(feedPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		fresh, err := s.newEntriesSince(ctx, lastSeen)
		if err != nil {
			s.sendFeedError(conn, err.Error())
			return
		}
		if len(fresh) == 0 {
			continue
		}
		lastSeen = fresh[0].CreatedAt
		if err := s.sendFeed(conn, feedMessage{Type: "entries", Entries: fresh}); err != nil {
			return
		}
	}
}

// newEntriesSince returns entries strictly newer than the given time,
// newest first. The store's Since filter is inclusive, so entries at
// exactly the cutoff are dropped here.
func (s *Server) newEntriesSince(ctx context.Context, since time.Time) ([]changelog.Entry, error) {
	cutoff := since
	entries, err := s.changes.Query(ctx, changelog.QueryFilter{Since: &cutoff, Limit: 50})
	if err != nil {
		return nil, err
	}
	fresh := entries[:0]
	for _, e := range entries {
		if e.CreatedAt.After(since) {
			fresh = append(fresh, e)
		}
	}
	return fresh, nil
}

func (s *Server) sendFeed(conn *websocket.Conn, msg feedMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Printf("server: websocket write: %v", err)
		return err
	}
	return nil
}

func (s *Server) sendFeedError(conn *websocket.Conn, message string) {
	s.sendFeed(conn, feedMessage{Type: "error", Error: message})
}
