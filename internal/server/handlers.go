package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"crypto-alert-bot/internal/events"
)

// eventLog keeps the most recent events in a fixed-size ring.
type eventLog struct {
	mu     sync.RWMutex
	buf    []events.Event
	next   int
	filled bool
}

func newEventLog(size int) *eventLog {
	return &eventLog{buf: make([]events.Event, size)}
}

func (l *eventLog) add(event events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf[l.next] = event
	l.next++
	if l.next == len(l.buf) {
		l.next = 0
		l.filled = true
	}
}

// list returns the stored events oldest first.
func (l *eventLog) list() []events.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.filled {
		out := make([]events.Event, l.next)
		copy(out, l.buf[:l.next])
		return out
	}
	out := make([]events.Event, 0, len(l.buf))
	out = append(out, l.buf[l.next:]...)
	out = append(out, l.buf[:l.next]...)
	return out
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.botAPI.Status())
}

func (s *Server) handlePositions(c *gin.Context) {
	positions := s.botAPI.OpenPositions()
	c.JSON(http.StatusOK, gin.H{
		"positions": positions,
		"count":     len(positions),
	})
}

func (s *Server) handlePositionHistory(c *gin.Context) {
	positions := s.botAPI.ClosedPositions()
	c.JSON(http.StatusOK, gin.H{
		"positions": positions,
		"count":     len(positions),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.botAPI.Stats())
}

func (s *Server) handleEvents(c *gin.Context) {
	evts := s.recent.list()
	c.JSON(http.StatusOK, gin.H{
		"events": evts,
		"count":  len(evts),
	})
}
