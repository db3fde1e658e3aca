package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type CounterSnapshot interface {
	Snapshot() map[string]int64
}

type ConversationCounter interface {
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type StatsHandler struct {
	counters      CounterSnapshot
	conversations ConversationCounter
	now           func() time.Time
}

func NewStatsHandler(counters CounterSnapshot, conversations ConversationCounter) *StatsHandler {
	return &StatsHandler{counters: counters, conversations: conversations, now: time.Now}
}

func (h *StatsHandler) Register(router *gin.RouterGroup) {
	router.GET("/stats", h.stats)
}

// stats reports the classifier counters and, when a conversation log is wired, the
// number of messages since local midnight.
func (h *StatsHandler) stats(c *gin.Context) {
	resp := gin.H{"counters": h.counters.Snapshot()}

	if h.conversations != nil {
		now := h.now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		n, err := h.conversations.CountSince(c.Request.Context(), midnight)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		resp["messages_today"] = n
	}

	c.JSON(http.StatusOK, resp)
}
