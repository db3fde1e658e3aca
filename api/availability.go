package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/service/availability"
)

type RoomAvailability interface {
	ValidateRoomRules(arrival string, nights int) error
	AvailableRooms(ctx context.Context, arrival string, nights int) ([]domain.Room, error)
}

type AvailabilityHandler struct {
	rooms RoomAvailability
}

type roomResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func NewAvailabilityHandler(rooms RoomAvailability) *AvailabilityHandler {
	return &AvailabilityHandler{rooms: rooms}
}

func (h *AvailabilityHandler) Register(router *gin.RouterGroup) {
	router.GET("/rooms", h.listRooms)
}

// listRooms lists rooms free for ?date=DD.MM.YYYY&nights=N.
func (h *AvailabilityHandler) listRooms(c *gin.Context) {
	date := c.Query("date")
	nights, err := strconv.Atoi(c.DefaultQuery("nights", "1"))
	if date == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and numeric nights are required"})
		return
	}

	if err := h.rooms.ValidateRoomRules(date, nights); err != nil {
		var ruleErr *availability.RuleError
		if errors.As(err, &ruleErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ruleErr.Msg})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	free, err := h.rooms.AvailableRooms(c.Request.Context(), date, nights)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := make([]roomResponse, 0, len(free))
	for _, r := range free {
		out = append(out, roomResponse{ID: r.ID, Name: r.Name, Capacity: r.Capacity})
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "nights": nights, "rooms": out})
}
