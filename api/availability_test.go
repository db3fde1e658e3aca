package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/service/availability"
)

type MockRoomAvailability struct {
	mock.Mock
}

func (m *MockRoomAvailability) ValidateRoomRules(arrival string, nights int) error {
	args := m.Called(arrival, nights)
	return args.Error(0)
}

func (m *MockRoomAvailability) AvailableRooms(ctx context.Context, arrival string, nights int) ([]domain.Room, error) {
	args := m.Called(ctx, arrival, nights)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Room), args.Error(1)
}

type MockCounters struct {
	mock.Mock
}

func (m *MockCounters) Snapshot() map[string]int64 {
	args := m.Called()
	return args.Get(0).(map[string]int64)
}

type MockConversationCounter struct {
	mock.Mock
}

func (m *MockConversationCounter) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func TestAvailabilityHandler_listRooms(t *testing.T) {
	rooms := &MockRoomAvailability{}
	handler := NewAvailabilityHandler(rooms)

	c, w := newContext(http.MethodGet, "/api/availability/rooms?date=14.11.2026&nights=2", nil)
	rooms.On("ValidateRoomRules", "14.11.2026", 2).Return(nil)
	rooms.On("AvailableRooms", c.Request.Context(), "14.11.2026", 2).Return([]domain.Room{
		{ID: "HANA", Name: "Soba HANA", Capacity: 2},
	}, nil)

	handler.listRooms(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Nights int            `json:"nights"`
		Rooms  []roomResponse `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Nights)
	assert.Equal(t, []roomResponse{{ID: "HANA", Name: "Soba HANA", Capacity: 2}}, response.Rooms)
}

func TestAvailabilityHandler_listRooms_ruleViolation(t *testing.T) {
	rooms := &MockRoomAvailability{}
	handler := NewAvailabilityHandler(rooms)

	c, w := newContext(http.MethodGet, "/api/availability/rooms?date=10.07.2027&nights=2", nil)
	rooms.On("ValidateRoomRules", "10.07.2027", 2).
		Return(&availability.RuleError{Msg: "V juliju in avgustu je minimalno bivanje 5 noči."})

	handler.listRooms(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "minimalno bivanje 5")
	rooms.AssertNotCalled(t, "AvailableRooms", mock.Anything, mock.Anything, mock.Anything)
}

func TestAvailabilityHandler_listRooms_badQuery(t *testing.T) {
	handler := NewAvailabilityHandler(&MockRoomAvailability{})

	c, w := newContext(http.MethodGet, "/api/availability/rooms?date=14.11.2026&nights=two", nil)
	handler.listRooms(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsHandler(t *testing.T) {
	counters := &MockCounters{}
	conversations := &MockConversationCounter{}
	handler := NewStatsHandler(counters, conversations)
	handler.now = func() time.Time { return time.Date(2026, 10, 16, 10, 30, 0, 0, time.UTC) }

	c, w := newContext(http.MethodGet, "/api/admin/stats", nil)
	counters.On("Snapshot").Return(map[string]int64{"info_hits": 3, "booking_starts": 1})
	conversations.On("CountSince", c.Request.Context(), time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)).Return(int64(12), nil)

	handler.stats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Counters      map[string]int64 `json:"counters"`
		MessagesToday int64            `json:"messages_today"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(3), response.Counters["info_hits"])
	assert.Equal(t, int64(12), response.MessagesToday)
}
