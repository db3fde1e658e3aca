package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	event, err := DecodeEvent([]byte(`{"type":"reservation_created","reservation_id":42,"reservation_type":"room","status":"pending","people":2}`))
	require.NoError(t, err)
	assert.Equal(t, EventReservationCreated, event.Type)
	assert.Equal(t, int64(42), event.ReservationID)
	assert.Equal(t, "room", event.ReservationType)

	_, err = DecodeEvent([]byte(`{"reservation_id":42}`))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestNewProducer_NilLogger(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, nil)
	assert.NotNil(t, p)
	assert.NoError(t, p.Close())
}
