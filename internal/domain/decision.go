package domain

type Intent string

const (
	IntentInfo            Intent = "INFO"
	IntentProduct         Intent = "PRODUCT"
	IntentSystem          Intent = "SYSTEM"
	IntentBookingRoom     Intent = "BOOKING_ROOM"
	IntentBookingTable    Intent = "BOOKING_TABLE"
	IntentBookingContinue Intent = "BOOKING_CONTINUE"
	IntentGeneral         Intent = "GENERAL"
)

// StartsBooking reports whether the intent opens a fresh booking draft.
func (i Intent) StartsBooking() bool {
	return i == IntentBookingRoom || i == IntentBookingTable
}

type Entities struct {
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	People   int    `json:"people_count,omitempty"`
	RoomName string `json:"room_name,omitempty"`
}

// Decision is the routing result for one message.
type Decision struct {
	Intent        Intent   `json:"intent"`
	Confidence    float64  `json:"confidence"`
	IsInterrupt   bool     `json:"is_interrupt"`
	InfoKey       string   `json:"info_key,omitempty"`
	ProductKey    string   `json:"product_key,omitempty"`
	NeedsSoftSell bool     `json:"needs_soft_sell"`
	Entities      Entities `json:"entities"`
}
