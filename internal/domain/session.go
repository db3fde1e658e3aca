package domain

import "time"

// Step is the dialogue step a booking session is waiting on. The zero value means idle.
type Step string

const (
	StepNone                 Step = ""
	StepAwaitingDate         Step = "awaiting_date"
	StepAwaitingNights       Step = "awaiting_nights"
	StepAwaitingPeople       Step = "awaiting_people"
	StepAwaitingRoomPref     Step = "awaiting_room_pref"
	StepAwaitingTime         Step = "awaiting_time"
	StepAwaitingDuration     Step = "awaiting_duration"
	StepAwaitingMealType     Step = "awaiting_meal_type"
	StepAwaitingPackage      Step = "awaiting_package"
	StepAwaitingContactName  Step = "awaiting_contact_name"
	StepAwaitingPhone        Step = "awaiting_phone"
	StepAwaitingEmail        Step = "awaiting_email"
	StepAwaitingConfirmation Step = "awaiting_confirmation"
)

type RoomDraft struct {
	Date     string `json:"date,omitempty"`
	Nights   int    `json:"nights,omitempty"`
	People   int    `json:"people,omitempty"`
	RoomPref string `json:"room_pref,omitempty"`
	// PrefAsked is set once the guest answered the room preference question,
	// an empty RoomPref then means "any room".
	PrefAsked bool `json:"pref_asked,omitempty"`
}

type TableDraft struct {
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	People   int    `json:"people,omitempty"`
	Location string `json:"location,omitempty"`
}

type WellnessDraft struct {
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Duration int    `json:"duration,omitempty"`
	People   int    `json:"people,omitempty"`
}

type MealDraft struct {
	MealType string `json:"meal_type,omitempty"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	People   int    `json:"people,omitempty"`
}

type PackageDraft struct {
	Package string `json:"package,omitempty"`
	Date    string `json:"date,omitempty"`
	People  int    `json:"people,omitempty"`
}

type Contact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Session is the per-conversation booking state. Exactly one draft pointer is set and it
// matches Type; all of them are nil while the session is idle.
type Session struct {
	ID        string          `json:"id"`
	Step      Step            `json:"step,omitempty"`
	Type      ReservationType `json:"type,omitempty"`
	Room      *RoomDraft      `json:"room,omitempty"`
	Table     *TableDraft     `json:"table,omitempty"`
	Wellness  *WellnessDraft  `json:"wellness,omitempty"`
	Meal      *MealDraft      `json:"meal,omitempty"`
	Package   *PackageDraft   `json:"package,omitempty"`
	Contact   Contact         `json:"contact"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, CreatedAt: now, UpdatedAt: now}
}

// Active reports whether a booking dialogue is in progress.
func (s *Session) Active() bool {
	return s != nil && s.Step != StepNone
}

// Reset drops the draft and returns the session to idle.
func (s *Session) Reset() {
	s.Step = StepNone
	s.Type = ReservationTypeUnset
	s.Room = nil
	s.Table = nil
	s.Wellness = nil
	s.Meal = nil
	s.Package = nil
	s.Contact = Contact{}
	s.Note = ""
}

// Begin resets the session and starts an empty draft of the given type.
func (s *Session) Begin(t ReservationType) {
	s.Reset()
	s.Type = t
	switch t {
	case ReservationTypeRoom:
		s.Room = &RoomDraft{}
	case ReservationTypeTable:
		s.Table = &TableDraft{}
	case ReservationTypeWellness:
		s.Wellness = &WellnessDraft{}
	case ReservationTypeMeal:
		s.Meal = &MealDraft{}
	case ReservationTypePackage:
		s.Package = &PackageDraft{}
	}
}

// DraftDate returns the date collected so far for whichever draft is active.
func (s *Session) DraftDate() string {
	switch {
	case s.Room != nil:
		return s.Room.Date
	case s.Table != nil:
		return s.Table.Date
	case s.Wellness != nil:
		return s.Wellness.Date
	case s.Meal != nil:
		return s.Meal.Date
	case s.Package != nil:
		return s.Package.Date
	}
	return ""
}

// SessionView is the minimal read-only slice of a session the classifier consults.
type SessionView struct {
	Step Step
	Type ReservationType
}

func (s *Session) View() SessionView {
	if s == nil {
		return SessionView{}
	}
	return SessionView{Step: s.Step, Type: s.Type}
}

func (v SessionView) Active() bool {
	return v.Step != StepNone
}
