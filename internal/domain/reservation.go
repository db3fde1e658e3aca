package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending    ReservationStatus = "pending"
	ReservationStatusProcessing ReservationStatus = "processing"
	ReservationStatusConfirmed  ReservationStatus = "confirmed"
	ReservationStatusRejected   ReservationStatus = "rejected"
	ReservationStatusCancelled  ReservationStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusProcessing, ReservationStatusConfirmed,
		ReservationStatusRejected, ReservationStatusCancelled:
		return true
	}
	return false
}

// HoldsCapacity is false for records that no longer occupy rooms or seats.
// Pending requests already hold provisional capacity.
func (s ReservationStatus) HoldsCapacity() bool {
	return s != ReservationStatusCancelled && s != ReservationStatusRejected
}

type ReservationType string

const (
	ReservationTypeUnset    ReservationType = ""
	ReservationTypeRoom     ReservationType = "room"
	ReservationTypeTable    ReservationType = "table"
	ReservationTypeWellness ReservationType = "wellness"
	ReservationTypeMeal     ReservationType = "meal"
	ReservationTypePackage  ReservationType = "package"
)

func (t ReservationType) Valid() bool {
	switch t {
	case ReservationTypeRoom, ReservationTypeTable, ReservationTypeWellness,
		ReservationTypeMeal, ReservationTypePackage:
		return true
	}
	return false
}

const (
	SourceChat  = "chat"
	SourceAdmin = "admin"
	SourcePhone = "phone"
	SourceAPI   = "api"
)

// InitialStatus returns the status a new reservation gets for the given source.
// Entries made by staff or through the API are confirmed right away.
func InitialStatus(source string) ReservationStatus {
	switch source {
	case SourceAdmin, SourcePhone, SourceAPI:
		return ReservationStatusConfirmed
	default:
		return ReservationStatusPending
	}
}

type Reservation struct {
	ID            int64
	Date          string // DD.MM.YYYY
	Nights        int
	Rooms         int
	People        int
	Type          ReservationType
	Time          string // HH:MM
	Location      string
	Name          string
	Phone         string
	Email         string
	Note          string
	Status        ReservationStatus
	Source        string
	WellnessHours int
	MealType      string
	PackageType   string
	PackagePrice  float64
	AdminNotes    string
	ConfirmedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReservationFilter narrows a reservation listing. Zero values mean "any".
type ReservationFilter struct {
	Status        ReservationStatus
	Type          ReservationType
	Source        string
	ExcludeStatus []ReservationStatus
	Limit         int
}

// ReservationUpdate carries the fields to change; nil fields are left untouched.
type ReservationUpdate struct {
	Status     *ReservationStatus
	Date       *string
	Nights     *int
	Rooms      *int
	People     *int
	Time       *string
	Location   *string
	Name       *string
	Phone      *string
	Email      *string
	Note       *string
	AdminNotes *string
}

// Empty reports whether no field is set.
func (u ReservationUpdate) Empty() bool {
	return u.Status == nil && u.Date == nil && u.Nights == nil && u.Rooms == nil &&
		u.People == nil && u.Time == nil && u.Location == nil && u.Name == nil &&
		u.Phone == nil && u.Email == nil && u.Note == nil && u.AdminNotes == nil
}
