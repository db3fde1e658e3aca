// Package dialogue drives the multi-turn booking conversation. A Flow owns no state of
// its own: everything it learns is written into the caller's *domain.Session.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/extract"
	"github.com/Domenick1991/farmstay/internal/router"
	"github.com/Domenick1991/farmstay/internal/service/availability"
)

var ErrNoBooking = errors.New("session has no booking in progress")

// Availability is the rule and capacity surface the dialogue consults.
type Availability interface {
	ValidateDate(date string) error
	ValidateRoomRules(arrival string, nights int) error
	ValidateTableRules(date, hhmm string) error
	ValidateWellness(date, hhmm string, hours, people int) error
	ValidateMeal(mealType, date string, people int) error
	ValidatePackage(key, date string, people int) error
	Check(ctx context.Context, req availability.Request) (availability.Result, error)
	WellnessPrice(hours, people int) float64
	PackageTotal(key string, people int) float64
	Catalog() *domain.Catalog
}

// ReservationCreator persists a finished booking.
type ReservationCreator interface {
	Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error)
}

type Flow struct {
	avail   Availability
	store   ReservationCreator
	isReset func(string) bool
	now     func() time.Time
	source  string
	logger  *zap.Logger
}

type Option func(*Flow)

func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// WithSource sets the reservation source recorded on submitted bookings.
func WithSource(source string) Option {
	return func(f *Flow) {
		f.source = source
	}
}

// WithResetDetector replaces the start-over phrase detection.
func WithResetDetector(fn func(string) bool) Option {
	return func(f *Flow) {
		f.isReset = fn
	}
}

func NewFlow(avail Availability, store ReservationCreator, opts ...Option) *Flow {
	f := &Flow{
		avail:   avail,
		store:   store,
		isReset: router.DefaultRules().IsReset,
		now:     time.Now,
		source:  domain.SourceChat,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Handle applies one guest message to the booking in s and returns the reply. A session
// whose type is set but whose step is still empty is treated as a fresh start and the
// message is mined for every field it already carries.
//
// Store and availability failures are returned as errors and leave s in place so the
// guest can retry.
func (f *Flow) Handle(ctx context.Context, msg string, s *domain.Session) (string, error) {
	if s == nil || !s.Type.Valid() {
		return "", ErrNoBooking
	}
	s.UpdatedAt = f.now()
	ensureDraft(s)

	// the opening message is never a reset, "konec avgusta" is a date
	if s.Step != domain.StepNone && f.isReset(msg) {
		s.Reset()
		return resetReply, nil
	}

	var notes []string
	if s.Step == domain.StepNone {
		notes = f.prefill(msg, s)
	} else {
		if s.Step == domain.StepAwaitingConfirmation {
			reply, done, err := f.confirm(ctx, msg, s)
			if err != nil || done {
				return reply, err
			}
		}
		if note := f.apply(msg, s); note != "" {
			notes = append(notes, note)
		}
	}

	return f.advance(ctx, s, notes)
}

// advance moves s to its first missing field, or to confirmation once the draft is complete.
// When the availability check fails s keeps its previous step.
func (f *Flow) advance(ctx context.Context, s *domain.Session, notes []string) (string, error) {
	next := f.nextStep(s)
	if next != domain.StepAwaitingConfirmation {
		s.Step = next
		return joinReply(notes, f.Prompt(s)), nil
	}

	check, err := f.check(ctx, s)
	if err != nil {
		return "", err
	}
	if check.Reason != "" {
		// a rule rejected the combination, send the guest back to the date
		clearDate(s)
		s.Step = domain.StepAwaitingDate
		return joinReply(append(notes, check.Reason), f.Prompt(s)), nil
	}
	s.Step = domain.StepAwaitingConfirmation
	if !check.Available {
		notes = append(notes, unavailableNote(check))
	}
	return joinReply(notes, f.Prompt(s)), nil
}

func (f *Flow) check(ctx context.Context, s *domain.Session) (availability.Result, error) {
	check, err := f.avail.Check(ctx, f.request(s))
	if err != nil {
		return availability.Result{}, fmt.Errorf("check availability: %w", err)
	}
	if s.Table != nil && check.Location != "" {
		s.Table.Location = check.Location
	}
	return check, nil
}

// confirm handles the answer at the confirmation step. done is false when the message
// should be treated as a regular field answer instead.
func (f *Flow) confirm(ctx context.Context, msg string, s *domain.Session) (string, bool, error) {
	if _, ok := f.dateIn(msg); ok {
		// a new date at confirmation reopens the date step
		clearDate(s)
		s.Step = domain.StepAwaitingDate
		return "", false, nil
	}
	if s.Table != nil {
		if _, ok := extract.Time(msg); ok {
			s.Table.Time = ""
			s.Table.Location = ""
			s.Step = domain.StepAwaitingTime
			return "", false, nil
		}
	}

	yes, no := confirmation(msg)
	switch {
	case yes:
		// availability may have changed since the summary
		check, err := f.check(ctx, s)
		if err != nil {
			return "", true, err
		}
		if check.Reason != "" {
			clearDate(s)
			s.Step = domain.StepAwaitingDate
			return joinReply([]string{check.Reason}, f.Prompt(s)), true, nil
		}
		if !check.Available {
			return unavailableNote(check), true, nil
		}
		reply, err := f.submit(ctx, s)
		return reply, true, err
	case no:
		s.Reset()
		return cancelReply, true, nil
	}
	return joinReply([]string{"Prosim odgovorite z »da« ali »ne«."}, f.Prompt(s)), true, nil
}

func (f *Flow) submit(ctx context.Context, s *domain.Session) (string, error) {
	r := f.reservation(s)
	created, err := f.store.Create(ctx, r)
	if err != nil {
		f.logger.Error("submit reservation failed",
			zap.String("session_id", s.ID),
			zap.String("type", string(s.Type)),
			zap.Error(err),
		)
		return "", fmt.Errorf("submit reservation: %w", err)
	}

	f.logger.Info("reservation submitted",
		zap.String("session_id", s.ID),
		zap.Int64("reservation_id", created.ID),
		zap.String("type", string(created.Type)),
		zap.String("status", string(created.Status)),
	)
	name := s.Contact.Name
	s.Reset()
	return submittedReply(name, created), nil
}

func (f *Flow) reservation(s *domain.Session) *domain.Reservation {
	cat := f.avail.Catalog()
	r := &domain.Reservation{
		Type:   s.Type,
		Name:   s.Contact.Name,
		Phone:  s.Contact.Phone,
		Email:  s.Contact.Email,
		Note:   s.Note,
		Source: f.source,
		Status: domain.InitialStatus(f.source),
	}

	switch s.Type {
	case domain.ReservationTypeRoom:
		d := s.Room
		r.Date, r.Nights, r.People = d.Date, d.Nights, d.People
		r.Rooms = cat.RoomsNeeded(d.People)
		if room, ok := cat.RoomByID(d.RoomPref); ok {
			r.Location = room.Name
		}
	case domain.ReservationTypeTable:
		d := s.Table
		r.Date, r.Time, r.People, r.Location = d.Date, d.Time, d.People, d.Location
	case domain.ReservationTypeWellness:
		d := s.Wellness
		r.Date, r.Time, r.People, r.WellnessHours = d.Date, d.Time, d.People, d.Duration
	case domain.ReservationTypeMeal:
		d := s.Meal
		r.Date, r.Time, r.People, r.MealType = d.Date, d.Time, d.People, d.MealType
	case domain.ReservationTypePackage:
		d := s.Package
		r.Date, r.People, r.PackageType = d.Date, d.People, d.Package
		r.PackagePrice = f.avail.PackageTotal(d.Package, d.People)
		if p, ok := cat.PackageByKey(d.Package); ok {
			r.Nights = p.Nights
			r.Rooms = cat.RoomsNeeded(d.People)
		}
	}
	return r
}

func (f *Flow) request(s *domain.Session) availability.Request {
	req := availability.Request{Type: s.Type}
	switch s.Type {
	case domain.ReservationTypeRoom:
		req.Date, req.Nights, req.People = s.Room.Date, s.Room.Nights, s.Room.People
	case domain.ReservationTypeTable:
		req.Date, req.Time, req.People = s.Table.Date, s.Table.Time, s.Table.People
	case domain.ReservationTypeWellness:
		req.Date, req.Time, req.People, req.Hours = s.Wellness.Date, s.Wellness.Time, s.Wellness.People, s.Wellness.Duration
	case domain.ReservationTypeMeal:
		req.Date, req.Time, req.People, req.MealType = s.Meal.Date, s.Meal.Time, s.Meal.People, s.Meal.MealType
	case domain.ReservationTypePackage:
		req.Date, req.People, req.Package = s.Package.Date, s.Package.People, s.Package.Package
	}
	return req
}

// nextStep returns the first step whose field is still empty.
func (f *Flow) nextStep(s *domain.Session) domain.Step {
	switch s.Type {
	case domain.ReservationTypeRoom:
		d := s.Room
		switch {
		case d.Date == "":
			return domain.StepAwaitingDate
		case d.Nights == 0:
			return domain.StepAwaitingNights
		case d.People == 0:
			return domain.StepAwaitingPeople
		case !d.PrefAsked:
			return domain.StepAwaitingRoomPref
		}
	case domain.ReservationTypeTable:
		d := s.Table
		switch {
		case d.Date == "":
			return domain.StepAwaitingDate
		case d.Time == "":
			return domain.StepAwaitingTime
		case d.People == 0:
			return domain.StepAwaitingPeople
		}
	case domain.ReservationTypeWellness:
		d := s.Wellness
		switch {
		case d.Date == "":
			return domain.StepAwaitingDate
		case d.Time == "":
			return domain.StepAwaitingTime
		case d.Duration == 0:
			return domain.StepAwaitingDuration
		case d.People == 0:
			return domain.StepAwaitingPeople
		}
	case domain.ReservationTypeMeal:
		d := s.Meal
		switch {
		case d.MealType == "":
			return domain.StepAwaitingMealType
		case d.Date == "":
			return domain.StepAwaitingDate
		case d.Time == "":
			return domain.StepAwaitingTime
		case d.People == 0:
			return domain.StepAwaitingPeople
		}
	case domain.ReservationTypePackage:
		d := s.Package
		switch {
		case d.Package == "":
			return domain.StepAwaitingPackage
		case d.Date == "":
			return domain.StepAwaitingDate
		case d.People == 0:
			return domain.StepAwaitingPeople
		}
	}

	switch {
	case s.Contact.Name == "":
		return domain.StepAwaitingContactName
	case s.Contact.Phone == "":
		return domain.StepAwaitingPhone
	case s.Contact.Email == "":
		return domain.StepAwaitingEmail
	}
	return domain.StepAwaitingConfirmation
}

func clearDate(s *domain.Session) {
	switch {
	case s.Room != nil:
		s.Room.Date = ""
	case s.Table != nil:
		s.Table.Date = ""
		s.Table.Location = ""
	case s.Wellness != nil:
		s.Wellness.Date = ""
	case s.Meal != nil:
		s.Meal.Date = ""
	case s.Package != nil:
		s.Package.Date = ""
	}
}

func joinReply(notes []string, prompt string) string {
	parts := make([]string, 0, len(notes)+1)
	for _, n := range notes {
		if n = strings.TrimSpace(n); n != "" {
			parts = append(parts, n)
		}
	}
	if prompt != "" {
		parts = append(parts, prompt)
	}
	return strings.Join(parts, "\n\n")
}
