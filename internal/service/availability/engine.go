// Package availability decides whether a requested stay, table or experience can be
// accepted, and proposes alternatives when it cannot.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/extract"
)

// ReservationLister is the read side of the reservation store.
type ReservationLister interface {
	List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error)
}

// RuleError is a business rule violation. Its message is meant for the guest.
type RuleError struct {
	Msg string
}

func (e *RuleError) Error() string {
	return e.Msg
}

func ruleErr(format string, args ...any) error {
	return &RuleError{Msg: fmt.Sprintf(format, args...)}
}

type Engine struct {
	catalog *domain.Catalog
	store   ReservationLister
	now     func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(catalog *domain.Catalog, store ReservationLister, opts ...Option) *Engine {
	if catalog == nil {
		catalog = domain.DefaultCatalog()
	}
	e := &Engine{
		catalog: catalog,
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Request describes any bookable resource. Only the fields of Type are read.
type Request struct {
	Type     domain.ReservationType
	Date     string
	Time     string
	Nights   int
	People   int
	Hours    int
	MealType string
	Package  string
}

// Result is the outcome of Check. Reason is set when a rule rejected the request,
// Alternative and Suggestions when capacity did.
type Result struct {
	Available   bool
	Reason      string
	Alternative string
	Location    string
	Suggestions []string
}

// Check validates the request against the rules for its type and, for rooms and
// tables, against current occupancy.
func (e *Engine) Check(ctx context.Context, req Request) (Result, error) {
	var err error
	switch req.Type {
	case domain.ReservationTypeRoom:
		if err = e.ValidateRoomRules(req.Date, req.Nights); err == nil {
			room, cerr := e.CheckRoom(ctx, req.Date, req.Nights, req.People)
			if cerr != nil {
				return Result{}, cerr
			}
			return Result{Available: room.Available, Alternative: room.Alternative}, nil
		}
	case domain.ReservationTypeTable:
		if err = e.ValidateTableRules(req.Date, req.Time); err == nil {
			table, cerr := e.CheckTable(ctx, req.Date, req.Time, req.People)
			if cerr != nil {
				return Result{}, cerr
			}
			return Result{Available: table.Available, Location: table.Location, Suggestions: table.Suggestions}, nil
		}
	case domain.ReservationTypeWellness:
		err = e.ValidateWellness(req.Date, req.Time, req.Hours, req.People)
	case domain.ReservationTypeMeal:
		err = e.ValidateMeal(req.MealType, req.Date, req.People)
	case domain.ReservationTypePackage:
		err = e.ValidatePackage(req.Package, req.Date, req.People)
	default:
		return Result{}, fmt.Errorf("unsupported reservation type %q", req.Type)
	}

	if err != nil {
		return Result{Reason: err.Error()}, nil
	}
	return Result{Available: true}, nil
}

func (e *Engine) today() time.Time {
	y, m, d := e.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// parseFuture parses a guest date and rejects days before today.
func (e *Engine) parseFuture(date, example string) (time.Time, error) {
	day, ok := extract.ParseDate(date)
	if !ok {
		return time.Time{}, ruleErr("Datum prosimo v obliki DD.MM.YYYY (npr. %s).", example)
	}
	if today := e.today(); day.Before(today) {
		return time.Time{}, ruleErr("Ta datum je že mimo (danes je %s). Prosimo izberite datum v prihodnosti.",
			extract.FormatDate(today))
	}
	return day, nil
}

// ValidateDate rejects unparseable dates and days before today.
func (e *Engine) ValidateDate(date string) error {
	_, err := e.parseFuture(date, "12.7.2027")
	return err
}

// holding returns reservations of type t that still occupy capacity.
func (e *Engine) holding(ctx context.Context, t domain.ReservationType) ([]domain.Reservation, error) {
	if e.store == nil {
		return nil, nil
	}
	list, err := e.store.List(ctx, domain.ReservationFilter{
		Type:          t,
		ExcludeStatus: []domain.ReservationStatus{domain.ReservationStatusCancelled, domain.ReservationStatusRejected},
	})
	if err != nil {
		return nil, fmt.Errorf("list %s reservations: %w", t, err)
	}

	out := list[:0:0]
	for _, r := range list {
		if r.Status.HoldsCapacity() && r.Type == t {
			out = append(out, r)
		}
	}
	return out, nil
}
