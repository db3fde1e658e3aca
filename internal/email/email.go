// Package email renders reservation notifications for the farm and its guests.
// Delivery is a logging stub.
package email

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Domenick1991/farmstay/internal/kafka"
)

const defaultAdminAddress = "info@kmetija.si"

type Message struct {
	To      string
	Subject string
	Body    string
}

var typeNames = map[string]string{
	"room":     "nočitev",
	"table":    "miza",
	"wellness": "wellness",
	"meal":     "degustacija",
	"package":  "paket",
}

type Sender struct {
	admin  string
	logger *zap.Logger
}

type Option func(*Sender)

func WithAdminAddress(addr string) Option {
	return func(s *Sender) {
		if addr != "" {
			s.admin = addr
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Sender) {
		s.logger = logger
	}
}

func NewSender(opts ...Option) *Sender {
	s := &Sender{
		admin:  defaultAdminAddress,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send renders the notifications for event and hands them to the outbox.
func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	for _, msg := range s.Compose(event) {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.logger.Info("email queued",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Int64("reservation_id", event.ReservationID),
			zap.String("event", event.Type),
		)
	}
	return nil
}

// Compose returns the messages an event produces. Guests without an address get nothing.
func (s *Sender) Compose(event kafka.ReservationEvent) []Message {
	var out []Message
	if event.Type == kafka.EventReservationCreated {
		out = append(out, Message{
			To:      s.admin,
			Subject: fmt.Sprintf("Nova rezervacija #%d (%s)", event.ReservationID, typeName(event.ReservationType)),
			Body:    details(event),
		})
	}
	if event.Email == "" {
		return out
	}

	var subject, intro string
	switch event.Type {
	case kafka.EventReservationCreated:
		if event.Status == "confirmed" {
			subject, intro = "Potrditev rezervacije", "vaša rezervacija je potrjena."
		} else {
			subject, intro = "Prejeli smo vaše povpraševanje", "prejeli smo vaše povpraševanje. Potrditev vam pošljemo v kratkem."
		}
	case kafka.EventReservationConfirmed:
		subject, intro = "Potrditev rezervacije", "vaša rezervacija je potrjena."
	case kafka.EventReservationRejected:
		subject, intro = "Rezervacija ni mogoča", "žal vaše rezervacije ne moremo potrditi."
	case kafka.EventReservationCancelled:
		subject, intro = "Preklic rezervacije", "vaša rezervacija je preklicana."
	default:
		return out
	}

	body := fmt.Sprintf("Pozdravljeni %s,\n\n%s\n\n%s", event.Name, intro, details(event))
	return append(out, Message{
		To:      event.Email,
		Subject: fmt.Sprintf("%s #%d", subject, event.ReservationID),
		Body:    body,
	})
}

func details(e kafka.ReservationEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Vrsta: %s\n", typeName(e.ReservationType))
	fmt.Fprintf(&b, "Datum: %s\n", e.Date)
	if e.Time != "" {
		fmt.Fprintf(&b, "Ura: %s\n", e.Time)
	}
	if e.Nights > 0 {
		fmt.Fprintf(&b, "Nočitve: %d\n", e.Nights)
	}
	fmt.Fprintf(&b, "Osebe: %d\n", e.People)
	if e.Location != "" {
		fmt.Fprintf(&b, "Lokacija: %s\n", e.Location)
	}
	fmt.Fprintf(&b, "Kontakt: %s, %s, %s\n", e.Name, e.Phone, e.Email)
	if e.Note != "" {
		fmt.Fprintf(&b, "Opomba: %s\n", e.Note)
	}
	return b.String()
}

func typeName(t string) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return t
}
