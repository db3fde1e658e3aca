// Package chat turns a routing decision into a reply and owns the per-message request cycle.
package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Domenick1991/farmstay/internal/domain"
)

const (
	systemReply       = "Rezervacijo sem ponastavil. Kako lahko pomagam?"
	apologyReply      = "Oprostite, prišlo je do napake. Prosimo poskusite znova ali nas pokličite na 031 249 812."
	continuationBlock = "\n\n---\n\n📝 **Nadaljujemo z rezervacijo:**\n"
	generalProductKey = "izdelki_splosno"
)

type InfoResponder interface {
	Answer(ctx context.Context, key string, softSell bool) (string, error)
}

type ProductResponder interface {
	Product(ctx context.Context, key string) (string, error)
}

type GeneralHandler interface {
	General(ctx context.Context, message string) (string, error)
}

// Translator localises a finished reply.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

type BookingFlow interface {
	Handle(ctx context.Context, msg string, s *domain.Session) (string, error)
	Prompt(s *domain.Session) string
}

type identityTranslator struct{}

func (identityTranslator) Translate(_ context.Context, text string) string { return text }

type Executor struct {
	info       InfoResponder
	products   ProductResponder
	flow       BookingFlow
	general    GeneralHandler
	translator Translator
	experience func(string) domain.ReservationType
	logger     *zap.Logger
}

type ExecutorOption func(*Executor)

// WithGeneralHandler answers GENERAL messages. Without one they are reported as unhandled.
func WithGeneralHandler(h GeneralHandler) ExecutorOption {
	return func(e *Executor) {
		e.general = h
	}
}

func WithTranslator(t Translator) ExecutorOption {
	return func(e *Executor) {
		e.translator = t
	}
}

// WithExperienceDetector recognises requests for wellness, meal and package bookings,
// which have no intent of their own.
func WithExperienceDetector(fn func(string) domain.ReservationType) ExecutorOption {
	return func(e *Executor) {
		e.experience = fn
	}
}

func WithExecutorLogger(logger *zap.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

func NewExecutor(info InfoResponder, products ProductResponder, flow BookingFlow, opts ...ExecutorOption) *Executor {
	e := &Executor{
		info:       info,
		products:   products,
		flow:       flow,
		translator: identityTranslator{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs the action the decision calls for and returns the reply. handled is
// false only for GENERAL messages when no general handler is configured. A failing
// collaborator yields an apology and leaves the session as it was.
func (e *Executor) Execute(ctx context.Context, d domain.Decision, message string, s *domain.Session) (string, bool) {
	reply, handled, err := e.execute(ctx, d, message, s)
	if err != nil {
		e.logger.Error("execute decision failed",
			zap.String("session_id", s.ID),
			zap.String("intent", string(d.Intent)),
			zap.Error(err),
		)
		return e.translator.Translate(ctx, apologyReply), true
	}
	if !handled {
		return "", false
	}
	return e.translator.Translate(ctx, reply), true
}

func (e *Executor) execute(ctx context.Context, d domain.Decision, message string, s *domain.Session) (string, bool, error) {
	if t := e.experienceStart(d, message, s); t != domain.ReservationTypeUnset {
		s.Begin(t)
		reply, err := e.flow.Handle(ctx, message, s)
		return reply, true, err
	}

	switch d.Intent {
	case domain.IntentInfo:
		reply, err := e.info.Answer(ctx, d.InfoKey, d.NeedsSoftSell)
		if err != nil {
			return "", true, fmt.Errorf("info %q: %w", d.InfoKey, err)
		}
		return e.withContinuation(reply, d, s), true, nil

	case domain.IntentProduct:
		key := d.ProductKey
		if key == "" {
			key = generalProductKey
		}
		reply, err := e.products.Product(ctx, key)
		if err != nil {
			return "", true, fmt.Errorf("product %q: %w", key, err)
		}
		return e.withContinuation(reply, d, s), true, nil

	case domain.IntentSystem:
		s.Reset()
		return systemReply, true, nil

	case domain.IntentBookingRoom:
		s.Begin(domain.ReservationTypeRoom)
		reply, err := e.flow.Handle(ctx, message, s)
		return reply, true, err

	case domain.IntentBookingTable:
		s.Begin(domain.ReservationTypeTable)
		reply, err := e.flow.Handle(ctx, message, s)
		return reply, true, err

	case domain.IntentBookingContinue:
		if s.Type.Valid() {
			reply, err := e.flow.Handle(ctx, message, s)
			return reply, true, err
		}
	}

	if e.general == nil {
		return "", false, nil
	}
	reply, err := e.general.General(ctx, message)
	if err != nil {
		return "", true, fmt.Errorf("general: %w", err)
	}
	return reply, true, nil
}

// experienceStart returns the experience type to open a booking for, if the message asks
// for one the session is not already booking.
func (e *Executor) experienceStart(d domain.Decision, message string, s *domain.Session) domain.ReservationType {
	if e.experience == nil || d.Intent == domain.IntentSystem || d.Intent == domain.IntentBookingRoom {
		return domain.ReservationTypeUnset
	}
	t := e.experience(message)
	if t == s.Type {
		return domain.ReservationTypeUnset
	}
	return t
}

func (e *Executor) withContinuation(reply string, d domain.Decision, s *domain.Session) string {
	if !d.IsInterrupt || !s.Active() {
		return reply
	}
	return reply + continuationBlock + e.flow.Prompt(s)
}
