// Package router classifies guest messages into intents. Classification is a pure
// function of the message, the session view and the Rules; counters and the diagnostic
// log are injected ports and never change the result.
package router

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/extract"
)

const (
	highConfidence = 0.9
	lowConfidence  = 0.6

	maxLoggedMessage = 200
	minPhoneDigits   = 7
	maxNameTokens    = 4
)

var questionWords = []string{
	"kaj", "kje", "kdaj", "koliko", "kako", "kakšen", "kakšna", "kakšno", "zakaj", "ali", "a",
	"imate", "lahko", "what", "where", "when", "how", "do", "is",
}

type Classifier struct {
	rules       *Rules
	counters    Counters
	diagnostics Diagnostics
	now         func() time.Time
}

type Option func(*Classifier)

func WithCounters(c Counters) Option {
	return func(cl *Classifier) {
		cl.counters = c
	}
}

func WithDiagnostics(d Diagnostics) Option {
	return func(cl *Classifier) {
		cl.diagnostics = d
	}
}

// WithClock sets the "today" used for relative date entities.
func WithClock(now func() time.Time) Option {
	return func(cl *Classifier) {
		cl.now = now
	}
}

func NewClassifier(rules *Rules, opts ...Option) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	c := &Classifier{
		rules:       rules,
		counters:    nopCounters{},
		diagnostics: nopDiagnostics{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) Rules() *Rules {
	return c.rules
}

// Classify routes one message given the booking state it arrives in.
func (c *Classifier) Classify(text string, view domain.SessionView) domain.Decision {
	t := strings.ToLower(strings.TrimSpace(text))
	toks := extract.Tokens(t)

	sig := c.rules.bookingSignals(t, toks)
	intent := bookingIntent(sig, view)
	infoKey := c.rules.detectInfo(t, toks)
	productKey := c.rules.detectProduct(t, toks)
	entities := c.entities(text, toks)

	interrupt := false
	switch {
	case view.Active() && c.rules.IsReset(t):
		intent = domain.IntentSystem
	case intent.StartsBooking():
	case view.Active():
		if (infoKey != "" || productKey != "") && !continues(sig, t, view, entities) {
			interrupt = true
			intent = infoOrProduct(infoKey)
		}
	case infoKey != "" || productKey != "":
		intent = infoOrProduct(infoKey)
	}

	if view.Step == domain.StepAwaitingPhone && len(extract.Digits(text)) >= minPhoneDigits {
		intent = domain.IntentBookingContinue
		interrupt = false
	}

	if intent != domain.IntentInfo {
		infoKey = ""
	}
	if intent != domain.IntentProduct {
		productKey = ""
	}

	d := domain.Decision{
		Intent:        intent,
		Confidence:    confidence(intent),
		IsInterrupt:   interrupt,
		InfoKey:       infoKey,
		ProductKey:    productKey,
		NeedsSoftSell: infoKey != "" && c.rules.softSell(infoKey),
		Entities:      entities,
	}
	c.record(d, view, text)
	return d
}

func (c *Classifier) record(d domain.Decision, view domain.SessionView, text string) {
	switch {
	case d.Intent == domain.IntentInfo:
		c.counters.Inc(CounterInfoHits)
	case d.Intent.StartsBooking():
		c.counters.Inc(CounterBookingStarts)
	}

	matched := d.InfoKey
	if matched == "" {
		matched = d.ProductKey
	}
	c.diagnostics.Record(DiagnosticRecord{
		Intent:      d.Intent,
		Confidence:  d.Confidence,
		MatchedKey:  matched,
		IsInterrupt: d.IsInterrupt,
		Step:        view.Step,
		Message:     truncate(text, maxLoggedMessage),
		Timestamp:   c.now(),
	})
}

func (c *Classifier) entities(text string, toks []string) domain.Entities {
	var e domain.Entities
	if v, ok := extract.Date(text, c.now()); ok {
		e.Date = v
	}
	if v, ok := extract.Time(text); ok {
		e.Time = v
	}
	if v, ok := extract.People(text); ok {
		e.People = v
	}
	e.RoomName = c.rules.roomName(toks)
	return e
}

func bookingIntent(sig signals, view domain.SessionView) domain.Intent {
	if view.Active() {
		switch {
		case sig.booking && sig.room && !sig.table && view.Type != domain.ReservationTypeRoom:
			return domain.IntentBookingRoom
		case sig.booking && sig.table && !sig.room && view.Type != domain.ReservationTypeTable:
			return domain.IntentBookingTable
		}
		return domain.IntentBookingContinue
	}

	switch {
	case sig.booking && sig.room && sig.table:
		return domain.IntentGeneral
	case sig.booking && sig.room:
		return domain.IntentBookingRoom
	case sig.booking && sig.table:
		return domain.IntentBookingTable
	}
	return domain.IntentGeneral
}

// continues reports whether a message sent during a booking still reads as part of it,
// either through booking vocabulary or because it answers the pending step.
func continues(sig signals, t string, view domain.SessionView, e domain.Entities) bool {
	if sig.booking || sig.room || sig.table {
		return true
	}

	switch view.Step {
	case domain.StepAwaitingDate:
		return e.Date != ""
	case domain.StepAwaitingNights:
		_, ok := extract.Nights(t, true)
		return ok
	case domain.StepAwaitingPeople, domain.StepAwaitingDuration:
		return e.People > 0
	case domain.StepAwaitingTime:
		_, ok := extract.NormalizeTime(t)
		return ok
	case domain.StepAwaitingRoomPref:
		return e.RoomName != ""
	case domain.StepAwaitingPhone:
		return len(extract.Digits(t)) >= minPhoneDigits
	case domain.StepAwaitingContactName:
		return looksLikeName(t)
	case domain.StepAwaitingEmail:
		return strings.Contains(t, "@")
	case domain.StepAwaitingConfirmation:
		yes, no := extract.Confirmation(t)
		return yes || no
	}
	return false
}

// looksLikeName accepts a short answer of plain words that is not phrased as a question.
// Surnames such as "Kravanja" or "Mačkovšek" otherwise trip info keywords.
func looksLikeName(t string) bool {
	if strings.ContainsAny(t, "?@0123456789") {
		return false
	}
	toks := extract.Tokens(t)
	if len(toks) == 0 || len(toks) > maxNameTokens {
		return false
	}
	for _, w := range questionWords {
		if toks[0] == w {
			return false
		}
	}
	return true
}

func infoOrProduct(infoKey string) domain.Intent {
	if infoKey != "" {
		return domain.IntentInfo
	}
	return domain.IntentProduct
}

func confidence(intent domain.Intent) float64 {
	switch intent {
	case domain.IntentInfo, domain.IntentProduct, domain.IntentBookingRoom,
		domain.IntentBookingTable, domain.IntentSystem:
		return highConfidence
	}
	return lowConfidence
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
