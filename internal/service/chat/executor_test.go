package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/router"
)

type MockInfoResponder struct {
	mock.Mock
}

func (m *MockInfoResponder) Answer(ctx context.Context, key string, softSell bool) (string, error) {
	args := m.Called(ctx, key, softSell)
	return args.String(0), args.Error(1)
}

type MockProductResponder struct {
	mock.Mock
}

func (m *MockProductResponder) Product(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type MockGeneralHandler struct {
	mock.Mock
}

func (m *MockGeneralHandler) General(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

type MockBookingFlow struct {
	mock.Mock
}

func (m *MockBookingFlow) Handle(ctx context.Context, msg string, s *domain.Session) (string, error) {
	args := m.Called(ctx, msg, s)
	return args.String(0), args.Error(1)
}

func (m *MockBookingFlow) Prompt(s *domain.Session) string {
	args := m.Called(s)
	return args.String(0)
}

type upperTranslator struct{}

func (upperTranslator) Translate(_ context.Context, text string) string { return "[en] " + text }

func activeRoomSession() *domain.Session {
	s := domain.NewSession("s1")
	s.Begin(domain.ReservationTypeRoom)
	s.Step = domain.StepAwaitingNights
	s.Room.Date = "14.11.2026"
	return s
}

func TestExecutor_Info(t *testing.T) {
	ctx := context.Background()

	t.Run("plain answer", func(t *testing.T) {
		info := &MockInfoResponder{}
		flow := &MockBookingFlow{}
		e := NewExecutor(info, &MockProductResponder{}, flow)

		info.On("Answer", ctx, "cena_sobe", true).Return("Od 55 €.", nil).Once()

		reply, handled := e.Execute(ctx, domain.Decision{Intent: domain.IntentInfo, InfoKey: "cena_sobe", NeedsSoftSell: true},
			"koliko stane nočitev", domain.NewSession("s1"))

		assert.True(t, handled)
		assert.Equal(t, "Od 55 €.", reply)
		flow.AssertNotCalled(t, "Prompt", mock.Anything)
	})

	t.Run("interrupt appends the pending question", func(t *testing.T) {
		info := &MockInfoResponder{}
		flow := &MockBookingFlow{}
		e := NewExecutor(info, &MockProductResponder{}, flow)
		s := activeRoomSession()

		info.On("Answer", ctx, "wifi", false).Return("WiFi je brezplačen.", nil).Once()
		flow.On("Prompt", s).Return("Koliko nočitev načrtujete?").Once()

		reply, handled := e.Execute(ctx, domain.Decision{Intent: domain.IntentInfo, InfoKey: "wifi", IsInterrupt: true}, "imate wifi", s)

		assert.True(t, handled)
		assert.Equal(t, "WiFi je brezplačen.\n\n---\n\n📝 **Nadaljujemo z rezervacijo:**\nKoliko nočitev načrtujete?", reply)
		assert.Equal(t, domain.StepAwaitingNights, s.Step)
		assert.Equal(t, "14.11.2026", s.Room.Date)
		flow.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("responder failure apologises and keeps the session", func(t *testing.T) {
		info := &MockInfoResponder{}
		e := NewExecutor(info, &MockProductResponder{}, &MockBookingFlow{})
		s := activeRoomSession()

		info.On("Answer", ctx, "wifi", false).Return("", errors.New("boom")).Once()

		reply, handled := e.Execute(ctx, domain.Decision{Intent: domain.IntentInfo, InfoKey: "wifi", IsInterrupt: true}, "wifi?", s)

		assert.True(t, handled)
		assert.Equal(t, apologyReply, reply)
		assert.True(t, s.Active())
		assert.Equal(t, "14.11.2026", s.Room.Date)
	})
}

func TestExecutor_ProductDefaultsToGeneralCategory(t *testing.T) {
	ctx := context.Background()
	products := &MockProductResponder{}
	e := NewExecutor(&MockInfoResponder{}, products, &MockBookingFlow{})

	products.On("Product", ctx, generalProductKey).Return("Naša trgovinica.", nil).Once()

	reply, handled := e.Execute(ctx, domain.Decision{Intent: domain.IntentProduct}, "kaj prodajate", domain.NewSession("s1"))

	assert.True(t, handled)
	assert.Equal(t, "Naša trgovinica.", reply)
	products.AssertExpectations(t)
}

func TestExecutor_System(t *testing.T) {
	e := NewExecutor(&MockInfoResponder{}, &MockProductResponder{}, &MockBookingFlow{})
	s := activeRoomSession()

	reply, handled := e.Execute(context.Background(), domain.Decision{Intent: domain.IntentSystem}, "začni znova", s)

	assert.True(t, handled)
	assert.Equal(t, systemReply, reply)
	assert.False(t, s.Active())
	assert.Nil(t, s.Room)
}

func TestExecutor_BookingStartResetsDraft(t *testing.T) {
	testCases := []struct {
		name   string
		intent domain.Intent
		want   domain.ReservationType
	}{
		{name: "room", intent: domain.IntentBookingRoom, want: domain.ReservationTypeRoom},
		{name: "table", intent: domain.IntentBookingTable, want: domain.ReservationTypeTable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			flow := &MockBookingFlow{}
			e := NewExecutor(&MockInfoResponder{}, &MockProductResponder{}, flow)
			s := activeRoomSession()
			s.Contact.Name = "Ana"

			flow.On("Handle", ctx, "rezerviram", mock.MatchedBy(func(got *domain.Session) bool {
				return got.Type == tc.want && got.Step == domain.StepNone && got.Contact.Name == ""
			})).Return("Za kateri datum?", nil).Once()

			reply, handled := e.Execute(ctx, domain.Decision{Intent: tc.intent}, "rezerviram", s)

			assert.True(t, handled)
			assert.Equal(t, "Za kateri datum?", reply)
			flow.AssertExpectations(t)
		})
	}
}

func TestExecutor_Continue(t *testing.T) {
	ctx := context.Background()
	flow := &MockBookingFlow{}
	e := NewExecutor(&MockInfoResponder{}, &MockProductResponder{}, flow)
	s := activeRoomSession()

	flow.On("Handle", ctx, "3", s).Return("", errors.New("db down")).Once()

	reply, handled := e.Execute(ctx, domain.Decision{Intent: domain.IntentBookingContinue}, "3", s)

	assert.True(t, handled)
	assert.Equal(t, apologyReply, reply)
	assert.Equal(t, domain.StepAwaitingNights, s.Step)
}

func TestExecutor_General(t *testing.T) {
	ctx := context.Background()

	e := NewExecutor(&MockInfoResponder{}, &MockProductResponder{}, &MockBookingFlow{})
	reply, handled := e.Execute(ctx, domain.Decision{Intent: domain.IntentGeneral}, "hmm", domain.NewSession("s1"))
	assert.False(t, handled)
	assert.Empty(t, reply)

	general := &MockGeneralHandler{}
	general.On("General", ctx, "hmm").Return("Tega žal ne vem.", nil).Once()
	e = NewExecutor(&MockInfoResponder{}, &MockProductResponder{}, &MockBookingFlow{},
		WithGeneralHandler(general), WithTranslator(upperTranslator{}))

	reply, handled = e.Execute(ctx, domain.Decision{Intent: domain.IntentGeneral}, "hmm", domain.NewSession("s1"))
	assert.True(t, handled)
	assert.Equal(t, "[en] Tega žal ne vem.", reply)
}

func TestExecutor_ExperienceStart(t *testing.T) {
	ctx := context.Background()
	flow := &MockBookingFlow{}
	e := NewExecutor(&MockInfoResponder{}, &MockProductResponder{}, flow,
		WithExperienceDetector(router.DefaultRules().Experience))

	msg := "rezerviram wellness za soboto"
	flow.On("Handle", ctx, msg, mock.MatchedBy(func(s *domain.Session) bool {
		return s.Type == domain.ReservationTypeWellness && s.Wellness != nil
	})).Return("Ob kateri uri želite začeti?", nil).Once()

	// the router reads "wellness" as an info question
	reply, handled := e.Execute(ctx, domain.Decision{Intent: domain.IntentInfo, InfoKey: "wellness"}, msg, domain.NewSession("s1"))

	assert.True(t, handled)
	assert.Equal(t, "Ob kateri uri želite začeti?", reply)
	flow.AssertExpectations(t)
}
