package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/service/availability"
)

type MockReservationStore struct {
	mock.Mock
}

func (m *MockReservationStore) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationStore) Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

// Friday
var fixedNow = time.Date(2026, time.October, 16, 10, 30, 0, 0, time.Local)

func newTestFlow(store *MockReservationStore) *Flow {
	clock := func() time.Time { return fixedNow }
	engine := availability.NewEngine(domain.DefaultCatalog(), store, availability.WithClock(clock))
	return NewFlow(engine, store, WithClock(clock))
}

func drive(t *testing.T, f *Flow, s *domain.Session, msgs ...string) string {
	t.Helper()
	var reply string
	for _, msg := range msgs {
		var err error
		reply, err = f.Handle(context.Background(), msg, s)
		require.NoError(t, err, msg)
	}
	return reply
}

func begin(t domain.ReservationType) *domain.Session {
	s := domain.NewSession("sess-1")
	s.Begin(t)
	return s
}

// roomAtEmail returns a complete room draft waiting for the e-mail address.
func roomAtEmail() *domain.Session {
	s := begin(domain.ReservationTypeRoom)
	s.Step = domain.StepAwaitingEmail
	s.Room.Date = "14.11.2026"
	s.Room.Nights = 3
	s.Room.People = 2
	s.Room.PrefAsked = true
	s.Contact = domain.Contact{Name: "Janez Novak", Phone: "041123456"}
	return s
}

func TestFlow_RoomRoundTrip(t *testing.T) {
	store := new(MockReservationStore)
	store.On("List", mock.Anything, mock.Anything).Return([]domain.Reservation{}, nil)
	store.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Reservation) bool {
		return r.Type == domain.ReservationTypeRoom &&
			r.Date == "14.11.2026" && r.Nights == 3 && r.People == 2 && r.Rooms == 1 &&
			r.Name == "Janez Novak" && r.Phone == "041123456" && r.Email == "janez@example.si" &&
			r.Status == domain.ReservationStatusPending && r.Source == domain.SourceChat
	})).Return(&domain.Reservation{ID: 42, Type: domain.ReservationTypeRoom, Status: domain.ReservationStatusPending}, nil).Once()

	f := newTestFlow(store)
	s := begin(domain.ReservationTypeRoom)

	reply := drive(t, f, s, "rezerviram sobo")
	assert.Equal(t, domain.StepAwaitingDate, s.Step)
	assert.Contains(t, reply, "datum prihoda")

	steps := []struct {
		msg  string
		want domain.Step
	}{
		{msg: "14.11.2026", want: domain.StepAwaitingNights},
		{msg: "3", want: domain.StepAwaitingPeople},
		{msg: "2", want: domain.StepAwaitingRoomPref},
		{msg: "vseeno", want: domain.StepAwaitingContactName},
		{msg: "Janez Novak", want: domain.StepAwaitingPhone},
		{msg: "041 123 456", want: domain.StepAwaitingEmail},
		{msg: "janez@example.si", want: domain.StepAwaitingConfirmation},
	}
	for _, st := range steps {
		reply = drive(t, f, s, st.msg)
		require.Equal(t, st.want, s.Step, st.msg)
	}
	assert.Contains(t, reply, "Potrdite rezervacijo")
	assert.Contains(t, reply, "14.11.2026")

	reply = drive(t, f, s, "da")
	assert.Contains(t, reply, "42")
	assert.Contains(t, reply, "Janez Novak")
	assert.False(t, s.Active())
	assert.Nil(t, s.Room)
	store.AssertExpectations(t)
}

func TestFlow_HighSeasonMinimumStay(t *testing.T) {
	f := newTestFlow(new(MockReservationStore))
	s := begin(domain.ReservationTypeRoom)

	drive(t, f, s, "rezerviram sobo za 15.07.2027")
	require.Equal(t, domain.StepAwaitingNights, s.Step)
	assert.Equal(t, "15.07.2027", s.Room.Date)

	reply := drive(t, f, s, "1")
	assert.Equal(t, domain.StepAwaitingNights, s.Step)
	assert.Zero(t, s.Room.Nights)
	assert.Contains(t, reply, "5 noči")

	drive(t, f, s, "5")
	assert.Equal(t, domain.StepAwaitingPeople, s.Step)
}

func TestFlow_PrefillDoesNotTakeNightsAsPeople(t *testing.T) {
	f := newTestFlow(new(MockReservationStore))

	s := begin(domain.ReservationTypeRoom)
	drive(t, f, s, "rezerviram sobo za 3 noči")
	assert.Equal(t, 3, s.Room.Nights)
	assert.Zero(t, s.Room.People)

	s = begin(domain.ReservationTypeRoom)
	drive(t, f, s, "rezerveru sobo za 4")
	assert.Equal(t, 4, s.Room.People)
	assert.Equal(t, domain.StepAwaitingDate, s.Step)
}

func TestFlow_ResetAtAnyStep(t *testing.T) {
	f := newTestFlow(new(MockReservationStore))

	for _, msg := range []string{"stop", "začni znova", "Zmotil sem se"} {
		s := roomAtEmail()
		reply := drive(t, f, s, msg)
		assert.False(t, s.Active(), msg)
		assert.Equal(t, domain.ReservationTypeUnset, s.Type)
		assert.Empty(t, s.Contact.Name)
		assert.Equal(t, resetReply, reply)
	}
}

func TestFlow_OpeningMessageIsNeverAReset(t *testing.T) {
	f := newTestFlow(new(MockReservationStore))
	s := begin(domain.ReservationTypeRoom)

	reply := drive(t, f, s, "rezerviram sobo za konec avgusta")
	assert.True(t, s.Active())
	assert.Equal(t, domain.ReservationTypeRoom, s.Type)
	assert.Equal(t, domain.StepAwaitingDate, s.Step)
	assert.NotEqual(t, resetReply, reply)
}

func TestFlow_CheckFailureKeepsPreviousStep(t *testing.T) {
	store := new(MockReservationStore)
	store.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
	store.On("List", mock.Anything, mock.Anything).Return([]domain.Reservation{}, nil)
	store.On("Create", mock.Anything, mock.Anything).
		Return(&domain.Reservation{ID: 5, Status: domain.ReservationStatusPending}, nil).Once()

	f := newTestFlow(store)
	s := roomAtEmail()

	_, err := f.Handle(context.Background(), "janez@example.si", s)
	require.Error(t, err)
	assert.ErrorContains(t, err, "db down")
	assert.Equal(t, domain.StepAwaitingEmail, s.Step)

	reply := drive(t, f, s, "janez@example.si")
	assert.Equal(t, domain.StepAwaitingConfirmation, s.Step)
	assert.Contains(t, reply, "Potrdite rezervacijo")
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	drive(t, f, s, "da")
	assert.False(t, s.Active())
	store.AssertExpectations(t)
}

func TestFlow_StoreFailurePreservesSession(t *testing.T) {
	store := new(MockReservationStore)
	store.On("List", mock.Anything, mock.Anything).Return([]domain.Reservation{}, nil)
	store.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	f := newTestFlow(store)
	s := roomAtEmail()
	drive(t, f, s, "janez@example.si")
	require.Equal(t, domain.StepAwaitingConfirmation, s.Step)

	_, err := f.Handle(context.Background(), "da", s)
	require.Error(t, err)
	assert.ErrorContains(t, err, "db down")
	assert.Equal(t, domain.StepAwaitingConfirmation, s.Step)
	require.NotNil(t, s.Room)
	assert.Equal(t, "14.11.2026", s.Room.Date)
	assert.Equal(t, "janez@example.si", s.Contact.Email)
}

func TestFlow_ConfirmationAnswers(t *testing.T) {
	t.Run("no cancels", func(t *testing.T) {
		store := new(MockReservationStore)
		store.On("List", mock.Anything, mock.Anything).Return([]domain.Reservation{}, nil)
		f := newTestFlow(store)
		s := roomAtEmail()

		reply := drive(t, f, s, "janez@example.si", "ne")
		assert.Equal(t, cancelReply, reply)
		assert.False(t, s.Active())
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unclear answer re-prompts", func(t *testing.T) {
		store := new(MockReservationStore)
		store.On("List", mock.Anything, mock.Anything).Return([]domain.Reservation{}, nil)
		f := newTestFlow(store)
		s := roomAtEmail()

		reply := drive(t, f, s, "janez@example.si", "hmm")
		assert.Equal(t, domain.StepAwaitingConfirmation, s.Step)
		assert.Contains(t, reply, "»da« ali »ne«")
	})

	t.Run("new date re-enters the date step", func(t *testing.T) {
		store := new(MockReservationStore)
		store.On("List", mock.Anything, mock.Anything).Return([]domain.Reservation{}, nil)
		f := newTestFlow(store)
		s := roomAtEmail()

		reply := drive(t, f, s, "janez@example.si", "raje 21.11.2026")
		assert.Equal(t, domain.StepAwaitingConfirmation, s.Step)
		assert.Equal(t, "21.11.2026", s.Room.Date)
		assert.Contains(t, reply, "21.11.2026")
		store.AssertNumberOfCalls(t, "List", 2)
	})
}

func TestFlow_UnavailableRoomOffersAlternative(t *testing.T) {
	store := new(MockReservationStore)
	store.On("List", mock.Anything, mock.Anything).Return([]domain.Reservation{
		{Type: domain.ReservationTypeRoom, Date: "14.11.2026", Nights: 2, Rooms: 7, Status: domain.ReservationStatusConfirmed},
	}, nil)
	f := newTestFlow(store)
	s := roomAtEmail()

	reply := drive(t, f, s, "janez@example.si")
	assert.Equal(t, domain.StepAwaitingConfirmation, s.Step)
	assert.Contains(t, reply, "16.11.2026")
	assert.Contains(t, reply, "Potrdite rezervacijo")
}

func TestFlow_ConfirmingFullDateNeverSubmits(t *testing.T) {
	store := new(MockReservationStore)
	store.On("List", mock.Anything, mock.Anything).Return([]domain.Reservation{
		{Type: domain.ReservationTypeRoom, Date: "14.11.2026", Nights: 2, Rooms: 7, Status: domain.ReservationStatusConfirmed},
	}, nil)
	store.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Reservation) bool {
		return r.Date == "16.11.2026"
	})).Return(&domain.Reservation{ID: 9, Status: domain.ReservationStatusPending}, nil).Once()
	f := newTestFlow(store)
	s := roomAtEmail()

	reply := drive(t, f, s, "janez@example.si")
	assert.NotContains(t, reply, "vseeno")

	reply = drive(t, f, s, "da")
	assert.Equal(t, domain.StepAwaitingConfirmation, s.Step)
	assert.Equal(t, "14.11.2026", s.Room.Date)
	assert.Contains(t, reply, "16.11.2026")
	assert.Contains(t, reply, "Napišite nov datum")
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	drive(t, f, s, "16.11.2026")
	require.Equal(t, domain.StepAwaitingConfirmation, s.Step)
	reply = drive(t, f, s, "da")
	assert.Contains(t, reply, "9")
	assert.False(t, s.Active())
	store.AssertExpectations(t)
}

func TestFlow_Table(t *testing.T) {
	t.Run("weekday is rejected at the date step", func(t *testing.T) {
		f := newTestFlow(new(MockReservationStore))
		s := begin(domain.ReservationTypeTable)

		reply := drive(t, f, s, "rezerviram mizo za 21.10.2026")
		assert.Equal(t, domain.StepAwaitingDate, s.Step)
		assert.Empty(t, s.Table.Date)
		assert.Contains(t, reply, "sobotah in nedeljah")

		reply = drive(t, f, s, "21.10.2026")
		assert.Equal(t, domain.StepAwaitingDate, s.Step)
		assert.Contains(t, reply, "sreda")

		drive(t, f, s, "17.10.2026")
		assert.Equal(t, domain.StepAwaitingTime, s.Step)

		reply = drive(t, f, s, "16:00")
		assert.Equal(t, domain.StepAwaitingTime, s.Step)
		assert.Contains(t, reply, "Zadnji prihod")

		drive(t, f, s, "13")
		assert.Equal(t, "13:00", s.Table.Time)
		assert.Equal(t, domain.StepAwaitingPeople, s.Step)
	})

	t.Run("prefilled opening message reaches contact details", func(t *testing.T) {
		store := new(MockReservationStore)
		store.On("List", mock.Anything, mock.Anything).Return([]domain.Reservation{}, nil)
		store.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Reservation) bool {
			return r.Type == domain.ReservationTypeTable && r.Time == "13:00" && r.People == 4 &&
				r.Location == "Jedilnica Pri peči"
		})).Return(&domain.Reservation{ID: 7, Status: domain.ReservationStatusPending}, nil)

		f := newTestFlow(store)
		s := begin(domain.ReservationTypeTable)

		drive(t, f, s, "rezev mizo 17.10.2026 ob 13:00 za 4 osebe")
		assert.Equal(t, domain.StepAwaitingContactName, s.Step)

		reply := drive(t, f, s, "Ana Kovač", "+386 41 123 456", "ana@example.si")
		assert.Equal(t, domain.StepAwaitingConfirmation, s.Step)
		assert.Contains(t, reply, "Jedilnica Pri peči")
		assert.Equal(t, "+38641123456", s.Contact.Phone)

		drive(t, f, s, "potrjujem")
		assert.False(t, s.Active())
		store.AssertExpectations(t)
	})

	t.Run("new time at confirmation reopens the time step", func(t *testing.T) {
		store := new(MockReservationStore)
		store.On("List", mock.Anything, mock.Anything).Return([]domain.Reservation{}, nil)
		f := newTestFlow(store)
		s := begin(domain.ReservationTypeTable)

		drive(t, f, s, "rezev mizo 17.10.2026 ob 13:00 za 4 osebe", "Ana Kovač", "041 123 456", "ana@example.si")
		require.Equal(t, domain.StepAwaitingConfirmation, s.Step)

		reply := drive(t, f, s, "ob 14:00")
		assert.Equal(t, domain.StepAwaitingConfirmation, s.Step)
		assert.Equal(t, "14:00", s.Table.Time)
		assert.Contains(t, reply, "14:00")
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestFlow_WellnessAndPackageSummaries(t *testing.T) {
	f := newTestFlow(new(MockReservationStore))

	s := begin(domain.ReservationTypeWellness)
	drive(t, f, s, "wellness 17.10.2026 ob 14:00")
	require.Equal(t, domain.StepAwaitingDuration, s.Step)

	reply := drive(t, f, s, "5")
	assert.Contains(t, reply, "2, 3 ali 4 ure")
	reply = drive(t, f, s, "3", "2", "Mojca Zupan", "031 222 333", "mojca@example.si")
	require.Equal(t, domain.StepAwaitingConfirmation, s.Step)
	assert.Contains(t, reply, "90 €")

	s = begin(domain.ReservationTypePackage)
	drive(t, f, s, "zanima me paket eko za 2 osebi")
	require.Equal(t, domain.StepAwaitingDate, s.Step)
	assert.Equal(t, "eko_vikend", s.Package.Package)
	assert.Equal(t, 2, s.Package.People)

	reply = drive(t, f, s, "6.11.2026", "Mojca Zupan", "031 222 333", "mojca@example.si")
	require.Equal(t, domain.StepAwaitingConfirmation, s.Step)
	assert.Contains(t, reply, "Eko vikend razvajanja")
	assert.Contains(t, reply, "398 €")
}

func TestFlow_MealTypeByIndex(t *testing.T) {
	f := newTestFlow(new(MockReservationStore))
	s := begin(domain.ReservationTypeMeal)

	reply := drive(t, f, s, "želim kulinarično doživetje")
	require.Equal(t, domain.StepAwaitingMealType, s.Step)
	assert.Contains(t, reply, "1) Degustacijsko kosilo")

	drive(t, f, s, "2")
	assert.Equal(t, "degustacijska_vecerja", s.Meal.MealType)
	assert.Equal(t, domain.StepAwaitingDate, s.Step)

	reply = drive(t, f, s, "21.10.2026")
	assert.Contains(t, reply, "ob petkih, sobotah in nedeljah")
	assert.Equal(t, domain.StepAwaitingDate, s.Step)
}

func TestFlow_RequiresBooking(t *testing.T) {
	f := newTestFlow(new(MockReservationStore))
	_, err := f.Handle(context.Background(), "živjo", domain.NewSession("x"))
	assert.ErrorIs(t, err, ErrNoBooking)
	assert.Empty(t, f.Prompt(domain.NewSession("x")))
}
