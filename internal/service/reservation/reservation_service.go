package reservation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/kafka"
	"github.com/Domenick1991/farmstay/internal/repository"
	"github.com/Domenick1991/farmstay/internal/service/availability"
)

var (
	ErrNotFound          = repository.ErrNotFound
	ErrInvalidStatus     = errors.New("invalid reservation status")
	ErrInvalidTransition = errors.New("reservation cannot change to this status")
	ErrInvalidInput      = errors.New("invalid reservation")
	ErrUnavailable       = errors.New("requested capacity is not available")
	ErrDuplicateSubmit   = errors.New("reservation is already being submitted")
	ErrNoChanges         = errors.New("no fields to update")
)

type ReservationUseCase interface {
	Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error)
	Get(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error)
	Confirm(ctx context.Context, id int64) (*domain.Reservation, error)
	Reject(ctx context.Context, id int64, reason string) (*domain.Reservation, error)
	Cancel(ctx context.Context, id int64) (*domain.Reservation, error)
	Update(ctx context.Context, id int64, upd domain.ReservationUpdate) (*domain.Reservation, error)
}

// Locker guards against the same guest submitting the same booking twice in a row.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Checker validates reservations entered outside the chat.
type Checker interface {
	Check(ctx context.Context, req availability.Request) (availability.Result, error)
}

type ReservationService struct {
	reservations       repository.ReservationRepository
	checker            Checker
	locker             Locker
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	lockTTL            time.Duration
	logger             *zap.Logger
	now                func() time.Time
}

type ReservationServiceOption func(*ReservationService)

func WithNotificationsTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.notificationsTopic = topic
	}
}

func WithChecker(checker Checker) ReservationServiceOption {
	return func(s *ReservationService) {
		s.checker = checker
	}
}

func WithLocker(locker Locker, ttl time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func WithLogger(logger *zap.Logger) ReservationServiceOption {
	return func(s *ReservationService) {
		s.logger = logger
	}
}

func NewReservationService(
	reservations repository.ReservationRepository,
	producer Producer,
	eventsTopic string,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		reservations: reservations,
		producer:     producer,
		eventsTopic:  eventsTopic,
		lockTTL:      30 * time.Second,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Create stores a new reservation. A missing status is derived from the source, and
// reservations entered outside the chat are checked against the availability rules
// first since the chat dialogue already did that with the guest.
func (s *ReservationService) Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	if err := validate(r); err != nil {
		return nil, err
	}
	if r.Source == "" {
		r.Source = domain.SourceChat
	}
	if r.Status == "" {
		r.Status = domain.InitialStatus(r.Source)
	}
	if !r.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}

	if s.checker != nil && r.Source != domain.SourceChat {
		if err := s.check(ctx, r); err != nil {
			return nil, err
		}
	}

	locked := false
	key := submitLockKey(r)
	if s.locker != nil {
		ok, err := s.locker.AcquireLock(ctx, key, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire submit lock: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateSubmit
		}
		locked = true
	}

	if err := s.reservations.Create(ctx, r); err != nil {
		if locked {
			_ = s.locker.ReleaseLock(ctx, key)
		}
		return nil, err
	}

	s.logger.Info("reservation created",
		zap.Int64("reservation_id", r.ID),
		zap.String("type", string(r.Type)),
		zap.String("status", string(r.Status)),
		zap.String("source", r.Source),
	)
	s.publish(ctx, kafka.EventReservationCreated, r)
	return r, nil
}

func (s *ReservationService) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.reservations.Get(ctx, id)
}

func (s *ReservationService) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}
	return s.reservations.List(ctx, filter)
}

func (s *ReservationService) Confirm(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.transition(ctx, id, domain.ReservationStatusConfirmed, kafka.EventReservationConfirmed)
}

// Reject declines an open request. A non-empty reason is kept in the admin notes.
func (s *ReservationService) Reject(ctx context.Context, id int64, reason string) (*domain.Reservation, error) {
	updated, err := s.transition(ctx, id, domain.ReservationStatusRejected, kafka.EventReservationRejected)
	if err != nil || strings.TrimSpace(reason) == "" {
		return updated, err
	}
	notes := strings.TrimSpace(reason)
	return s.reservations.Update(ctx, id, domain.ReservationUpdate{AdminNotes: &notes})
}

// Cancel is idempotent for reservations that are already cancelled or rejected.
func (s *ReservationService) Cancel(ctx context.Context, id int64) (*domain.Reservation, error) {
	current, err := s.reservations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.HoldsCapacity() {
		return current, nil
	}

	updated, err := s.reservations.UpdateStatus(ctx, id, domain.ReservationStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventReservationCancelled, updated)
	return updated, nil
}

func (s *ReservationService) Update(ctx context.Context, id int64, upd domain.ReservationUpdate) (*domain.Reservation, error) {
	if upd.Empty() {
		return nil, ErrNoChanges
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *upd.Status)
	}

	updated, err := s.reservations.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventReservationUpdated, updated)
	return updated, nil
}

func (s *ReservationService) transition(ctx context.Context, id int64, to domain.ReservationStatus, eventType string) (*domain.Reservation, error) {
	current, err := s.reservations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.ReservationStatusPending && current.Status != domain.ReservationStatusProcessing {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
	}

	updated, err := s.reservations.UpdateStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, eventType, updated)
	return updated, nil
}

func (s *ReservationService) check(ctx context.Context, r *domain.Reservation) error {
	res, err := s.checker.Check(ctx, availability.Request{
		Type:     r.Type,
		Date:     r.Date,
		Time:     r.Time,
		Nights:   r.Nights,
		People:   r.People,
		Hours:    r.WellnessHours,
		MealType: r.MealType,
		Package:  r.PackageType,
	})
	if err != nil {
		return fmt.Errorf("check availability: %w", err)
	}
	if res.Reason != "" {
		return fmt.Errorf("%w: %s", ErrInvalidInput, res.Reason)
	}
	if !res.Available {
		if res.Alternative != "" {
			return fmt.Errorf("%w: next free arrival %s", ErrUnavailable, res.Alternative)
		}
		return ErrUnavailable
	}
	if r.Type == domain.ReservationTypeTable && r.Location == "" {
		r.Location = res.Location
	}
	return nil
}

// publish never fails the caller; a lost event only delays the notification.
func (s *ReservationService) publish(ctx context.Context, eventType string, r *domain.Reservation) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.ReservationEvent{
		ID:              uuid.NewString(),
		Type:            eventType,
		ReservationID:   r.ID,
		ReservationType: string(r.Type),
		Status:          string(r.Status),
		Source:          r.Source,
		Date:            r.Date,
		Time:            r.Time,
		Nights:          r.Nights,
		People:          r.People,
		Location:        r.Location,
		Name:            r.Name,
		Phone:           r.Phone,
		Email:           r.Email,
		Note:            r.Note,
		OccurredAt:      s.now(),
	}
	key := strconv.FormatInt(r.ID, 10)

	topics := []string{s.eventsTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.Publish(ctx, topic, key, event); err != nil {
			s.logger.Warn("publish reservation event failed",
				zap.String("event", eventType),
				zap.String("topic", topic),
				zap.Int64("reservation_id", r.ID),
				zap.Error(err),
			)
		}
	}
}

func validate(r *domain.Reservation) error {
	if r == nil {
		return fmt.Errorf("%w: empty reservation", ErrInvalidInput)
	}
	switch {
	case !r.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", ErrInvalidInput, r.Type)
	case strings.TrimSpace(r.Date) == "":
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	case r.People <= 0:
		return fmt.Errorf("%w: people must be positive", ErrInvalidInput)
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case r.Phone == "" && r.Email == "":
		return fmt.Errorf("%w: phone or email is required", ErrInvalidInput)
	}
	return nil
}

func submitLockKey(r *domain.Reservation) string {
	contact := strings.ToLower(r.Email)
	if contact == "" {
		contact = r.Phone
	}
	return fmt.Sprintf("lock:reservation:%s:%s:%s", r.Type, r.Date, contact)
}

var _ ReservationUseCase = (*ReservationService)(nil)
