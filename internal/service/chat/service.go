package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/repository"
)

const (
	maxMessageLength = 2000
	fallbackReply    = "Nisem povsem razumel. Lahko vprašate o sobah, hrani, wellnessu ali izdelkih, ali pa napišete »rezerviram sobo« oziroma »rezerviram mizo«."
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message is too long")
)

type Classifier interface {
	Classify(text string, view domain.SessionView) domain.Decision
}

type DecisionExecutor interface {
	Execute(ctx context.Context, d domain.Decision, message string, s *domain.Session) (string, bool)
}

type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
}

type ConversationLogger interface {
	Log(ctx context.Context, c *repository.Conversation) error
}

// Reply is what the guest sees plus enough state for the widget to render progress.
type Reply struct {
	SessionID   string                 `json:"session_id"`
	Reply       string                 `json:"reply"`
	Intent      domain.Intent          `json:"intent"`
	Step        domain.Step            `json:"step,omitempty"`
	BookingType domain.ReservationType `json:"booking_type,omitempty"`
}

type ChatUseCase interface {
	HandleMessage(ctx context.Context, sessionID, message string) (Reply, error)
}

type Service struct {
	sessions      SessionStore
	classifier    Classifier
	executor      DecisionExecutor
	conversations ConversationLogger
	logger        *zap.Logger
	newID         func() string
}

type ServiceOption func(*Service)

func WithConversationLogger(l ConversationLogger) ServiceOption {
	return func(s *Service) {
		s.conversations = l
	}
}

func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(sessions SessionStore, classifier Classifier, executor DecisionExecutor, opts ...ServiceOption) *Service {
	s := &Service{
		sessions:   sessions,
		classifier: classifier,
		executor:   executor,
		logger:     zap.NewNop(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleMessage runs one chat turn: load the session, classify, execute, save. An empty
// sessionID starts a new conversation.
func (s *Service) HandleMessage(ctx context.Context, sessionID, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		return Reply{}, ErrMessageTooLong
	}
	if sessionID == "" {
		sessionID = s.newID()
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Reply{}, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		sess = domain.NewSession(sessionID)
	}

	decision := s.classifier.Classify(message, sess.View())
	text, handled := s.executor.Execute(ctx, decision, message, sess)
	if !handled {
		text = fallbackReply
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}
	s.logTurn(ctx, sessionID, message, text, decision.Intent)

	return Reply{
		SessionID:   sessionID,
		Reply:       text,
		Intent:      decision.Intent,
		Step:        sess.Step,
		BookingType: sess.Type,
	}, nil
}

// logTurn records the exchange. Failures are logged only.
func (s *Service) logTurn(ctx context.Context, sessionID, message, reply string, intent domain.Intent) {
	if s.conversations == nil {
		return
	}
	err := s.conversations.Log(ctx, &repository.Conversation{
		SessionID:   sessionID,
		UserMessage: message,
		BotResponse: reply,
		Intent:      string(intent),
	})
	if err != nil {
		s.logger.Warn("log conversation failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

var _ ChatUseCase = (*Service)(nil)
