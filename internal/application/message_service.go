package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/recruitment-portal/internal/persistence"
)

const maxMessageLength = 5000

// MessageService delivers notes between candidates and administrators.
type MessageService struct {
	users    persistence.UserRepository
	messages persistence.MessageRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewMessageService constructs a MessageService.
func NewMessageService(users persistence.UserRepository, messages persistence.MessageRepository, now func() time.Time) *MessageService {
	return NewMessageServiceWithLogger(users, messages, now, nil)
}

// NewMessageServiceWithLogger constructs a MessageService with a specified logger.
func NewMessageServiceWithLogger(users persistence.UserRepository, messages persistence.MessageRepository, now func() time.Time, logger *slog.Logger) *MessageService {
	if now == nil {
		now = time.Now
	}
	return &MessageService{users: users, messages: messages, now: now, logger: defaultLogger(logger)}
}

func (s *MessageService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MessageService", operation, attrs...)
}

func (s *MessageService) ready() error {
	if s == nil {
		return fmt.Errorf("MessageService is nil")
	}
	if s.users == nil || s.messages == nil {
		return fmt.Errorf("message repositories not configured")
	}
	return nil
}

// Send delivers a message. Candidates may only write to administrators.
func (s *MessageService) Send(ctx context.Context, params SendMessageParams) (msg persistence.Message, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Send", "principal_id", params.Principal.UserID)
	defer func() { logOutcome(ctx, logger, err, "message delivery", "message_id", msg.ID, "recipient_id", msg.RecipientID) }()

	if params.Principal.UserID == 0 {
		err = ErrUnauthorized
		return
	}

	body := strings.TrimSpace(params.Body)
	vErr := &ValidationError{}
	switch {
	case body == "":
		vErr.add("body", "message is required")
	case utf8.RuneCountInString(body) > maxMessageLength:
		vErr.add("body", fmt.Sprintf("message must be at most %d characters", maxMessageLength))
	}
	if params.RecipientID == 0 && strings.TrimSpace(params.RecipientEmail) == "" {
		vErr.add("recipient", "recipient is required")
	}
	if err = vErr.orNil(); err != nil {
		return
	}

	var recipient persistence.User
	if params.RecipientID != 0 {
		recipient, err = s.users.GetUser(ctx, params.RecipientID)
	} else {
		recipient, err = s.users.GetUserByEmail(ctx, normalizeEmail(params.RecipientEmail))
	}
	if err != nil {
		err = translateStoreError(err)
		return
	}
	if recipient.ID == params.Principal.UserID {
		err = validationFailure("recipient", "cannot send a message to yourself")
		return
	}
	if params.Principal.IsCandidate() && recipient.Role != persistence.RoleAdmin {
		err = ErrUnauthorized
		return
	}

	msg, err = s.messages.CreateMessage(ctx, persistence.Message{
		SenderID:    params.Principal.UserID,
		RecipientID: recipient.ID,
		Body:        body,
		SentAt:      s.now(),
	})
	err = translateStoreError(err)
	return
}

// List returns messages the principal sent or received, newest first.
func (s *MessageService) List(ctx context.Context, principal Principal) ([]persistence.Message, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if principal.UserID == 0 {
		return nil, ErrUnauthorized
	}
	return s.messages.ListMessages(ctx, principal.UserID)
}

// ListAll returns every message in the portal.
func (s *MessageService) ListAll(ctx context.Context, principal Principal) ([]persistence.Message, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.messages.ListMessages(ctx, 0)
}

// MarkRead flags a received message as read.
func (s *MessageService) MarkRead(ctx context.Context, principal Principal, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	msg, err := s.messages.GetMessage(ctx, id)
	if err != nil {
		return translateStoreError(err)
	}
	if msg.RecipientID != principal.UserID {
		return ErrNotFound
	}
	return translateStoreError(s.messages.MarkMessageRead(ctx, id))
}

// Delete removes a message on behalf of its sender, its recipient or an administrator.
func (s *MessageService) Delete(ctx context.Context, principal Principal, id int64) (err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Delete", "principal_id", principal.UserID, "message_id", id)
	defer func() { logOutcome(ctx, logger, err, "message deletion") }()

	var msg persistence.Message
	if msg, err = s.messages.GetMessage(ctx, id); err != nil {
		err = translateStoreError(err)
		return
	}
	if !principal.IsAdmin() && msg.SenderID != principal.UserID && msg.RecipientID != principal.UserID {
		err = ErrNotFound
		return
	}
	err = translateStoreError(s.messages.DeleteMessage(ctx, id))
	return
}
