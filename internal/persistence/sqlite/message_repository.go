package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/recruitment-portal/internal/persistence"
)

// CreateMessage stores a message.
func (s *Storage) CreateMessage(ctx context.Context, msg persistence.Message) (persistence.Message, error) {
	result, err := s.exec(ctx, `
		INSERT INTO messages (sender_id, recipient_id, message, sent_date, read)
		VALUES (?, ?, ?, ?, ?)`,
		msg.SenderID, msg.RecipientID, msg.Body, formatTime(msg.SentAt), boolToInt(msg.Read),
	)
	if err != nil {
		return persistence.Message{}, err
	}
	if msg.ID, err = result.LastInsertId(); err != nil {
		return persistence.Message{}, err
	}
	return msg, nil
}

// GetMessage loads a message by id.
func (s *Storage) GetMessage(ctx context.Context, id int64) (persistence.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sender_id, recipient_id, message, sent_date, read FROM messages WHERE id = ?`, id)
	return scanMessage(row)
}

// ListMessages returns messages sent or received by participantID, newest first.
func (s *Storage) ListMessages(ctx context.Context, participantID int64) ([]persistence.Message, error) {
	query := `SELECT id, sender_id, recipient_id, message, sent_date, read FROM messages`
	var args []any
	if participantID != 0 {
		query += " WHERE sender_id = ? OR recipient_id = ?"
		args = append(args, participantID, participantID)
	}
	query += " ORDER BY sent_date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var messages []persistence.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkMessageRead flags a message as read.
func (s *Storage) MarkMessageRead(ctx context.Context, id int64) error {
	result, err := s.exec(ctx, `UPDATE messages SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// DeleteMessage removes a message.
func (s *Storage) DeleteMessage(ctx context.Context, id int64) error {
	result, err := s.exec(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanMessage(row rowScanner) (persistence.Message, error) {
	var (
		msg  persistence.Message
		sent string
		read int
	)
	if err := row.Scan(&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Body, &sent, &read); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Message{}, persistence.ErrNotFound
		}
		return persistence.Message{}, mapError(err)
	}
	msg.Read = read != 0
	var err error
	if msg.SentAt, err = parseTime(sent); err != nil {
		return persistence.Message{}, err
	}
	return msg, nil
}
