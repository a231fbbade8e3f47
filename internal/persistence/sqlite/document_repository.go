package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/recruitment-portal/internal/persistence"
)

// CreateDocument stores an uploaded file.
func (s *Storage) CreateDocument(ctx context.Context, doc persistence.Document) (persistence.Document, error) {
	doc.Size = int64(len(doc.Data))
	result, err := s.exec(ctx, `
		INSERT INTO documents (user_id, file_name, file_type, file_data, file_size, upload_date, viewed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.UserID, doc.FileName, doc.FileType, doc.Data, doc.Size, formatTime(doc.UploadedAt), boolToInt(doc.Viewed),
	)
	if err != nil {
		return persistence.Document{}, err
	}
	if doc.ID, err = result.LastInsertId(); err != nil {
		return persistence.Document{}, err
	}
	return doc, nil
}

// GetDocument loads a document including its content.
func (s *Storage) GetDocument(ctx context.Context, id int64) (persistence.Document, error) {
	var (
		doc      persistence.Document
		uploaded string
		viewed   int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, file_name, file_type, file_data, file_size, upload_date, viewed
		FROM documents WHERE id = ?`, id).Scan(
		&doc.ID, &doc.UserID, &doc.FileName, &doc.FileType, &doc.Data, &doc.Size, &uploaded, &viewed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Document{}, persistence.ErrNotFound
		}
		return persistence.Document{}, mapError(err)
	}
	doc.Viewed = viewed != 0
	if doc.UploadedAt, err = parseTime(uploaded); err != nil {
		return persistence.Document{}, err
	}
	return doc, nil
}

// ListDocuments returns document metadata, newest first. A zero userID lists every document.
func (s *Storage) ListDocuments(ctx context.Context, userID int64) ([]persistence.Document, error) {
	query := `SELECT id, user_id, file_name, file_type, file_size, upload_date, viewed FROM documents`
	var args []any
	if userID != 0 {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY upload_date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var docs []persistence.Document
	for rows.Next() {
		var (
			doc      persistence.Document
			uploaded string
			viewed   int
		)
		if err := rows.Scan(&doc.ID, &doc.UserID, &doc.FileName, &doc.FileType, &doc.Size, &uploaded, &viewed); err != nil {
			return nil, mapError(err)
		}
		doc.Viewed = viewed != 0
		if doc.UploadedAt, err = parseTime(uploaded); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// MarkDocumentViewed flags a document as reviewed by an administrator.
func (s *Storage) MarkDocumentViewed(ctx context.Context, id int64) error {
	result, err := s.exec(ctx, `UPDATE documents SET viewed = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// DeleteUserDocument removes a document only when it belongs to userID.
func (s *Storage) DeleteUserDocument(ctx context.Context, userID, id int64) error {
	result, err := s.exec(ctx, `DELETE FROM documents WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}
