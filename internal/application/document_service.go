package application

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/recruitment-portal/internal/persistence"
)

// DocumentTypes lists the categories a candidate may upload.
var DocumentTypes = []string{
	"Degree Certificate",
	"Other Certificate",
	"Passport Photograph",
	"Facial Expression Video",
	"Resume",
	"Government ID",
	"Address Proof",
	"Job Experience Evidence",
}

// DocumentService stores candidate uploads and serves them to administrators.
type DocumentService struct {
	docs      persistence.DocumentRepository
	activity  activityRecorder
	now       func() time.Time
	maxUpload int64
	logger    *slog.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(docs persistence.DocumentRepository, activities persistence.ActivityRepository, now func() time.Time, maxUpload int64) *DocumentService {
	return NewDocumentServiceWithLogger(docs, activities, now, maxUpload, nil)
}

// NewDocumentServiceWithLogger constructs a DocumentService with a specified logger.
func NewDocumentServiceWithLogger(docs persistence.DocumentRepository, activities persistence.ActivityRepository, now func() time.Time, maxUpload int64, logger *slog.Logger) *DocumentService {
	if now == nil {
		now = time.Now
	}
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &DocumentService{
		docs:      docs,
		activity:  activityRecorder{repo: activities, now: now},
		now:       now,
		maxUpload: maxUpload,
		logger:    defaultLogger(logger),
	}
}

func (s *DocumentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DocumentService", operation, attrs...)
}

func (s *DocumentService) ready() error {
	if s == nil {
		return fmt.Errorf("DocumentService is nil")
	}
	if s.docs == nil {
		return fmt.Errorf("document repository not configured")
	}
	return nil
}

// Upload stores a candidate document.
func (s *DocumentService) Upload(ctx context.Context, params UploadDocumentParams) (doc persistence.Document, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Upload", "principal_id", params.Principal.UserID, "file_type", params.FileType)
	defer func() { logOutcome(ctx, logger, err, "document upload", "document_id", doc.ID, "size", doc.Size) }()

	if err = requireCandidate(params.Principal); err != nil {
		return
	}

	name := filepath.Base(strings.TrimSpace(params.FileName))
	vErr := &ValidationError{}
	if name == "" || name == "." || name == string(filepath.Separator) {
		vErr.add("file_name", "file name is required")
	}
	if !knownDocumentType(params.FileType) {
		vErr.add("file_type", "unknown document type")
	}
	switch {
	case len(params.Data) == 0:
		vErr.add("file", "file is empty")
	case int64(len(params.Data)) > s.maxUpload:
		vErr.add("file", "file exceeds the upload limit")
	}
	if err = vErr.orNil(); err != nil {
		return
	}

	doc, err = s.docs.CreateDocument(ctx, persistence.Document{
		UserID:     params.Principal.UserID,
		FileName:   name,
		FileType:   params.FileType,
		Data:       params.Data,
		Size:       int64(len(params.Data)),
		UploadedAt: s.now(),
	})
	if err != nil {
		err = translateStoreError(err)
		return
	}
	doc.Data = nil

	s.activity.record(ctx, logger, ActivityDocumentUploaded, params.FileType+": "+name, params.Principal.UserID)
	return
}

// ListOwn returns metadata of the candidate's uploads.
func (s *DocumentService) ListOwn(ctx context.Context, principal Principal) ([]persistence.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireCandidate(principal); err != nil {
		return nil, err
	}
	return s.docs.ListDocuments(ctx, principal.UserID)
}

// DownloadOwn returns one of the candidate's uploads including content.
func (s *DocumentService) DownloadOwn(ctx context.Context, principal Principal, id int64) (persistence.Document, error) {
	if err := s.ready(); err != nil {
		return persistence.Document{}, err
	}
	if err := requireCandidate(principal); err != nil {
		return persistence.Document{}, err
	}
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return persistence.Document{}, translateStoreError(err)
	}
	if doc.UserID != principal.UserID {
		return persistence.Document{}, ErrNotFound
	}
	return doc, nil
}

// DeleteOwn removes one of the candidate's uploads.
func (s *DocumentService) DeleteOwn(ctx context.Context, principal Principal, id int64) (err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "DeleteOwn", "principal_id", principal.UserID, "document_id", id)
	defer func() { logOutcome(ctx, logger, err, "document deletion") }()

	if err = requireCandidate(principal); err != nil {
		return
	}
	err = translateStoreError(s.docs.DeleteUserDocument(ctx, principal.UserID, id))
	return
}

// ListAll returns metadata of every upload.
func (s *DocumentService) ListAll(ctx context.Context, principal Principal) ([]persistence.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.docs.ListDocuments(ctx, 0)
}

// Download returns a document for review and marks it viewed.
func (s *DocumentService) Download(ctx context.Context, principal Principal, id int64) (persistence.Document, error) {
	if err := s.ready(); err != nil {
		return persistence.Document{}, err
	}
	if err := requireAdmin(principal); err != nil {
		return persistence.Document{}, err
	}
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return persistence.Document{}, translateStoreError(err)
	}
	if !doc.Viewed {
		if err := s.docs.MarkDocumentViewed(ctx, id); err != nil {
			return persistence.Document{}, translateStoreError(err)
		}
		doc.Viewed = true
	}
	return doc, nil
}

func knownDocumentType(fileType string) bool {
	for _, t := range DocumentTypes {
		if t == fileType {
			return true
		}
	}
	return false
}
