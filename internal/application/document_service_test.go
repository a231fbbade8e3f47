package application

import (
	"context"
	"errors"
	"testing"
)

func TestDocumentService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPortalFixture(t)
	svc := NewDocumentService(f.storage, f.storage, f.clock.NowFunc(), 8)

	doc, err := svc.Upload(ctx, UploadDocumentParams{Principal: f.candidate, FileName: "../../degree.pdf", FileType: "Degree Certificate", Data: []byte("diploma")})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if doc.FileName != "degree.pdf" || doc.Size != 7 {
		t.Fatalf("unexpected document %#v", doc)
	}

	_, err = svc.Upload(ctx, UploadDocumentParams{Principal: f.candidate, FileName: "x.bin", FileType: "Selfie", Data: []byte("123456789")})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.FieldErrors["file_type"] == "" || vErr.FieldErrors["file"] == "" {
		t.Fatalf("expected type and size errors, got %v", err)
	}

	if _, err := svc.DownloadOwn(ctx, f.other, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected other candidate to be denied, got %v", err)
	}

	reviewed, err := svc.Download(ctx, f.admin, doc.ID)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if !reviewed.Viewed || string(reviewed.Data) != "diploma" {
		t.Fatalf("unexpected reviewed document %#v", reviewed)
	}
	all, err := svc.ListAll(ctx, f.admin)
	if err != nil || len(all) != 1 || !all[0].Viewed {
		t.Fatalf("ListAll = %#v, %v", all, err)
	}

	if err := svc.DeleteOwn(ctx, f.other, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected delete by other candidate to fail, got %v", err)
	}
	if err := svc.DeleteOwn(ctx, f.candidate, doc.ID); err != nil {
		t.Fatalf("DeleteOwn failed: %v", err)
	}
	own, err := svc.ListOwn(ctx, f.candidate)
	if err != nil || len(own) != 0 {
		t.Fatalf("expected no documents after delete, got %#v, %v", own, err)
	}
}
