package application

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMessageService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newPortalFixture(t)
	svc := NewMessageService(f.storage, f.storage, f.clock.NowFunc())

	adminUser, err := f.storage.GetUser(ctx, f.admin.UserID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}

	msg, err := svc.Send(ctx, SendMessageParams{Principal: f.candidate, RecipientEmail: strings.ToUpper(adminUser.Email), Body: " hello "})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if msg.RecipientID != f.admin.UserID || msg.Body != "hello" {
		t.Fatalf("unexpected message %#v", msg)
	}

	if _, err := svc.Send(ctx, SendMessageParams{Principal: f.candidate, RecipientID: f.other.UserID, Body: "hi"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected candidate to candidate to be rejected, got %v", err)
	}
	if _, err := svc.Send(ctx, SendMessageParams{Principal: f.admin, RecipientID: 4242, Body: "hi"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected unknown recipient to be reported, got %v", err)
	}
	if _, err := svc.Send(ctx, SendMessageParams{Principal: f.admin, RecipientID: f.candidate.UserID, Body: strings.Repeat("x", 5001)}); err == nil {
		t.Fatal("expected oversize body to be rejected")
	}

	if err := svc.MarkRead(ctx, f.candidate, msg.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected sender to be unable to mark read, got %v", err)
	}
	if err := svc.MarkRead(ctx, f.admin, msg.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	inbox, err := svc.List(ctx, f.admin)
	if err != nil || len(inbox) != 1 || !inbox[0].Read {
		t.Fatalf("List = %#v, %v", inbox, err)
	}

	if err := svc.Delete(ctx, f.other, msg.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected outsider delete to fail, got %v", err)
	}
	if err := svc.Delete(ctx, f.candidate, msg.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	all, err := svc.ListAll(ctx, f.admin)
	if err != nil || len(all) != 0 {
		t.Fatalf("expected no messages, got %#v, %v", all, err)
	}
}
