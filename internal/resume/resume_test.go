package resume

import (
	"errors"
	"testing"
)

func TestExtractText(t *testing.T) {
	t.Parallel()

	t.Run("rejects non PDF payloads", func(t *testing.T) {
		t.Parallel()

		if _, err := ExtractText([]byte("plain text resume")); !errors.Is(err, ErrNotPDF) {
			t.Fatalf("expected ErrNotPDF, got %v", err)
		}
	})

	t.Run("reports truncated documents", func(t *testing.T) {
		t.Parallel()

		if _, err := ExtractText([]byte("%PDF-1.4\n")); err == nil {
			t.Fatal("expected an error for a truncated PDF")
		}
	})
}

func TestIsPDF(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"%PDF-1.7 rest": true,
		"PDF-1.7":       false,
		"":              false,
	}
	for input, want := range cases {
		if got := IsPDF([]byte(input)); got != want {
			t.Fatalf("IsPDF(%q) = %v, want %v", input, got, want)
		}
	}
}
