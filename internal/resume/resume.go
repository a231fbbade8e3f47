// Package resume extracts searchable text from uploaded PDF resumes.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned when the attachment does not carry a PDF header.
var ErrNotPDF = errors.New("resume: attachment is not a PDF document")

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data starts with the PDF signature.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// ExtractText returns the plain text of every page in data with runs of whitespace collapsed.
func ExtractText(data []byte) (text string, err error) {
	if !IsPDF(data) {
		return "", ErrNotPDF
	}

	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resume: malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("resume: open PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("resume: read text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("resume: read text: %w", err)
	}
	return strings.Join(strings.Fields(buf.String()), " "), nil
}
