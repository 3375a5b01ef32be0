package profile

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText returns the plain text of every page in the document.
func PDFText(r io.ReaderAt, size int64) (text string, err error) {
	// The parser panics on some malformed documents.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("read pdf: malformed document: %v", p)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	plain, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return b.String(), nil
}
