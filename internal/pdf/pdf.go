// Package pdf extracts per-page plain text from PDF documents.
package pdf

import (
	"fmt"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
)

// Page holds the extracted text of a single PDF page. Number is the
// 1-based page number in the source document.
type Page struct {
	Number int
	Text   string
}

// ExtractPages reads the PDF at path and returns one Page per page that
// contains any text. Pages that are empty or image-only are skipped.
func ExtractPages(path string) ([]Page, error) {
	f, r, err := ledongthuc.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []Page
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d of %s: %w", i, path, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}
