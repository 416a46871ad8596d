// Package pdf extracts page text from PDF files.
package pdf

import (
	"context"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor parses PDF files into per-page plain text.
type Extractor struct{}

// New creates a PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract opens the file and returns one Page per PDF page, in order.
// Pages for which the parser yields no text are kept empty rather than
// dropped, so page numbers stay aligned with the source file.
func (e *Extractor) Extract(ctx context.Context, file domain.SourceFile) (*domain.Document, error) {
	f, reader, err := pdflib.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrExtraction, file.Name, err)
	}
	defer f.Close()

	doc := &domain.Document{
		Name: file.Name,
		Path: file.Path,
	}

	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, domain.Page{Number: i})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %w", domain.ErrExtraction, file.Name, i, err)
		}

		doc.Pages = append(doc.Pages, domain.Page{
			Number: i,
			Text:   strings.TrimSpace(text),
		})
	}

	return doc, nil
}
