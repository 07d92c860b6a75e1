package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"wahlkompass/internal/models"
)

// ExtractionError marks a source document that could not be opened or
// parsed. Ingestion skips the document and continues with the rest.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// lineTolerance is the vertical distance within which two text fragments
// are treated as sitting on the same line.
const lineTolerance = 2.0

// Pages reads a PDF and returns one raw text entry per physical page, in
// document order.
func Pages(path string) ([]models.Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	var pages []models.Page
	for num := 1; num <= reader.NumPage(); num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return nil, &ExtractionError{Path: path, Err: err}
		}
		pages = append(pages, models.Page{Number: num, Text: text})
	}

	return pages, nil
}

func pageText(page pdf.Page) (_ string, err error) {
	// The pdf package panics on malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	return flattenFragments(page.Content().Text), nil
}

// flattenFragments rebuilds reading order from positioned text fragments:
// top-to-bottom, then left-to-right within a line. PDF extraction yields
// fragments in content-stream order, which scrambles multi-column layouts
// if concatenated as-is.
func flattenFragments(fragments []pdf.Text) string {
	if len(fragments) == 0 {
		return ""
	}

	ordered := make([]pdf.Text, len(fragments))
	copy(ordered, fragments)

	// PDF coordinates grow upward, so higher Y means earlier on the page.
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Y-ordered[j].Y > lineTolerance {
			return true
		}
		if ordered[j].Y-ordered[i].Y > lineTolerance {
			return false
		}
		return ordered[i].X < ordered[j].X
	})

	var b strings.Builder
	for i, frag := range ordered {
		if i > 0 {
			prev := ordered[i-1]
			if prev.Y-frag.Y > lineTolerance {
				b.WriteByte('\n')
			} else if frag.X-(prev.X+prev.W) > 1.0 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(frag.S)
	}

	return b.String()
}
