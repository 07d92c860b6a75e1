package extract

import (
	"errors"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagesMissingFile(t *testing.T) {
	pages, err := Pages("testdata/does-not-exist.pdf")

	require.Error(t, err)
	assert.Nil(t, pages)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, "testdata/does-not-exist.pdf", extractionErr.Path)
}

func frag(s string, x, y, w float64) pdf.Text {
	return pdf.Text{S: s, X: x, Y: y, W: w}
}

func TestFlattenFragmentsReadingOrder(t *testing.T) {
	// Content-stream order interleaves two columns; reading order must be
	// top-to-bottom, left-to-right.
	fragments := []pdf.Text{
		frag("rechts-oben", 300, 700, 60),
		frag("links-oben", 50, 700, 60),
		frag("links-unten", 50, 650, 60),
		frag("rechts-unten", 300, 650, 60),
	}

	got := flattenFragments(fragments)

	assert.Equal(t, "links-oben rechts-oben\nlinks-unten rechts-unten", got)
}

func TestFlattenFragmentsJoinsAdjacentGlyphs(t *testing.T) {
	// Character-level fragments with no horizontal gap form one word.
	fragments := []pdf.Text{
		frag("W", 50, 700, 8),
		frag("o", 58, 700, 6),
		frag("r", 64, 700, 5),
		frag("t", 69, 700, 4),
		frag("zwei", 90, 700, 30),
	}

	got := flattenFragments(fragments)

	assert.Equal(t, "Wort zwei", got)
}

func TestFlattenFragmentsLineTolerance(t *testing.T) {
	// Fragments within the vertical tolerance stay on one line even when
	// their baselines jitter slightly.
	fragments := []pdf.Text{
		frag("erste", 50, 700.0, 30),
		frag("zeile", 85, 699.2, 30),
	}

	got := flattenFragments(fragments)

	assert.Equal(t, "erste zeile", got)
}

func TestFlattenFragmentsEmpty(t *testing.T) {
	assert.Equal(t, "", flattenFragments(nil))
}
