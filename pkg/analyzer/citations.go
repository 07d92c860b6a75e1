package analyzer

import (
	"strconv"
	"strings"

	"wahlkompass/internal/models"
	"wahlkompass/pkg/party"
)

const (
	maxCitationsPerParty = 3
	maxCitationLength    = 500
	minFragmentLength    = 20

	citationSource = "Wahlprogram"
	unknownPage    = "Unbekannt"
)

// ExtractCitations derives bounded, attributable quotations from the
// retrieved chunks, grouped by canonical party. Chunks are processed in
// retrieval-rank order; chunks whose party does not normalize to a
// canonical key are dropped. Parties without retrieved chunks get an
// empty list, which is expected rather than an error.
func ExtractCitations(chunks []models.Chunk) map[string][]models.Citation {
	byParty := make(map[string][]models.Citation, len(party.Canonical))
	for _, key := range party.Canonical {
		byParty[key] = []models.Citation{}
	}

	for _, chunk := range chunks {
		key := party.Normalize(chunk.Party)
		if !party.IsCanonical(key) {
			continue
		}
		if len(byParty[key]) >= maxCitationsPerParty {
			continue
		}

		page := unknownPage
		if chunk.Page != nil && *chunk.Page > 0 {
			page = strconv.Itoa(*chunk.Page)
		}
		link := party.ProgramURL(key)

		for _, quote := range quotesFrom(chunk.Content, maxCitationsPerParty-len(byParty[key])) {
			byParty[key] = append(byParty[key], models.Citation{
				Text:           quote,
				Source:         citationSource,
				WahlprogramURL: link,
				Page:           page,
			})
		}
	}

	return byParty
}

// quotesFrom turns one chunk into at most limit citation texts: the
// leading bracketed page marker is stripped, newlines collapsed, and
// sentences reassembled into units bounded by maxCitationLength. Short
// trailing fragments are discarded.
func quotesFrom(text string, limit int) []string {
	text = stripPageMarker(text)
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if text == "" || limit <= 0 {
		return nil
	}

	var quotes []string
	current := ""

	for _, sentence := range strings.SplitAfter(text, ". ") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if current != "" && len(current)+1+len(sentence) > maxCitationLength {
			quotes = append(quotes, truncate(current, maxCitationLength))
			if len(quotes) >= limit {
				return quotes
			}
			current = ""
		}
		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}

	if len(current) >= minFragmentLength {
		quotes = append(quotes, truncate(current, maxCitationLength))
	}
	if len(quotes) > limit {
		quotes = quotes[:limit]
	}

	return quotes
}

// stripPageMarker removes a leading bracketed marker such as "[PAGE 12]"
// left over from older index builds.
func stripPageMarker(text string) string {
	if idx := strings.Index(text, "]"); idx >= 0 && strings.HasPrefix(strings.TrimSpace(text), "[") {
		return text[idx+1:]
	}
	return text
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}
