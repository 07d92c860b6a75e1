package processor

import (
	"regexp"
	"strings"
)

var digitRuns = regexp.MustCompile(`[0-9]+`)

// Clean normalizes one page of raw extracted text into a single line.
// Digit runs are removed outright to keep page-number and line-number
// artifacts out of the index; numeric content in the source does not
// survive. Whitespace is collapsed and empty lines are dropped.
func Clean(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = digitRuns.ReplaceAllString(line, "")
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}

type ChunkerConfig struct {
	ChunkSize         int
	ChunkOverlap      int
	MinSentenceLength int
}

// Chunker splits cleaned text into overlapping, size-bounded chunks. It
// pre-segments into sentences and greedily merges short neighbors before
// the size-bounded split, so single short sentences rarely end up as
// chunks of their own. Splitting is a pure function of the input text and
// the fixed parameters.
type Chunker struct {
	config ChunkerConfig
}

func NewChunkerWithConfig(config ChunkerConfig) Chunker {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 200
	}
	if config.ChunkOverlap >= config.ChunkSize {
		config.ChunkOverlap = config.ChunkSize / 5
	}
	if config.MinSentenceLength == 0 {
		config.MinSentenceLength = 120
	}

	return Chunker{config: config}
}

func NewChunker() Chunker {
	return NewChunkerWithConfig(ChunkerConfig{})
}

// Split chunks the given text. Consecutive chunks share roughly
// ChunkOverlap characters so a fact spanning a split point stays
// retrievable from at least one chunk.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := c.mergeShort(splitSentences(text))

	var chunks []string
	current := strings.Builder{}
	carried := 0 // length of the overlap prefix carried into current

	for _, sentence := range sentences {
		if len(sentence) > c.config.ChunkSize {
			if current.Len() > carried {
				chunks = append(chunks, current.String())
			}
			pieces := c.hardCut(sentence)
			chunks = append(chunks, pieces...)
			current.Reset()
			current.WriteString(c.overlapTail(pieces[len(pieces)-1]))
			carried = current.Len()
			continue
		}

		if current.Len() > 0 && current.Len()+1+len(sentence) > c.config.ChunkSize {
			if current.Len() > carried {
				chunk := current.String()
				chunks = append(chunks, chunk)
				current.Reset()
				current.WriteString(c.overlapTail(chunk))
				carried = current.Len()
			}
			// A sentence that does not fit even next to the bare overlap
			// gets a fresh chunk without one.
			if current.Len()+1+len(sentence) > c.config.ChunkSize {
				current.Reset()
				carried = 0
			}
		}

		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}

	if current.Len() > carried {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// hardCut slices an oversized sentence at fixed character offsets, the
// fallback when no sentence or word boundary is available.
func (c *Chunker) hardCut(sentence string) []string {
	step := c.config.ChunkSize - c.config.ChunkOverlap
	var pieces []string
	for start := 0; start < len(sentence); start += step {
		end := start + c.config.ChunkSize
		if end >= len(sentence) {
			pieces = append(pieces, sentence[start:])
			break
		}
		pieces = append(pieces, sentence[start:end])
	}
	return pieces
}

// overlapTail returns the last ChunkOverlap characters of a chunk, trimmed
// forward to the next word boundary so the overlap never starts mid-word.
func (c *Chunker) overlapTail(chunk string) string {
	if len(chunk) <= c.config.ChunkOverlap {
		return chunk
	}
	tail := chunk[len(chunk)-c.config.ChunkOverlap:]
	if idx := strings.IndexByte(tail, ' '); idx >= 0 {
		tail = tail[idx+1:]
	}
	return tail
}

// mergeShort greedily merges adjacent sentences below the minimum length,
// reducing fragment chunks of a single short sentence.
func (c *Chunker) mergeShort(sentences []string) []string {
	var merged []string
	current := ""

	for _, sentence := range sentences {
		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
		if len(current) >= c.config.MinSentenceLength {
			merged = append(merged, current)
			current = ""
		}
	}
	if current != "" {
		merged = append(merged, current)
	}

	return merged
}

// splitSentences segments text at terminal punctuation followed by a space.
// The separating space is consumed, so rejoining with single spaces
// reproduces the input.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 == len(text) {
				continue
			}
			if text[i+1] == ' ' {
				sentences = append(sentences, text[start:i+1])
				start = i + 2
				i++
			}
		}
	}

	if start < len(text) {
		sentences = append(sentences, text[start:])
	}

	return sentences
}
