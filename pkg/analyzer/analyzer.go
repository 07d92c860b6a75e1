package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"wahlkompass/internal/models"
	"wahlkompass/internal/types"
	"wahlkompass/pkg/llm"
	"wahlkompass/pkg/party"
)

// defaultExplanation fills in when the model gives none. The source
// documents are German, so the sentinel is too.
const defaultExplanation = "Keine Erklärung verfügbar."

// ChatModel is the single synchronous model call the analyzer depends on.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Engine drives one analysis per query: retrieve once, compose the
// prompt, invoke the model, parse, and reconcile the untrusted response
// into the fixed seven-key schema. It holds no mutable state across
// requests and is safe for concurrent use.
type Engine struct {
	retriever types.Retriever
	chat      ChatModel
}

func New(retriever types.Retriever, chat ChatModel) (*Engine, error) {
	if retriever == nil {
		return nil, fmt.Errorf("retriever cannot be nil")
	}
	if chat == nil {
		return nil, fmt.Errorf("chat model cannot be nil")
	}
	return &Engine{retriever: retriever, chat: chat}, nil
}

// Analyze scores each party's agreement with the statement. It returns
// either a mapping with exactly the seven canonical keys, an empty
// mapping when the model declined to answer, or an AnalysisError. No
// partial result is ever returned.
func (e *Engine) Analyze(ctx context.Context, statement string) (models.AnalysisResult, error) {
	chunks, err := e.retriever.Retrieve(ctx, statement)
	if err != nil {
		return nil, wrapAnalysisError(err)
	}

	prompt := llm.ComposePrompt(llm.BuildContext(chunks), statement)

	raw, err := e.chat.Complete(ctx, prompt)
	if err != nil {
		return nil, wrapAnalysisError(err)
	}

	answer := strings.TrimSpace(raw)
	if answer == "" {
		// "No answer" is a documented outcome, not a failure.
		return models.AnalysisResult{}, nil
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(answer), &parsed); err != nil {
		return nil, wrapAnalysisError(&JSONParseError{Raw: answer, Err: err})
	}

	// Citations come from the same retrieval pass, never from the model.
	citations := ExtractCitations(chunks)

	result := make(models.AnalysisResult, len(party.Canonical))
	for _, key := range party.Canonical {
		record := decodeRecord(parsed[key])

		agreement, err := coerceAgreement(key, record["agreement"])
		if err != nil {
			return nil, wrapAnalysisError(err)
		}

		result[key] = models.PartyAnalysis{
			Agreement:   clamp(agreement, 0, 100),
			Explanation: explanationOf(record["explanation"]),
			Citations:   citations[key],
		}
	}

	return result, nil
}

// decodeRecord parses one party's record from the model response. Absent
// keys and non-object values both yield an empty record; unknown extra
// fields inside an object are carried along and ignored.
func decodeRecord(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return map[string]any{}
	}
	return record
}

// coerceAgreement forces the model's agreement value to an integer.
// Floats and numeric strings truncate toward zero, booleans map to 0/1,
// a missing value defaults to 0. Anything else is a CoercionError that
// fails the whole analysis.
func coerceAgreement(key string, value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, &CoercionError{Party: key, Field: "agreement", Value: v}
		}
		return int(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, &CoercionError{Party: key, Field: "agreement", Value: v}
		}
		return int(f), nil
	default:
		return 0, &CoercionError{Party: key, Field: "agreement", Value: value}
	}
}

func explanationOf(value any) string {
	switch v := value.(type) {
	case nil:
		return defaultExplanation
	case string:
		if strings.TrimSpace(v) == "" {
			return defaultExplanation
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
