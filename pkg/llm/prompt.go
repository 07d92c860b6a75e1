package llm

import (
	"fmt"
	"strings"

	"wahlkompass/internal/models"
)

// analysisTemplate instructs the model to score every party's agreement
// with the statement and answer as one strict JSON object. The model is
// instructed, not guaranteed, to honor this contract; the analyzer treats
// the response as untrusted input.
const analysisTemplate = `
First, detect the language of the user's query.
- If the query is in English, respond in English.
- If the query is in German, respond in German.
- Do not switch languages.
- Use the same language consistently for all parts of the JSON response.

IMPORTANT:
- The context is in German.
- If the query is in English, TRANSLATE the context to English before analysis.
- If the query is in German, use the context as is without translation.

You are an expert in political analysis. Analyze the following political
statement and provide the stance of each German political party.

Context: %s

Statement: %s

Reply ONLY with a JSON object in this format:
{
  "afd": {"agreement": 75, "explanation": "Explanation", "citations": []},
  "bsw": {"agreement": 50, "explanation": "Explanation", "citations": []},
  "cdu_csu": {"agreement": 30, "explanation": "Explanation", "citations": []},
  "linke": {"agreement": 20, "explanation": "Explanation", "citations": []},
  "fdp": {"agreement": 60, "explanation": "Explanation", "citations": []},
  "gruene": {"agreement": 40, "explanation": "Explanation", "citations": []},
  "spd": {"agreement": 80, "explanation": "Explanation", "citations": []}
}

STRICT REQUIREMENTS:
- The response MUST be in valid JSON format.
- No text or explanations outside the JSON object.
- If the query is in English, explanations must be in English.
- If the query is in German, explanations must be in German.
- DO NOT provide any introductory or closing text.
- If unable to provide a valid JSON response, state "Invalid JSON Format".
`

// BuildContext concatenates the retrieved chunk texts into the context
// block of the prompt.
func BuildContext(chunks []models.Chunk) string {
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Content)
	}
	return strings.Join(texts, "\n\n")
}

// ComposePrompt merges retrieved context and the user statement into the
// fixed instruction template.
func ComposePrompt(contextText, statement string) string {
	return fmt.Sprintf(analysisTemplate, contextText, statement)
}
