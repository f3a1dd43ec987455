package sentiment

import (
	"encoding/json"
	"fmt"
	"strings"
)

type labelPayload struct {
	Sentiment string `json:"sentiment"`
	Reasoning string `json:"reasoning"`
}

// RecoverJSON extracts the sentiment object from raw model output. Models
// routinely wrap the JSON in prose or drop the trailing brace, so the slice
// between the first '{' and the last '}' is parsed, appending a brace when
// none closes the object.
func RecoverJSON(raw string) (sentiment, reasoning string, err error) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return "", "", fmt.Errorf("no JSON object in model output")
	}

	end := strings.LastIndex(raw, "}")
	var candidate string
	if end > start {
		candidate = raw[start : end+1]
	} else {
		candidate = raw[start:] + "}"
	}

	var payload labelPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return "", "", fmt.Errorf("decoding model output: %w", err)
	}

	return strings.ToLower(strings.TrimSpace(payload.Sentiment)), payload.Reasoning, nil
}
