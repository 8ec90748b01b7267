package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diffsentry/diffsentry/internal/core"
)

// issuesEnvelope is the JSON object the system prompt asks the model to emit.
// An absent issues field is tolerated and treated as an empty list.
type issuesEnvelope struct {
	Issues []core.Issue `json:"issues"`
}

// ParseIssues locates a JSON object in the model's raw reply and parses it as
// an issue list. It tolerates several common LLM quirks:
//   - the reply wrapped in ```json ... ``` fences
//   - prose before or after the JSON object
//   - unrelated braces or example objects inside the surrounding prose
//
// A string-aware balanced-brace scan walks candidate objects in order and the
// first one carrying an issues list wins; a valid object without an issues
// field counts as an empty list. Any failure is returned as an error for the
// caller to recover from by posting the raw reply as a fallback comment.
func ParseIssues(raw string) ([]core.Issue, error) {
	s := stripCodeFence(raw)

	sawValidObject := false
	for start := 0; ; {
		idx := strings.IndexByte(s[start:], '{')
		if idx < 0 {
			break
		}
		start += idx

		candidate, ok := balancedObjectAt(s, start)
		if ok {
			var envelope issuesEnvelope
			if err := json.Unmarshal([]byte(candidate), &envelope); err == nil {
				if envelope.Issues != nil {
					return envelope.Issues, nil
				}
				sawValidObject = true
			}
		}
		start++
	}

	if sawValidObject {
		return []core.Issue{}, nil
	}
	return nil, fmt.Errorf("no parseable JSON object found in reply")
}

// balancedObjectAt returns the balanced JSON object starting at s[start],
// which must be a '{'. The scan tracks string literals so braces inside JSON
// string values do not skew the balance.
func balancedObjectAt(s string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// stripCodeFence removes a ```json ... ``` (or bare ```) wrapping that some
// models add despite the JSON-only instruction.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}

	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return s
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}
