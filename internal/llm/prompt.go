package llm

import (
	"fmt"
	"unicode/utf8"
)

// maxDiffChars bounds the diff embedded in the user message so the request
// stays within the endpoint's context window.
const maxDiffChars = 100_000

const systemPrompt = `You are a strict senior code reviewer. You receive a unified diff of a pull request.

Report ONLY issues of severity P0 (must fix before merge: bugs, data loss, security holes) or P1 (critical: serious correctness or reliability risks). Ignore style, naming, formatting and minor improvements.

Respond with a single JSON object and nothing else. No prose, no markdown fences. Schema:

{"issues":[{"path":"<file path from the diff>","line":<line number in the NEW version of the file>,"severity":"P0"|"P1","title":"<short title>","body":"<explanation and suggested fix>"}]}

Line numbers must refer to the new side of the diff. If there are no P0 or P1 issues, respond with {"issues":[]}.`

// buildUserPrompt embeds the diff, truncated to maxDiffChars, into the user
// message.
func buildUserPrompt(diff string) string {
	return fmt.Sprintf("Review the following diff:\n\n%s", Truncate(diff, maxDiffChars))
}

// Truncate cuts s to at most n bytes without splitting a multibyte rune at
// the boundary.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
