package github

import (
	"regexp"
	"strconv"
	"strings"
)

var hunkHeaderRegex = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// CommentableLines extracts the line numbers of a file patch that can receive
// an inline review comment: the lines present on the new side of the diff.
// Malformed hunk headers are skipped rather than propagated as corrupted line
// numbers.
func CommentableLines(patch string) map[int]struct{} {
	lines := make(map[int]struct{})
	current := -1

	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "@@") {
			current = -1
			if m := hunkHeaderRegex.FindStringSubmatch(line); len(m) >= 2 {
				if start, err := strconv.Atoi(m[1]); err == nil {
					current = start
				}
			}
			continue
		}

		if current == -1 {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, " "):
			lines[current] = struct{}{}
			current++
		case strings.HasPrefix(line, "-"):
			// Removed lines exist only on the old side.
		}
	}

	return lines
}

// CommentableLinesByFile builds the per-file commentable line sets for a
// whole pull request.
func CommentableLinesByFile(files []ChangedFile) map[string]map[int]struct{} {
	byFile := make(map[string]map[int]struct{}, len(files))
	for _, f := range files {
		if f.Patch == "" {
			continue
		}
		byFile[f.Filename] = CommentableLines(f.Patch)
	}
	return byFile
}
