package jobs

import (
	"log/slog"
	"strings"

	"github.com/diffsentry/diffsentry/internal/core"
)

// SplitByCommentable partitions issues into those anchored to a commentable
// diff line (postable as inline comments) and those pointing at files or
// lines outside the diff (to be folded into the review body). When no line
// information is available at all, validation fails open and every issue is
// treated as inline.
func SplitByCommentable(logger *slog.Logger, issues []core.Issue, validLines map[string]map[int]struct{}) (inline, offDiff []core.Issue) {
	if len(validLines) == 0 {
		logger.Warn("no commentable line data, skipping issue validation")
		return issues, nil
	}

	for _, issue := range issues {
		cleanPath := strings.TrimPrefix(issue.Path, "./")
		lines, fileInDiff := validLines[cleanPath]
		if !fileInDiff {
			logger.Warn("moving issue to review body (file not in diff)",
				"path", issue.Path, "line", issue.Line)
			offDiff = append(offDiff, issue)
			continue
		}

		if _, lineInDiff := lines[issue.Line]; lineInDiff {
			issue.Path = cleanPath
			inline = append(inline, issue)
		} else {
			logger.Warn("moving issue to review body (line outside diff)",
				"path", issue.Path, "line", issue.Line)
			offDiff = append(offDiff, issue)
		}
	}
	return inline, offDiff
}
