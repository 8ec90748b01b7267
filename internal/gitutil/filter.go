package gitutil

import (
	"path"
	"strings"
)

const fileHeaderPrefix = "diff --git "

// FilterDiff removes from a unified diff every file section whose new-side
// path matches one of the ignore globs. Globs follow path.Match syntax and
// are also matched against the path's base name, so "*.lock" excludes
// lockfiles anywhere in the tree. An empty pattern list returns the diff
// unchanged.
func FilterDiff(diff string, ignore []string) string {
	if len(ignore) == 0 || !strings.HasPrefix(diff, fileHeaderPrefix) {
		return diff
	}

	var kept []string
	for _, section := range splitFileSections(diff) {
		if !ignored(sectionPath(section), ignore) {
			kept = append(kept, section)
		}
	}
	return strings.Join(kept, "")
}

// splitFileSections cuts a unified diff at each "diff --git" header. Each
// returned section retains its trailing newline.
func splitFileSections(diff string) []string {
	var sections []string
	start := 0
	lines := strings.SplitAfter(diff, "\n")
	offset := 0
	for i, line := range lines {
		if i > 0 && strings.HasPrefix(line, fileHeaderPrefix) {
			sections = append(sections, diff[start:offset])
			start = offset
		}
		offset += len(line)
	}
	sections = append(sections, diff[start:])
	return sections
}

// sectionPath extracts the new-side path from a "diff --git a/x b/y" header.
func sectionPath(section string) string {
	header, _, _ := strings.Cut(section, "\n")
	fields := strings.Fields(strings.TrimPrefix(header, fileHeaderPrefix))
	if len(fields) < 2 {
		return ""
	}
	return strings.TrimPrefix(fields[len(fields)-1], "b/")
}

func ignored(filePath string, ignore []string) bool {
	if filePath == "" {
		return false
	}
	for _, pattern := range ignore {
		if ok, _ := path.Match(pattern, filePath); ok {
			return true
		}
		if ok, _ := path.Match(pattern, path.Base(filePath)); ok {
			return true
		}
	}
	return false
}
