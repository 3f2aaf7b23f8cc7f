package report

import (
	"regexp"
	"strings"
)

var (
	anchorStrip    = regexp.MustCompile(`[^a-z0-9\s-]`)
	anchorCollapse = regexp.MustCompile(`[\s-]+`)
)

// CreateAnchor turns a heading into the fragment markdown viewers link it by
func CreateAnchor(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	anchor := strings.ToLower(strings.TrimSpace(text))
	anchor = anchorStrip.ReplaceAllString(anchor, "")
	anchor = anchorCollapse.ReplaceAllString(anchor, "-")
	return strings.Trim(anchor, "-")
}

// fileHeading is the heading of a file's section; links to a file target its anchor
func fileHeading(relPath string) string {
	return "File: " + relPath
}
