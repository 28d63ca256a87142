package app

import (
	"path/filepath"
	"strings"
	"unicode"
)

// validLogPath checks that p is a well-formed absolute file path that stays
// inside root. With no root configured every path is rejected. Existence and
// writability are checked when the transcript is opened.
func validLogPath(p, root string) bool {
	if p == "" || strings.ContainsFunc(p, unicode.IsControl) {
		return false
	}
	if !filepath.IsAbs(p) {
		return false
	}
	if strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(filepath.Separator)) {
		return false
	}

	clean := filepath.Clean(p)
	switch filepath.Base(clean) {
	case ".", "..", string(filepath.Separator):
		return false
	}

	if root == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(root), clean)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
