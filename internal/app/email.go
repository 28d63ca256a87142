package app

import (
	"regexp"
	"strings"
)

var (
	localPartPattern = regexp.MustCompile("^[a-zA-Z0-9!#$%&'*+/=?^_`{|}~.-]+$")
	localPartStrip   = regexp.MustCompile("[^a-zA-Z0-9!#$%&'*+/=?^_`{|}~.-]")
	domainLabelStrip = regexp.MustCompile(`[^a-zA-Z0-9-]+`)
	domainLabelValid = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	repeatedDots     = regexp.MustCompile(`\.{2,}`)
)

const emailTrimSet = " \t\n\r\x00\x0B"

// sanitizeEmail strips characters that cannot appear in an address.
// It returns "" when nothing usable is left.
func sanitizeEmail(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) < 6 {
		return ""
	}
	local, host, ok := strings.Cut(s, "@")
	if !ok || local == "" {
		return ""
	}

	local = localPartStrip.ReplaceAllString(local, "")
	if local == "" {
		return ""
	}

	host = repeatedDots.ReplaceAllString(host, "")
	host = strings.Trim(host, emailTrimSet+".")
	if host == "" {
		return ""
	}

	var labels []string
	for _, sub := range strings.Split(host, ".") {
		sub = strings.Trim(sub, emailTrimSet+"-")
		sub = domainLabelStrip.ReplaceAllString(sub, "")
		if sub != "" {
			labels = append(labels, sub)
		}
	}
	if len(labels) < 2 {
		return ""
	}

	return local + "@" + strings.Join(labels, ".")
}

// isEmail reports whether s is a bare address with an allowed local part
// and at least two host labels. Dots in the local part are not restricted.
func isEmail(s string) bool {
	if len(s) < 6 {
		return false
	}
	at := strings.Index(s, "@")
	if at < 1 {
		return false
	}
	local, host := s[:at], s[at+1:]

	if !localPartPattern.MatchString(local) {
		return false
	}
	if strings.Contains(host, "..") || strings.Trim(host, emailTrimSet+".") != host {
		return false
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, sub := range labels {
		if strings.Trim(sub, emailTrimSet+"-") != sub || !domainLabelValid.MatchString(sub) {
			return false
		}
	}
	return true
}
