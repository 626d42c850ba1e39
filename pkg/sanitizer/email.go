package sanitizer

import (
	"regexp"
	"strings"
)

var repeatedDots = regexp.MustCompile(`\.+`)

// NormalizeEmail trims and lowercases an address and collapses repeated dots
// in its local part. Input without exactly one "@" is only trimmed and
// lowercased.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return email
	}

	local = strings.Trim(repeatedDots.ReplaceAllString(local, "."), ".")
	return local + "@" + domain
}

// MaskEmail keeps the domain and the first character of the local part.
// Single character local parts are fully masked.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return email
	}
	if len(local) == 1 {
		return "*@" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-1) + "@" + domain
}
