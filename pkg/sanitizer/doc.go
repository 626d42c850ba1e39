// Package sanitizer normalizes user supplied input before it is stored or
// used as a lookup key, and masks personal data before it is logged.
package sanitizer
