// Package sanitizer normalizes free-text input before validation.
//
// All functions are idempotent - applying them multiple times produces the
// same result - and never fail: unusable input collapses to an empty string
// that validation then rejects.
package sanitizer
