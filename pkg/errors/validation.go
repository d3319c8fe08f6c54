package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// varNameRegex matches names a layout document may give to a variable.
// The leading underscore is reserved for generated names (_w3, _o7, ...).
var varNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateVarName validates a user-supplied variable name.
//
// Rules:
//   - No empty names
//   - Maximum length of 64 characters
//   - Must start with a letter (generated names start with "_")
//   - Only letters, digits and underscores
func ValidateVarName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "variable name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "variable name too long (max 64 characters)")
	}
	if !varNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid variable name: %q", name)
	}
	return nil
}

// ValidateLabel validates text shown by a leaf node.
// Control characters other than newline and tab are rejected because the
// terminal renderer draws labels verbatim.
func ValidateLabel(text string) error {
	const maxLabelLength = 1024
	if len(text) > maxLabelLength {
		return New(ErrCodeInvalidLayout, "label too long (max %d characters)", maxLabelLength)
	}
	for _, r := range text {
		if r == '\n' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLayout, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(format, a) {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
