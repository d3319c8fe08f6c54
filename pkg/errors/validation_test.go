package errors

import (
	"testing"
)

func TestValidateVarName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "a", false},
		{"with digits", "col2", false},
		{"with underscore", "label_width", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 65)), true},
		{"generated prefix", "_w3", true},
		{"starts with digit", "3w", true},
		{"dash", "label-width", true},
		{"space", "label width", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVarName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVarName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateVarName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"plain", "First name", false},
		{"multiline", "line one\nline two", false},
		{"tab", "a\tb", false},

		{"escape", "\x1b[31mred", true},
		{"null byte", "foo\x00bar", true},
		{"too long", string(make([]rune, 1100)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	allowed := []string{"text", "json", "dot", "svg"}
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"text", false},
		{"SVG", false},
		{"png", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateFormat(tt.input, allowed...)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFormat) {
				t.Errorf("ValidateFormat(%q) wrong code: %v", tt.input, err)
			}
		})
	}
}
