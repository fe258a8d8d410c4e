package core_test

import (
	"fmt"
	"testing"

	"supplies-agent/internal/core"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2025-04-01", "2025-04-01T00:00:00Z", false},
		{"2025-04-01T15:04:05", "2025-04-01T15:04:05Z", false},
		{"2025-04-01T15:04:05Z", "2025-04-01T15:04:05Z", false},
		{"04/01/2025", "", true},
		{"", "", true},
		{"yesterday", "", true},
	}
	for _, tt := range tests {
		got, err := core.ParseDate(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q): expected error, got %v", tt.input, got)
			} else if !core.HasKind(err, core.KindValidation) {
				t.Errorf("ParseDate(%q): error is not validation-kind: %v", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got.Format("2006-01-02T15:04:05Z07:00") != tt.want {
			t.Errorf("ParseDate(%q) = %v, want %s", tt.input, got, tt.want)
		}
	}
}

func TestHasKind_Wrapped(t *testing.T) {
	base := core.BusinessRulef("insufficient stock of %s: have %d, need %d", "A4 paper", 3, 10)
	wrapped := fmt.Errorf("process sale: %w", base)

	if !core.HasKind(wrapped, core.KindBusinessRule) {
		t.Error("wrapped business-rule error not detected")
	}
	if core.HasKind(wrapped, core.KindValidation) {
		t.Error("business-rule error misclassified as validation")
	}
	if core.HasKind(nil, core.KindBusinessRule) {
		t.Error("nil should have no kind")
	}
}
