package rulerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"direct", New(CodeValidationFailure, "cell occupied"), CodeValidationFailure},
		{"wrapped", fmt.Errorf("play: %w", New(CodeInvariantViolation, "not in hand")), CodeInvariantViolation},
		{"plain", errors.New("boom"), CodeUnknown},
		{"nil", nil, CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", Validation("mana %d < %d", 1, 3))
	if !errors.Is(err, New(CodeValidationFailure, "")) {
		t.Error("expected errors.Is to match validation code")
	}
	if errors.Is(err, New(CodeDataLookupFailure, "")) {
		t.Error("did not expect data lookup code to match")
	}
	if err.Error() != "outer: mana 1 < 3" {
		t.Errorf("message = %q", err.Error())
	}
}
