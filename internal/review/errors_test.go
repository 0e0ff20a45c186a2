package review

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dshills/codelens/internal/providers"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"invalid", InvalidInput("code is required"), KindInvalidInput},
		{"upstream", Upstream(errors.New("refused")), KindUpstream},
		{"internal", Internal(errors.New("panic"), nil), KindInternal},
		{"wrapped", fmt.Errorf("reviewing a.py: %w", Upstream(errors.New("x"))), KindUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpstream_StatusError(t *testing.T) {
	cause := &providers.StatusError{StatusCode: 503, Body: "loading model"}
	err := Upstream(fmt.Errorf("generate: %w", cause))

	if err.StatusCode != 503 {
		t.Errorf("StatusCode = %d, want 503", err.StatusCode)
	}
	if err.Body != "loading model" {
		t.Errorf("Body = %q", err.Body)
	}
	if !errors.Is(err, cause) {
		t.Error("Upstream error should unwrap to its cause")
	}
}

func TestKind_String(t *testing.T) {
	if KindInvalidInput.String() != "invalid_input" {
		t.Errorf("KindInvalidInput = %q", KindInvalidInput.String())
	}
	if KindUpstream.String() != "upstream_error" {
		t.Errorf("KindUpstream = %q", KindUpstream.String())
	}
	if KindInternal.String() != "internal_error" {
		t.Errorf("KindInternal = %q", KindInternal.String())
	}
}
