package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "new",
			err:  New(ErrCodeInvalidMode, "unknown mode %q (want binary or source)", "both"),
			want: `INVALID_MODE: unknown mode "both" (want binary or source)`,
		},
		{
			name: "wrap",
			err:  Wrap(ErrCodeInvalidCorpus, fs.ErrClosed, "decompress %s", "Sources.xz"),
			want: "INVALID_CORPUS: decompress Sources.xz: " + fs.ErrClosed.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrCodeNetwork, fs.ErrNotExist, "fetch Sources.xz")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should see the wrapped cause")
	}
	if errors.Unwrap(err) != fs.ErrNotExist {
		t.Error("Unwrap should return the cause")
	}
}

func TestIsAndGetCode(t *testing.T) {
	notFound := New(ErrCodeReportNotFound, "report 1234 not found")
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", notFound, ErrCodeReportNotFound},
		{"fmt wrapped", fmt.Errorf("history show: %w", notFound), ErrCodeReportNotFound},
		{"outer code wins", Wrap(ErrCodeInvalidConfig, New(ErrCodeInvalidFormat, "pdf"), "config"), ErrCodeInvalidConfig},
		{"plain error", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(err, %s) = false", tt.code)
			}
			if Is(tt.err, ErrCodeTimeout) {
				t.Error("Is matched an unrelated code")
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{New(ErrCodeInvalidInput, "no target packages given"), "no target packages given"},
		{fmt.Errorf("load: %w", New(ErrCodeNotFound, "corpus file Sources does not exist")), "corpus file Sources does not exist"},
		{errors.New("connection refused"), "connection refused"},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
