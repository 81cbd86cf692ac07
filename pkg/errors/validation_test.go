package errors

import (
	"slices"
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "zlib1g", false},
		{"valid with dash", "libssl-dev", false},
		{"valid with plus", "g++-pkg", false},
		{"valid with dot", "libqt5core5a.1", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"carriage return", "foo\rbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDebianName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"library", "libbar", false},
		{"plus signs", "g++-12", false},
		{"digits first", "0ad", false},
		{"dots", "python3.12", false},

		{"single char", "a", true},
		{"uppercase", "LibBar", true},
		{"underscore", "lib_bar", true},
		{"leading dash", "-lib", true},
		{"qualifier", "python3:any", true},
		{"space", "lib bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDebianName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDebianName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeTargets(t *testing.T) {
	got, err := NormalizeTargets([]string{" libbar ", "", "zlib1g", "libbar"})
	if err != nil {
		t.Fatalf("NormalizeTargets() error: %v", err)
	}
	if want := []string{"libbar", "zlib1g"}; !slices.Equal(got, want) {
		t.Errorf("NormalizeTargets() = %v, want %v", got, want)
	}

	if _, err := NormalizeTargets([]string{" ", ""}); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("empty targets error = %v, want %s", err, ErrCodeInvalidInput)
	}
	if _, err := NormalizeTargets(nil); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("nil targets error = %v, want %s", err, ErrCodeInvalidInput)
	}
	if _, err := NormalizeTargets([]string{"libbar", "../etc"}); !Is(err, ErrCodeInvalidPackage) {
		t.Errorf("path traversal error = %v, want %s", err, ErrCodeInvalidPackage)
	}

	// Outside Debian policy but harmless: kept for the resolver to report
	// as unknown.
	got, err = NormalizeTargets([]string{"X", "Unknown", "x"})
	if err != nil {
		t.Fatalf("NormalizeTargets() error: %v", err)
	}
	if want := []string{"X", "Unknown", "x"}; !slices.Equal(got, want) {
		t.Errorf("NormalizeTargets() = %v, want %v", got, want)
	}
}

func TestValidateDebianNames(t *testing.T) {
	if err := ValidateDebianNames([]string{"libssl3", "g++-14"}); err != nil {
		t.Errorf("valid names rejected: %v", err)
	}
	if err := ValidateDebianNames([]string{"libssl3", "Bad_Name"}); !Is(err, ErrCodeInvalidPackage) {
		t.Errorf("error = %v, want %s", err, ErrCodeInvalidPackage)
	}
}

func TestSplitTargets(t *testing.T) {
	got := SplitTargets("libssl3, zlib1g\tlibbar,,")
	if want := []string{"libssl3", "zlib1g", "libbar"}; !slices.Equal(got, want) {
		t.Errorf("SplitTargets() = %v, want %v", got, want)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://deb.debian.org/debian", false},
		{"http", "http://mirror.example/debian", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidPackage,
		ErrCodeInvalidFormat,
		ErrCodeInvalidMode,
		ErrCodeInvalidCorpus,
		ErrCodeInvalidConfig,
		ErrCodeNotFound,
		ErrCodeReportNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
