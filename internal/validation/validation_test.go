package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperengineering/lexicon/internal/types"
)

// --- ValidateUTF8 Tests ---

func TestValidateUTF8_Valid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"ascii", "hello world"},
		{"empty", ""},
		{"unicode", "Hello, 世界"},
		{"emoji", "Hello 👋🏻"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUTF8("field", tt.value)
			if err != nil {
				t.Errorf("ValidateUTF8(%q) = %v, want nil", tt.value, err)
			}
		})
	}
}

func TestValidateUTF8_Invalid(t *testing.T) {
	invalidUTF8 := string([]byte{0xff, 0xfe})

	err := ValidateUTF8("word", invalidUTF8)
	if err == nil {
		t.Fatal("ValidateUTF8(invalid) = nil, want error")
	}
	if err.Field != "word" {
		t.Errorf("error.Field = %q, want %q", err.Field, "word")
	}
}

// --- ValidateNoNullBytes Tests ---

func TestValidateNoNullBytes(t *testing.T) {
	if err := ValidateNoNullBytes("field", "clean"); err != nil {
		t.Errorf("ValidateNoNullBytes(clean) = %v, want nil", err)
	}
	if err := ValidateNoNullBytes("field", "bad\x00value"); err == nil {
		t.Error("ValidateNoNullBytes(null byte) = nil, want error")
	}
}

// --- ValidateMaxLength Tests ---

func TestValidateMaxLength(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		max     int
		wantErr bool
	}{
		{"under", "abc", 5, false},
		{"exact", "abcde", 5, false},
		{"over", "abcdef", 5, true},
		{"runes not bytes", "世界世界世", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMaxLength("field", tt.value, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMaxLength(%q, %d) = %v, wantErr %v", tt.value, tt.max, err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Message, "5") {
				t.Errorf("message %q should mention the limit", err.Message)
			}
		})
	}
}

// --- ValidateRequired / ValidateEnum Tests ---

func TestValidateRequired(t *testing.T) {
	for _, v := range []string{"", "   ", "\t\n"} {
		if err := ValidateRequired("field", v); err == nil {
			t.Errorf("ValidateRequired(%q) = nil, want error", v)
		}
	}
	if err := ValidateRequired("field", "x"); err != nil {
		t.Errorf("ValidateRequired(x) = %v", err)
	}
}

func TestValidateEnum(t *testing.T) {
	allowed := []string{"a", "b"}
	if err := ValidateEnum("field", "a", allowed); err != nil {
		t.Errorf("ValidateEnum(a) = %v", err)
	}
	err := ValidateEnum("field", "c", allowed)
	if err == nil || err.Message != "must be one of: a, b" {
		t.Errorf("ValidateEnum(c) = %v", err)
	}
}

// --- Collector Tests ---

func TestCollector(t *testing.T) {
	var c Collector
	if c.HasErrors() {
		t.Error("new collector should have no errors")
	}

	c.Add(nil)
	c.Add(&ValidationError{Field: "a", Message: "bad"})

	if !c.HasErrors() {
		t.Error("HasErrors() = false after Add")
	}
	if diff := cmp.Diff([]ValidationError{{Field: "a", Message: "bad"}}, c.Errors()); diff != "" {
		t.Errorf("Errors() mismatch (-want +got):\n%s", diff)
	}
}

// --- Domain validators ---

func TestValidateWord(t *testing.T) {
	tests := []struct {
		name       string
		word       string
		wantFields int
	}{
		{"plain", "ephemeral", 0},
		{"unicode", "café", 0},
		{"phrase", "carpe diem", 0},
		{"empty", "", 1},
		{"null byte", "a\x00b", 1},
		{"too long", strings.Repeat("a", MaxWordLength+1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Collector
			ValidateWord(&c, tt.word)
			if got := len(c.Errors()); got != tt.wantFields {
				t.Errorf("ValidateWord(%q) errors = %v, want %d", tt.word, c.Errors(), tt.wantFields)
			}
		})
	}
}

func TestValidateLearnedRequest(t *testing.T) {
	yes := true

	if errs := ValidateLearnedRequest("cat", &types.LearnedRequest{Learned: &yes}); len(errs) != 0 {
		t.Errorf("valid request errors = %v", errs)
	}

	errs := ValidateLearnedRequest("", &types.LearnedRequest{})
	want := []ValidationError{
		{Field: "word", Message: "is required"},
		{Field: "learned", Message: "is required"},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSortOrder(t *testing.T) {
	for _, v := range []string{"", "timestamp", "unlearned"} {
		var c Collector
		ValidateSortOrder(&c, v)
		if c.HasErrors() {
			t.Errorf("ValidateSortOrder(%q) errors = %v", v, c.Errors())
		}
	}

	var c Collector
	ValidateSortOrder(&c, "alphabetical")
	if !c.HasErrors() {
		t.Error("ValidateSortOrder(alphabetical) should fail")
	}
}
