package language_test

import (
	"testing"

	"submux/internal/language"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "eng"},
		{"EN", "eng"},
		{"eng", "eng"},
		{"es", "spa"},
		{"de", "deu"},
		{"ja", "jpn"},
		{"pt-BR", "por"},
		{"zh", "zho"},
		{"", "und"},
		{"not a language", "und"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := language.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"de", "German"},
		{"ja", "Japanese"},
		{"", "Unknown"},
	}

	for _, tt := range tests {
		if got := language.DisplayName(tt.input); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestMatches(t *testing.T) {
	if !language.Matches("en", "eng") {
		t.Fatal("expected en to match eng")
	}
	if language.Matches("en", "de") {
		t.Fatal("expected en not to match de")
	}
	if language.Matches("", "eng") {
		t.Fatal("undetermined input must never match")
	}
}
