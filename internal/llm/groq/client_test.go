package groq

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseTheme(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{
			name:    "validTheme",
			content: `{"theme": "Ancient Egypt", "user_intent": "educational short"}`,
			want:    "Ancient Egypt",
		},
		{
			name:    "whitespaceTrimmed",
			content: `{"theme": "  Space Facts  "}`,
			want:    "Space Facts",
		},
		{
			name:    "missingTheme",
			content: `{"user_intent": "something"}`,
			wantErr: true,
		},
		{
			name:    "invalidJSON",
			content: `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme, err := parseTheme(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTheme() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && theme.Theme != tt.want {
				t.Errorf("theme = %q, want %q", theme.Theme, tt.want)
			}
		})
	}
}

func TestParseJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{
			name:    "directArray",
			content: `["one", "two"]`,
			want:    []string{"one", "two"},
		},
		{
			name:    "wrappedKnownKey",
			content: `{"scenes": ["a", "b", "c"]}`,
			want:    []string{"a", "b", "c"},
		},
		{
			name:    "wrappedUnknownKey",
			content: `{"items": ["x"]}`,
			want:    []string{"x"},
		},
		{
			name:    "empty",
			content: `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseJSONArray[string](tt.content, []string{"scenes", "segments"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseJSONArray() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseJSONArray() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrimScenes(t *testing.T) {
	got := trimScenes([]string{" first ", "", "second", "  "})
	want := []string{"first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("trimScenes() = %v, want %v", got, want)
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"quoted", `"My Video Title"`, "My Video Title"},
		{"multiline", "First Line\nSecond Line", "First Line"},
		{"whitespace", "  Clean Me  ", "Clean Me"},
		{"long ascii", strings.Repeat("a", 120), strings.Repeat("a", 100)},
		{"long multibyte", strings.Repeat("é", 120), strings.Repeat("é", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanTitle(tt.raw); got != tt.want {
				t.Errorf("cleanTitle(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCleanTags(t *testing.T) {
	got := cleanTags([]string{"#History", "history", " SPACE ", "", "#"})
	want := []string{"history", "space"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cleanTags() = %v, want %v", got, want)
	}
}
