package entity

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid https URL", url: "https://example.com/feed", wantErr: false},
		{name: "valid http URL", url: "http://example.com/feed", wantErr: false},
		{name: "valid URL with port", url: "https://example.com:8080/feed", wantErr: false},
		{name: "valid URL with query", url: "https://news.ycombinator.com/item?id=1", wantErr: false},
		{name: "empty URL", url: "", wantErr: true},
		{name: "ftp scheme", url: "ftp://example.com/file", wantErr: true},
		{name: "javascript scheme", url: "javascript:alert(1)", wantErr: true},
		{name: "no scheme", url: "example.com", wantErr: true},
		{name: "missing host", url: "https://", wantErr: true},
		{name: "malformed URL", url: "ht!tp://example.com", wantErr: true},
		{name: "URL exceeding maximum length", url: "https://example.com/" + strings.Repeat("a", 2050), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL_ErrorTypes(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "https://", "https://example.com/" + strings.Repeat("a", 2050)} {
		err := ValidateURL(raw)
		if err == nil {
			t.Fatalf("ValidateURL(%q) expected error, got nil", raw)
		}
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("ValidateURL(%q) expected ValidationError, got %T", raw, err)
		}
	}
}
