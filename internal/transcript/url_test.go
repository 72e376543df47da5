package transcript

import (
	"errors"
	"testing"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?feature=share&v=abc123", "abc123", true},
		{"https://youtu.be/xyz789?si=token", "xyz789", true},
		{"https://www.youtube.com/embed/emb42#frag", "emb42", true},
		{"https://www.youtube.com/v/old99", "old99", true},
		{"https://vimeo.com/12345", "", false},
		{"not a url", "", false},
	}
	for _, tt := range tests {
		got, ok := VideoID(tt.url)
		if got != tt.want || ok != tt.ok {
			t.Errorf("VideoID(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.ok)
		}
	}
}

func TestValidateSourceURL(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/watch?v=abc",
		"http://youtube.com/shorts/abc",
		"youtu.be/abc",
		"https://youtube.com/@channel",
	}
	for _, u := range valid {
		if err := ValidateSourceURL(u); err != nil {
			t.Errorf("ValidateSourceURL(%q) returned %v", u, err)
		}
	}
	invalid := []string{"", "https://vimeo.com/1", "https://www.youtube.com/", "ftp://youtube.com/x"}
	for _, u := range invalid {
		if err := ValidateSourceURL(u); !errors.Is(err, ErrInvalidVideoURL) {
			t.Errorf("ValidateSourceURL(%q) = %v, want ErrInvalidVideoURL", u, err)
		}
	}
}
