package client

import (
	"errors"
	"testing"
)

func TestJoinURL(t *testing.T) {
	tests := []struct {
		mintURL  string
		path     string
		expected string
	}{
		{mintURL: "https://mint.host", path: "keys", expected: "https://mint.host/keys"},
		{mintURL: "https://mint.host/", path: "keys", expected: "https://mint.host/keys"},
		{mintURL: "http://127.0.0.1:3338", path: "mint", expected: "http://127.0.0.1:3338/mint"},
		{mintURL: "https://mint.host/cashu/api", path: "keysets", expected: "https://mint.host/cashu/api/keysets"},
		{mintURL: "https://mint.host/cashu/api/", path: "checkfees", expected: "https://mint.host/cashu/api/checkfees"},
		{mintURL: "https://mint.host?foo=bar#frag", path: "info", expected: "https://mint.host/info"},
	}

	for _, test := range tests {
		u, err := JoinURL(test.mintURL, test.path)
		if err != nil {
			t.Fatalf("unexpected error joining '%v': %v", test.mintURL, err)
		}
		if u.String() != test.expected {
			t.Fatalf("expected '%v' but got '%v'", test.expected, u.String())
		}
	}
}

func TestJoinURLInvalid(t *testing.T) {
	invalid := []string{
		"",
		"mint.host",
		"ftp://mint.host",
		"https://",
		"http://[::1",
		"://mint.host",
	}

	for _, mintURL := range invalid {
		_, err := JoinURL(mintURL, "keys")
		if !errors.Is(err, ErrInvalidMintURL) {
			t.Fatalf("expected ErrInvalidMintURL for '%v' but got '%v'", mintURL, err)
		}
	}
}
