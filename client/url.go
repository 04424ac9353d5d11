package client

import (
	"errors"
	"fmt"
	"net/url"
)

var ErrInvalidMintURL = errors.New("invalid mint url")

// JoinURL resolves path against the mint url. A path prefix in the
// mint url is kept, so "https://mint.host/cashu/api" + "keys"
// becomes "https://mint.host/cashu/api/keys".
func JoinURL(mintURL, path string) (*url.URL, error) {
	u, err := url.Parse(mintURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMintURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w '%v': scheme must be http or https", ErrInvalidMintURL, mintURL)
	}
	if len(u.Host) == 0 {
		return nil, fmt.Errorf("%w '%v': missing host", ErrInvalidMintURL, mintURL)
	}

	u.RawQuery = ""
	u.Fragment = ""
	return u.JoinPath(path), nil
}
