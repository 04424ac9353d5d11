//go:build !nonut09

package client

import (
	"context"
	"net/http"

	"github.com/gonuts/mintclient/cashu/nuts/nut09"
)

var _ InfoGetter = (*HTTPClient)(nil)

func (c *HTTPClient) GetMintInfo(ctx context.Context, mintURL string) (*nut09.MintInfo, error) {
	req := request{op: "get mint info", method: http.MethodGet, path: "info"}
	return call[nut09.MintInfo](ctx, c, mintURL, req, nil)
}
