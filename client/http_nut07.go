//go:build !nonut07

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gonuts/mintclient/cashu"
	"github.com/gonuts/mintclient/cashu/nuts/nut07"
)

var _ SpendableChecker = (*HTTPClient)(nil)

func (c *HTTPClient) CheckSpendable(ctx context.Context, mintURL string,
	proofs cashu.Proofs) (*nut07.CheckSpendableResponse, error) {

	req := request{
		op:     "check spendable",
		method: http.MethodPost,
		path:   "check",
		body:   nut07.CheckSpendableRequest{Proofs: proofs},
	}
	return call(ctx, c, mintURL, req, func(res *nut07.CheckSpendableResponse) error {
		if len(res.Spendable) != len(proofs) {
			return fmt.Errorf("mint returned %v states for %v proofs", len(res.Spendable), len(proofs))
		}
		if res.Pending != nil && len(res.Pending) != len(proofs) {
			return fmt.Errorf("mint returned %v pending states for %v proofs", len(res.Pending), len(proofs))
		}
		return nil
	})
}
