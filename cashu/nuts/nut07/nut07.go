// Package nut07 contains structs as defined in [NUT-07]
//
// [NUT-07]: https://github.com/cashubtc/nuts/blob/main/07.md
package nut07

import "github.com/gonuts/mintclient/cashu"

type CheckSpendableRequest struct {
	Proofs cashu.Proofs `json:"proofs"`
}

// CheckSpendableResponse has one entry per proof in the
// request, in the same order.
type CheckSpendableResponse struct {
	Spendable []bool `json:"spendable" validate:"required"`
	Pending   []bool `json:"pending,omitempty"`
}

// Spent returns the proofs from the request that are no longer spendable.
func (cr CheckSpendableResponse) Spent(proofs cashu.Proofs) cashu.Proofs {
	spent := cashu.Proofs{}
	for i, spendable := range cr.Spendable {
		if !spendable && i < len(proofs) {
			spent = append(spent, proofs[i])
		}
	}
	return spent
}
