// Package nut03 contains structs as defined in [NUT-03]
//
// [NUT-03]: https://github.com/cashubtc/nuts/blob/main/03.md
package nut03

// RequestMintResponse is the invoice to pay for minting
// and the hash used later to claim the tokens.
type RequestMintResponse struct {
	PaymentRequest string `json:"pr" validate:"required"`
	Hash           string `json:"hash" validate:"required"`
}
