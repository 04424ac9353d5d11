// Package nut06 contains structs as defined in [NUT-06]
//
// [NUT-06]: https://github.com/cashubtc/nuts/blob/main/06.md
package nut06

import "github.com/gonuts/mintclient/cashu"

// PostSplitRequest asks the mint to split the proofs. Amount is what goes
// to the second set of signatures, the rest goes to the first one.
type PostSplitRequest struct {
	Amount  uint64                `json:"amount"`
	Proofs  cashu.Proofs          `json:"proofs"`
	Outputs cashu.BlindedMessages `json:"outputs"`
}

// PostSplitResponse has the signatures for the kept (Fst) and sent (Snd)
// amounts, in the same order as the outputs in the request.
type PostSplitResponse struct {
	Fst cashu.BlindedSignatures `json:"fst" validate:"required,dive"`
	Snd cashu.BlindedSignatures `json:"snd" validate:"required,dive"`
}

// Signatures returns Fst followed by Snd, aligned with the request outputs.
func (sr PostSplitResponse) Signatures() cashu.BlindedSignatures {
	signatures := make(cashu.BlindedSignatures, 0, len(sr.Fst)+len(sr.Snd))
	signatures = append(signatures, sr.Fst...)
	return append(signatures, sr.Snd...)
}
