// Package nut05 contains structs as defined in [NUT-05]
// and the fee return from [NUT-08].
//
// [NUT-05]: https://github.com/cashubtc/nuts/blob/main/05.md
// [NUT-08]: https://github.com/cashubtc/nuts/blob/main/08.md
package nut05

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gonuts/mintclient/cashu"
)

type CheckFeesRequest struct {
	PaymentRequest cashu.Bolt11Invoice `json:"pr"`
}

type CheckFeesResponse struct {
	Fee uint64 `json:"fee"`
}

func (fr *CheckFeesResponse) UnmarshalJSON(data []byte) error {
	var tempResponse struct {
		Fee *uint64 `json:"fee"`
	}
	if err := strictUnmarshal(data, &tempResponse); err != nil {
		return err
	}
	if tempResponse.Fee == nil {
		return errors.New("missing fee field")
	}
	fr.Fee = *tempResponse.Fee
	return nil
}

type PostMeltRequest struct {
	Proofs         cashu.Proofs          `json:"proofs"`
	PaymentRequest cashu.Bolt11Invoice   `json:"pr"`
	Outputs        cashu.BlindedMessages `json:"outputs,omitempty"`
}

type PostMeltResponse struct {
	Paid     bool                    `json:"paid"`
	Preimage string                  `json:"preimage,omitempty"`
	Change   cashu.BlindedSignatures `json:"change,omitempty" validate:"omitempty,dive"`
}

// custom unmarshal to require the paid field, a melt response
// without it is not a melt response.
func (mr *PostMeltResponse) UnmarshalJSON(data []byte) error {
	var tempResponse struct {
		Paid     *bool                   `json:"paid"`
		Preimage *string                 `json:"preimage"`
		Change   cashu.BlindedSignatures `json:"change"`
	}

	if err := strictUnmarshal(data, &tempResponse); err != nil {
		return err
	}
	if tempResponse.Paid == nil {
		return errors.New("missing paid field")
	}

	mr.Paid = *tempResponse.Paid
	if tempResponse.Preimage != nil {
		mr.Preimage = *tempResponse.Preimage
	}
	mr.Change = tempResponse.Change
	return nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
