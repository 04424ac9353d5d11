// Package nut02 contains structs as defined in [NUT-02]
//
// [NUT-02]: https://github.com/cashubtc/nuts/blob/main/02.md
package nut02

// GetKeysetsResponse lists the ids of all keysets the mint knows.
type GetKeysetsResponse struct {
	Keysets []string `json:"keysets" validate:"required,dive,required"`
}
