// Package nut01 contains structs as defined in [NUT-01]
//
// [NUT-01]: https://github.com/cashubtc/nuts/blob/main/01.md
package nut01

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/gonuts/mintclient/crypto"
)

// Keys is the mint's public key for each amount, the response of GET /keys.
type Keys map[uint64]string

// Id derives the keyset id for these keys.
func (k Keys) Id() string {
	return crypto.DeriveKeysetId(k)
}

func (k Keys) PublicKey(amount uint64) (*secp256k1.PublicKey, error) {
	pubkey, ok := k[amount]
	if !ok {
		return nil, fmt.Errorf("no key for amount %v", amount)
	}
	return parsePubKey(pubkey)
}

// Amounts returns the denominations in ascending order.
func (k Keys) Amounts() []uint64 {
	amounts := make([]uint64, 0, len(k))
	for amount := range k {
		amounts = append(amounts, amount)
	}
	slices.Sort(amounts)
	return amounts
}

// custom marshaller to display sorted keys
func (k Keys) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for j, amount := range k.Amounts() {
		if j != 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(amount)
		if err != nil {
			return nil, err
		}
		buf.WriteByte('"')
		buf.Write(key)
		buf.WriteByte('"')
		buf.WriteByte(':')

		val, err := json.Marshal(k[amount])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON only accepts a non empty object of amount to
// valid compressed secp256k1 public key.
func (k *Keys) UnmarshalJSON(data []byte) error {
	var keys map[uint64]string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if len(keys) == 0 {
		return errors.New("empty keyset")
	}

	for amount, pubkey := range keys {
		if _, err := parsePubKey(pubkey); err != nil {
			return fmt.Errorf("invalid key for amount %v: %v", amount, err)
		}
	}

	*k = keys
	return nil
}

func parsePubKey(pubkey string) (*secp256k1.PublicKey, error) {
	pubkeyBytes, err := hex.DecodeString(pubkey)
	if err != nil {
		return nil, err
	}
	if len(pubkeyBytes) != secp256k1.PubKeyBytesLenCompressed {
		return nil, errors.New("public key is not compressed")
	}
	return secp256k1.ParsePubKey(pubkeyBytes)
}
