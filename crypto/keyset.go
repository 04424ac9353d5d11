package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"slices"
	"strconv"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const maxOrder = 64

type Keyset struct {
	Id       string
	Unit     string
	KeyPairs []KeyPair
}

type KeyPair struct {
	Amount     uint64
	PrivateKey *secp256k1.PrivateKey
	PublicKey  *secp256k1.PublicKey
}

// GenerateKeyset deterministically derives one key pair per
// power of 2 amount from the seed and derivation path.
func GenerateKeyset(seed, derivationPath string) *Keyset {
	keyPairs := make([]KeyPair, maxOrder)

	for i := 0; i < maxOrder; i++ {
		amount := uint64(1) << i
		hash := sha256.Sum256([]byte(seed + derivationPath + strconv.FormatUint(amount, 10)))
		privKey, pubKey := btcec.PrivKeyFromBytes(hash[:])
		keyPairs[i] = KeyPair{Amount: amount, PrivateKey: privKey, PublicKey: pubKey}
	}

	keyset := &Keyset{Unit: "sat", KeyPairs: keyPairs}
	keyset.Id = DeriveKeysetId(keyset.PublicKeys())
	return keyset
}

// PublicKeys returns the hex encoded public keys by amount.
func (ks *Keyset) PublicKeys() map[uint64]string {
	pubkeys := make(map[uint64]string, len(ks.KeyPairs))
	for _, key := range ks.KeyPairs {
		pubkeys[key.Amount] = hex.EncodeToString(key.PublicKey.SerializeCompressed())
	}
	return pubkeys
}

func (ks *Keyset) PrivateKey(amount uint64) (*secp256k1.PrivateKey, bool) {
	for _, key := range ks.KeyPairs {
		if key.Amount == amount {
			return key.PrivateKey, true
		}
	}
	return nil, false
}

// DeriveKeysetId returns the legacy keyset id: first 12 characters of the
// base64 sha256 of the hex public keys concatenated in ascending amount order.
func DeriveKeysetId(pubkeys map[uint64]string) string {
	amounts := make([]uint64, 0, len(pubkeys))
	for amount := range pubkeys {
		amounts = append(amounts, amount)
	}
	slices.Sort(amounts)

	concat := make([]byte, 0, len(amounts)*66)
	for _, amount := range amounts {
		concat = append(concat, pubkeys[amount]...)
	}
	hash := sha256.Sum256(concat)

	return base64.StdEncoding.EncodeToString(hash[:])[:12]
}
