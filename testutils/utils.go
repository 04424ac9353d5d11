package testutils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/gonuts/mintclient/cashu"
	"github.com/gonuts/mintclient/cashu/nuts/nut01"
	"github.com/gonuts/mintclient/crypto"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
)

type Invoice struct {
	PaymentRequest string
	PaymentHash    string
	Preimage       string
}

// CreateInvoice returns a mainnet invoice for amount sats
// signed by a random node key.
func CreateInvoice(amount uint64) (*Invoice, error) {
	var random [32]byte
	if _, err := rand.Read(random[:]); err != nil {
		return nil, err
	}
	preimage := hex.EncodeToString(random[:])
	paymentHash := sha256.Sum256(random[:])

	invoice, err := zpay32.NewInvoice(
		&chaincfg.MainNetParams,
		paymentHash,
		time.Now(),
		zpay32.Amount(lnwire.MilliSatoshi(amount*1000)),
		zpay32.Description("test"),
	)
	if err != nil {
		return nil, err
	}

	invoiceStr, err := invoice.Encode(zpay32.MessageSigner{
		SignCompact: func(msg []byte) ([]byte, error) {
			key, err := secp256k1.GeneratePrivateKey()
			if err != nil {
				return []byte{}, err
			}
			return ecdsa.SignCompact(key, msg, true), nil
		},
	})
	if err != nil {
		return nil, err
	}

	return &Invoice{
		PaymentRequest: invoiceStr,
		PaymentHash:    hex.EncodeToString(paymentHash[:]),
		Preimage:       preimage,
	}, nil
}

// CreateBolt11Invoice is CreateInvoice parsed into a cashu.Bolt11Invoice.
func CreateBolt11Invoice(amount uint64) (cashu.Bolt11Invoice, error) {
	invoice, err := CreateInvoice(amount)
	if err != nil {
		return cashu.Bolt11Invoice{}, err
	}
	return cashu.ParseBolt11Invoice(invoice.PaymentRequest)
}

func newBlindedMessage(amount uint64, B_ *secp256k1.PublicKey) cashu.BlindedMessage {
	B_str := hex.EncodeToString(B_.SerializeCompressed())
	return cashu.BlindedMessage{Amount: amount, B_: B_str}
}

// CreateBlindedMessages returns blinded messages for the amounts
// along with their secrets and blinding factors in the same order.
func CreateBlindedMessages(amounts []uint64) (cashu.BlindedMessages, []string, []*secp256k1.PrivateKey, error) {
	blindedMessages := make(cashu.BlindedMessages, len(amounts))
	secrets := make([]string, len(amounts))
	rs := make([]*secp256k1.PrivateKey, len(amounts))

	for i, amt := range amounts {
		r, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return nil, nil, nil, err
		}

		var B_ *secp256k1.PublicKey
		var secret string
		// generate random secret until it finds valid point
		for {
			secretBytes := make([]byte, 32)
			if _, err = rand.Read(secretBytes); err != nil {
				return nil, nil, nil, err
			}
			secret = hex.EncodeToString(secretBytes)
			B_, err = crypto.BlindMessage([]byte(secret), r)
			if err == nil {
				break
			}
		}

		blindedMessages[i] = newBlindedMessage(amt, B_)
		secrets[i] = secret
		rs[i] = r
	}

	return blindedMessages, secrets, rs, nil
}

// ConstructProofs unblinds the signatures with the keys of the mint.
func ConstructProofs(blindedSignatures cashu.BlindedSignatures,
	secrets []string, rs []*secp256k1.PrivateKey, keys nut01.Keys) (cashu.Proofs, error) {

	if len(blindedSignatures) != len(secrets) || len(blindedSignatures) != len(rs) {
		return nil, errors.New("lengths do not match")
	}

	proofs := make(cashu.Proofs, len(blindedSignatures))
	for i, blindedSignature := range blindedSignatures {
		C_bytes, err := hex.DecodeString(blindedSignature.C_)
		if err != nil {
			return nil, err
		}
		C_, err := secp256k1.ParsePubKey(C_bytes)
		if err != nil {
			return nil, err
		}

		publicKey, err := keys.PublicKey(blindedSignature.Amount)
		if err != nil {
			return nil, err
		}

		C := crypto.UnblindSignature(C_, rs[i], publicKey)
		proofs[i] = cashu.Proof{
			Id:     blindedSignature.Id,
			Amount: blindedSignature.Amount,
			Secret: secrets[i],
			C:      hex.EncodeToString(C.SerializeCompressed()),
		}
	}

	return proofs, nil
}

// GetValidProofsForAmount mints proofs for amount from the fake mint
// without going through a client.
func GetValidProofsForAmount(amount uint64, fm *FakeMint) (cashu.Proofs, error) {
	invoice, err := CreateInvoice(amount)
	if err != nil {
		return nil, err
	}
	fm.mu.Lock()
	fm.quotes[invoice.PaymentHash] = &mintQuote{amount: amount, paid: true}
	fm.mu.Unlock()

	outputs, secrets, rs, err := CreateBlindedMessages(cashu.AmountSplit(amount))
	if err != nil {
		return nil, err
	}

	fm.mu.Lock()
	signatures, err := fm.sign(outputs)
	if err == nil {
		fm.quotes[invoice.PaymentHash].issued = true
	}
	fm.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("error signing outputs: %v", err)
	}

	return ConstructProofs(signatures, secrets, rs, nut01.Keys(fm.Keyset.PublicKeys()))
}
