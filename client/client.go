// Package client talks to a Cashu mint over the legacy NUT REST API.
//
// Every operation returns either the typed response or an *Error whose
// Kind says whether the request failed to complete (transport), the
// mint answered with an error (protocol) or the response could not be
// understood (decode).
package client

import (
	"context"

	"github.com/gonuts/mintclient/cashu"
	"github.com/gonuts/mintclient/cashu/nuts/nut01"
	"github.com/gonuts/mintclient/cashu/nuts/nut02"
	"github.com/gonuts/mintclient/cashu/nuts/nut03"
	"github.com/gonuts/mintclient/cashu/nuts/nut04"
	"github.com/gonuts/mintclient/cashu/nuts/nut05"
	"github.com/gonuts/mintclient/cashu/nuts/nut06"
	"github.com/gonuts/mintclient/cashu/nuts/nut07"
	"github.com/gonuts/mintclient/cashu/nuts/nut09"
)

// Client is the set of operations every mint supports.
type Client interface {
	// GetMintKeys gets the active keyset. NUT-01
	GetMintKeys(ctx context.Context, mintURL string) (nut01.Keys, error)

	// GetMintKeysets gets the ids of all keysets. NUT-02
	GetMintKeysets(ctx context.Context, mintURL string) (*nut02.GetKeysetsResponse, error)

	// RequestMint asks for an invoice to mint amount. NUT-03
	RequestMint(ctx context.Context, mintURL string, amount uint64) (*nut03.RequestMintResponse, error)

	// PostMint asks the mint to sign outputs once the invoice
	// identified by hash is paid. NUT-04
	PostMint(ctx context.Context, mintURL string, hash string,
		outputs cashu.BlindedMessages) (*nut04.PostMintResponse, error)

	// CheckFees gets the max lightning fee to pay the invoice. NUT-05
	CheckFees(ctx context.Context, mintURL string, invoice cashu.Bolt11Invoice) (*nut05.CheckFeesResponse, error)

	// PostMelt pays the invoice with the proofs. Outputs are optional
	// and used by the mint to return overpaid fees. NUT-05, NUT-08
	PostMelt(ctx context.Context, mintURL string, proofs cashu.Proofs,
		invoice cashu.Bolt11Invoice, outputs cashu.BlindedMessages) (*nut05.PostMeltResponse, error)

	// PostSplit exchanges proofs for new signatures. NUT-06
	PostSplit(ctx context.Context, mintURL string,
		splitRequest nut06.PostSplitRequest) (*nut06.PostSplitResponse, error)
}

// SpendableChecker is implemented by clients built with NUT-07 support.
type SpendableChecker interface {
	CheckSpendable(ctx context.Context, mintURL string, proofs cashu.Proofs) (*nut07.CheckSpendableResponse, error)
}

// InfoGetter is implemented by clients built with NUT-09 support.
type InfoGetter interface {
	GetMintInfo(ctx context.Context, mintURL string) (*nut09.MintInfo, error)
}
