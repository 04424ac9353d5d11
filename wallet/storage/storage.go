package storage

// MintQuote is an invoice requested from a mint with GET /mint.
// Hash is what the mint expects back in POST /mint once it is paid.
type MintQuote struct {
	Hash           string `json:"hash"`
	PaymentRequest string `json:"pr"`
	Mint           string `json:"mint"`
	Amount         uint64 `json:"amount"`
	CreatedAt      int64  `json:"created_at"`
}

type QuoteDB interface {
	SaveMintQuote(MintQuote) error
	GetMintQuote(hash string) *MintQuote
	GetMintQuotes() []MintQuote
	DeleteMintQuote(hash string) error
	Close() error
}
