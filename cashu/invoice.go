package cashu

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	decodepay "github.com/nbd-wtf/ln-decodepay"
)

// Bolt11Invoice is a lightning payment request that
// has been checked to decode as a valid BOLT-11 invoice.
type Bolt11Invoice struct {
	raw         string
	PaymentHash string
	// amount in millisatoshis, 0 if the invoice has no amount
	MSatoshi    int64
	Description string
}

func ParseBolt11Invoice(request string) (Bolt11Invoice, error) {
	request = strings.ToLower(strings.TrimSpace(request))
	request = strings.TrimPrefix(request, "lightning:")
	// hrp is "ln" + chain prefix followed by the amount or separator
	if !strings.HasPrefix(request, "ln") || strings.IndexAny(request, "0123456789") < 3 {
		return Bolt11Invoice{}, errors.New("invalid bolt11 invoice")
	}

	invoice, err := decodepay.Decodepay(request)
	if err != nil {
		return Bolt11Invoice{}, fmt.Errorf("invalid bolt11 invoice: %v", err)
	}

	return Bolt11Invoice{
		raw:         request,
		PaymentHash: invoice.PaymentHash,
		MSatoshi:    invoice.MSatoshi,
		Description: invoice.Description,
	}, nil
}

func (i Bolt11Invoice) String() string {
	return i.raw
}

// Amount in sats, rounded up.
func (i Bolt11Invoice) Amount() uint64 {
	if i.MSatoshi <= 0 {
		return 0
	}
	return uint64((i.MSatoshi + 999) / 1000)
}

func (i Bolt11Invoice) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.raw)
}

func (i *Bolt11Invoice) UnmarshalJSON(data []byte) error {
	var request string
	if err := json.Unmarshal(data, &request); err != nil {
		return err
	}
	invoice, err := ParseBolt11Invoice(request)
	if err != nil {
		return err
	}
	*i = invoice
	return nil
}
