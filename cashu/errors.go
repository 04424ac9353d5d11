package cashu

import (
	"encoding/json"
	"errors"
	"strings"
)

type ErrCode int

// Error is the error body returned by the mint.
// Older mints send the message under "error" instead of "detail".
type Error struct {
	Detail string  `json:"detail"`
	Code   ErrCode `json:"code"`
}

func (e Error) Error() string {
	return e.Detail
}

func (e *Error) UnmarshalJSON(data []byte) error {
	var mintErr struct {
		Code   *ErrCode `json:"code"`
		Detail *string  `json:"detail"`
		Error  *string  `json:"error"`
	}
	if err := json.Unmarshal(data, &mintErr); err != nil {
		return err
	}
	if mintErr.Code == nil {
		return errors.New("mint error response without code")
	}

	e.Code = *mintErr.Code
	switch {
	case mintErr.Error != nil:
		e.Detail = *mintErr.Error
	case mintErr.Detail != nil:
		e.Detail = *mintErr.Detail
	default:
		e.Detail = ""
	}
	return nil
}

// Is matches the mint conditions a wallet usually reacts to.
// Legacy mints do not use stable codes for these, so the
// detail text is checked as well.
func (e Error) Is(target error) bool {
	switch target {
	case ErrInvoiceNotPaid:
		return e.Code == InvoiceNotPaidErrCode ||
			strings.HasPrefix(e.Detail, "Lightning invoice not paid yet")
	case ErrLightningWalletNotResponding:
		return strings.HasPrefix(e.Detail, "Lightning wallet not responding")
	case ErrTokenAlreadySpent:
		return e.Code == TokenAlreadySpentErrCode ||
			strings.Contains(strings.ToLower(e.Detail), "already spent")
	case ErrUnknownKeyset:
		return e.Code == UnknownKeysetErrCode
	}
	return false
}

var (
	ErrInvoiceNotPaid               = errors.New("lightning invoice not paid yet")
	ErrLightningWalletNotResponding = errors.New("lightning wallet not responding")
	ErrTokenAlreadySpent            = errors.New("token already spent")
	ErrUnknownKeyset                = errors.New("unknown keyset")
)

// Error codes used by legacy mints
const (
	GenericErrCode           ErrCode = 0
	StandardErrCode          ErrCode = 10000
	TransactionErrCode       ErrCode = 11000
	TokenAlreadySpentErrCode ErrCode = 11001
	SecretTooLongErrCode     ErrCode = 11003
	KeysetErrCode            ErrCode = 12000
	UnknownKeysetErrCode     ErrCode = 12001
	LightningErrCode         ErrCode = 20000
	InvoiceNotPaidErrCode    ErrCode = 20001
)
