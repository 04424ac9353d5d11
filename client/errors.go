package client

import (
	"errors"
	"fmt"

	"github.com/gonuts/mintclient/cashu"
)

type Kind int

const (
	// the request could not be completed
	KindTransport Kind = iota + 1
	// the mint answered with an error body
	KindProtocol
	// the body was neither the expected response nor a mint error
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

var (
	ErrTransport = errors.New("transport error")
	ErrProtocol  = errors.New("mint error")
	ErrDecode    = errors.New("decode error")
)

// max characters of a raw response included in the error message
const maxRawInMessage = 256

// Error is returned by every operation of the client.
// Exactly one Kind is set and the fields that apply to it:
//   - KindTransport: Err
//   - KindProtocol: Code and Detail from the mint, Err is the cashu.Error
//   - KindDecode: Raw is the response body exactly as received
//
// StatusCode is 0 when no response was received.
type Error struct {
	Op         string
	Kind       Kind
	StatusCode int
	Code       cashu.ErrCode
	Detail     string
	Raw        string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case KindProtocol:
		return fmt.Sprintf("%s: mint returned error (code %d): %s", e.Op, e.Code, e.Detail)
	default:
		raw := e.Raw
		if len(raw) > maxRawInMessage {
			raw = raw[:maxRawInMessage] + "..."
		}
		return fmt.Sprintf("%s: could not decode response from mint: %v: %s", e.Op, e.Err, raw)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrProtocol:
		return e.Kind == KindProtocol
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

func transportError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindTransport, Err: err}
}

func protocolError(op string, statusCode int, mintErr cashu.Error) *Error {
	return &Error{
		Op:         op,
		Kind:       KindProtocol,
		StatusCode: statusCode,
		Code:       mintErr.Code,
		Detail:     mintErr.Detail,
		Err:        mintErr,
	}
}

func decodeError(op string, statusCode int, raw []byte, err error) *Error {
	return &Error{
		Op:         op,
		Kind:       KindDecode,
		StatusCode: statusCode,
		Raw:        string(raw),
		Err:        err,
	}
}

// KindOf returns the kind of a client error, 0 if err is not one.
func KindOf(err error) Kind {
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr.Kind
	}
	return 0
}
