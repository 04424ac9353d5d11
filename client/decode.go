package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/gonuts/mintclient/cashu"
)

var (
	errInvalidJSON = errors.New("response is not valid json")
	errNullBody    = errors.New("response is null")
)

var validate = validator.New()

// response is what the transport hands to the decoder
// once the request completed.
type response struct {
	statusCode int
	body       json.RawMessage
}

func (r *response) ok() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// decodeResponse turns a mint response into either a T or an *Error.
//
// A 2xx body is first decoded strictly as T and passed to check.
// If that fails, or the status is not 2xx, the same body is read as a
// mint error. If that fails too the raw body is returned in a decode error.
func decodeResponse[T any](op string, resp *response, check func(*T) error) (*T, error) {
	if !json.Valid(resp.body) {
		return nil, decodeError(op, resp.statusCode, resp.body, errInvalidJSON)
	}

	var successErr error
	if resp.ok() {
		value := new(T)
		successErr = strictUnmarshal(resp.body, value)
		if successErr == nil && check != nil {
			successErr = check(value)
		}
		if successErr == nil {
			return value, nil
		}
	} else {
		successErr = fmt.Errorf("unexpected status code %d", resp.statusCode)
	}

	var mintErr cashu.Error
	if err := json.Unmarshal(resp.body, &mintErr); err == nil {
		return nil, protocolError(op, resp.statusCode, mintErr)
	}

	return nil, decodeError(op, resp.statusCode, resp.body, successErr)
}

// strictUnmarshal rejects null, unknown fields and
// structs missing fields tagged as required.
func strictUnmarshal(data []byte, v any) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errNullBody
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}

	if reflect.Indirect(reflect.ValueOf(v)).Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(v)
}
