package client

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/gonuts/mintclient/cashu"
	"github.com/gonuts/mintclient/cashu/nuts/nut01"
	"github.com/gonuts/mintclient/cashu/nuts/nut02"
	"github.com/gonuts/mintclient/cashu/nuts/nut03"
	"github.com/gonuts/mintclient/cashu/nuts/nut05"
)

const testPubkey = "03a40f20667ed53513075dc51e715ff2046cad64eb68960632269ba7f0210e38bc"

func TestDecodeResponseSuccess(t *testing.T) {
	tests := []struct {
		statusCode int
		body       string
		expected   nut03.RequestMintResponse
	}{
		{
			statusCode: 200,
			body:       `{"pr":"lnbc1000n1abc","hash":"abc"}`,
			expected:   nut03.RequestMintResponse{PaymentRequest: "lnbc1000n1abc", Hash: "abc"},
		},
		{
			statusCode: 201,
			body:       ` {"hash":"def", "pr":"lnbc1"} `,
			expected:   nut03.RequestMintResponse{PaymentRequest: "lnbc1", Hash: "def"},
		},
	}

	for _, test := range tests {
		resp := &response{statusCode: test.statusCode, body: []byte(test.body)}
		res, err := decodeResponse[nut03.RequestMintResponse]("request mint", resp, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(*res, test.expected) {
			t.Fatalf("expected '%+v' but got '%+v'", test.expected, *res)
		}
	}
}

func TestDecodeResponseKeys(t *testing.T) {
	body := fmt.Sprintf(`{"1":"%v","2":"%v"}`, testPubkey, testPubkey)
	resp := &response{statusCode: 200, body: []byte(body)}

	keys, err := decodeResponse[nut01.Keys]("get keys", resp, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := nut01.Keys{1: testPubkey, 2: testPubkey}
	if !reflect.DeepEqual(*keys, expected) {
		t.Fatalf("expected '%v' but got '%v'", expected, *keys)
	}
}

func TestDecodeResponseProtocolError(t *testing.T) {
	tests := []struct {
		statusCode     int
		body           string
		expectedCode   cashu.ErrCode
		expectedDetail string
	}{
		{
			statusCode:     400,
			body:           `{"code":11,"detail":"Token already spent"}`,
			expectedCode:   11,
			expectedDetail: "Token already spent",
		},
		// error body under a success status is still a mint error
		{
			statusCode:     200,
			body:           `{"code":20001,"detail":"Lightning invoice not paid yet."}`,
			expectedCode:   20001,
			expectedDetail: "Lightning invoice not paid yet.",
		},
		{
			statusCode:     400,
			body:           `{"code":0,"error":"  keep   this  verbatim "}`,
			expectedCode:   0,
			expectedDetail: "  keep   this  verbatim ",
		},
		{
			statusCode:     500,
			body:           `{"code":10000}`,
			expectedCode:   10000,
			expectedDetail: "",
		},
	}

	for _, test := range tests {
		resp := &response{statusCode: test.statusCode, body: []byte(test.body)}
		res, err := decodeResponse[nut03.RequestMintResponse]("request mint", resp, nil)
		if res != nil {
			t.Fatalf("expected nil response but got '%+v'", res)
		}

		var clientErr *Error
		if !errors.As(err, &clientErr) {
			t.Fatalf("expected *Error but got '%T'", err)
		}
		if clientErr.Kind != KindProtocol {
			t.Fatalf("expected kind '%v' but got '%v'", KindProtocol, clientErr.Kind)
		}
		if clientErr.Code != test.expectedCode {
			t.Fatalf("expected code '%v' but got '%v'", test.expectedCode, clientErr.Code)
		}
		if clientErr.Detail != test.expectedDetail {
			t.Fatalf("expected detail '%q' but got '%q'", test.expectedDetail, clientErr.Detail)
		}
		if clientErr.StatusCode != test.statusCode {
			t.Fatalf("expected status '%v' but got '%v'", test.statusCode, clientErr.StatusCode)
		}
		if !errors.Is(err, ErrProtocol) {
			t.Fatal("expected error to match ErrProtocol")
		}
	}
}

func TestDecodeResponseDecodeError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{name: "json string", statusCode: 200, body: `"not json shape at all"`},
		{name: "not json", statusCode: 200, body: `<html>bad gateway</html>`},
		{name: "empty body", statusCode: 200, body: ``},
		{name: "null", statusCode: 200, body: `null`},
		{name: "array", statusCode: 200, body: `[1, 2, 3]`},
		{name: "missing field", statusCode: 200, body: `{"pr":"lnbc1"}`},
		{name: "unknown field", statusCode: 200, body: `{"pr":"lnbc1","hash":"abc","extra":true}`},
		{name: "wrong type", statusCode: 200, body: `{"pr":1,"hash":"abc"}`},
		{name: "error without code", statusCode: 400, body: `{"detail":"something went wrong"}`},
		{name: "error with string code", statusCode: 400, body: `{"code":"11","detail":"x"}`},
		{name: "plain text error", statusCode: 502, body: `Bad Gateway`},
		{name: "whitespace kept", statusCode: 200, body: "  {\"unexpected\":\t[ ] }\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp := &response{statusCode: test.statusCode, body: []byte(test.body)}
			res, err := decodeResponse[nut03.RequestMintResponse]("request mint", resp, nil)
			if res != nil {
				t.Fatalf("expected nil response but got '%+v'", res)
			}

			var clientErr *Error
			if !errors.As(err, &clientErr) {
				t.Fatalf("expected *Error but got '%T'", err)
			}
			if clientErr.Kind != KindDecode {
				t.Fatalf("expected kind '%v' but got '%v'", KindDecode, clientErr.Kind)
			}
			if clientErr.Raw != test.body {
				t.Fatalf("expected raw '%q' but got '%q'", test.body, clientErr.Raw)
			}
			if !errors.Is(err, ErrDecode) {
				t.Fatal("expected error to match ErrDecode")
			}
		})
	}
}

// a body that would decode as success must not be
// returned as one when the status says otherwise.
func TestDecodeResponseNon2xx(t *testing.T) {
	resp := &response{statusCode: 404, body: []byte(`{"keysets":["009a1f293253e41e"]}`)}
	res, err := decodeResponse[nut02.GetKeysetsResponse]("get keysets", resp, nil)
	if res != nil {
		t.Fatalf("expected nil response but got '%+v'", res)
	}
	if KindOf(err) != KindDecode {
		t.Fatalf("expected decode error but got '%v'", err)
	}
}

func TestDecodeResponseCheck(t *testing.T) {
	errMismatch := errors.New("mismatch")
	check := func(res *nut05.CheckFeesResponse) error {
		if res.Fee > 100 {
			return errMismatch
		}
		return nil
	}

	resp := &response{statusCode: 200, body: []byte(`{"fee":2}`)}
	res, err := decodeResponse("check fees", resp, check)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fee != 2 {
		t.Fatalf("expected fee of 2 but got %v", res.Fee)
	}

	resp = &response{statusCode: 200, body: []byte(`{"fee":101}`)}
	_, err = decodeResponse("check fees", resp, check)
	if KindOf(err) != KindDecode {
		t.Fatalf("expected decode error but got '%v'", err)
	}
	if !errors.Is(err, errMismatch) {
		t.Fatalf("expected error to wrap check error but got '%v'", err)
	}
}

func TestDecodeResponseRequiredFields(t *testing.T) {
	tests := []struct {
		body     string
		decodeOk bool
	}{
		{body: `{"paid":false}`, decodeOk: true},
		{body: `{"paid":true,"preimage":"00"}`, decodeOk: true},
		{body: `{"preimage":"00"}`, decodeOk: false},
		{body: `{}`, decodeOk: false},
		{body: `{"paid":true,"change":[{"id":"I2yN+iRYfkzT","amount":1}]}`, decodeOk: false},
		{body: `{"paid":true,"change":[{"id":"I2yN+iRYfkzT","amount":1,"C_":"` + testPubkey + `"}]}`, decodeOk: true},
	}

	for _, test := range tests {
		resp := &response{statusCode: 200, body: []byte(test.body)}
		_, err := decodeResponse[nut05.PostMeltResponse]("post melt", resp, nil)
		if test.decodeOk && err != nil {
			t.Fatalf("expected '%v' to decode but got error: %v", test.body, err)
		}
		if !test.decodeOk && KindOf(err) != KindDecode {
			t.Fatalf("expected decode error for '%v' but got '%v'", test.body, err)
		}
	}
}
