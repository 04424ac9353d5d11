package nut01

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/gonuts/mintclient/crypto"
)

func TestKeysId(t *testing.T) {
	keys := Keys{
		1: "03a40f20667ed53513075dc51e715ff2046cad64eb68960632269ba7f0210e38bc",
		2: "03fd4ce5a16b65576145949e6f99f445f8249fee17c606b688b504a849cdc452de",
		4: "02648eccfa4c026960966276fa5a4cae46ce0fd432211a4f449bf84f13aa5f8303",
	}

	expected := "rScG3LKBSeob"
	if keys.Id() != expected {
		t.Fatalf("expected keyset id '%v' but got '%v'", expected, keys.Id())
	}
}

func TestKeysMarshalJSON(t *testing.T) {
	keys := Keys{
		8: "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
		1: "03a40f20667ed53513075dc51e715ff2046cad64eb68960632269ba7f0210e38bc",
		2: "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
	}

	jsonKeys, err := json.Marshal(keys)
	if err != nil {
		t.Fatal(err)
	}

	expected := `{"1":"03a40f20667ed53513075dc51e715ff2046cad64eb68960632269ba7f0210e38bc",` +
		`"2":"0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",` +
		`"8":"0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"}`
	if string(jsonKeys) != expected {
		t.Fatalf("expected '%v' but got '%s'", expected, jsonKeys)
	}

	if !reflect.DeepEqual(keys.Amounts(), []uint64{1, 2, 8}) {
		t.Fatalf("expected amounts [1 2 8] but got '%v'", keys.Amounts())
	}
}

func TestKeysUnmarshalJSON(t *testing.T) {
	keyset := crypto.GenerateKeyset("secret", "0/0/0")
	jsonKeys, err := json.Marshal(keyset.PublicKeys())
	if err != nil {
		t.Fatal(err)
	}

	var keys Keys
	if err := json.Unmarshal(jsonKeys, &keys); err != nil {
		t.Fatalf("unexpected error unmarshaling keys: %v", err)
	}
	if keys.Id() != keyset.Id {
		t.Fatalf("expected keyset id '%v' but got '%v'", keyset.Id, keys.Id())
	}
	if _, err := keys.PublicKey(1 << 10); err != nil {
		t.Fatalf("unexpected error getting public key: %v", err)
	}
	if _, err := keys.PublicKey(3); err == nil {
		t.Fatal("expected error getting key for amount 3")
	}

	invalid := []string{
		`{}`,
		`[]`,
		`null`,
		`{"1":"not hex"}`,
		`{"one":"0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"}`,
		`{"-1":"0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"}`,
		// uncompressed key
		`{"1":"0479be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"}`,
		`{"code":0,"detail":"not keys"}`,
	}

	for _, body := range invalid {
		var keys Keys
		if err := json.Unmarshal([]byte(body), &keys); err == nil {
			t.Fatalf("expected error unmarshaling '%v'", body)
		}
	}
}
