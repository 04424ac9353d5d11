package crypto

import (
	"reflect"
	"testing"
)

func TestGenerateKeyset(t *testing.T) {
	keyset := GenerateKeyset("seed", "0/0/0")
	if len(keyset.KeyPairs) != maxOrder {
		t.Fatalf("expected '%v' key pairs but got '%v'", maxOrder, len(keyset.KeyPairs))
	}
	if len(keyset.Id) != 12 {
		t.Fatalf("expected keyset id of length 12 but got '%v'", keyset.Id)
	}

	again := GenerateKeyset("seed", "0/0/0")
	if again.Id != keyset.Id {
		t.Errorf("expected same id '%v' but got '%v'", keyset.Id, again.Id)
	}
	if !reflect.DeepEqual(again.PublicKeys(), keyset.PublicKeys()) {
		t.Error("public keys from same seed do not match")
	}

	other := GenerateKeyset("seed", "0/0/1")
	if other.Id == keyset.Id {
		t.Error("keysets from different paths should have different ids")
	}

	if _, ok := keyset.PrivateKey(1 << 10); !ok {
		t.Error("expected private key for amount 1024")
	}
	if _, ok := keyset.PrivateKey(3); ok {
		t.Error("did not expect private key for amount 3")
	}
}

func TestDeriveKeysetId(t *testing.T) {
	keys := GenerateKeyset("mysecretkey", "0/0/0").PublicKeys()

	// rebuild the map in a different insertion order
	reordered := make(map[uint64]string, len(keys))
	for i := maxOrder - 1; i >= 0; i-- {
		amount := uint64(1) << i
		reordered[amount] = keys[amount]
	}

	if DeriveKeysetId(keys) != DeriveKeysetId(reordered) {
		t.Error("keyset id should not depend on map order")
	}

	delete(reordered, 1)
	if DeriveKeysetId(keys) == DeriveKeysetId(reordered) {
		t.Error("keyset id should change when a key is removed")
	}
}
