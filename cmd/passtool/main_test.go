package main

import (
	"testing"

	"foodtracker/dblayer"

	"golang.org/x/crypto/bcrypt"
)

func TestHashVerifiesLikeAStoredCredential(t *testing.T) {
	// MinCost keeps the test fast; the cost is embedded in the hash, so the
	// verify side doesn't care.
	hash, err := hashPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashPassword returned error: %v", err)
	}

	if !dblayer.CheckPassword("secret1", hash) {
		t.Errorf("Generated hash does not verify against the original password")
	}
	if dblayer.CheckPassword("secret2", hash) {
		t.Errorf("Generated hash verifies against the wrong password")
	}
}

func TestHashRejectsInvalidCost(t *testing.T) {
	if _, err := hashPassword([]byte("secret1"), bcrypt.MaxCost+1); err == nil {
		t.Errorf("hashPassword accepted an out-of-range cost")
	}
}
