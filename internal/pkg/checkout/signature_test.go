package checkout_test

import (
	"testing"

	"github.com/studiora/studiora-api/internal/pkg/checkout"
)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	secret := "whsec_test"

	sig := checkout.GenerateSignature(payload, secret)
	if sig == "" {
		t.Fatal("expected non-empty signature")
	}

	if !checkout.VerifySignature(payload, sig, secret) {
		t.Fatal("expected valid signature to verify")
	}

	if checkout.VerifySignature(payload, sig, "other_secret") {
		t.Fatal("signature verified with wrong secret")
	}

	if checkout.VerifySignature([]byte(`{"id":"evt_2"}`), sig, secret) {
		t.Fatal("signature verified for tampered payload")
	}
}

func TestVerifySignature_MalformedHex(t *testing.T) {
	if checkout.VerifySignature([]byte("body"), "not-hex!", "secret") {
		t.Fatal("malformed hex signature should not verify")
	}
}

func TestVerifySignature_EmptyInputs(t *testing.T) {
	payload := []byte("body")
	sig := checkout.GenerateSignature(payload, "secret")

	if checkout.VerifySignature(payload, sig, "") {
		t.Fatal("empty secret should not verify")
	}
	if checkout.VerifySignature(payload, "", "secret") {
		t.Fatal("empty signature should not verify")
	}
	if checkout.GenerateSignature(payload, "") != "" {
		t.Fatal("empty secret should produce empty signature")
	}
}
