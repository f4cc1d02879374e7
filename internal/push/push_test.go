package push

import (
	"crypto/ecdh"
	"encoding/base64"
	"testing"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}

	// Uncompressed P-256 point.
	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 || pubBytes[0] != 0x04 {
		t.Errorf("public key length = %d, want 65 uncompressed", len(pubBytes))
	}

	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) != 32 {
		t.Errorf("private key length = %d, want 32", len(privBytes))
	}

	key, err := ecdh.P256().NewPrivateKey(privBytes)
	if err != nil {
		t.Fatalf("parse private key: %v", err)
	}
	if base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()) != pub {
		t.Error("public key does not match private key")
	}

	pub2, _, _ := GenerateVAPIDKeys()
	if pub == pub2 {
		t.Error("expected different keys on second generation")
	}
}

func TestServiceConfigured(t *testing.T) {
	if NewService("", "", "").Configured() {
		t.Error("service without keys reports configured")
	}
	svc := NewService("pub", "priv", "")
	if !svc.Configured() || svc.VAPIDPublicKey() != "pub" {
		t.Errorf("service = %+v", svc)
	}
	if svc.subscriber != "mailto:noreply@housy.app" {
		t.Errorf("subscriber = %q", svc.subscriber)
	}
}
