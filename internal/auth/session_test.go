package auth

import (
	"testing"
	"time"
)

func testConfig() *SessionConfig {
	return &SessionConfig{
		Secret: []byte("test-secret"),
		Issuer: "burnchat",
	}
}

func TestSignAndExtractToken(t *testing.T) {
	cfg := testConfig()

	signed, err := SignToken(cfg, "room-1", "raw-token", time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	token, err := ExtractToken(cfg, signed, "room-1")
	if err != nil {
		t.Fatalf("extract token: %v", err)
	}
	if token != "raw-token" {
		t.Fatalf("expected raw-token, got %q", token)
	}
}

func TestExtractTokenWrongRoom(t *testing.T) {
	cfg := testConfig()

	signed, err := SignToken(cfg, "room-1", "raw-token", time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ExtractToken(cfg, signed, "room-2"); err == nil {
		t.Fatal("expected error for a cookie issued for another room")
	}
}

func TestExtractTokenTampered(t *testing.T) {
	cfg := testConfig()

	signed, err := SignToken(cfg, "room-1", "raw-token", time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	tampered := signed[:len(signed)-2] + "xx"
	if _, err := ExtractToken(cfg, tampered, "room-1"); err == nil {
		t.Fatal("expected error for a tampered cookie")
	}

	other := &SessionConfig{Secret: []byte("other-secret"), Issuer: "burnchat"}
	if _, err := ExtractToken(other, signed, "room-1"); err == nil {
		t.Fatal("expected error for a cookie signed with another secret")
	}
}

func TestExtractTokenExpired(t *testing.T) {
	cfg := testConfig()

	signed, err := SignToken(cfg, "room-1", "raw-token", -time.Minute)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ExtractToken(cfg, signed, "room-1"); err == nil {
		t.Fatal("expected error for an expired cookie")
	}
}
