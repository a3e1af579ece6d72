// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	valid, err := VerifyPassword("correct-horse-battery", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !valid {
		t.Fatal("correct password rejected")
	}

	valid, err = VerifyPassword("wrong-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if valid {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordUniqueSalt(t *testing.T) {
	first, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage",
	} {
		if _, err := VerifyPassword("anything", encoded); err == nil {
			t.Errorf("VerifyPassword(%q) succeeded, want error", encoded)
		}
	}
}

func TestVerifyPasswordTimingSafeNilHash(t *testing.T) {
	valid, err := VerifyPasswordTimingSafe("anything", nil)
	if err != nil {
		t.Fatalf("VerifyPasswordTimingSafe: %v", err)
	}
	if valid {
		t.Fatal("nil stored hash must never validate")
	}

	empty := ""
	valid, err = VerifyPasswordTimingSafe("anything", &empty)
	if err != nil {
		t.Fatalf("VerifyPasswordTimingSafe: %v", err)
	}
	if valid {
		t.Fatal("empty stored hash must never validate")
	}
}

func TestGenerateRefreshSecret(t *testing.T) {
	first, err := GenerateRefreshSecret()
	if err != nil {
		t.Fatalf("GenerateRefreshSecret: %v", err)
	}
	second, err := GenerateRefreshSecret()
	if err != nil {
		t.Fatalf("GenerateRefreshSecret: %v", err)
	}

	if first == second {
		t.Fatal("secrets must be unique")
	}
	// 48 random bytes in unpadded base64url.
	if len(first) != 64 {
		t.Errorf("secret length = %d, want 64", len(first))
	}
}

func TestHashRefreshSecretPepper(t *testing.T) {
	secret, err := GenerateRefreshSecret()
	if err != nil {
		t.Fatalf("GenerateRefreshSecret: %v", err)
	}

	hash := HashRefreshSecret(secret, "pepper-a")

	if !CompareSecretHash(secret, "pepper-a", hash) {
		t.Fatal("matching secret and pepper rejected")
	}
	if CompareSecretHash(secret, "pepper-b", hash) {
		t.Fatal("wrong pepper accepted")
	}
	if CompareSecretHash("other-secret", "pepper-a", hash) {
		t.Fatal("wrong secret accepted")
	}
	if hash == HashRefreshSecret(secret, "pepper-b") {
		t.Fatal("pepper must change the digest")
	}
}
