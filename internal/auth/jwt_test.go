// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zhqingit/voice-food-order/internal/config"
	"github.com/zhqingit/voice-food-order/internal/core"
)

func testCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()

	codec, err := NewCodec(config.AuthConfig{
		JWTSecret:      "0123456789abcdef0123456789abcdef",
		AccessTokenTTL: ttl,
	})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return codec
}

func wantInvalidAccessToken(t *testing.T, err error) {
	t.Helper()

	appErr, ok := core.AsAppError(err)
	if !ok {
		t.Fatalf("err = %v, want AppError", err)
	}
	if appErr.Code != core.CodeInvalidAccessToken {
		t.Fatalf("code = %q, want %q", appErr.Code, core.CodeInvalidAccessToken)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := testCodec(t, 10*time.Minute)
	subjectID := uuid.New()

	signed, err := codec.Issue(subjectID, KindStore, AudienceWeb)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if claims.SubjectID != subjectID {
		t.Errorf("subject = %s, want %s", claims.SubjectID, subjectID)
	}
	if claims.Kind != KindStore {
		t.Errorf("kind = %s, want %s", claims.Kind, KindStore)
	}
	if claims.Audience != AudienceWeb {
		t.Errorf("audience = %s, want %s", claims.Audience, AudienceWeb)
	}
}

func TestCodecIssueUniqueTokens(t *testing.T) {
	codec := testCodec(t, 10*time.Minute)
	subjectID := uuid.New()

	first, err := codec.Issue(subjectID, KindUser, AudienceMobile)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	second, err := codec.Issue(subjectID, KindUser, AudienceMobile)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if first == second {
		t.Error("two tokens for the same principal should differ (jti)")
	}
}

func TestCodecVerifyExpired(t *testing.T) {
	codec := testCodec(t, -time.Minute)

	signed, err := codec.Issue(uuid.New(), KindUser, AudienceMobile)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = codec.Verify(signed)
	wantInvalidAccessToken(t, err)
}

func TestCodecVerifyTamperedSignature(t *testing.T) {
	codec := testCodec(t, 10*time.Minute)

	signed, err := codec.Issue(uuid.New(), KindUser, AudienceMobile)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + flipFirstChar(parts[2])

	_, err = codec.Verify(tampered)
	wantInvalidAccessToken(t, err)
}

func TestCodecVerifyWrongKey(t *testing.T) {
	codec := testCodec(t, 10*time.Minute)

	other, err := NewCodec(config.AuthConfig{
		JWTSecret:      "ffffffffffffffffffffffffffffffff",
		AccessTokenTTL: 10 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	signed, err := other.Issue(uuid.New(), KindUser, AudienceMobile)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = codec.Verify(signed)
	wantInvalidAccessToken(t, err)
}

func TestCodecVerifyMalformed(t *testing.T) {
	codec := testCodec(t, 10*time.Minute)

	for _, input := range []string{
		"",
		"garbage",
		"a.b.c",
	} {
		_, err := codec.Verify(input)
		wantInvalidAccessToken(t, err)
	}
}

func TestCodecErrorIsOpaque(t *testing.T) {
	codec := testCodec(t, -time.Minute)

	signed, err := codec.Issue(uuid.New(), KindUser, AudienceMobile)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, expiredErr := codec.Verify(signed)
	_, garbageErr := codec.Verify("garbage")

	var a, b *core.AppError
	if !errors.As(expiredErr, &a) || !errors.As(garbageErr, &b) {
		t.Fatal("expected AppError from both failures")
	}
	if a.Code != b.Code {
		t.Errorf("expired and malformed must be indistinguishable: %q vs %q",
			a.Code, b.Code)
	}
}

func flipFirstChar(s string) string {
	if s == "" {
		return s
	}
	c := s[0]
	if c == 'A' {
		c = 'B'
	} else {
		c = 'A'
	}
	return string(c) + s[1:]
}
