package auth

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"

	"fleetHQ/internal/testutil"
)

const testSecret = "test-secret"

func TestParseFromMD_ValidBearer(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "alice", "Operator")
	ctx := testutil.CtxWithBearer(context.Background(), tok)
	p, err := ParseFromMD(ctx, testSecret)
	if err != nil {
		t.Fatalf("ParseFromMD: %v", err)
	}
	if p.Name != "alice" || p.Role != "operator" {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestParseFromMD_MissingHeader(t *testing.T) {
	if _, err := ParseFromMD(context.Background(), testSecret); err == nil {
		t.Fatalf("expected error for missing metadata")
	}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-other", "1"))
	if _, err := ParseFromMD(ctx, testSecret); err == nil {
		t.Fatalf("expected error for missing authorization")
	}
}

func TestParseBearer_InvalidSchemeAndSecret(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "bob", "operator")
	if _, err := ParseBearer("Basic "+tok, testSecret); err == nil {
		t.Fatalf("expected error for non-Bearer scheme")
	}
	if _, err := ParseBearer("Bearer "+tok, "wrong"); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
	if _, err := ParseToken(tok, ""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestParseToken_ClaimsValidation(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "", "")
	if _, err := ParseToken(tok, testSecret); err == nil {
		t.Fatalf("expected invalid claims error")
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"name": "eve"}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseToken(tok, testSecret); err == nil {
		t.Fatalf("expected HS512 token to be rejected")
	}
}

func TestIssueToken_RoundTripAndExpiry(t *testing.T) {
	tok, err := IssueToken(testSecret, "carol", "manager", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	p, err := ParseToken(tok, testSecret)
	if err != nil || p.Name != "carol" || p.Role != "manager" {
		t.Fatalf("round trip: %v %+v", err, p)
	}

	expired, err := IssueToken(testSecret, "carol", "manager", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	// negative ttl means no expiry claim
	if _, err := ParseToken(expired, testSecret); err != nil {
		t.Fatalf("token without expiry rejected: %v", err)
	}

	c := claims{Name: "dave", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}
	old, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
	if _, err := ParseToken(old, testSecret); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
	if _, err := IssueToken("", "x", "", 0); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
