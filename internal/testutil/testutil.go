package testutil

import (
	"context"
	"database/sql"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"

	"fleetHQ/internal/db"
	"fleetHQ/models"
	"fleetHQ/repository"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// NewStore returns a SQLite store over a fresh in-memory database.
func NewStore(t *testing.T, name string) *repository.SQLStore {
	t.Helper()
	return repository.NewSQLStore(OpenInMemoryDB(t, name))
}

// SeedUser creates a user or fails the test.
func SeedUser(t *testing.T, s repository.Store, username string, role models.Role) *models.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), username, role)
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

// GenerateJWTHS256 returns a signed JWT string with the claims the app reads.
func GenerateJWTHS256(t *testing.T, secret, name, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"name": name,
		"role": role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// CtxWithBearer returns a context containing gRPC metadata Authorization header with the given token.
func CtxWithBearer(ctx context.Context, token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(ctx, md)
}
