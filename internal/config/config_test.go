package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envKeys {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.GRPC.Address != ":50051" || cfg.HTTP.Address != ":8080" || cfg.Database.Path == "" || cfg.Auth.JWTSecret == "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Scheduling.MissionDuration != time.Hour || cfg.Scheduling.ConflictMode != "overlap" {
		t.Fatalf("unexpected scheduling defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("token ttl: %s", cfg.Auth.TokenTTL)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "test.db")
	t.Setenv("GRPC_ADDRESS", ":1234")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is not set")
	}
	t.Setenv("JWT_SECRET", "x")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with secret set: %v", err)
	}
	if cfg.Database.Path != "test.db" || cfg.GRPC.Address != ":1234" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("MISSION_DURATION", "90m")
	t.Setenv("CONFLICT_MODE", "exact")
	t.Setenv("DB_DRIVER", "mongo")
	t.Setenv("MONGO_DBNAME", "fleet_test")
	t.Setenv("HTTP_CORS_ORIGINS", "http://a.test, http://b.test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scheduling.MissionDuration != 90*time.Minute || cfg.Scheduling.ConflictMode != "exact" {
		t.Fatalf("scheduling: %+v", cfg.Scheduling)
	}
	if cfg.Database.Driver != "mongo" || cfg.Mongo.DBName != "fleet_test" {
		t.Fatalf("mongo: %+v %+v", cfg.Database, cfg.Mongo)
	}
	if len(cfg.HTTP.CORSOrigins) != 2 || cfg.HTTP.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("cors origins: %v", cfg.HTTP.CORSOrigins)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"DB_DRIVER":        "postgres",
		"CONFLICT_MODE":    "fuzzy",
		"MISSION_DURATION": "-5m",
	}
	for env, val := range cases {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "s")
		t.Setenv(env, val)
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for %s=%s", env, val)
		}
	}
}

func TestString_MasksSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "super-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.Contains(cfg.String(), "super-secret") {
		t.Fatalf("secret leaked: %s", cfg.String())
	}
}
