package service

import (
	"context"
	"testing"

	"github.com/zain-0/bus-track-ticket/internal/config"
	"github.com/zain-0/bus-track-ticket/internal/domain"
	"github.com/zain-0/bus-track-ticket/internal/repository"
)

func newAuthService() *AuthService {
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 30,
		BcryptCost:            4, // minimum cost keeps the test fast
	}}
	return NewAuthService(cfg, repository.NewMemoryUserRepository())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	user, token, _, err := svc.Register(ctx, "Dana", "Dana@Fleet.Test", "hunter2", domain.RoleCreator)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" {
		t.Fatal("register issued no token")
	}
	if user.Email != "dana@fleet.test" {
		t.Fatalf("email = %q, want normalized", user.Email)
	}
	if user.PasswordHash == "hunter2" || user.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}

	loggedIn, token, _, err := svc.Login(ctx, "dana@fleet.test", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || loggedIn.ID != user.ID {
		t.Fatalf("login = %#v", loggedIn)
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Actor().Role != domain.RoleCreator {
		t.Fatalf("token role = %s", claims.Actor().Role)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Dana", "dana@fleet.test", "pw", "janitor")
	assertCode(t, err, "VALIDATION_FAILED")

	if _, _, _, err := svc.Register(ctx, "Dana", "dana@fleet.test", "pw", domain.RoleCreator); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, _, err = svc.Register(ctx, "Dana Two", "DANA@fleet.test", "pw", domain.RoleVendor)
	assertCode(t, err, "DUPLICATE_KEY")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "Dana", "dana@fleet.test", "hunter2", domain.RoleCreator); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, _, err := svc.Login(ctx, "dana@fleet.test", "wrong")
	assertCode(t, err, "UNAUTHORIZED")

	_, _, _, err = svc.Login(ctx, "nobody@fleet.test", "hunter2")
	assertCode(t, err, "UNAUTHORIZED")
}
