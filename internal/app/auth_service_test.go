package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"classwork-chatbot/internal/model"
	"classwork-chatbot/internal/pkg/jwtutil"
	"classwork-chatbot/internal/repository"
)

const testSecret = "test-secret"

func newAuthService(env *testEnv) *AuthService {
	return NewAuthService(repository.NewUserRepository(env.db), env.blocklist, testSecret, time.Hour)
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	svc := newAuthService(newTestEnv(t))

	result, err := svc.Register(RegisterInput{Username: "alice", Password: "pw", Email: "Alice@Example.com"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.User.Role() != model.UserTypeStudent {
		t.Fatalf("expected student role, got %q", result.User.Role())
	}
	if result.User.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", result.User.Email)
	}

	claims, err := jwtutil.ParseToken(testSecret, result.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != result.User.ID || claims.UserType != model.UserTypeStudent {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(newTestEnv(t))

	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"missing username", RegisterInput{Password: "pw"}, ErrInvalidInput},
		{"blank username", RegisterInput{Username: "  ", Password: "pw"}, ErrInvalidInput},
		{"missing password", RegisterInput{Username: "bob"}, ErrInvalidInput},
		{"bad role", RegisterInput{Username: "bob", Password: "pw", UserType: "admin"}, ErrInvalidUserType},
		{"leading space", RegisterInput{Username: " bob", Password: "pw"}, ErrInvalidUsername},
		{"trailing space", RegisterInput{Username: "bob\t", Password: "pw"}, ErrInvalidUsername},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newAuthService(newTestEnv(t))

	if _, err := svc.Register(RegisterInput{Username: "prof", Password: "pw", UserType: model.UserTypeProfessor}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(RegisterInput{Username: "prof", Password: "other"}); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
	// usernames are case-sensitive
	if _, err := svc.Register(RegisterInput{Username: "Prof", Password: "pw"}); err != nil {
		t.Fatalf("register with different case: %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newAuthService(newTestEnv(t))
	if _, err := svc.Register(RegisterInput{Username: "prof", Password: "secret", UserType: model.UserTypeProfessor}); err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := svc.Login(LoginInput{Username: "prof", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.User.Role() != model.UserTypeProfessor || result.Token == "" {
		t.Fatalf("unexpected login result %+v", result.User)
	}

	for _, input := range []LoginInput{
		{Username: "prof", Password: "wrong"},
		{Username: "nobody", Password: "secret"},
		{Username: "prof ", Password: "secret"},
		{Username: " prof", Password: "secret"},
		{Username: "", Password: ""},
	} {
		if _, err := svc.Login(input); !errors.Is(err, ErrInvalidCredential) {
			t.Fatalf("login %+v: expected ErrInvalidCredential, got %v", input, err)
		}
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)
	result, err := svc.Register(RegisterInput{Username: "carol", Password: "pw"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, err := jwtutil.ParseToken(testSecret, result.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	ctx := context.Background()
	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	revoked, err := env.blocklist.IsRevoked(ctx, claims.ID)
	if err != nil || !revoked {
		t.Fatalf("expected token to be revoked, revoked=%v err=%v", revoked, err)
	}
}

func TestGetUserByID(t *testing.T) {
	svc := newAuthService(newTestEnv(t))
	result, err := svc.Register(RegisterInput{Username: "dave", Password: "pw", UserType: model.UserTypeProfessor})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.GetUserByID(result.User.ID)
	if err != nil || user == nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Role() != model.UserTypeProfessor {
		t.Fatalf("expected preloaded professor profile, got %q", user.Role())
	}

	missing, err := svc.GetUserByID(9999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil user for unknown id, got %+v err=%v", missing, err)
	}
}
