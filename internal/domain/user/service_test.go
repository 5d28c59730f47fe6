package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinic/clinic/internal/platform/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type mockRepo struct {
	users map[string]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[string]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	if _, ok := m.users[u.Username]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "app_user_username_key"}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.users[u.Username] = u
	return nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func newTestService() *Service {
	return NewService(newMockRepo(), []byte(testSecret), time.Hour)
}

func TestRegister(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "nurse1",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if u.Role != "staff" {
		t.Errorf("expected default role staff, got %s", u.Role)
	}
	if u.PasswordHash == "s3cret-pass" || u.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "nurse1",
		Password: "short",
	})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := newTestService()

	req := &RegisterRequest{Username: "nurse1", Password: "s3cret-pass"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Register(context.Background(), &RegisterRequest{Username: "nurse1", Password: "other-pass1"})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "nurse1",
		Password: "s3cret-pass",
		Role:     "admin",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, u, err := svc.Login(context.Background(), &LoginRequest{Username: "nurse1", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Username != "nurse1" {
		t.Errorf("unexpected user: %s", u.Username)
	}

	claims, err := auth.ParseToken([]byte(testSecret), token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Username != "nurse1" || claims.Role != "admin" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.Subject != u.ID.String() {
		t.Errorf("expected subject %s, got %s", u.ID, claims.Subject)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService()

	svc.Register(context.Background(), &RegisterRequest{Username: "nurse1", Password: "s3cret-pass"})

	_, _, err := svc.Login(context.Background(), &LoginRequest{Username: "nurse1", Password: "wrong-pass"})
	if !errors.Is(err, ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.Login(context.Background(), &LoginRequest{Username: "ghost", Password: "whatever1"})
	if !errors.Is(err, ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials, got %v", err)
	}
}
