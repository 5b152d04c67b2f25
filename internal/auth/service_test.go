package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-bloghub/internal/shared/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

var errQuery = errors.New("query error")

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestSignupAndLogin(t *testing.T) {
	mock := newMock(t)

	createdAt := time.Now().Add(-time.Minute)
	updatedAt := time.Now().Add(-time.Minute)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "writer", "writer@example.com", pgxmock.AnyArg(), "Writer One", "user", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(createdAt, updatedAt))

	svc := NewService("test-secret", mock, NewRevocations(nil))
	user, token, err := svc.Signup(context.Background(), SignupRequest{
		Username: "writer",
		Email:    "writer@example.com",
		Password: "password123",
		FullName: "Writer One",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.ID == "" || token.Token == "" {
		t.Fatalf("expected user and token")
	}
	if token.ExpiresIn != int64((7 * 24 * time.Hour).Seconds()) {
		t.Fatalf("expected 7 day expiry, got %d", token.ExpiresIn)
	}

	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs("writer@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "full_name", "bio", "avatar_url", "role", "created_at", "updated_at"}).
			AddRow(user.ID, user.Username, user.Email, user.PasswordHash, user.FullName, "", "", "user", createdAt, updatedAt))

	_, loginToken, err := svc.Login(context.Background(), LoginRequest{Email: "writer@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginToken.Token == "" {
		t.Fatalf("expected login token")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc := NewService("test-secret", nil, NewRevocations(nil))

	cases := []SignupRequest{
		{Username: "", Email: "a@b.c", Password: "password123"},
		{Username: "ab", Email: "a@b.c", Password: "password123"},
		{Username: "writer", Email: "a@b.c", Password: "short"},
	}
	for _, req := range cases {
		_, _, err := svc.Signup(context.Background(), req)
		appErr, ok := apperror.As(err)
		if !ok || appErr.Kind != apperror.KindValidation {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestSignupDuplicateConflict(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "writer", "writer@example.com", pgxmock.AnyArg(), "", "user", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	svc := NewService("test-secret", mock, NewRevocations(nil))
	_, _, err := svc.Signup(context.Background(), SignupRequest{
		Username: "writer",
		Email:    "writer@example.com",
		Password: "password123",
	})
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind != apperror.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginInvalidPassword(t *testing.T) {
	mock := newMock(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs("writer@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "full_name", "bio", "avatar_url", "role", "created_at", "updated_at"}).
			AddRow("user-1", "writer", "writer@example.com", string(hash), "", "", "", "user", time.Now(), time.Now()))

	svc := NewService("test-secret", mock, NewRevocations(nil))
	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "writer@example.com", Password: "wrong"})
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind != apperror.KindUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService("test-secret", mock, NewRevocations(nil))
	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind != apperror.KindUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestVerifyResolvesUser(t *testing.T) {
	mock := newMock(t)

	svc := NewService("test-secret", mock, NewRevocations(nil))
	token, err := svc.IssueToken("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	mock.ExpectQuery(`SELECT id, username, email, full_name`).
		WithArgs("user-1").
		WillReturnRows(userRows().
			AddRow("user-1", "writer", "writer@example.com", "Writer", "bio", "", "", []byte(`{"twitter":"@writer"}`), "user", []byte(`{"likes":true,"comments":false,"follows":true}`), time.Now(), time.Now()))

	user, err := svc.Verify(context.Background(), token.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.ID != "user-1" || user.SocialLinks["twitter"] != "@writer" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.NotifyPrefs.Comments {
		t.Fatalf("expected comments pref off")
	}
}

func TestVerifyDeletedUserNotFound(t *testing.T) {
	mock := newMock(t)

	svc := NewService("test-secret", mock, NewRevocations(nil))
	token, _ := svc.IssueToken("user-gone")

	mock.ExpectQuery(`SELECT id, username, email, full_name`).
		WithArgs("user-gone").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Verify(context.Background(), token.Token)
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind != apperror.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := NewService("test-secret", nil, NewRevocations(nil))
	_, err := svc.Verify(context.Background(), "not-a-token")
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind != apperror.KindUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewService("secret-a", nil, NewRevocations(nil))
	token, _ := issuer.IssueToken("user-1")

	verifier := NewService("secret-b", nil, NewRevocations(nil))
	_, err := verifier.Verify(context.Background(), token.Token)
	if err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := NewService("test-secret", nil, NewRevocations(nil))
	token, _ := svc.IssueToken("user-1")

	if err := svc.Logout(context.Background(), token.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err := svc.Verify(context.Background(), token.Token)
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind != apperror.KindUnauthenticated {
		t.Fatalf("expected revoked token rejection, got %v", err)
	}
}

func TestLogoutMalformedToken(t *testing.T) {
	svc := NewService("test-secret", nil, NewRevocations(nil))
	if err := svc.Logout(context.Background(), "garbage"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestIssueTokenSignError(t *testing.T) {
	oldSign := signTokenFn
	signTokenFn = func(_ *Service, _ string, _ time.Duration) (string, error) {
		return "", errQuery
	}
	defer func() { signTokenFn = oldSign }()

	svc := NewService("test-secret", nil, NewRevocations(nil))
	if _, err := svc.IssueToken("user-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func userRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "username", "email", "full_name", "bio", "avatar_url", "avatar_media_id", "social_links", "role", "notify_prefs", "created_at", "updated_at"})
}
