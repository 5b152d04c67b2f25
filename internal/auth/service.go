package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend-bloghub/internal/db"
	"backend-bloghub/internal/shared/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 7 * 24 * time.Hour

type Service struct {
	secret  []byte
	db      db.Querier
	revoked *Revocations
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, q db.Querier, revoked *Revocations) *Service {
	return &Service{
		secret:  []byte(secret),
		db:      q,
		revoked: revoked,
	}
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (User, TokenResponse, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return User{}, TokenResponse{}, apperror.Validation("username, email, password required")
	}
	if len(req.Username) < 3 || len(req.Username) > 30 {
		return User{}, TokenResponse{}, apperror.Validation("username must be 3-30 characters")
	}
	if len(req.Password) < 8 {
		return User{}, TokenResponse{}, apperror.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, TokenResponse{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         "user",
		NotifyPrefs:  NotifyPrefs{Likes: true, Comments: true, Follows: true},
	}
	prefs, _ := json.Marshal(user.NotifyPrefs)

	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, full_name, role, notify_prefs)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.FullName, user.Role, string(prefs))
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, TokenResponse{}, apperror.Conflict("username or email already taken")
		}
		return User{}, TokenResponse{}, err
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return User{}, TokenResponse{}, err
	}
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (User, TokenResponse, error) {
	if req.Email == "" || req.Password == "" {
		return User{}, TokenResponse{}, apperror.Validation("email and password required")
	}

	row := s.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, full_name, COALESCE(bio,''), COALESCE(avatar_url,''), role, created_at, updated_at
		FROM users WHERE email = $1
	`, req.Email)

	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FullName, &user.Bio, &user.AvatarURL, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, TokenResponse{}, apperror.Unauthenticated("invalid credentials")
		}
		return User{}, TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return User{}, TokenResponse{}, apperror.Unauthenticated("invalid credentials")
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return User{}, TokenResponse{}, err
	}
	return user, token, nil
}

// Logout adds the token to the revocation set with a TTL matching its
// remaining life. Already-expired tokens are accepted as a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil
		}
		return apperror.Unauthenticated(err.Error())
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	return s.revoked.Revoke(ctx, token, remaining)
}

var signTokenFn = (*Service).signToken

func (s *Service) IssueToken(userID string) (TokenResponse, error) {
	token, err := signTokenFn(s, userID, tokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(tokenTTL.Seconds()),
	}, nil
}

// Verify checks signature, expiry and the revocation set, then resolves the
// embedded user id against the store.
func (s *Service) Verify(ctx context.Context, token string) (User, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return User{}, apperror.Unauthenticated(err.Error())
	}
	if s.revoked.Revoked(ctx, token) {
		return User{}, apperror.Unauthenticated("token revoked")
	}

	row := s.db.QueryRow(ctx, `
		SELECT id, username, email, full_name, COALESCE(bio,''), COALESCE(avatar_url,''), COALESCE(avatar_media_id,''), COALESCE(social_links,'{}'), role, notify_prefs, created_at, updated_at
		FROM users WHERE id = $1
	`, claims.UserID)

	var user User
	var links, prefs []byte
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Bio, &user.AvatarURL, &user.AvatarID, &links, &user.Role, &prefs, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperror.NotFound("user not found")
		}
		return User{}, err
	}
	_ = json.Unmarshal(links, &user.SocialLinks)
	_ = json.Unmarshal(prefs, &user.NotifyPrefs)
	return user, nil
}

func (s *Service) signToken(userID string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}
