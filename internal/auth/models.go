package auth

import "time"

type User struct {
	ID           string            `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	FullName     string            `json:"full_name"`
	Bio          string            `json:"bio,omitempty"`
	AvatarURL    string            `json:"avatar_url,omitempty"`
	AvatarID     string            `json:"-"`
	SocialLinks  map[string]string `json:"social_links,omitempty"`
	Role         string            `json:"role"`
	NotifyPrefs  NotifyPrefs       `json:"notify_prefs"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type NotifyPrefs struct {
	Likes    bool `json:"likes"`
	Comments bool `json:"comments"`
	Follows  bool `json:"follows"`
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}
