package user

import (
	"context"
	"encoding/json"
	"errors"

	"backend-bloghub/internal/db"
	"backend-bloghub/internal/shared/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MediaCleaner schedules best-effort deletion of an external media asset.
type MediaCleaner interface {
	Schedule(publicID string)
}

// Notifier pushes an event to a connected user, dropping it when nobody
// listens.
type Notifier interface {
	Broadcast(userID string, payload []byte)
}

type Service struct {
	db      db.Querier
	cleaner MediaCleaner
	hub     Notifier
}

func NewService(q db.Querier, cleaner MediaCleaner, hub Notifier) *Service {
	return &Service{db: q, cleaner: cleaner, hub: hub}
}

const profileColumns = `
	id, username, email, COALESCE(full_name,''), COALESCE(bio,''), COALESCE(avatar_url,''),
	COALESCE(avatar_media_id,''), COALESCE(social_links,'{}'), role, notify_prefs, created_at, updated_at,
	(SELECT COUNT(*) FROM user_follows f WHERE f.following_id = users.id),
	(SELECT COUNT(*) FROM user_follows f WHERE f.follower_id = users.id)`

func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1`, userID)
	return scanProfile(row)
}

// GetByUsername returns a public profile: email and notification preferences
// are stripped.
func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE username = $1`, username)
	u, err := scanProfile(row)
	if err != nil {
		return User{}, err
	}
	u.Email = ""
	u.Role = ""
	u.NotifyPrefs = nil
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (User, error) {
	current, err := s.Me(ctx, userID)
	if err != nil {
		return User{}, err
	}

	oldAvatarID := current.AvatarID

	if patch.FullName != nil {
		if len(*patch.FullName) > 100 {
			return User{}, apperror.Validation("full_name must be at most 100 characters")
		}
		current.FullName = *patch.FullName
	}
	if patch.Bio != nil {
		if len(*patch.Bio) > 500 {
			return User{}, apperror.Validation("bio must be at most 500 characters")
		}
		current.Bio = *patch.Bio
	}
	if patch.AvatarURL != nil {
		current.AvatarURL = *patch.AvatarURL
	}
	if patch.AvatarID != nil {
		current.AvatarID = *patch.AvatarID
	}
	if patch.SocialLinks != nil {
		if len(patch.SocialLinks) > 5 {
			return User{}, apperror.Validation("at most 5 social links")
		}
		current.SocialLinks = patch.SocialLinks
	}
	if patch.NotifyPrefs != nil {
		current.NotifyPrefs = patch.NotifyPrefs
	}

	links, _ := json.Marshal(current.SocialLinks)
	prefs, _ := json.Marshal(current.NotifyPrefs)

	_, err = s.db.Exec(ctx, `
		UPDATE users
		SET full_name=$2, bio=$3, avatar_url=$4, avatar_media_id=$5, social_links=$6, notify_prefs=$7, updated_at=NOW()
		WHERE id=$1
	`, userID, current.FullName, current.Bio, current.AvatarURL, current.AvatarID, string(links), string(prefs))
	if err != nil {
		return User{}, err
	}

	if s.cleaner != nil && oldAvatarID != "" && oldAvatarID != current.AvatarID {
		s.cleaner.Schedule(oldAvatarID)
	}
	return current, nil
}

func (s *Service) Follow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return apperror.Validation("cannot follow yourself")
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, followingID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return apperror.NotFound("user not found")
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO user_follows (follower_id, following_id)
		VALUES ($1,$2)
	`, followerID, followingID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.Conflict("already following")
		}
		return err
	}

	s.notify(ctx, followingID, "follow", map[string]string{"follower_id": followerID})
	return nil
}

// Unfollow is a no-op when the relation does not exist.
func (s *Service) Unfollow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return apperror.Validation("cannot unfollow yourself")
	}
	_, err := s.db.Exec(ctx, `
		DELETE FROM user_follows WHERE follower_id=$1 AND following_id=$2
	`, followerID, followingID)
	return err
}

func (s *Service) Followers(ctx context.Context, username string) ([]FollowEntry, error) {
	return s.follows(ctx, username, `
		SELECT u.id, u.username, COALESCE(u.full_name,''), COALESCE(u.avatar_url,''), f.created_at
		FROM user_follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = (SELECT id FROM users WHERE username = $1)
		ORDER BY f.created_at DESC
	`)
}

func (s *Service) Following(ctx context.Context, username string) ([]FollowEntry, error) {
	return s.follows(ctx, username, `
		SELECT u.id, u.username, COALESCE(u.full_name,''), COALESCE(u.avatar_url,''), f.created_at
		FROM user_follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = (SELECT id FROM users WHERE username = $1)
		ORDER BY f.created_at DESC
	`)
}

func (s *Service) follows(ctx context.Context, username, query string) ([]FollowEntry, error) {
	rows, err := s.db.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []FollowEntry{}
	for rows.Next() {
		var e FollowEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.FullName, &e.AvatarURL, &e.Since); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Service) notify(ctx context.Context, userID, event string, data map[string]string) {
	if s.hub == nil {
		return
	}

	var prefs NotifyPrefs
	var raw []byte
	if err := s.db.QueryRow(ctx, `SELECT notify_prefs FROM users WHERE id = $1`, userID).Scan(&raw); err != nil {
		return
	}
	_ = json.Unmarshal(raw, &prefs)
	if event == "follow" && !prefs.Follows {
		return
	}

	payload, _ := json.Marshal(map[string]any{"event": event, "data": data})
	s.hub.Broadcast(userID, payload)
}

func scanProfile(row pgx.Row) (User, error) {
	var u User
	var links, prefs []byte
	u.NotifyPrefs = &NotifyPrefs{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Bio, &u.AvatarURL, &u.AvatarID,
		&links, &u.Role, &prefs, &u.CreatedAt, &u.UpdatedAt, &u.Followers, &u.Following)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperror.NotFound("user not found")
		}
		return User{}, err
	}
	_ = json.Unmarshal(links, &u.SocialLinks)
	_ = json.Unmarshal(prefs, u.NotifyPrefs)
	return u, nil
}
