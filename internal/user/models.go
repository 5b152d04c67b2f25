package user

import "time"

type User struct {
	ID          string            `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email,omitempty"`
	FullName    string            `json:"full_name"`
	Bio         string            `json:"bio,omitempty"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	AvatarID    string            `json:"-"`
	SocialLinks map[string]string `json:"social_links,omitempty"`
	Role        string            `json:"role,omitempty"`
	NotifyPrefs *NotifyPrefs      `json:"notify_prefs,omitempty"`
	Followers   int               `json:"followers"`
	Following   int               `json:"following"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type NotifyPrefs struct {
	Likes    bool `json:"likes"`
	Comments bool `json:"comments"`
	Follows  bool `json:"follows"`
}

// ProfilePatch is the explicit allow-list of mutable profile fields. Absent
// pointers leave the stored value untouched.
type ProfilePatch struct {
	FullName    *string           `json:"full_name"`
	Bio         *string           `json:"bio"`
	AvatarURL   *string           `json:"avatar_url"`
	AvatarID    *string           `json:"avatar_media_id"`
	SocialLinks map[string]string `json:"social_links"`
	NotifyPrefs *NotifyPrefs      `json:"notify_prefs"`
}

// FollowEntry is one row of a followers/following listing.
type FollowEntry struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Since     time.Time `json:"since"`
}
