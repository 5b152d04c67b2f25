package blog

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Media is the primary asset attached to a post, hosted on the external
// media store and referenced by its public id.
type Media struct {
	Type     string `json:"type,omitempty"`
	URL      string `json:"url,omitempty"`
	PublicID string `json:"public_id,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// GalleryItem is one entry of the secondary media gallery. Zone controls
// placement within the rendered post.
type GalleryItem struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
	Zone     string `json:"zone"`
	Order    int    `json:"order"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID          string        `json:"id"`
	AuthorID    string        `json:"author_id"`
	Author      string        `json:"author,omitempty"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Excerpt     string        `json:"excerpt"`
	Category    string        `json:"category"`
	Tags        []string      `json:"tags"`
	Media       Media         `json:"media"`
	Gallery     []GalleryItem `json:"media_gallery"`
	Status      string        `json:"status"`
	PublishedAt *time.Time    `json:"published_at"`
	ReadTime    int           `json:"read_time"`
	Views       int           `json:"views"`
	Likes       int           `json:"likes"`
	LikedByMe   bool          `json:"liked_by_me,omitempty"`
	Comments    []Comment     `json:"comments,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// PostInput carries the fields a client may set on create.
type PostInput struct {
	Title    string        `json:"title"`
	Content  string        `json:"content"`
	Excerpt  string        `json:"excerpt"`
	Category string        `json:"category"`
	Tags     []string      `json:"tags"`
	Media    Media         `json:"media"`
	Gallery  []GalleryItem `json:"media_gallery"`
	Status   string        `json:"status"`
}

// PostPatch is the explicit allow-list of mutable post fields. Absent
// pointers leave the stored value untouched.
type PostPatch struct {
	Title    *string        `json:"title"`
	Content  *string        `json:"content"`
	Excerpt  *string        `json:"excerpt"`
	Category *string        `json:"category"`
	Tags     *[]string      `json:"tags"`
	Media    *Media         `json:"media"`
	Gallery  *[]GalleryItem `json:"media_gallery"`
	Status   *string        `json:"status"`
}

type CommentInput struct {
	Content string `json:"content"`
}

// ListResult is one page of a listing plus the figures needed for paging.
type ListResult struct {
	Posts      []Post `json:"posts"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}
