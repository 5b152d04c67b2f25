package blog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend-bloghub/internal/db"
	"backend-bloghub/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MediaCleaner schedules best-effort deletion of an external media asset.
type MediaCleaner interface {
	Schedule(publicID string)
}

// Notifier pushes an event to a connected user.
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

const postColumns = `
	p.id, p.author_id, u.username, p.title, p.content, p.excerpt, p.category, p.tags,
	COALESCE(p.media,'{}'), COALESCE(p.gallery,'[]'), p.status, p.published_at,
	p.read_time, p.views, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)`

func (s *Service) Create(ctx context.Context, authorID string, in PostInput) (Post, error) {
	if err := validateTitle(in.Title); err != nil {
		return Post{}, err
	}
	if err := validateContent(in.Content); err != nil {
		return Post{}, err
	}
	if err := validateExcerpt(in.Excerpt); err != nil {
		return Post{}, err
	}
	if err := validateCategory(in.Category); err != nil {
		return Post{}, err
	}
	if err := validateTags(in.Tags); err != nil {
		return Post{}, err
	}
	gallery, err := normalizeGallery(in.Gallery)
	if err != nil {
		return Post{}, err
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}
	if !validStatus(in.Status) {
		return Post{}, apperror.Validation("status must be draft, published or archived")
	}

	post := Post{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		Title:    in.Title,
		Content:  in.Content,
		Excerpt:  in.Excerpt,
		Category: in.Category,
		Tags:     in.Tags,
		Media:    in.Media,
		Gallery:  gallery,
		Status:   in.Status,
		ReadTime: readTime(in.Content),
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Status == StatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	media, _ := json.Marshal(post.Media)
	galleryJSON, _ := json.Marshal(post.Gallery)

	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (id, author_id, title, content, excerpt, category, tags, media, gallery, status, published_at, read_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at
	`, post.ID, post.AuthorID, post.Title, post.Content, post.Excerpt, post.Category, post.Tags,
		string(media), string(galleryJSON), post.Status, post.PublishedAt, post.ReadTime)
	if err := row.Scan(&post.CreatedAt, &post.UpdatedAt); err != nil {
		return Post{}, err
	}
	return post, nil
}

// Get returns a post for a viewer. Posts that are not published are visible
// only to their owner; everyone else gets NotFound so drafts do not leak
// their existence. The view counter moves once per request, never for the
// owner's own reads.
func (s *Service) Get(ctx context.Context, id, viewerID string) (Post, error) {
	post, err := s.fetch(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if err := assertVisible(post, viewerID); err != nil {
		return Post{}, err
	}

	if viewerID != post.AuthorID {
		if _, err := s.db.Exec(ctx, `UPDATE posts SET views = views + 1 WHERE id = $1`, id); err != nil {
			return Post{}, err
		}
		post.Views++
	}

	comments, err := s.comments(ctx, id)
	if err != nil {
		return Post{}, err
	}
	post.Comments = comments

	if viewerID != "" {
		var liked bool
		if err := s.db.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM post_likes WHERE post_id=$1 AND user_id=$2)
		`, id, viewerID).Scan(&liked); err != nil {
			return Post{}, err
		}
		post.LikedByMe = liked
	}
	return post, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) (ListResult, error) {
	q, err := q.normalize()
	if err != nil {
		return ListResult{}, err
	}

	where, args, orderBy, skip := q.build()

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts `+where, args...).Scan(&total); err != nil {
		return ListResult{}, err
	}

	listArgs := append(args, q.Limit, skip)
	query := fmt.Sprintf(`
		SELECT %s FROM posts p JOIN users u ON u.id = p.author_id %s %s LIMIT $%d OFFSET $%d
	`, postColumns, where, orderBy, len(args)+1, len(args)+2)

	posts, err := s.queryPosts(ctx, query, listArgs...)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Posts:      posts,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages(total, q.Limit),
	}, nil
}

// ListMine lists the caller's own posts in every status, drafts included.
func (s *Service) ListMine(ctx context.Context, authorID string, page, limit int) (ListResult, error) {
	q, err := ListQuery{Page: page, Limit: limit}.normalize()
	if err != nil {
		return ListResult{}, err
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID).Scan(&total); err != nil {
		return ListResult{}, err
	}

	posts, err := s.queryPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC, p.id ASC
		LIMIT $2 OFFSET $3
	`, authorID, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Posts:      posts,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages(total, q.Limit),
	}, nil
}

func (s *Service) Update(ctx context.Context, id, actorID string, patch PostPatch) (Post, error) {
	post, err := s.fetch(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if err := assertOwner(post, actorID); err != nil {
		return Post{}, err
	}

	oldMediaID := post.Media.PublicID
	contentChanged := false

	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return Post{}, err
		}
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		if err := validateContent(*patch.Content); err != nil {
			return Post{}, err
		}
		contentChanged = post.Content != *patch.Content
		post.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		if err := validateExcerpt(*patch.Excerpt); err != nil {
			return Post{}, err
		}
		post.Excerpt = *patch.Excerpt
	}
	if patch.Category != nil {
		if err := validateCategory(*patch.Category); err != nil {
			return Post{}, err
		}
		post.Category = *patch.Category
	}
	if patch.Tags != nil {
		if err := validateTags(*patch.Tags); err != nil {
			return Post{}, err
		}
		post.Tags = *patch.Tags
	}
	if patch.Media != nil {
		post.Media = *patch.Media
	}
	if patch.Gallery != nil {
		gallery, err := normalizeGallery(*patch.Gallery)
		if err != nil {
			return Post{}, err
		}
		post.Gallery = gallery
	}
	if patch.Status != nil {
		if !validStatus(*patch.Status) {
			return Post{}, apperror.Validation("status must be draft, published or archived")
		}
		switch *patch.Status {
		case StatusPublished:
			if post.PublishedAt == nil {
				now := time.Now()
				post.PublishedAt = &now
			}
		case StatusDraft:
			post.PublishedAt = nil
		}
		// moving to archived keeps the original publication timestamp
		post.Status = *patch.Status
	}
	if contentChanged {
		post.ReadTime = readTime(post.Content)
	}

	media, _ := json.Marshal(post.Media)
	gallery, _ := json.Marshal(post.Gallery)

	_, err = s.db.Exec(ctx, `
		UPDATE posts
		SET title=$2, content=$3, excerpt=$4, category=$5, tags=$6, media=$7, gallery=$8,
		    status=$9, published_at=$10, read_time=$11, updated_at=NOW()
		WHERE id=$1
	`, post.ID, post.Title, post.Content, post.Excerpt, post.Category, post.Tags,
		string(media), string(gallery), post.Status, post.PublishedAt, post.ReadTime)
	if err != nil {
		return Post{}, err
	}

	if s.cleaner != nil && oldMediaID != "" && oldMediaID != post.Media.PublicID {
		s.cleaner.Schedule(oldMediaID)
	}
	return post, nil
}

// Delete removes a post. Attached external assets are scheduled for deletion
// first, exactly one call per asset id; failures there never block the
// removal itself.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	post, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if err := assertOwner(post, actorID); err != nil {
		return err
	}

	if s.cleaner != nil {
		if post.Media.PublicID != "" {
			s.cleaner.Schedule(post.Media.PublicID)
		}
		for _, item := range post.Gallery {
			if item.PublicID != "" {
				s.cleaner.Schedule(item.PublicID)
			}
		}
	}

	_, err = s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}

// ToggleLike flips the caller's membership in the like set and reports the
// resulting state and total.
func (s *Service) ToggleLike(ctx context.Context, id, actorID string) (bool, int, error) {
	post, err := s.fetchHead(ctx, id)
	if err != nil {
		return false, 0, err
	}
	if err := assertVisible(post, actorID); err != nil {
		return false, 0, err
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO post_likes (post_id, user_id) VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, id, actorID)
	if err != nil {
		return false, 0, err
	}

	liked := tag.RowsAffected() > 0
	if !liked {
		if _, err := s.db.Exec(ctx, `
			DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2
		`, id, actorID); err != nil {
			return false, 0, err
		}
	}

	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, id).Scan(&count); err != nil {
		return false, 0, err
	}

	if liked && actorID != post.AuthorID {
		s.notify(ctx, post.AuthorID, "like", map[string]string{"post_id": id, "user_id": actorID})
	}
	return liked, count, nil
}

func (s *Service) AddComment(ctx context.Context, postID, actorID string, in CommentInput) (Comment, error) {
	post, err := s.fetchHead(ctx, postID)
	if err != nil {
		return Comment{}, err
	}
	if err := assertVisible(post, actorID); err != nil {
		return Comment{}, err
	}
	if post.Status != StatusPublished {
		return Comment{}, apperror.Validation("cannot comment on an unpublished post")
	}
	if len(in.Content) < 1 || len(in.Content) > 1000 {
		return Comment{}, apperror.Validation("comment must be 1-1000 characters")
	}

	comment := Comment{
		ID:      uuid.NewString(),
		PostID:  postID,
		UserID:  actorID,
		Content: in.Content,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO post_comments (id, post_id, user_id, content)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, comment.ID, comment.PostID, comment.UserID, comment.Content)
	if err := row.Scan(&comment.CreatedAt); err != nil {
		return Comment{}, err
	}

	if actorID != post.AuthorID {
		s.notify(ctx, post.AuthorID, "comment", map[string]string{"post_id": postID, "comment_id": comment.ID})
	}
	return comment, nil
}

func assertOwner(post Post, actorID string) error {
	if post.AuthorID != actorID {
		return apperror.Forbidden("not the owner of this post")
	}
	return nil
}

// assertVisible hides unpublished posts from everyone but their owner,
// reporting NotFound rather than Forbidden.
func assertVisible(post Post, viewerID string) error {
	if post.Status != StatusPublished && post.AuthorID != viewerID {
		return apperror.NotFound("post not found")
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, id string) (Post, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, apperror.NotFound("post not found")
		}
		return Post{}, err
	}
	return post, nil
}

// fetchHead loads just enough of a post for visibility and ownership checks.
func (s *Service) fetchHead(ctx context.Context, id string) (Post, error) {
	var post Post
	err := s.db.QueryRow(ctx, `
		SELECT id, author_id, status FROM posts WHERE id = $1
	`, id).Scan(&post.ID, &post.AuthorID, &post.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, apperror.NotFound("post not found")
		}
		return Post{}, err
	}
	return post, nil
}

func (s *Service) comments(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.post_id, c.user_id, u.username, c.content, c.created_at
		FROM post_comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Service) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *Service) notify(ctx context.Context, userID, event string, data map[string]string) {
	if s.hub == nil {
		return
	}

	var raw []byte
	if err := s.db.QueryRow(ctx, `SELECT notify_prefs FROM users WHERE id = $1`, userID).Scan(&raw); err != nil {
		return
	}
	var prefs struct {
		Likes    bool `json:"likes"`
		Comments bool `json:"comments"`
	}
	_ = json.Unmarshal(raw, &prefs)
	if (event == "like" && !prefs.Likes) || (event == "comment" && !prefs.Comments) {
		return
	}

	payload, _ := json.Marshal(map[string]any{"event": event, "data": data})
	s.hub.Broadcast(userID, payload)
}

func scanPost(row pgx.Row) (Post, error) {
	var post Post
	var media, gallery []byte
	err := row.Scan(&post.ID, &post.AuthorID, &post.Author, &post.Title, &post.Content, &post.Excerpt,
		&post.Category, &post.Tags, &media, &gallery, &post.Status, &post.PublishedAt,
		&post.ReadTime, &post.Views, &post.CreatedAt, &post.UpdatedAt, &post.Likes)
	if err != nil {
		return Post{}, err
	}
	_ = json.Unmarshal(media, &post.Media)
	_ = json.Unmarshal(gallery, &post.Gallery)
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return post, nil
}
