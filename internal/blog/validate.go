package blog

import (
	"fmt"
	"strings"

	"backend-bloghub/internal/shared/apperror"
)

var Categories = []string{"technology", "lifestyle", "travel", "food", "health", "business", "other"}

const (
	maxTags        = 10
	maxTagLen      = 20
	maxGalleryLen  = 20
	wordsPerMinute = 200
)

func validCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

func validStatus(status string) bool {
	return status == StatusDraft || status == StatusPublished || status == StatusArchived
}

func validateTitle(title string) error {
	if len(title) < 5 || len(title) > 200 {
		return apperror.Validation("title must be 5-200 characters")
	}
	return nil
}

func validateContent(content string) error {
	if len(content) < 10 {
		return apperror.Validation("content must be at least 10 characters")
	}
	return nil
}

func validateExcerpt(excerpt string) error {
	if len(excerpt) < 10 || len(excerpt) > 300 {
		return apperror.Validation("excerpt must be 10-300 characters")
	}
	return nil
}

func validateCategory(category string) error {
	if !validCategory(category) {
		return apperror.Validation(fmt.Sprintf("category must be one of: %s", strings.Join(Categories, ", ")))
	}
	return nil
}

func validateTags(tags []string) error {
	if len(tags) > maxTags {
		return apperror.Validation("at most 10 tags")
	}
	for _, tag := range tags {
		if len(tag) < 1 || len(tag) > maxTagLen {
			return apperror.Validation("each tag must be 1-20 characters")
		}
	}
	return nil
}

// normalizeGallery validates gallery entries and fills in defaults: zone
// header, order by array position.
func normalizeGallery(gallery []GalleryItem) ([]GalleryItem, error) {
	if len(gallery) > maxGalleryLen {
		return nil, apperror.Validation("at most 20 gallery entries")
	}
	out := make([]GalleryItem, len(gallery))
	for i, item := range gallery {
		if item.Type != "image" && item.Type != "video" {
			return nil, apperror.Validation("gallery entry type must be image or video")
		}
		if item.URL == "" {
			return nil, apperror.Validation("gallery entry url required")
		}
		switch item.Zone {
		case "":
			item.Zone = "header"
		case "header", "inline", "footer":
		default:
			return nil, apperror.Validation("gallery zone must be header, inline or footer")
		}
		if item.Order == 0 {
			item.Order = i
		}
		out[i] = item
	}
	return out, nil
}

// readTime estimates minutes to read at 200 words per minute, never below 1.
func readTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
