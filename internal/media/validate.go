package media

import "backend-bloghub/internal/shared/apperror"

const (
	maxAvatarBytes = 2 << 20
	maxImageBytes  = 5 << 20
	maxVideoBytes  = 10 << 20
)

var imageTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

var videoTypes = map[string]string{
	"video/mp4":        "mp4",
	"video/x-msvideo":  "avi",
	"video/quicktime":  "mov",
	"video/x-ms-wmv":   "wmv",
	"video/x-flv":      "flv",
	"video/webm":       "webm",
}

// validateUpload gates uploads before anything reaches the media host.
// Avatars have a tighter size ceiling than post images.
func validateUpload(kind, folder, contentType string, size int64) error {
	switch kind {
	case "image":
		if _, ok := imageTypes[contentType]; !ok {
			return apperror.Validation("image must be jpeg, png, gif or webp")
		}
		limit := int64(maxImageBytes)
		if folder == "avatars" {
			limit = maxAvatarBytes
		}
		if size > limit {
			return apperror.Validation("image exceeds the size limit")
		}
	case "video":
		if _, ok := videoTypes[contentType]; !ok {
			return apperror.Validation("video must be mp4, avi, mov, wmv, flv or webm")
		}
		if size > maxVideoBytes {
			return apperror.Validation("video exceeds the size limit")
		}
	default:
		return apperror.Validation("unknown upload kind")
	}
	if size == 0 {
		return apperror.Validation("empty file")
	}
	return nil
}
