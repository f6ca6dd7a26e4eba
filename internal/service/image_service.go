package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"wayfarer/internal/config"
	"wayfarer/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultImageUploadDir       = "/tmp/wayfarer/uploads/images"
	DefaultImageMaxUploadSizeMB = 10
	ContestImageMaxSize         = 2048
	ContestImageMinSize         = 400
	WebPQuality                 = 78
)

// ImageService normalizes uploaded contest photos: every accepted upload is
// decoded, bounded to ContestImageMaxSize and re-encoded as WebP under a
// fresh random key, so no client-supplied bytes or filenames reach disk.
type ImageService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

// NewImageService returns an ImageService configured from cfg, falling back
// to package defaults when cfg is nil or unset.
func NewImageService(cfg *config.Config) *ImageService {
	uploadDir := DefaultImageUploadDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.ImageUploadDir != "" {
			uploadDir = cfg.ImageUploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &ImageService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Store validates and re-encodes an uploaded image, returning the storage
// key of the normalized WebP file.
func (s *ImageService) Store(content []byte, contentType string) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detected := http.DetectContentType(content)
	if !isAllowedImageMIME(detected) {
		return "", models.NewValidationError("Invalid image type")
	}
	if provided := normalizeContentType(contentType); strings.HasPrefix(provided, "image/") && provided != detected {
		return "", models.NewValidationError("Image content type mismatch")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	b := decoded.Bounds()
	if b.Dx() < ContestImageMinSize || b.Dy() < ContestImageMinSize {
		return "", models.NewValidationError(fmt.Sprintf("Image must be at least %dpx on each side", ContestImageMinSize))
	}

	normalized := resizeToFit(decoded, ContestImageMaxSize, ContestImageMaxSize)
	encoded, err := encodeWebP(normalized, WebPQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	key := uuid.NewString() + ".webp"
	if err := writeBytesToFile(filepath.Join(s.uploadDir, key), encoded); err != nil {
		return "", models.NewInternalError(err)
	}
	return key, nil
}

// Resolve returns the on-disk path for a stored image key, rejecting keys
// that could traverse outside the upload directory.
func (s *ImageService) Resolve(key string) (string, error) {
	if !isValidImageKey(key) {
		return "", models.NewValidationError("Invalid image key")
	}
	fullPath := filepath.Join(s.uploadDir, key)
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", models.NewNotFoundError("Image", key)
		}
		return "", models.NewInternalError(err)
	}
	return fullPath, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *ImageService) Remove(key string) error {
	if !isValidImageKey(key) {
		return models.NewValidationError("Invalid image key")
	}
	if err := os.Remove(filepath.Join(s.uploadDir, key)); err != nil && !os.IsNotExist(err) {
		return models.NewInternalError(err)
	}
	return nil
}

// URL builds the public serving path for a stored key.
func (s *ImageService) URL(key string) string {
	return "/media/contest/" + key
}

// isValidImageKey accepts only the keys Store generates: a UUID plus the
// webp suffix. Anything else is treated as a traversal attempt.
func isValidImageKey(key string) bool {
	name, ok := strings.CutSuffix(key, ".webp")
	if !ok {
		return false
	}
	_, err := uuid.Parse(name)
	return err == nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

func normalizeContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return ct
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o640)
}
