package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/png"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/wallsetting-api/internal/models"
	appErrors "github.com/noah-isme/wallsetting-api/pkg/errors"
	"github.com/noah-isme/wallsetting-api/pkg/jobs"
	"github.com/noah-isme/wallsetting-api/pkg/storage"
)

// ProfileImageJobType identifies normalisation jobs on the image queue.
const ProfileImageJobType = "profile_image.normalize"

const profileImageQueue = "profile_images"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

type imageStore interface {
	Save(name string, data []byte) (string, error)
	Read(name string) ([]byte, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

type imageQueue interface {
	Enqueue(job jobs.Job) error
}

type brandProfileImages interface {
	Get(ctx context.Context, id string) (*models.BrandInfo, error)
	SetProfileImage(ctx context.Context, id string, path string) error
}

// ProfileImageConfig tunes upload limits and URL building.
type ProfileImageConfig struct {
	APIPrefix    string
	PublicPath   string
	MaxFileSize  int64
	MaxDimension int
	JPEGQuality  int
}

// NormalizeImagePayload describes one pending normalisation.
type NormalizeImagePayload struct {
	BrandID    string
	SourcePath string
	TargetPath string
}

// ProfileImageResult is returned after an upload is accepted.
type ProfileImageResult struct {
	ProfileImage string    `json:"profile_image"`
	URL          string    `json:"url"`
	ExpiresAt    time.Time `json:"expires_at"`
	Status       string    `json:"status"`
}

// ProfileImageService stores brand profile images and normalises them in the background.
type ProfileImageService struct {
	brands  brandProfileImages
	store   imageStore
	signer  *storage.SignedURLSigner
	queue   imageQueue
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ProfileImageConfig
}

// NewProfileImageService constructs the service. queue may be nil, in which
// case uploads are normalised inline.
func NewProfileImageService(brands brandProfileImages, store imageStore, signer *storage.SignedURLSigner, queue imageQueue, metrics *MetricsService, logger *zap.Logger, cfg ProfileImageConfig) *ProfileImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 5 * 1024 * 1024
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = 85
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ProfileImageService{
		brands:  brands,
		store:   store,
		signer:  signer,
		queue:   queue,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// SetQueue attaches the background queue once it has been built.
func (s *ProfileImageService) SetQueue(queue imageQueue) {
	s.queue = queue
}

// Upload validates and stores a new profile image for the brand.
func (s *ProfileImageService) Upload(ctx context.Context, brandID string, data []byte) (*ProfileImageResult, error) {
	if _, err := s.brands.Get(ctx, brandID); err != nil {
		return nil, err
	}
	if int64(len(data)) > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("image exceeds %d bytes", s.cfg.MaxFileSize))
	}
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image file is empty")
	}
	if contentType := http.DetectContentType(data); !allowedImageTypes[contentType] {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported image type %s", contentType))
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "image could not be decoded")
	}

	id := uuid.NewString()
	payload := NormalizeImagePayload{
		BrandID:    brandID,
		SourcePath: fmt.Sprintf("brands/%s/%s.upload", brandID, id),
		TargetPath: fmt.Sprintf("brands/%s/%s.jpg", brandID, id),
	}
	if _, err := s.store.Save(payload.SourcePath, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image")
	}

	status := "processing"
	if !s.enqueue(payload) {
		if err := s.Normalize(ctx, payload); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to process image")
		}
		status = "ready"
	}

	publicPath := strings.TrimRight(s.cfg.PublicPath, "/") + "/" + payload.TargetPath
	if err := s.brands.SetProfileImage(ctx, brandID, publicPath); err != nil {
		return nil, err
	}

	url, expiresAt, err := s.SignedURL(brandID, payload.TargetPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign image url")
	}
	return &ProfileImageResult{ProfileImage: publicPath, URL: url, ExpiresAt: expiresAt, Status: status}, nil
}

// SignedURL returns a time-limited download URL for a stored image.
func (s *ProfileImageService) SignedURL(brandID, relPath string) (string, time.Time, error) {
	token, expiresAt, err := s.signer.Generate(brandID, relPath)
	if err != nil {
		return "", time.Time{}, err
	}
	url := fmt.Sprintf("%s/brands_info/%s/profile-image?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), brandID, token)
	return url, expiresAt, nil
}

// Open validates a download token for brandID and opens the image.
func (s *ProfileImageService) Open(brandID, token string) (io.ReadSeekCloser, error) {
	file, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "image link expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid image token")
	}
	if file.OwnerID != brandID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token does not match brand")
	}
	handle, err := s.store.Open(file.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile image not ready")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open image")
	}
	return handle, nil
}

// HandleJob is the queue handler for normalisation jobs.
func (s *ProfileImageService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(NormalizeImagePayload)
	if !ok {
		s.logger.Error("unexpected job payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	start := time.Now()
	err := s.Normalize(ctx, payload)
	s.metrics.ObserveJob(profileImageQueue, err, time.Since(start))
	return err
}

// Normalize decodes the uploaded file, bounds it to MaxDimension, flattens
// transparency onto white and re-encodes it as JPEG at the target path.
func (s *ProfileImageService) Normalize(ctx context.Context, payload NormalizeImagePayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := s.store.Read(payload.SourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// already processed by an earlier attempt
			return nil
		}
		return err
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode %s: %w", payload.SourcePath, err)
	}
	if limit := s.cfg.MaxDimension; limit > 0 {
		img = imaging.Fit(img, limit, limit, imaging.Lanczos)
	}
	bounds := img.Bounds()
	flat := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(s.cfg.JPEGQuality)); err != nil {
		return fmt.Errorf("encode %s: %w", payload.TargetPath, err)
	}
	if _, err := s.store.Save(payload.TargetPath, buf.Bytes()); err != nil {
		return err
	}
	if err := s.store.Delete(payload.SourcePath); err != nil {
		s.logger.Warn("failed to remove original upload", zap.String("path", payload.SourcePath), zap.Error(err))
	}
	s.logger.Info("profile image normalised",
		zap.String("brand_id", payload.BrandID),
		zap.String("path", payload.TargetPath),
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
	)
	return nil
}

func (s *ProfileImageService) enqueue(payload NormalizeImagePayload) bool {
	if s.queue == nil {
		return false
	}
	err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: ProfileImageJobType, Payload: payload})
	if err != nil {
		s.logger.Warn("image queue unavailable, processing inline", zap.String("brand_id", payload.BrandID), zap.Error(err))
		return false
	}
	return true
}
