package photo

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"photovault-backend/internal/models"
)

// ObjectStore is the blob-storage contract the service consumes. Upload
// with upsert=false must fail when the path already exists. List returns
// only the entries directly under prefix, named relative to it: nested
// objects appear as folder names and callers descend level by level.
type ObjectStore interface {
	Upload(path string, data []byte, contentType string, upsert bool) (string, error)
	Remove(paths []string) error
	PublicURL(path string) string
	List(prefix string) ([]string, error)
}

// Repository is the relational contract. InsertPhoto must enforce the
// unique (user_id, hash_md5) constraint and return ErrDuplicatePhoto on
// violation; InsertPhoto and DeletePhoto update the owner's
// storage_used_bytes in the same transaction as the row change.
type Repository interface {
	FindByUserAndDigest(userID uuid.UUID, hashMD5 string) (*models.Photo, error)
	InsertPhoto(p *models.Photo) error
	FindByID(id, userID uuid.UUID) (*models.Photo, error)
	List(userID uuid.UUID, opts ListOptions) ([]models.Photo, int, error)
	DeletePhoto(id, userID uuid.UUID, fileSize int64) (bool, error)
	IncrementUserStorage(userID uuid.UUID, delta int64) error
	ListStalePhotos(cutoff time.Time) ([]models.Photo, error)
	ListAllPaths() ([]string, error)
}

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

type ListOptions struct {
	Page      int
	PageSize  int
	SortBy    string // uploadedAt, createdDate or fileName
	SortOrder string // asc or desc
}

type ListResult struct {
	Photos  []models.Photo
	Page    int
	Limit   int
	Total   int
	HasMore bool
}

type Service struct {
	repo  Repository
	store ObjectStore
}

func NewService(repo Repository, store ObjectStore) *Service {
	return &Service{
		repo:  repo,
		store: store,
	}
}

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// buildStoragePath derives a collision-resistant path from the owner, a
// millisecond timestamp and the sanitized original filename.
func buildStoragePath(userID uuid.UUID, fileName string) string {
	sanitized := unsafePathChars.ReplaceAllString(fileName, "_")
	return fmt.Sprintf("%s/%d-%s", userID.String(), time.Now().UnixMilli(), sanitized)
}

// Upload runs the full pipeline: type check, digests, duplicate check,
// metadata extraction, blob upload, thumbnail renditions and the
// transactional record insert with quota accounting. Failures before the
// blob upload leave no side effects; failures between the blob upload and
// the insert leave orphaned blobs that the reconciler removes.
func (s *Service) Upload(userID uuid.UUID, fileName, mimeType string, data []byte) (*models.Photo, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, ErrInvalidFileType
	}

	digests := ComputeDigests(data)

	existing, err := s.repo.FindByUserAndDigest(userID, digests.MD5)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicatePhoto
	}

	meta, err := ExtractMetadata(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFileType, err)
	}

	filePath := buildStoragePath(userID, fileName)

	storedPath, err := s.store.Upload(filePath, data, mimeType, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	s.generateThumbnails(storedPath, data)

	now := time.Now()
	p := &models.Photo{
		ID:           uuid.New(),
		UserID:       userID,
		FileName:     fileName,
		FilePath:     storedPath,
		FileSize:     int64(len(data)),
		MimeType:     mimeType,
		HashMD5:      sql.NullString{String: digests.MD5, Valid: true},
		HashSHA256:   sql.NullString{String: digests.SHA256, Valid: true},
		Width:        sql.NullInt64{Int64: int64(meta.Width), Valid: true},
		Height:       sql.NullInt64{Int64: int64(meta.Height), Valid: true},
		UploadStatus: models.UploadStatusUploaded,
		UploadedAt:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if meta.Capture.Timestamp != nil {
		p.CreatedDate = sql.NullTime{Time: *meta.Capture.Timestamp, Valid: true}
	} else {
		p.CreatedDate = sql.NullTime{Time: now, Valid: true}
	}
	if meta.Capture.Latitude != "" {
		p.LocationLatitude = sql.NullString{String: meta.Capture.Latitude, Valid: true}
	}
	if meta.Capture.Longitude != "" {
		p.LocationLongitude = sql.NullString{String: meta.Capture.Longitude, Valid: true}
	}
	if meta.Capture.CameraModel != "" {
		p.CameraModel = sql.NullString{String: meta.Capture.CameraModel, Valid: true}
	}

	if err := s.repo.InsertPhoto(p); err != nil {
		// A concurrent upload of the same bytes can slip past the
		// pre-check; the unique index resolves the race.
		if errors.Is(err, ErrDuplicatePhoto) {
			return nil, ErrDuplicatePhoto
		}
		return nil, fmt.Errorf("failed to save photo record: %w", err)
	}

	return p, nil
}

// generateThumbnails writes each rendition next to the original. Every
// size is independent: a failed resize or write is logged and skipped.
func (s *Service) generateThumbnails(filePath string, data []byte) {
	for _, size := range ThumbnailSizes {
		thumb, err := GenerateThumbnail(data, size)
		if err != nil {
			log.Printf("failed to generate %s thumbnail for %s: %v", size.Name, filePath, err)
			continue
		}
		if _, err := s.store.Upload(ThumbnailPath(filePath, size.Name), thumb, "image/jpeg", true); err != nil {
			log.Printf("failed to store %s thumbnail for %s: %v", size.Name, filePath, err)
		}
	}
}

// GetByID returns the photo only when owned by userID. Non-existence and
// ownership mismatch are indistinguishable to the caller.
func (s *Service) GetByID(photoID, userID uuid.UUID) (*models.Photo, error) {
	p, err := s.repo.FindByID(photoID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up photo: %w", err)
	}
	if p == nil {
		return nil, ErrPhotoNotFound
	}
	return p, nil
}

func (s *Service) List(userID uuid.UUID, opts ListOptions) (*ListResult, error) {
	if opts.Page < 1 {
		opts.Page = defaultPage
	}
	if opts.PageSize < 1 {
		opts.PageSize = defaultPageSize
	}
	if opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}
	switch opts.SortBy {
	case "uploadedAt", "createdDate", "fileName":
	default:
		opts.SortBy = "uploadedAt"
	}
	if opts.SortOrder != "asc" {
		opts.SortOrder = "desc"
	}

	photos, total, err := s.repo.List(userID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	offset := (opts.Page - 1) * opts.PageSize
	return &ListResult{
		Photos:  photos,
		Page:    opts.Page,
		Limit:   opts.PageSize,
		Total:   total,
		HasMore: offset+len(photos) < total,
	}, nil
}

// Delete removes the blobs best-effort, then the row and the quota
// charge atomically. The record is the authoritative existence marker,
// so storage errors never abort the deletion.
func (s *Service) Delete(photoID, userID uuid.UUID) error {
	p, err := s.GetByID(photoID, userID)
	if err != nil {
		return err
	}

	paths := append([]string{p.FilePath}, ThumbnailPaths(p.FilePath)...)
	if err := s.store.Remove(paths); err != nil {
		log.Printf("failed to delete storage objects for photo %s: %v", p.ID, err)
	}

	deleted, err := s.repo.DeletePhoto(photoID, userID, p.FileSize)
	if err != nil {
		return fmt.Errorf("failed to delete photo record: %w", err)
	}
	if !deleted {
		return ErrPhotoNotFound
	}
	return nil
}

// ThumbnailURL resolves ownership and returns the public URL of the
// requested rendition. The blob's existence is not verified. Size must
// name a generated rendition; callers validate it before lookups.
func (s *Service) ThumbnailURL(photoID, userID uuid.UUID, size string) (string, error) {
	if size == "" {
		size = "thumb"
	}
	if !IsThumbnailSize(size) {
		return "", fmt.Errorf("unknown thumbnail size %q", size)
	}

	p, err := s.GetByID(photoID, userID)
	if err != nil {
		return "", err
	}
	return s.store.PublicURL(ThumbnailPath(p.FilePath, size)), nil
}
