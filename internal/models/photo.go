package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Upload status values for Photo.UploadStatus.
const (
	UploadStatusPending   = "pending"
	UploadStatusUploaded  = "uploaded"
	UploadStatusProcessed = "processed"
	UploadStatusFailed    = "failed"
)

type Photo struct {
	ID     uuid.UUID
	UserID uuid.UUID

	FileName string
	FilePath string
	FileSize int64
	MimeType string

	// Dedup digests. HashPerceptual is reserved for near-duplicate
	// detection and is never populated.
	HashMD5        sql.NullString
	HashSHA256     sql.NullString
	HashPerceptual sql.NullString

	Width           sql.NullInt64
	Height          sql.NullInt64
	DurationSeconds sql.NullInt64

	// EXIF capture facts, each independently nullable.
	CreatedDate       sql.NullTime
	LocationLatitude  sql.NullString
	LocationLongitude sql.NullString
	CameraModel       sql.NullString

	UploadStatus  string
	HasDuplicates bool
	QualityScore  sql.NullString // reserved, never populated

	UploadedAt  time.Time
	ProcessedAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	ID        uuid.UUID
	Email     string
	FirstName sql.NullString
	LastName  sql.NullString
	AvatarURL sql.NullString
	Bio       sql.NullString

	SubscriptionTier  string
	StorageQuotaBytes int64
	StorageUsedBytes  int64

	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   sql.NullTime
	LastLoginAt sql.NullTime
}
