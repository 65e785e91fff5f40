package supabase

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"photovault-backend/internal/models"
	"photovault-backend/internal/photo"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

const photoColumns = `id, user_id, file_name, file_path, file_size, mime_type,
	hash_md5, hash_sha256, hash_perceptual, width, height, duration_seconds,
	created_date, location_latitude, location_longitude, camera_model,
	upload_status, has_duplicates, quality_score,
	uploaded_at, processed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPhoto(row rowScanner) (*models.Photo, error) {
	var p models.Photo
	err := row.Scan(
		&p.ID, &p.UserID, &p.FileName, &p.FilePath, &p.FileSize, &p.MimeType,
		&p.HashMD5, &p.HashSHA256, &p.HashPerceptual, &p.Width, &p.Height, &p.DurationSeconds,
		&p.CreatedDate, &p.LocationLatitude, &p.LocationLongitude, &p.CameraModel,
		&p.UploadStatus, &p.HasDuplicates, &p.QualityScore,
		&p.UploadedAt, &p.ProcessedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DatabaseClient) FindByUserAndDigest(userID uuid.UUID, hashMD5 string) (*models.Photo, error) {
	p, err := scanPhoto(d.db.QueryRow(`
		SELECT `+photoColumns+`
		FROM photos
		WHERE user_id = $1 AND hash_md5 = $2
		LIMIT 1
	`, userID, hashMD5))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query photo by digest: %w", err)
	}
	return p, nil
}

// InsertPhoto inserts the record and charges the owner's storage quota in
// one transaction. A unique violation on (user_id, hash_md5) is reported
// as ErrDuplicatePhoto so a lost duplicate-check race behaves like the
// pre-check.
func (d *DatabaseClient) InsertPhoto(p *models.Photo) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO photos (`+photoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`,
		p.ID, p.UserID, p.FileName, p.FilePath, p.FileSize, p.MimeType,
		p.HashMD5, p.HashSHA256, p.HashPerceptual, p.Width, p.Height, p.DurationSeconds,
		p.CreatedDate, p.LocationLatitude, p.LocationLongitude, p.CameraModel,
		p.UploadStatus, p.HasDuplicates, p.QualityScore,
		p.UploadedAt, p.ProcessedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		tx.Rollback()
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %v", photo.ErrDuplicatePhoto, err)
		}
		return fmt.Errorf("failed to insert photo: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE users
		SET storage_used_bytes = storage_used_bytes + $2, updated_at = NOW()
		WHERE id = $1
	`, p.UserID, p.FileSize); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update storage usage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit photo insert: %w", err)
	}
	return nil
}

func (d *DatabaseClient) FindByID(id, userID uuid.UUID) (*models.Photo, error) {
	p, err := scanPhoto(d.db.QueryRow(`
		SELECT `+photoColumns+`
		FROM photos
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query photo: %w", err)
	}
	return p, nil
}

var sortColumns = map[string]string{
	"uploadedAt":  "uploaded_at",
	"createdDate": "created_date",
	"fileName":    "file_name",
}

// List returns one page of the user's photos plus the total count. The
// record id breaks sort-key ties so pagination stays deterministic.
func (d *DatabaseClient) List(userID uuid.UUID, opts photo.ListOptions) ([]models.Photo, int, error) {
	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = "uploaded_at"
	}
	direction := "DESC"
	if opts.SortOrder == "asc" {
		direction = "ASC"
	}

	var total int
	if err := d.db.QueryRow(`
		SELECT COUNT(*) FROM photos WHERE user_id = $1
	`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count photos: %w", err)
	}

	offset := (opts.Page - 1) * opts.PageSize
	rows, err := d.db.Query(fmt.Sprintf(`
		SELECT `+photoColumns+`
		FROM photos
		WHERE user_id = $1
		ORDER BY %s %s, id %s
		LIMIT $2 OFFSET $3
	`, column, direction, direction), userID, opts.PageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read photos: %w", err)
	}

	return photos, total, nil
}

// DeletePhoto removes the row and refunds the quota charge in one
// transaction. Returns false when no row matched (missing or not owned).
func (d *DatabaseClient) DeletePhoto(id, userID uuid.UUID, fileSize int64) (bool, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	result, err := tx.Exec(`
		DELETE FROM photos WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to delete photo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return false, nil
	}

	if _, err := tx.Exec(`
		UPDATE users
		SET storage_used_bytes = GREATEST(storage_used_bytes - $2, 0), updated_at = NOW()
		WHERE id = $1
	`, userID, fileSize); err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to update storage usage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit photo delete: %w", err)
	}
	return true, nil
}

func (d *DatabaseClient) IncrementUserStorage(userID uuid.UUID, delta int64) error {
	_, err := d.db.Exec(`
		UPDATE users
		SET storage_used_bytes = GREATEST(storage_used_bytes + $2, 0), updated_at = NOW()
		WHERE id = $1
	`, userID, delta)
	if err != nil {
		return fmt.Errorf("failed to update storage usage: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListStalePhotos(cutoff time.Time) ([]models.Photo, error) {
	rows, err := d.db.Query(`
		SELECT `+photoColumns+`
		FROM photos
		WHERE upload_status IN ($1, $2) AND uploaded_at < $3
	`, models.UploadStatusPending, models.UploadStatusFailed, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale photos: %w", err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

func (d *DatabaseClient) ListAllPaths() ([]string, error) {
	rows, err := d.db.Query(`SELECT file_path FROM photos`)
	if err != nil {
		return nil, fmt.Errorf("failed to list photo paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

func (d *DatabaseClient) GetUser(id uuid.UUID) (*models.User, error) {
	var u models.User
	err := d.db.QueryRow(`
		SELECT id, email, first_name, last_name, avatar_url, bio,
			subscription_tier, storage_quota_bytes, storage_used_bytes,
			is_active, created_at, updated_at, deleted_at, last_login_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.AvatarURL, &u.Bio,
		&u.SubscriptionTier, &u.StorageQuotaBytes, &u.StorageUsedBytes,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt, &u.LastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// UpsertUser creates the profile row for a newly registered identity, or
// refreshes last_login_at for an existing one.
func (d *DatabaseClient) UpsertUser(id uuid.UUID, email string) (*models.User, error) {
	_, err := d.db.Exec(`
		INSERT INTO users (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET last_login_at = NOW(), updated_at = NOW()
	`, id, email)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return d.GetUser(id)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
