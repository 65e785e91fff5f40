package photo_test

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"photovault-backend/internal/models"
	"photovault-backend/internal/photo"
)

// fakeStore is an in-memory object store honoring the non-overwrite
// contract of the real client.
type fakeStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
	failPaths    map[string]bool
	removeErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
		failPaths:    make(map[string]bool),
	}
}

func (f *fakeStore) Upload(path string, data []byte, contentType string, upsert bool) (string, error) {
	for pattern := range f.failPaths {
		if strings.Contains(path, pattern) {
			return "", errors.New("storage write failed")
		}
	}
	if !upsert {
		if _, exists := f.objects[path]; exists {
			return "", errors.New("object already exists")
		}
	}
	f.objects[path] = data
	f.contentTypes[path] = contentType
	return path, nil
}

func (f *fakeStore) Remove(paths []string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, p := range paths {
		delete(f.objects, p)
		delete(f.contentTypes, p)
	}
	return nil
}

func (f *fakeStore) PublicURL(path string) string {
	return "https://storage.example.com/photos/" + path
}

// List mirrors the Supabase API: one folder level per call, entries
// named relative to the prefix, nested objects surfacing as folder names.
func (f *fakeStore) List(prefix string) ([]string, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	seen := make(map[string]bool)
	var names []string
	for path := range f.objects {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		entry := strings.TrimPrefix(path, prefix)
		if i := strings.Index(entry, "/"); i >= 0 {
			entry = entry[:i]
		}
		if !seen[entry] {
			seen[entry] = true
			names = append(names, entry)
		}
	}
	sort.Strings(names)
	return names, nil
}

// fakeRepo is an in-memory repository enforcing the unique
// (user_id, hash_md5) constraint and the co-located quota accounting.
type fakeRepo struct {
	photos    map[uuid.UUID]*models.Photo
	usedBytes map[uuid.UUID]int64
	insertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		photos:    make(map[uuid.UUID]*models.Photo),
		usedBytes: make(map[uuid.UUID]int64),
	}
}

func (f *fakeRepo) FindByUserAndDigest(userID uuid.UUID, hashMD5 string) (*models.Photo, error) {
	for _, p := range f.photos {
		if p.UserID == userID && p.HashMD5.Valid && p.HashMD5.String == hashMD5 {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) InsertPhoto(p *models.Photo) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, existing := range f.photos {
		if existing.UserID == p.UserID && existing.HashMD5.Valid &&
			existing.HashMD5.String == p.HashMD5.String {
			return fmt.Errorf("%w: unique constraint violation", photo.ErrDuplicatePhoto)
		}
	}
	clone := *p
	f.photos[p.ID] = &clone
	f.usedBytes[p.UserID] += p.FileSize
	return nil
}

func (f *fakeRepo) FindByID(id, userID uuid.UUID) (*models.Photo, error) {
	p, ok := f.photos[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (f *fakeRepo) List(userID uuid.UUID, opts photo.ListOptions) ([]models.Photo, int, error) {
	var owned []models.Photo
	for _, p := range f.photos {
		if p.UserID == userID {
			owned = append(owned, *p)
		}
	}

	compare := func(a, b models.Photo) int {
		switch opts.SortBy {
		case "fileName":
			return strings.Compare(a.FileName, b.FileName)
		case "createdDate":
			return a.CreatedDate.Time.Compare(b.CreatedDate.Time)
		default:
			return a.UploadedAt.Compare(b.UploadedAt)
		}
	}
	asc := opts.SortOrder == "asc"
	sort.Slice(owned, func(i, j int) bool {
		c := compare(owned[i], owned[j])
		if c == 0 {
			c = strings.Compare(owned[i].ID.String(), owned[j].ID.String())
		}
		if asc {
			return c < 0
		}
		return c > 0
	})

	total := len(owned)
	offset := (opts.Page - 1) * opts.PageSize
	if offset >= total {
		return nil, total, nil
	}
	end := offset + opts.PageSize
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

func (f *fakeRepo) DeletePhoto(id, userID uuid.UUID, fileSize int64) (bool, error) {
	p, ok := f.photos[id]
	if !ok || p.UserID != userID {
		return false, nil
	}
	delete(f.photos, id)
	f.usedBytes[userID] -= fileSize
	return true, nil
}

func (f *fakeRepo) IncrementUserStorage(userID uuid.UUID, delta int64) error {
	f.usedBytes[userID] += delta
	return nil
}

func (f *fakeRepo) ListStalePhotos(cutoff time.Time) ([]models.Photo, error) {
	var stale []models.Photo
	for _, p := range f.photos {
		if (p.UploadStatus == models.UploadStatusPending || p.UploadStatus == models.UploadStatusFailed) &&
			p.UploadedAt.Before(cutoff) {
			stale = append(stale, *p)
		}
	}
	return stale, nil
}

func (f *fakeRepo) ListAllPaths() ([]string, error) {
	var paths []string
	for _, p := range f.photos {
		paths = append(paths, p.FilePath)
	}
	return paths, nil
}
