package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photovault-backend/internal/handlers"
	"photovault-backend/internal/middleware"
	"photovault-backend/internal/models"
	"photovault-backend/internal/photo"
)

// memStore and memRepo are just enough of the service contracts to drive
// the handlers end to end without Supabase or Postgres.
type memStore struct {
	objects map[string][]byte
}

func (m *memStore) Upload(path string, data []byte, contentType string, upsert bool) (string, error) {
	if !upsert {
		if _, ok := m.objects[path]; ok {
			return "", errors.New("object already exists")
		}
	}
	m.objects[path] = data
	return path, nil
}

func (m *memStore) Remove(paths []string) error {
	for _, p := range paths {
		delete(m.objects, p)
	}
	return nil
}

func (m *memStore) PublicURL(path string) string {
	return "https://storage.example.com/photos/" + path
}

// List follows the storage API contract: one folder level per call,
// entries named relative to the prefix.
func (m *memStore) List(prefix string) ([]string, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	seen := make(map[string]bool)
	var names []string
	for p := range m.objects {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		entry := strings.TrimPrefix(p, prefix)
		if i := strings.Index(entry, "/"); i >= 0 {
			entry = entry[:i]
		}
		if !seen[entry] {
			seen[entry] = true
			names = append(names, entry)
		}
	}
	return names, nil
}

type memRepo struct {
	photos map[uuid.UUID]*models.Photo
	used   map[uuid.UUID]int64
}

func (m *memRepo) FindByUserAndDigest(userID uuid.UUID, hashMD5 string) (*models.Photo, error) {
	for _, p := range m.photos {
		if p.UserID == userID && p.HashMD5.String == hashMD5 {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memRepo) InsertPhoto(p *models.Photo) error {
	for _, existing := range m.photos {
		if existing.UserID == p.UserID && existing.HashMD5.String == p.HashMD5.String {
			return fmt.Errorf("%w: unique violation", photo.ErrDuplicatePhoto)
		}
	}
	m.photos[p.ID] = p
	m.used[p.UserID] += p.FileSize
	return nil
}

func (m *memRepo) FindByID(id, userID uuid.UUID) (*models.Photo, error) {
	p, ok := m.photos[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	return p, nil
}

func (m *memRepo) List(userID uuid.UUID, opts photo.ListOptions) ([]models.Photo, int, error) {
	var owned []models.Photo
	for _, p := range m.photos {
		if p.UserID == userID {
			owned = append(owned, *p)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].FileName < owned[j].FileName })
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

func (m *memRepo) DeletePhoto(id, userID uuid.UUID, fileSize int64) (bool, error) {
	p, ok := m.photos[id]
	if !ok || p.UserID != userID {
		return false, nil
	}
	delete(m.photos, id)
	m.used[userID] -= fileSize
	return true, nil
}

func (m *memRepo) IncrementUserStorage(userID uuid.UUID, delta int64) error {
	m.used[userID] += delta
	return nil
}

func (m *memRepo) ListStalePhotos(cutoff time.Time) ([]models.Photo, error) {
	return nil, nil
}

func (m *memRepo) ListAllPaths() ([]string, error) {
	return nil, nil
}

func newPhotosRouter(userID uuid.UUID) (*gin.Engine, *memRepo, *memStore) {
	gin.SetMode(gin.TestMode)
	repo := &memRepo{photos: make(map[uuid.UUID]*models.Photo), used: make(map[uuid.UUID]int64)}
	store := &memStore{objects: make(map[string][]byte)}
	h := handlers.NewPhotosHandler(photo.NewService(repo, store), 32<<20)

	router := gin.New()
	group := router.Group("/api/v1/photos")
	group.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID.String())
	})
	group.POST("/upload", h.Upload)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.GET("/:id/thumbnail", h.Thumbnail)
	group.DELETE("/:id", h.Delete)
	return router, repo, store
}

func pngBody(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	img.Set(3, 3, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartUpload(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestUploadHandler_Success(t *testing.T) {
	router, repo, store := newPhotosRouter(uuid.New())
	body, contentType := multipartUpload(t, "cat.png", "image/png", pngBody(t))

	req, _ := http.NewRequest("POST", "/api/v1/photos/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), "cat.png")
	assert.Len(t, repo.photos, 1)
	// Original + three renditions.
	assert.Len(t, store.objects, 4)
}

func TestUploadHandler_NoFile(t *testing.T) {
	router, repo, _ := newPhotosRouter(uuid.New())

	req, _ := http.NewRequest("POST", "/api/v1/photos/upload", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "NO_FILE")
	assert.Empty(t, repo.photos)
}

func TestUploadHandler_Duplicate(t *testing.T) {
	router, _, _ := newPhotosRouter(uuid.New())
	data := pngBody(t)

	for i, wantCode := range []int{http.StatusCreated, http.StatusConflict} {
		body, contentType := multipartUpload(t, "cat.png", "image/png", data)
		req, _ := http.NewRequest("POST", "/api/v1/photos/upload", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, wantCode, w.Code, "attempt %d", i+1)
	}
}

func TestUploadHandler_NonImage(t *testing.T) {
	router, repo, store := newPhotosRouter(uuid.New())
	body, contentType := multipartUpload(t, "notes.txt", "text/plain", []byte("plain text"))

	req, _ := http.NewRequest("POST", "/api/v1/photos/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_FILE_TYPE")
	assert.Empty(t, repo.photos)
	assert.Empty(t, store.objects)
}

func TestListHandler(t *testing.T) {
	userID := uuid.New()
	router, _, _ := newPhotosRouter(userID)

	img := pngBody(t)
	body, contentType := multipartUpload(t, "one.png", "image/png", img)
	req, _ := http.NewRequest("POST", "/api/v1/photos/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req, _ = http.NewRequest("GET", "/api/v1/photos?page=1&limit=10", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.PhotoListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "one.png", resp.Data[0].FileName)
	assert.Equal(t, 1, resp.Pagination.Total)
	assert.False(t, resp.Pagination.HasMore)
}

func TestGetHandler_InvalidID(t *testing.T) {
	router, _, _ := newPhotosRouter(uuid.New())

	req, _ := http.NewRequest("GET", "/api/v1/photos/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_PHOTO_ID")
}

func TestGetHandler_NotFound(t *testing.T) {
	router, _, _ := newPhotosRouter(uuid.New())

	req, _ := http.NewRequest("GET", "/api/v1/photos/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PHOTO_NOT_FOUND")
}

func TestThumbnailHandler_Redirect(t *testing.T) {
	router, repo, _ := newPhotosRouter(uuid.New())

	body, contentType := multipartUpload(t, "cat.png", "image/png", pngBody(t))
	req, _ := http.NewRequest("POST", "/api/v1/photos/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var id uuid.UUID
	for pid := range repo.photos {
		id = pid
	}

	req, _ = http.NewRequest("GET", "/api/v1/photos/"+id.String()+"/thumbnail?size=preview", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "_preview.jpg")
}

func TestThumbnailHandler_InvalidSize(t *testing.T) {
	router, _, _ := newPhotosRouter(uuid.New())

	req, _ := http.NewRequest("GET", "/api/v1/photos/"+uuid.NewString()+"/thumbnail?size=giant", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_THUMBNAIL_SIZE")
}

func TestDeleteHandler(t *testing.T) {
	router, repo, store := newPhotosRouter(uuid.New())

	body, contentType := multipartUpload(t, "cat.png", "image/png", pngBody(t))
	req, _ := http.NewRequest("POST", "/api/v1/photos/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var id uuid.UUID
	for pid := range repo.photos {
		id = pid
	}

	req, _ = http.NewRequest("DELETE", "/api/v1/photos/"+id.String(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.photos)
	assert.Empty(t, store.objects)

	// Deleting again is indistinguishable from a missing photo.
	req, _ = http.NewRequest("DELETE", "/api/v1/photos/"+id.String(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
