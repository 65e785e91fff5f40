package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"photovault-backend/internal/middleware"
	"photovault-backend/internal/models"
	"photovault-backend/internal/photo"
)

type PhotosHandler struct {
	service        *photo.Service
	maxUploadBytes int64
}

func NewPhotosHandler(service *photo.Service, maxUploadBytes int64) *PhotosHandler {
	return &PhotosHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "user not authenticated")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "invalid user id")
		return uuid.Nil, false
	}
	return userID, true
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error:   models.ErrorBody{Code: code, Message: message},
	})
}

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, photo.ErrInvalidFileType):
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", photo.ErrInvalidFileType.Error())
	case errors.Is(err, photo.ErrDuplicatePhoto):
		respondError(c, http.StatusConflict, "DUPLICATE_PHOTO", photo.ErrDuplicatePhoto.Error())
	case errors.Is(err, photo.ErrPhotoNotFound):
		respondError(c, http.StatusNotFound, "PHOTO_NOT_FOUND", photo.ErrPhotoNotFound.Error())
	case errors.Is(err, photo.ErrUploadFailed):
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", photo.ErrUploadFailed.Error())
	case errors.Is(err, photo.ErrQuotaExceeded):
		respondError(c, http.StatusForbidden, "STORAGE_QUOTA_EXCEEDED", photo.ErrQuotaExceeded.Error())
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
	}
}

// Upload godoc
// @Summary     Upload a photo
// @Description Accepts one image file in the "photo" multipart field, deduplicates it, extracts metadata, generates thumbnails and records it.
// @Tags        photos
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       photo formData file true "Image file"
// @Success     201 {object} models.SuccessResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /photos/upload [post]
func (h *PhotosHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "NO_FILE", "no file was uploaded")
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE", "file exceeds the maximum upload size")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "FILE_READ_ERROR", "failed to open uploaded file")
		return
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		respondError(c, http.StatusBadRequest, "FILE_READ_ERROR", "failed to read uploaded file")
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	p, err := h.service.Upload(userID, fileHeader.Filename, mimeType, data)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Success: true,
		Data:    models.NewPhotoResponse(p),
	})
}

// List godoc
// @Summary     List photos
// @Description Returns one page of the authenticated user's photos.
// @Tags        photos
// @Produce     json
// @Security    Bearer
// @Param       page query int false "Page number (default 1)"
// @Param       limit query int false "Page size (default 20, max 100)"
// @Param       sortBy query string false "uploadedAt, createdDate or fileName"
// @Param       sortOrder query string false "asc or desc"
// @Success     200 {object} models.PhotoListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /photos [get]
func (h *PhotosHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.service.List(userID, photo.ListOptions{
		Page:      page,
		PageSize:  limit,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	photos := make([]models.PhotoResponse, len(result.Photos))
	for i := range result.Photos {
		photos[i] = models.NewPhotoResponse(&result.Photos[i])
	}

	c.JSON(http.StatusOK, models.PhotoListResponse{
		Success: true,
		Data:    photos,
		Pagination: models.Pagination{
			Page:    result.Page,
			Limit:   result.Limit,
			Total:   result.Total,
			HasMore: result.HasMore,
		},
	})
}

// Get godoc
// @Summary     Get a photo
// @Tags        photos
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Photo ID (UUID)"
// @Success     200 {object} models.SuccessResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /photos/{id} [get]
func (h *PhotosHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PHOTO_ID", "invalid photo id")
		return
	}

	p, err := h.service.GetByID(photoID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    models.NewPhotoResponse(p),
	})
}

// Delete godoc
// @Summary     Delete a photo
// @Description Removes the photo record, its blobs and the quota charge.
// @Tags        photos
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Photo ID (UUID)"
// @Success     200 {object} models.SuccessResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /photos/{id} [delete]
func (h *PhotosHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PHOTO_ID", "invalid photo id")
		return
	}

	if err := h.service.Delete(photoID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "photo deleted successfully",
	})
}

// Thumbnail godoc
// @Summary     Redirect to a thumbnail rendition
// @Description Redirects to the storage URL of the requested size. The blob itself is not verified; a missing rendition 404s at the storage side.
// @Tags        photos
// @Security    Bearer
// @Param       id path string true "Photo ID (UUID)"
// @Param       size query string false "thumb, preview or web (default thumb)"
// @Success     302
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /photos/{id}/thumbnail [get]
func (h *PhotosHandler) Thumbnail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PHOTO_ID", "invalid photo id")
		return
	}

	size := c.Query("size")
	if size != "" && !photo.IsThumbnailSize(size) {
		respondError(c, http.StatusBadRequest, "INVALID_THUMBNAIL_SIZE", "invalid thumbnail size")
		return
	}

	url, err := h.service.ThumbnailURL(photoID, userID, size)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, url)
}
