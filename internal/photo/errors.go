package photo

import "errors"

// Error kinds surfaced by the photo service. Handlers map these to HTTP
// status codes with errors.Is; anything else is treated as internal.
var (
	ErrInvalidFileType = errors.New("only image files are allowed")
	ErrDuplicatePhoto  = errors.New("this photo has already been uploaded")
	ErrUploadFailed    = errors.New("failed to upload photo to storage")
	ErrPhotoNotFound   = errors.New("photo not found")

	// ErrQuotaExceeded is reserved. Quota enforcement is not active yet,
	// so the upload pipeline never returns it.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)
