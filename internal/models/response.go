package models

import "time"

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type PhotoResponse struct {
	ID            string     `json:"id"`
	FileName      string     `json:"file_name"`
	FileSize      int64      `json:"file_size"`
	MimeType      string     `json:"mime_type"`
	Width         *int64     `json:"width,omitempty"`
	Height        *int64     `json:"height,omitempty"`
	CreatedDate   *time.Time `json:"created_date,omitempty"`
	Latitude      string     `json:"location_latitude,omitempty"`
	Longitude     string     `json:"location_longitude,omitempty"`
	CameraModel   string     `json:"camera_model,omitempty"`
	UploadStatus  string     `json:"upload_status"`
	HasDuplicates bool       `json:"has_duplicates"`
	UploadedAt    time.Time  `json:"uploaded_at"`
	ThumbnailURL  string     `json:"thumbnail_url"`
}

// NewPhotoResponse flattens the nullable DB columns for the API. The
// digest columns are deliberately omitted from responses.
func NewPhotoResponse(p *Photo) PhotoResponse {
	resp := PhotoResponse{
		ID:            p.ID.String(),
		FileName:      p.FileName,
		FileSize:      p.FileSize,
		MimeType:      p.MimeType,
		UploadStatus:  p.UploadStatus,
		HasDuplicates: p.HasDuplicates,
		UploadedAt:    p.UploadedAt,
		ThumbnailURL:  "/api/v1/photos/" + p.ID.String() + "/thumbnail",
	}
	if p.Width.Valid {
		w := p.Width.Int64
		resp.Width = &w
	}
	if p.Height.Valid {
		h := p.Height.Int64
		resp.Height = &h
	}
	if p.CreatedDate.Valid {
		t := p.CreatedDate.Time
		resp.CreatedDate = &t
	}
	if p.LocationLatitude.Valid {
		resp.Latitude = p.LocationLatitude.String
	}
	if p.LocationLongitude.Valid {
		resp.Longitude = p.LocationLongitude.String
	}
	if p.CameraModel.Valid {
		resp.CameraModel = p.CameraModel.String
	}
	return resp
}

type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

type PhotoListResponse struct {
	Success    bool            `json:"success"`
	Data       []PhotoResponse `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

type UserResponse struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	SubscriptionTier  string `json:"subscription_tier"`
	StorageQuotaBytes int64  `json:"storage_quota_bytes"`
	StorageUsedBytes  int64  `json:"storage_used_bytes"`
}

func NewUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:                u.ID.String(),
		Email:             u.Email,
		SubscriptionTier:  u.SubscriptionTier,
		StorageQuotaBytes: u.StorageQuotaBytes,
		StorageUsedBytes:  u.StorageUsedBytes,
	}
	if u.FirstName.Valid {
		resp.FirstName = u.FirstName.String
	}
	if u.LastName.Valid {
		resp.LastName = u.LastName.String
	}
	return resp
}

type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
