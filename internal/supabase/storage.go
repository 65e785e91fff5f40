package supabase

import (
	"bytes"
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient wraps the Supabase storage API behind the object-store
// contract the photo service consumes.
type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) (*StorageClient, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// Cache-Control max-age, in seconds, applied to every stored object.
const cacheControlSeconds = "3600"

// Upload writes data to path. With upsert=false the write fails when the
// path already exists, which the pipeline relies on to detect path
// collisions; thumbnail writes pass upsert=true so retries are idempotent.
func (s *StorageClient) Upload(path string, data []byte, contentType string, upsert bool) (string, error) {
	cacheControl := cacheControlSeconds
	_, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return path, nil
}

// Remove deletes the given objects in one call. Missing paths are not an
// error on the Supabase side, which suits the best-effort delete policy.
func (s *StorageClient) Remove(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := s.client.RemoveFile(s.bucket, paths)
	if err != nil {
		return fmt.Errorf("failed to remove objects: %w", err)
	}
	return nil
}

func (s *StorageClient) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, path)
}

// List returns the entries directly under prefix, named relative to it.
// The Supabase API lists one folder level per call, so nested objects
// surface as bare folder names; callers descend prefix by prefix. Pages
// through the per-call result limit.
func (s *StorageClient) List(prefix string) ([]string, error) {
	const pageSize = 1000

	var names []string
	for offset := 0; ; offset += pageSize {
		files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
			Limit:  pageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, err)
		}
		for _, f := range files {
			names = append(names, f.Name)
		}
		if len(files) < pageSize {
			break
		}
	}
	return names, nil
}
