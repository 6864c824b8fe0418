package repository

import (
	"bytes"
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// claimsBucket — бакет с фотографиями чеков.
const claimsBucket = "claims"

// SupabaseStorage хранит файлы в Supabase Storage.
type SupabaseStorage struct {
	client *supabase.Client
}

// NewSupabaseStorage создает хранилище файлов поверх Supabase.
func NewSupabaseStorage(url, key string) (*SupabaseStorage, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}

	return &SupabaseStorage{
		client: client,
	}, nil
}

// UploadPhoto загружает фото чека и возвращает публичный URL.
func (s *SupabaseStorage) UploadPhoto(ctx context.Context, name string, data []byte) (string, error) {
	_, err := s.client.Storage.UploadFile(claimsBucket, name, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to upload photo %s: %w", name, err)
	}

	resp := s.client.Storage.GetPublicUrl(claimsBucket, name)
	return resp.SignedURL, nil
}
