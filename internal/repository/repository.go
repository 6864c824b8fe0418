package repository

import "context"

// BlobStore — хранилище файлов, прикладываемых к заявкам.
type BlobStore interface {
	// UploadPhoto сохраняет фото чека и возвращает публичный URL.
	UploadPhoto(ctx context.Context, name string, data []byte) (string, error)
}
