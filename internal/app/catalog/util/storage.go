package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrObjectNotFound возвращается при удалении несуществующего blob-а
var ErrObjectNotFound = errors.New("storage object not found")

// StorageClient - HTTP клиент внешнего хранилища изображений
// Провайдер раздаёт публичные файлы по пути
// /storage/v1/object/public/<bucket>/<name>
type StorageClient struct {
	baseURL    string
	bucket     string
	serviceKey string
	httpClient *http.Client
}

// NewStorageClient создает клиент хранилища
// baseURL - корень storage-провайдера, bucket - бакет с изображениями
func NewStorageClient(baseURL, bucket, serviceKey string) *StorageClient {
	return &StorageClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Upload загружает файл и возвращает его публичный URL
func (s *StorageClient) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("storage upload returned %d: %s", resp.StatusCode, string(body))
	}

	return s.PublicURL(name), nil
}

// Delete удаляет blob по имени
// 404 от провайдера означает, что blob-а уже нет - это отдельная ошибка,
// чтобы вызывающий мог отличить её от настоящего сбоя
func (s *StorageClient) Delete(ctx context.Context, name string) error {
	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrObjectNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("storage delete returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// PublicURL возвращает публичный URL blob-а в формате провайдера
func (s *StorageClient) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, name)
}

// URLToName извлекает имя blob-а из публичного URL
// Поддерживаются две формы пути: полная провайдерская
// /storage/v1/object/public/<bucket>/<name> и короткая /<bucket>/<name>
// Возвращает пустую строку, если URL не указывает в наш бакет
func (s *StorageClient) URLToName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	path := strings.TrimPrefix(parsed.Path, "/")

	providerPrefix := "storage/v1/object/public/" + s.bucket + "/"
	if strings.HasPrefix(path, providerPrefix) {
		return strings.TrimPrefix(path, providerPrefix)
	}

	shortPrefix := s.bucket + "/"
	if strings.HasPrefix(path, shortPrefix) {
		return strings.TrimPrefix(path, shortPrefix)
	}

	return ""
}
