package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"easyvid-server/modules/common/config"
)

// Bucket - 생성 산출물이 저장되는 Supabase Storage 버킷
const Bucket = "videos"

type Client struct {
	httpClient *http.Client
}

// NewClient - Storage 클라이언트 생성
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Upload - Supabase Storage에 바이너리 업로드 후 public URL 반환
// path는 버킷 내 키 (버킷 이름 미포함). upsert=true면 같은 경로를
// 덮어쓴다 (재생성 시 기존 산출물 교체).
func (c *Client) Upload(ctx context.Context, data []byte, path string, contentType string, upsert bool) (string, error) {
	cfg := config.GetConfig()

	log.Printf("📤 Uploading to storage: %s (%d bytes, %s)", path, len(data), contentType)

	// Supabase Storage API URL
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", cfg.SupabaseURL, Bucket, path)

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+cfg.SupabaseServiceKey)
	req.Header.Set("Content-Type", contentType)
	if upsert {
		req.Header.Set("x-upsert", "true")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	publicURL := c.PublicURL(path)
	log.Printf("✅ Uploaded: %s", publicURL)
	return publicURL, nil
}

// PublicURL - 업로드된 객체의 공개 접근 URL
func (c *Client) PublicURL(path string) string {
	cfg := config.GetConfig()
	if cfg.SupabaseStorageBaseURL != "" {
		return cfg.SupabaseStorageBaseURL + path
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", cfg.SupabaseURL, Bucket, path)
}

// Download - URL에서 바이너리 다운로드 (음성 합성 결과 수집용)
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	log.Printf("📥 Downloading: %s", url)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("download failed with status %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	log.Printf("✅ Downloaded %d bytes", len(data))
	return data, nil
}
