package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"easyvid-server/modules/common/config"
)

// Client - 이미지 생성 엔드포인트 클라이언트
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewClient - Image 클라이언트 생성
func NewClient() *Client {
	cfg := config.GetConfig()
	return &Client{
		apiKey:   cfg.ImageAPIKey,
		endpoint: cfg.ImageAPIEndpoint,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type imageRequest struct {
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	N       int    `json:"n"`
}

type imageResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// Generate - 프롬프트로 이미지 n장 생성, URL 목록 반환
func (c *Client) Generate(ctx context.Context, prompt, size, quality string, n int) ([]string, error) {
	log.Printf("🎨 [Image] Generating %d image(s): %s", n, truncate(prompt, 60))

	reqBody, err := json.Marshal(imageRequest{
		Prompt:  prompt,
		Size:    size,
		Quality: quality,
		N:       n,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call image API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("image API error (status %d): %s", resp.StatusCode, string(body))
	}

	var imageResp imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&imageResp); err != nil {
		return nil, fmt.Errorf("failed to decode image response: %w", err)
	}

	if len(imageResp.Images) == 0 {
		return nil, fmt.Errorf("image API returned no images")
	}

	urls := make([]string, 0, len(imageResp.Images))
	for _, img := range imageResp.Images {
		urls = append(urls, img.URL)
	}

	log.Printf("✅ [Image] Generated %d image(s)", len(urls))
	return urls, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
