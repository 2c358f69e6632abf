package speech

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

// Client - 음성 합성 엔드포인트 클라이언트
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewClient - Speech 클라이언트 생성
func NewClient() *Client {
	cfg := config.GetConfig()
	return &Client{
		apiKey:   cfg.SpeechAPIKey,
		endpoint: cfg.SpeechAPIEndpoint,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type speechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type speechResponse struct {
	URL string `json:"url"`
}

// Generate - 스크립트를 나레이션 오디오로 합성하고 소스 URL 반환
// voice는 카탈로그 검증 없이 그대로 전달한다 (엔드포인트가 해석).
func (c *Client) Generate(ctx context.Context, text, voice string) (string, error) {
	log.Printf("🎙️  [Speech] Generating narration (voice: %s, %d chars)", voice, len(text))

	reqBody, err := json.Marshal(speechRequest{Text: text, Voice: voice})
	if err != nil {
		return "", fmt.Errorf("failed to marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create speech request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call speech API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("speech API error (status %d): %s", resp.StatusCode, string(body))
	}

	var speechResp speechResponse
	if err := json.NewDecoder(resp.Body).Decode(&speechResp); err != nil {
		return "", fmt.Errorf("failed to decode speech response: %w", err)
	}

	if speechResp.URL == "" {
		return "", fmt.Errorf("speech API returned empty audio URL")
	}

	log.Printf("✅ [Speech] Narration ready: %s", speechResp.URL)
	return speechResp.URL, nil
}
