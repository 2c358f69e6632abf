package generatescript

import (
	"context"
	"fmt"
	"log"

	"easyvid-server/modules/common/config"
	"easyvid-server/modules/common/gemini"
)

// scriptPromptTemplate - 스크립트 생성 지시문 (30~60초 분량, 훅 + CTA, 순수 텍스트)
const scriptPromptTemplate = `Create a compelling video script for: %s.

The script should be:
- Engaging and conversational
- 30-60 seconds when spoken
- Include a strong hook at the beginning
- Have a clear call-to-action at the end
- Be suitable for AI voiceover

Return only the script text, no additional formatting or explanations.`

// maxScriptTokens - 출력 토큰 상한
const maxScriptTokens = 300

type Service struct{}

// NewService - Service 생성
func NewService() *Service {
	return &Service{}
}

// GenerateScript - 주제로 나레이션 스크립트 생성 (단일 호출, 길이 검증 없음)
func (s *Service) GenerateScript(ctx context.Context, topic string) (string, error) {
	cfg := config.GetConfig()

	log.Printf("✍️  [GenerateScript] Generating script for topic: %s", topic)

	prompt := fmt.Sprintf(scriptPromptTemplate, topic)

	script, err := gemini.GenerateTextWithRetry(ctx, cfg.GeminiAPIKeys, cfg.GeminiModel, prompt, maxScriptTokens)
	if err != nil {
		return "", fmt.Errorf("script generation failed: %w", err)
	}

	if script == "" {
		return "", fmt.Errorf("script generation returned empty text")
	}

	log.Printf("✅ [GenerateScript] Script generated (%d chars)", len(script))
	return script, nil
}
