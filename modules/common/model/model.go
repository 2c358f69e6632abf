package model

import (
	"time"
	"unicode/utf8"
)

// VideoProject - video_projects 테이블 구조
type VideoProject struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Script           *string   `json:"script"`
	VoiceID          *string   `json:"voice_id"`
	TemplateID       *string   `json:"template_id"`
	Status           string    `json:"status"`
	VideoManifestURL *string   `json:"video_manifest_url"`
	ThumbnailURL     *string   `json:"thumbnail_url"`
	Duration         int       `json:"duration"` // 초 단위
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// VideoTemplate - video_templates 테이블 구조 (카탈로그, 읽기 전용)
type VideoTemplate struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	Category     *string   `json:"category"`
	Duration     int       `json:"duration"` // 권장 길이 (초)
	CreatedAt    time.Time `json:"created_at"`
}

// VideoManifest - 생성된 비디오 자산 목록 (videos/{projectId}/video_data.json)
// 슬라이드쇼 이미지 5장 + 나레이션 오디오로 구성된다. 실제 mp4는 만들지 않는다.
type VideoManifest struct {
	AudioURL   string   `json:"audioUrl"`
	Images     []string `json:"images"`
	Script     string   `json:"script"`
	VoiceID    string   `json:"voiceId"`
	TemplateID string   `json:"templateId"`
	Duration   int      `json:"duration"`
}

// 프로젝트 라이프사이클 상태
const (
	StatusDraft      = "draft"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// SlideCount - 한 비디오당 생성되는 슬라이드 이미지 수 (manifest images 순서 고정)
const SlideCount = 5

// Voice - 나레이션 보이스 카탈로그 항목
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Voices - 지원하는 나레이션 보이스 목록
var Voices = []Voice{
	{ID: "alloy", Name: "Alloy", Description: "Neutral, balanced voice"},
	{ID: "echo", Name: "Echo", Description: "Clear, professional voice"},
	{ID: "fable", Name: "Fable", Description: "Warm, storytelling voice"},
	{ID: "onyx", Name: "Onyx", Description: "Deep, authoritative voice"},
	{ID: "nova", Name: "Nova", Description: "Bright, energetic voice"},
	{ID: "shimmer", Name: "Shimmer", Description: "Smooth, elegant voice"},
}

// IsValidVoice - 보이스 ID가 카탈로그에 있는지 확인
func IsValidVoice(voiceID string) bool {
	for _, v := range Voices {
		if v.ID == voiceID {
			return true
		}
	}
	return false
}

// EstimateDuration - 스크립트 길이 기반 재생 시간 추정 (약 15자 = 1초)
// 실제 오디오 길이가 아니라 고정 휴리스틱이다. 멀티바이트 스크립트에서
// 길이가 부풀지 않도록 바이트가 아니라 문자(rune) 수를 센다.
func EstimateDuration(script string) int {
	n := utf8.RuneCountInString(script)
	if n == 0 {
		return 0
	}
	return (n + 14) / 15
}

// AudioPath - 나레이션 오디오의 버킷 내 키 (버킷 이름은 storage가 붙인다)
func AudioPath(projectID string) string {
	return projectID + "/audio.mp3"
}

// ManifestPath - manifest JSON의 버킷 내 키
func ManifestPath(projectID string) string {
	return projectID + "/video_data.json"
}
