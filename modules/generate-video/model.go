package generatevideo

import "fmt"

// GenerateRequest - POST /api/generate-video 요청
type GenerateRequest struct {
	ProjectID  string `json:"projectId"`
	Script     string `json:"script"`
	VoiceID    string `json:"voiceId"`
	TemplateID string `json:"templateId"`
}

// GenerateResponse - 생성 결과 응답 (manifest URL은 manifest.audioUrl처럼
// 별도 필드가 아니라 프로젝트 레코드의 video_manifest_url로 조회한다)
type GenerateResponse struct {
	Success  bool        `json:"success"`
	Error    string      `json:"error,omitempty"`
	Manifest interface{} `json:"manifest,omitempty"`
}

// SlidePrompts - 슬라이드 이미지 생성 프롬프트 (순서 고정, 첫 장이 썸네일)
// 스크립트 내용과 무관한 범용 프롬프트를 쓴다.
var SlidePrompts = []string{
	"Professional business presentation slide with modern design, clean background",
	"Corporate office environment with professional lighting",
	"Modern technology and innovation concept with sleek design",
	"Professional team collaboration in modern workspace",
	"Success and growth visualization with charts and graphs",
}

// 이미지 생성 파라미터
const (
	ImageSize    = "1024x1024"
	ImageQuality = "high"
)

// 진행 단계 이름 (스테이지 경계마다 observer 호출)
const (
	StagePreparing     = "preparing"
	StageVoiceover     = "voiceover"
	StageImages        = "images"
	StageAudioUpload   = "audio_upload"
	StageManifestWrite = "manifest"
	StageCompleted     = "completed"
	StageFailed        = "failed"
)

// GenerationError - 생성 시퀀스 중 collaborator 실패
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("video generation failed at stage %q: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
