package generatevideo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"easyvid-server/modules/common/database"
	"easyvid-server/modules/common/imagegen"
	"easyvid-server/modules/common/model"
	"easyvid-server/modules/common/speech"
	"easyvid-server/modules/common/storage"
)

// SpeechGenerator - 음성 합성 collaborator
type SpeechGenerator interface {
	Generate(ctx context.Context, text, voice string) (string, error)
}

// ImageGenerator - 이미지 생성 collaborator
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, size, quality string, n int) ([]string, error)
}

// ProjectStore - 프로젝트 레코드 상태 업데이트
type ProjectStore interface {
	UpdateProject(ctx context.Context, projectID string, updates map[string]interface{}) (*model.VideoProject, error)
}

// BlobStore - 산출물 업로드/소스 다운로드
type BlobStore interface {
	Upload(ctx context.Context, data []byte, path, contentType string, upsert bool) (string, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// ProgressFunc - 스테이지 경계마다 호출되는 observer
type ProgressFunc func(projectID, stage string, percent int)

// Service - 비디오 생성 오케스트레이터
type Service struct {
	speech   SpeechGenerator
	images   ImageGenerator
	projects ProjectStore
	blobs    BlobStore
	progress ProgressFunc

	// 프로젝트당 동시 생성 1건 제한
	mu       sync.Mutex
	inFlight map[string]bool
}

// NewService - 실 collaborator로 Service 구성
func NewService(progress ProgressFunc) *Service {
	return &Service{
		speech:   speech.NewClient(),
		images:   imagegen.NewClient(),
		projects: database.NewClient(),
		blobs:    storage.NewClient(),
		progress: progress,
		inFlight: make(map[string]bool),
	}
}

// NewServiceWith - collaborator 주입 생성자 (테스트용)
func NewServiceWith(sp SpeechGenerator, im ImageGenerator, ps ProjectStore, bs BlobStore, progress ProgressFunc) *Service {
	return &Service{
		speech:   sp,
		images:   im,
		projects: ps,
		blobs:    bs,
		progress: progress,
		inFlight: make(map[string]bool),
	}
}

// Generate - 스크립트로부터 비디오 manifest를 생성하는 전체 시퀀스
//
// generating 상태를 먼저 기록한 뒤 음성 → 이미지 5장 (동시) → 오디오 업로드 →
// manifest 조립/업로드 → completed 순으로 진행한다. 2~8단계에서 실패하면
// 프로젝트를 failed로만 표시하고 에러를 그대로 반환한다 (부분 산출물 정리 없음,
// 재시도 없음). 같은 경로에 업서트하므로 재호출 시 기존 산출물을 덮어쓴다.
func (s *Service) Generate(ctx context.Context, projectID, script, voiceID, templateID string) (*model.VideoManifest, error) {
	if strings.TrimSpace(script) == "" {
		return nil, fmt.Errorf("script must not be empty")
	}
	if !model.IsValidVoice(voiceID) {
		return nil, fmt.Errorf("unknown voice: %q", voiceID)
	}

	if !s.tryAcquire(projectID) {
		return nil, fmt.Errorf("generation already in flight for project %s", projectID)
	}
	defer s.release(projectID)

	log.Printf("🎬 [GenerateVideo] Starting generation for project %s (voice: %s, template: %s, %d chars)",
		projectID, voiceID, templateID, len(script))

	// 1. generating 상태를 먼저 저장 - 이후 크래시는 stuck generating으로 관찰된다
	if _, err := s.projects.UpdateProject(ctx, projectID, map[string]interface{}{
		"status": model.StatusGenerating,
	}); err != nil {
		return nil, &GenerationError{Stage: StagePreparing, Err: err}
	}
	s.notify(projectID, StagePreparing, 10)

	manifest, err := s.run(ctx, projectID, script, voiceID, templateID)
	if err != nil {
		log.Printf("❌ [GenerateVideo] Generation failed for project %s: %v", projectID, err)

		// 상태만 failed로 기록. 이미 업로드된 산출물은 정리하지 않는다.
		if _, uerr := s.projects.UpdateProject(ctx, projectID, map[string]interface{}{
			"status": model.StatusFailed,
		}); uerr != nil {
			log.Printf("❌ [GenerateVideo] Failed to mark project %s as failed: %v", projectID, uerr)
		}
		s.notify(projectID, StageFailed, 100)
		return nil, err
	}

	s.notify(projectID, StageCompleted, 100)
	log.Printf("✅ [GenerateVideo] Project %s completed (duration: %ds)", projectID, manifest.Duration)
	return manifest, nil
}

// run - 2~8단계. 실패 시 GenerationError로 감싸 반환.
func (s *Service) run(ctx context.Context, projectID, script, voiceID, templateID string) (*model.VideoManifest, error) {
	// 2. 나레이션 음성 합성
	audioSourceURL, err := s.speech.Generate(ctx, script, voiceID)
	if err != nil {
		return nil, &GenerationError{Stage: StageVoiceover, Err: err}
	}
	s.notify(projectID, StageVoiceover, 30)

	// 3. 슬라이드 이미지 5장 동시 생성, 결과는 프롬프트 순서대로 재조립
	imageURLs := make([]string, len(SlidePrompts))
	g, gctx := errgroup.WithContext(ctx)
	for i, prompt := range SlidePrompts {
		g.Go(func() error {
			urls, err := s.images.Generate(gctx, prompt, ImageSize, ImageQuality, 1)
			if err != nil {
				return fmt.Errorf("slide %d: %w", i+1, err)
			}
			if len(urls) == 0 {
				return fmt.Errorf("slide %d: no image returned", i+1)
			}
			imageURLs[i] = urls[0]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &GenerationError{Stage: StageImages, Err: err}
	}
	s.notify(projectID, StageImages, 55)

	// 4. 음성 소스를 받아 내구 스토리지에 저장
	audioData, err := s.blobs.Download(ctx, audioSourceURL)
	if err != nil {
		return nil, &GenerationError{Stage: StageAudioUpload, Err: err}
	}

	audioURL, err := s.blobs.Upload(ctx, audioData, model.AudioPath(projectID), "audio/mpeg", true)
	if err != nil {
		return nil, &GenerationError{Stage: StageAudioUpload, Err: err}
	}
	s.notify(projectID, StageAudioUpload, 70)

	// 5~6. 재생 시간 추정 후 manifest를 메모리에서 완성
	manifest := &model.VideoManifest{
		AudioURL:   audioURL,
		Images:     imageURLs,
		Script:     script,
		VoiceID:    voiceID,
		TemplateID: templateID,
		Duration:   model.EstimateDuration(script),
	}

	// 7. manifest JSON 업로드
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, &GenerationError{Stage: StageManifestWrite, Err: err}
	}

	manifestURL, err := s.blobs.Upload(ctx, manifestJSON, model.ManifestPath(projectID), "application/json", true)
	if err != nil {
		return nil, &GenerationError{Stage: StageManifestWrite, Err: err}
	}
	s.notify(projectID, StageManifestWrite, 90)

	// 8. 프로젝트 completed 전환 (썸네일은 첫 번째 슬라이드)
	if _, err := s.projects.UpdateProject(ctx, projectID, map[string]interface{}{
		"status":             model.StatusCompleted,
		"video_manifest_url": manifestURL,
		"thumbnail_url":      imageURLs[0],
		"duration":           manifest.Duration,
	}); err != nil {
		return nil, &GenerationError{Stage: StageManifestWrite, Err: err}
	}

	return manifest, nil
}

// tryAcquire - 프로젝트 advisory lock 획득 시도
func (s *Service) tryAcquire(projectID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[projectID] {
		return false
	}
	s.inFlight[projectID] = true
	return true
}

func (s *Service) release(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, projectID)
}

func (s *Service) notify(projectID, stage string, percent int) {
	if s.progress != nil {
		s.progress(projectID, stage, percent)
	}
}
