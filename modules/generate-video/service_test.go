package generatevideo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"easyvid-server/modules/common/model"
)

type fakeSpeech struct {
	url    string
	err    error
	called chan struct{}
	block  chan struct{}
}

func (f *fakeSpeech) Generate(ctx context.Context, text, voice string) (string, error) {
	if f.called != nil {
		f.called <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeImages struct {
	err       error
	staggered bool // 뒤 프롬프트일수록 먼저 완료되도록 지연
}

func (f *fakeImages) Generate(ctx context.Context, prompt, size, quality string, n int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}

	idx := -1
	for i, p := range SlidePrompts {
		if p == prompt {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("unexpected prompt: %s", prompt)
	}

	if f.staggered {
		time.Sleep(time.Duration(len(SlidePrompts)-idx) * 5 * time.Millisecond)
	}

	return []string{fmt.Sprintf("https://images.example.com/img-%d.png", idx)}, nil
}

type fakeStore struct {
	mu      sync.Mutex
	updates []map[string]interface{}
}

func (f *fakeStore) UpdateProject(ctx context.Context, projectID string, updates map[string]interface{}) (*model.VideoProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updates)
	return &model.VideoProject{ID: projectID}, nil
}

func (f *fakeStore) statuses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, u := range f.updates {
		if s, ok := u["status"].(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeStore) lastUpdate() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return nil
	}
	return f.updates[len(f.updates)-1]
}

type fakeBlobs struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	downloads []string
}

func (f *fakeBlobs) Upload(ctx context.Context, data []byte, path, contentType string, upsert bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[path] = data
	return "https://cdn.example.com/" + path, nil
}

func (f *fakeBlobs) Download(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads = append(f.downloads, url)
	return []byte("mp3-bytes"), nil
}

func newTestService(sp SpeechGenerator, im ImageGenerator, ps ProjectStore, bs BlobStore, progress ProgressFunc) *Service {
	return NewServiceWith(sp, im, ps, bs, progress)
}

func TestGenerateSuccess(t *testing.T) {
	store := &fakeStore{}
	blobs := &fakeBlobs{}

	var stages []string
	svc := newTestService(
		&fakeSpeech{url: "https://tts.example.com/raw.mp3"},
		&fakeImages{},
		store,
		blobs,
		func(projectID, stage string, percent int) { stages = append(stages, stage) },
	)

	script := "Hello world, buy now!"
	manifest, err := svc.Generate(context.Background(), "p1", script, "alloy", "template_1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if manifest.Script != script {
		t.Errorf("expected script %q, got %q", script, manifest.Script)
	}
	if manifest.VoiceID != "alloy" || manifest.TemplateID != "template_1" {
		t.Errorf("voice/template not carried into manifest: %+v", manifest)
	}
	if manifest.Duration != 2 {
		t.Errorf("expected duration 2 (ceil(%d/15)), got %d", len(script), manifest.Duration)
	}
	if len(manifest.Images) != model.SlideCount {
		t.Fatalf("expected %d images, got %d", model.SlideCount, len(manifest.Images))
	}
	if manifest.AudioURL != "https://cdn.example.com/p1/audio.mp3" {
		t.Errorf("unexpected audio URL: %s", manifest.AudioURL)
	}

	// 상태 전이: generating → completed
	statuses := store.statuses()
	if len(statuses) != 2 || statuses[0] != model.StatusGenerating || statuses[1] != model.StatusCompleted {
		t.Errorf("expected status transitions [generating completed], got %v", statuses)
	}

	// completed 업데이트: manifest URL, 썸네일(첫 이미지), duration
	last := store.lastUpdate()
	if last["thumbnail_url"] != manifest.Images[0] {
		t.Errorf("thumbnail should be first image, got %v", last["thumbnail_url"])
	}
	if last["video_manifest_url"] != "https://cdn.example.com/p1/video_data.json" {
		t.Errorf("unexpected manifest URL: %v", last["video_manifest_url"])
	}
	if last["duration"] != 2 {
		t.Errorf("expected duration 2 in update, got %v", last["duration"])
	}

	// 저장된 manifest JSON이 반환값과 일치
	data, ok := blobs.uploads["p1/video_data.json"]
	if !ok {
		t.Fatal("manifest JSON not uploaded")
	}
	var stored model.VideoManifest
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("stored manifest is not valid JSON: %v", err)
	}
	if stored.AudioURL != manifest.AudioURL || stored.Duration != manifest.Duration || len(stored.Images) != len(manifest.Images) {
		t.Errorf("stored manifest differs from returned manifest:\nstored: %+v\nreturned: %+v", stored, manifest)
	}

	// 오디오 바이트가 업로드됨
	if string(blobs.uploads["p1/audio.mp3"]) != "mp3-bytes" {
		t.Error("audio bytes not uploaded to project path")
	}

	// 스테이지 경계마다 observer 호출, 마지막은 completed
	if len(stages) == 0 || stages[len(stages)-1] != StageCompleted {
		t.Errorf("expected final stage %q, got %v", StageCompleted, stages)
	}
}

func TestGenerateImageOrderPreserved(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(
		&fakeSpeech{url: "https://tts.example.com/raw.mp3"},
		&fakeImages{staggered: true},
		store,
		&fakeBlobs{},
		nil,
	)

	manifest, err := svc.Generate(context.Background(), "p1", "Some narration script here.", "nova", "template_2")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// 완료 순서와 무관하게 프롬프트 순서대로 재조립되어야 한다
	for i, url := range manifest.Images {
		want := fmt.Sprintf("https://images.example.com/img-%d.png", i)
		if url != want {
			t.Errorf("image %d: expected %s, got %s", i, want, url)
		}
	}
}

func TestGenerateSpeechFailure(t *testing.T) {
	speechErr := errors.New("tts quota exceeded")
	store := &fakeStore{}
	blobs := &fakeBlobs{}
	svc := newTestService(
		&fakeSpeech{err: speechErr},
		&fakeImages{},
		store,
		blobs,
		nil,
	)

	_, err := svc.Generate(context.Background(), "p1", "Hello world, buy now!", "alloy", "template_1")
	if err == nil {
		t.Fatal("expected error when speech endpoint fails")
	}

	// 원인 에러가 그대로 전파되어야 한다 (삼켜지지 않음)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if genErr.Stage != StageVoiceover {
		t.Errorf("expected stage %q, got %q", StageVoiceover, genErr.Stage)
	}
	if !errors.Is(err, speechErr) {
		t.Error("original speech error not wrapped")
	}

	// 상태 전이: generating → failed
	statuses := store.statuses()
	if len(statuses) != 2 || statuses[0] != model.StatusGenerating || statuses[1] != model.StatusFailed {
		t.Errorf("expected status transitions [generating failed], got %v", statuses)
	}

	// manifest는 저장되지 않아야 한다
	if _, ok := blobs.uploads["p1/video_data.json"]; ok {
		t.Error("manifest must not be persisted on failure")
	}
}

func TestGenerateImageFailure(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(
		&fakeSpeech{url: "https://tts.example.com/raw.mp3"},
		&fakeImages{err: errors.New("image backend down")},
		store,
		&fakeBlobs{},
		nil,
	)

	_, err := svc.Generate(context.Background(), "p1", "Some script.", "echo", "template_1")
	if err == nil {
		t.Fatal("expected error when image endpoint fails")
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Stage != StageImages {
		t.Errorf("expected GenerationError at stage %q, got %v", StageImages, err)
	}

	statuses := store.statuses()
	if len(statuses) == 0 || statuses[len(statuses)-1] != model.StatusFailed {
		t.Errorf("project should end up failed, got transitions %v", statuses)
	}
}

func TestGenerateInputValidation(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(&fakeSpeech{url: "u"}, &fakeImages{}, store, &fakeBlobs{}, nil)

	tests := []struct {
		name    string
		script  string
		voiceID string
	}{
		{"empty script", "", "alloy"},
		{"whitespace script", "   ", "alloy"},
		{"unknown voice", "Some script.", "robotic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Generate(context.Background(), "p1", tt.script, tt.voiceID, "template_1"); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	// 검증 실패는 상태를 건드리지 않는다
	if len(store.statuses()) != 0 {
		t.Errorf("validation failures must not touch project status, got %v", store.statuses())
	}
}

func TestGeneratePerProjectLock(t *testing.T) {
	called := make(chan struct{}, 1)
	block := make(chan struct{})
	sp := &fakeSpeech{url: "https://tts.example.com/raw.mp3", called: called, block: block}
	svc := newTestService(sp, &fakeImages{}, &fakeStore{}, &fakeBlobs{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(context.Background(), "p1", "Some script.", "alloy", "template_1")
		done <- err
	}()

	// 첫 번째 호출이 음성 합성 단계에 들어갈 때까지 대기
	<-called

	// 같은 프로젝트의 동시 호출은 거부
	if _, err := svc.Generate(context.Background(), "p1", "Some script.", "alloy", "template_1"); err == nil {
		t.Error("concurrent generation for same project should be rejected")
	} else if !strings.Contains(err.Error(), "in flight") {
		t.Errorf("unexpected rejection error: %v", err)
	}

	// 다른 프로젝트는 허용 (두 번째 speech 호출을 풀어주기 위해 block을 먼저 연다)
	close(block)
	if _, err := svc.Generate(context.Background(), "p2", "Some script.", "alloy", "template_1"); err != nil {
		t.Errorf("different project should not be blocked: %v", err)
	}

	if err := <-done; err != nil {
		t.Errorf("first generation should have completed: %v", err)
	}
}
