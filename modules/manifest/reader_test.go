package manifest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"easyvid-server/modules/common/model"
)

func TestResolveRef(t *testing.T) {
	tests := []struct {
		url    string
		legacy bool
	}{
		{"https://cdn.example.com/videos/p1/video_data.json", false},
		{"https://cdn.example.com/videos/p1/player.html", true},
		{"https://cdn.example.com/anything.html", true},
		{"https://cdn.example.com/htmlish.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			ref := ResolveRef(tt.url)
			if ref.Legacy != tt.legacy {
				t.Errorf("ResolveRef(%q).Legacy = %v, want %v", tt.url, ref.Legacy, tt.legacy)
			}
			if ref.URL != tt.url {
				t.Errorf("ResolveRef must keep the URL unchanged, got %q", ref.URL)
			}
		})
	}
}

func TestReadLegacyFallback(t *testing.T) {
	reader := NewReader()

	// 레거시 URL은 내용과 무관하게 고정 fallback (fetch 없음)
	m := reader.Read(context.Background(), "https://cdn.example.com/videos/old/player.html")
	if m == nil {
		t.Fatal("legacy URL must yield the fallback manifest, got nil")
	}

	if m.AudioURL != "" {
		t.Errorf("legacy fallback audioUrl must be empty, got %q", m.AudioURL)
	}
	if m.Duration != 60 {
		t.Errorf("legacy fallback duration must be 60, got %d", m.Duration)
	}
	if len(m.Images) != model.SlideCount {
		t.Errorf("legacy fallback must have %d images, got %d", model.SlideCount, len(m.Images))
	}
	if m.Script == "" {
		t.Error("legacy fallback must carry a placeholder script")
	}
}

func TestReadRoundTrip(t *testing.T) {
	original := &model.VideoManifest{
		AudioURL:   "https://cdn.example.com/videos/p1/audio.mp3",
		Images:     []string{"a", "b", "c", "d", "e"},
		Script:     "Hello world, buy now!",
		VoiceID:    "alloy",
		TemplateID: "template_1",
		Duration:   2,
	}

	data, err := json.MarshalIndent(original, "", "  ")
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer server.Close()

	reader := NewReader()
	got := reader.Read(context.Background(), server.URL+"/videos/p1/video_data.json")
	if got == nil {
		t.Fatal("expected manifest, got nil")
	}

	if !reflect.DeepEqual(got, original) {
		t.Errorf("round-trip mismatch:\ngot:  %+v\nwant: %+v", got, original)
	}
}

func TestReadFailuresYieldNil(t *testing.T) {
	badJSON := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<!DOCTYPE html><html></html>"))
	}))
	defer badJSON.Close()

	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	reader := NewReader()

	tests := []struct {
		name string
		url  string
	}{
		{"unparseable body", badJSON.URL + "/video_data.json"},
		{"http error status", notFound.URL + "/video_data.json"},
		{"unreachable host", "http://127.0.0.1:1/video_data.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if m := reader.Read(context.Background(), tt.url); m != nil {
				t.Errorf("expected nil for %s, got %+v", tt.name, m)
			}
		})
	}
}

func TestLegacyFallbackIsCopied(t *testing.T) {
	a := LegacyFallback()
	b := LegacyFallback()

	a.Images[0] = "mutated"
	if b.Images[0] == "mutated" {
		t.Error("LegacyFallback must return an independent image slice")
	}
}
