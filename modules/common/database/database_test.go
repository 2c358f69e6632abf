package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/supabase-community/supabase-go"

	"easyvid-server/modules/common/model"
)

func strPtr(s string) *string { return &s }

func TestFilterProjects(t *testing.T) {
	projects := []model.VideoProject{
		{ID: "1", Title: "Product Launch", Script: strPtr("Introducing our new gadget.")},
		{ID: "2", Title: "Holiday Promo", Script: strPtr("Buy now and save big!")},
		{ID: "3", Title: "Untitled", Script: nil},
		{ID: "4", Title: "Tutorial", Script: strPtr("How to launch your first campaign.")},
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"title match", "promo", []string{"2"}},
		{"script match", "gadget", []string{"1"}},
		{"case insensitive", "LAUNCH", []string{"1", "4"}},
		{"title and script", "launch", []string{"1", "4"}},
		{"no match", "podcast", []string{}},
		{"empty query matches all", "", []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterProjects(projects, tt.query)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d matches, got %d: %+v", len(tt.wantIDs), len(got), got)
			}
			for i, p := range got {
				if p.ID != tt.wantIDs[i] {
					t.Errorf("match %d: expected id %s, got %s", i, tt.wantIDs[i], p.ID)
				}
			}
		})
	}
}

// newEmptyStoreClient - 모든 조회에 빈 결과를 돌려주는 Supabase 클라이언트
func newEmptyStoreClient(t *testing.T) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Range", "*/0")
		w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)

	sc, err := supabase.NewClient(srv.URL, "test-service-key", &supabase.ClientOptions{})
	if err != nil {
		t.Fatalf("failed to create supabase client: %v", err)
	}
	return &Client{supabase: sc}
}

func TestGetProjectMissingYieldsNil(t *testing.T) {
	client := newEmptyStoreClient(t)

	// 없는 프로젝트는 에러가 아니라 nil - 호출측이 존재 여부로 분기한다
	project, err := client.GetProject(context.Background(), "video_0_missing")
	if err != nil {
		t.Fatalf("missing project should not be an error, got: %v", err)
	}
	if project != nil {
		t.Fatalf("expected nil project, got %+v", project)
	}
}

func TestFilterProjectsNilScript(t *testing.T) {
	projects := []model.VideoProject{{ID: "1", Title: "No Script"}}

	// nil script에서 패닉하면 안 된다
	if got := FilterProjects(projects, "script"); len(got) != 1 {
		t.Errorf("expected title match, got %d results", len(got))
	}
}
