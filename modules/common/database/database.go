package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/supabase-community/supabase-go"

	"easyvid-server/modules/common/config"
	"easyvid-server/modules/common/model"
)

type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성
func NewClient() *Client {
	cfg := config.GetConfig()

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
	}
}

// CreateProject - 새 프로젝트 레코드 생성
func (c *Client) CreateProject(ctx context.Context, project *model.VideoProject) (*model.VideoProject, error) {
	log.Printf("💾 Creating project: %s (%s)", project.ID, project.Title)

	insertData := map[string]interface{}{
		"id":          project.ID,
		"title":       project.Title,
		"script":      derefString(project.Script),
		"voice_id":    derefString(project.VoiceID),
		"template_id": derefString(project.TemplateID),
		"status":      project.Status,
		"duration":    project.Duration,
		"created_at":  time.Now().UTC().Format(time.RFC3339),
		"updated_at":  time.Now().UTC().Format(time.RFC3339),
	}

	data, _, err := c.supabase.From("video_projects").
		Insert(insertData, false, "", "", "").
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}

	var projects []model.VideoProject
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to parse insert response: %w", err)
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("no project record returned")
	}

	log.Printf("✅ Project created: %s", projects[0].ID)
	return &projects[0], nil
}

// UpdateProject - 프로젝트 부분 업데이트 (updated_at 자동 갱신)
func (c *Client) UpdateProject(ctx context.Context, projectID string, updates map[string]interface{}) (*model.VideoProject, error) {
	log.Printf("📝 Updating project %s: %v", projectID, updateKeys(updates))

	updateData := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		updateData[k] = v
	}
	updateData["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	data, _, err := c.supabase.From("video_projects").
		Update(updateData, "", "").
		Eq("id", projectID).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	var projects []model.VideoProject
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to parse update response: %w", err)
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("project not found: %s", projectID)
	}

	log.Printf("✅ Project %s updated", projectID)
	return &projects[0], nil
}

// DeleteProject - 프로젝트 삭제
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	log.Printf("🗑️  Deleting project: %s", projectID)

	_, _, err := c.supabase.From("video_projects").
		Delete("", "").
		Eq("id", projectID).
		Execute()

	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	log.Printf("✅ Project %s deleted", projectID)
	return nil
}

// GetProject - ID로 프로젝트 조회 (없으면 nil 반환, 에러 아님)
func (c *Client) GetProject(ctx context.Context, projectID string) (*model.VideoProject, error) {
	log.Printf("🔍 Fetching project: %s", projectID)

	var projects []model.VideoProject

	data, _, err := c.supabase.From("video_projects").
		Select("*", "exact", false).
		Eq("id", projectID).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to query video_projects: %w", err)
	}

	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(projects) == 0 {
		log.Printf("⚠️  Project not found: %s", projectID)
		return nil, nil
	}

	return &projects[0], nil
}

// ListProjects - 전체 프로젝트 목록 (생성일 내림차순)
func (c *Client) ListProjects(ctx context.Context) ([]model.VideoProject, error) {
	var projects []model.VideoProject

	data, _, err := c.supabase.From("video_projects").
		Select("*", "exact", false).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to parse projects: %w", err)
	}

	// created_at 내림차순 정렬
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})

	log.Printf("✅ Listed %d projects", len(projects))
	return projects, nil
}

// SearchProjects - 제목/스크립트 부분 일치 검색 (클라이언트 사이드 필터)
func (c *Client) SearchProjects(ctx context.Context, query string) ([]model.VideoProject, error) {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	matched := FilterProjects(projects, query)
	log.Printf("🔍 Search %q matched %d/%d projects", query, len(matched), len(projects))
	return matched, nil
}

// ListTemplates - 템플릿 카탈로그 목록 (이름 오름차순)
func (c *Client) ListTemplates(ctx context.Context) ([]model.VideoTemplate, error) {
	var templates []model.VideoTemplate

	data, _, err := c.supabase.From("video_templates").
		Select("*", "exact", false).
		Execute()

	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	// 이름 오름차순 정렬
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})

	log.Printf("✅ Listed %d templates", len(templates))
	return templates, nil
}

// FilterProjects - 대소문자 무시 부분 일치 (title, script 대상)
func FilterProjects(projects []model.VideoProject, query string) []model.VideoProject {
	q := strings.ToLower(query)
	matched := []model.VideoProject{}
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Title), q) {
			matched = append(matched, p)
			continue
		}
		if p.Script != nil && strings.Contains(strings.ToLower(*p.Script), q) {
			matched = append(matched, p)
		}
	}
	return matched
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func updateKeys(updates map[string]interface{}) []string {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	return keys
}
