package projects

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"easyvid-server/modules/common/database"
	"easyvid-server/modules/common/model"
)

type Handler struct {
	db *database.Client
}

// CreateRequest - POST /api/projects 요청
type CreateRequest struct {
	Title      string `json:"title"`
	Script     string `json:"script,omitempty"`
	VoiceID    string `json:"voiceId,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
}

// NewHandler - Handler 생성
func NewHandler(db *database.Client) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/projects", h.HandleList).Methods("GET")
	r.HandleFunc("/api/projects", h.HandleCreate).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/projects/{id}", h.HandleGet).Methods("GET")
	r.HandleFunc("/api/projects/{id}", h.HandleUpdate).Methods("PUT", "OPTIONS")
	r.HandleFunc("/api/projects/{id}", h.HandleDelete).Methods("DELETE", "OPTIONS")
	log.Println("✅ Project routes registered: /api/projects")
}

// NewProjectID - 프로젝트 ID 생성 (video_<unix-ms>_<short-uuid>)
func NewProjectID() string {
	short := strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
	return fmt.Sprintf("video_%d_%s", time.Now().UnixMilli(), short)
}

// HandleCreate - POST /api/projects
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body"})
		return
	}

	if req.Title == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "title is required"})
		return
	}

	// 기본값: alloy 보이스, template_1, draft 상태
	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = "alloy"
	}
	templateID := req.TemplateID
	if templateID == "" {
		templateID = "template_1"
	}

	project := &model.VideoProject{
		ID:         NewProjectID(),
		Title:      req.Title,
		Script:     &req.Script,
		VoiceID:    &voiceID,
		TemplateID: &templateID,
		Status:     model.StatusDraft,
		Duration:   0,
	}

	created, err := h.db.CreateProject(r.Context(), project)
	if err != nil {
		log.Printf("❌ [Projects] Create failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// HandleGet - GET /api/projects/{id} (미존재 시 404)
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	projectID := mux.Vars(r)["id"]

	project, err := h.db.GetProject(r.Context(), projectID)
	if err != nil {
		log.Printf("❌ [Projects] Get failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	if project == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Project not found"})
		return
	}

	json.NewEncoder(w).Encode(project)
}

// HandleUpdate - PUT /api/projects/{id} (부분 업데이트)
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	projectID := mux.Vars(r)["id"]

	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body"})
		return
	}

	// id, created_at은 불변
	delete(updates, "id")
	delete(updates, "created_at")

	updated, err := h.db.UpdateProject(r.Context(), projectID, updates)
	if err != nil {
		log.Printf("❌ [Projects] Update failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	json.NewEncoder(w).Encode(updated)
}

// HandleDelete - DELETE /api/projects/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	projectID := mux.Vars(r)["id"]

	if err := h.db.DeleteProject(r.Context(), projectID); err != nil {
		log.Printf("❌ [Projects] Delete failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

// HandleList - GET /api/projects[?q=검색어]
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	query := r.URL.Query().Get("q")

	var (
		projects []model.VideoProject
		err      error
	)
	if query != "" {
		projects, err = h.db.SearchProjects(r.Context(), query)
	} else {
		projects, err = h.db.ListProjects(r.Context())
	}

	if err != nil {
		log.Printf("❌ [Projects] List failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	json.NewEncoder(w).Encode(projects)
}
