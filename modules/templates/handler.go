package templates

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"easyvid-server/modules/common/database"
	"easyvid-server/modules/common/model"
)

type Handler struct {
	db *database.Client
}

// NewHandler - Handler 생성
func NewHandler(db *database.Client) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/templates", h.HandleList).Methods("GET")
	r.HandleFunc("/api/voices", h.HandleVoices).Methods("GET")
	log.Println("✅ Template routes registered: /api/templates, /api/voices")
}

// HandleList - GET /api/templates (카탈로그, 이름 오름차순)
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	templates, err := h.db.ListTemplates(r.Context())
	if err != nil {
		log.Printf("❌ [Templates] List failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	json.NewEncoder(w).Encode(templates)
}

// HandleVoices - GET /api/voices (고정 보이스 카탈로그)
func (h *Handler) HandleVoices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.Voices)
}
