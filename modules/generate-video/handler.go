package generatevideo

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

// NewHandler - Handler 생성
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/generate-video", h.HandleGenerate).Methods("POST", "OPTIONS")
	log.Println("✅ Generate video routes registered: /api/generate-video")
}

// HandleGenerate - POST /api/generate-video (동기 생성)
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [GenerateVideo] Invalid request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(GenerateResponse{Success: false, Error: "Invalid request body"})
		return
	}

	if req.ProjectID == "" || req.Script == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(GenerateResponse{Success: false, Error: "projectId and script are required"})
		return
	}

	manifest, err := h.service.Generate(r.Context(), req.ProjectID, req.Script, req.VoiceID, req.TemplateID)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(GenerateResponse{Success: false, Error: err.Error()})
		return
	}

	json.NewEncoder(w).Encode(GenerateResponse{
		Success:  true,
		Manifest: manifest,
	})
}
