package generatescript

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

// ScriptRequest - POST /api/generate-script 요청
type ScriptRequest struct {
	Topic string `json:"topic"`
}

// ScriptResponse - 생성된 스크립트 응답
type ScriptResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Script  string `json:"script,omitempty"`
}

// NewHandler - Handler 생성
func NewHandler() *Handler {
	return &Handler{service: NewService()}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/generate-script", h.HandleGenerate).Methods("POST", "OPTIONS")
	log.Println("✅ Generate script routes registered: /api/generate-script")
}

// HandleGenerate - POST /api/generate-script
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req ScriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ScriptResponse{Success: false, Error: "Invalid request body"})
		return
	}

	if req.Topic == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ScriptResponse{Success: false, Error: "topic is required"})
		return
	}

	script, err := h.service.GenerateScript(r.Context(), req.Topic)
	if err != nil {
		log.Printf("❌ [GenerateScript] %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ScriptResponse{Success: false, Error: err.Error()})
		return
	}

	json.NewEncoder(w).Encode(ScriptResponse{Success: true, Script: script})
}
