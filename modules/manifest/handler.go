package manifest

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	reader *Reader
}

// NewHandler - Handler 생성
func NewHandler() *Handler {
	return &Handler{reader: NewReader()}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/manifest", h.HandleRead).Methods("GET")
	log.Println("✅ Manifest routes registered: /api/manifest")
}

// HandleRead - GET /api/manifest?url=<manifestUrl>
// manifest를 읽을 수 없으면 404 (데이터 없음으로 취급)
func (h *Handler) HandleRead(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	url := r.URL.Query().Get("url")
	if url == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "url parameter is required"})
		return
	}

	m := h.reader.Read(r.Context(), url)
	if m == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "manifest not available"})
		return
	}

	json.NewEncoder(w).Encode(m)
}
