package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"easyvid-server/modules/common/config"
	"easyvid-server/modules/common/database"
	generatescript "easyvid-server/modules/generate-script"
	generatevideo "easyvid-server/modules/generate-video"
	"easyvid-server/modules/manifest"
	"easyvid-server/modules/progress"
	"easyvid-server/modules/projects"
	"easyvid-server/modules/templates"
	"easyvid-server/modules/worker"
)

// enableCORS - CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// healthCheck - 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "easyvid-server",
	})
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Database 클라이언트
	dbClient := database.NewClient()
	if dbClient == nil {
		log.Fatal("❌ Failed to initialize Database client")
	}

	// 진행 상황 허브 (오케스트레이터 observer → websocket 브로드캐스트)
	hub := progress.NewHub()
	hub.StartCleanupRoutine()

	// 비디오 생성 오케스트레이터
	generateService := generatevideo.NewService(hub.Publish)

	// Redis Queue Worker 시작 (백그라운드)
	go worker.StartWorker(generateService)

	// 라우터 설정
	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ws", hub.HandleWebSocket)

	projects.NewHandler(dbClient).RegisterRoutes(r)
	templates.NewHandler(dbClient).RegisterRoutes(r)
	generatevideo.NewHandler(generateService).RegisterRoutes(r)
	generatescript.NewHandler().RegisterRoutes(r)
	manifest.NewHandler().RegisterRoutes(r)

	if enqueueHandler := worker.NewEnqueueHandler(); enqueueHandler != nil {
		enqueueHandler.RegisterRoutes(r)
	}

	log.Printf("🚀 EasyVid Server starting on port %s", cfg.Port)
	log.Printf("📡 Progress endpoint: ws://localhost:%s/ws", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)

	// 서버 시작
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
