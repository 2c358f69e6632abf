package worker

import (
	"context"
	"log"
	"time"

	"easyvid-server/modules/common/config"
	"easyvid-server/modules/common/database"
	redisClient "easyvid-server/modules/common/redis"
	generatevideo "easyvid-server/modules/generate-video"
)

// StartWorker - Redis Queue Worker 시작
// videos:queue에 들어온 프로젝트 ID를 꺼내 생성 시퀀스를 실행한다.
func StartWorker(service *generatevideo.Service) {
	log.Println("🔄 Video generation worker starting...")

	cfg := config.GetConfig()

	// Redis 연결
	rdb := redisClient.Connect(cfg)
	if rdb == nil {
		log.Fatal("❌ Failed to connect to Redis")
		return
	}
	log.Println("✅ Redis connected successfully")

	// Database 클라이언트 초기화
	dbClient := database.NewClient()
	if dbClient == nil {
		log.Fatal("❌ Failed to initialize Database client")
		return
	}

	log.Printf("👀 Watching queue: %s", redisClient.GenerateQueue)

	ctx := context.Background()

	// 무한 루프로 Queue 감시
	for {
		// Job 받기 (BRPOP - Blocking Right Pop)
		result, err := rdb.BRPop(ctx, 0, redisClient.GenerateQueue).Result()
		if err != nil {
			log.Printf("❌ Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0]은 큐 이름, result[1]이 프로젝트 ID
		projectID := result[1]
		log.Printf("🎯 Received generation job: %s", projectID)

		// Job 처리 (goroutine으로 비동기)
		go processJob(ctx, dbClient, service, projectID)
	}
}

// processJob - 프로젝트 레코드를 읽어 생성 시퀀스 실행
func processJob(ctx context.Context, dbClient *database.Client, service *generatevideo.Service, projectID string) {
	log.Printf("🚀 Processing generation job: %s", projectID)

	project, err := dbClient.GetProject(ctx, projectID)
	if err != nil {
		log.Printf("❌ Failed to fetch project %s: %v", projectID, err)
		return
	}
	if project == nil {
		log.Printf("⚠️  Project not found, dropping job: %s", projectID)
		return
	}

	if project.Script == nil || *project.Script == "" {
		log.Printf("⚠️  Project %s has no script, dropping job", projectID)
		return
	}

	voiceID := "alloy"
	if project.VoiceID != nil && *project.VoiceID != "" {
		voiceID = *project.VoiceID
	}
	templateID := "template_1"
	if project.TemplateID != nil && *project.TemplateID != "" {
		templateID = *project.TemplateID
	}

	if _, err := service.Generate(ctx, projectID, *project.Script, voiceID, templateID); err != nil {
		log.Printf("❌ Generation job %s failed: %v", projectID, err)
		return
	}

	log.Printf("✅ Generation job %s completed", projectID)
}
