package manifest

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"easyvid-server/modules/common/model"
)

// legacyExt - 구버전 manifest (인터랙티브 HTML 플레이어) URL 확장자
const legacyExt = ".html"

// legacyScript - 구버전 프로젝트에 보여줄 안내 문구
const legacyScript = "This video was created with an earlier version of EasyVid. Regenerate the project to get a playable slideshow with narration."

// legacyImages - 구버전 대체 슬라이드 (고정 스톡 이미지 5장)
var legacyImages = []string{
	"https://picsum.photos/seed/easyvid-1/1024/1024",
	"https://picsum.photos/seed/easyvid-2/1024/1024",
	"https://picsum.photos/seed/easyvid-3/1024/1024",
	"https://picsum.photos/seed/easyvid-4/1024/1024",
	"https://picsum.photos/seed/easyvid-5/1024/1024",
}

// ManifestRef - manifest URL의 포맷 구분 (suffix 판별은 여기서 한 번만)
type ManifestRef struct {
	URL    string
	Legacy bool
}

// ResolveRef - URL을 현재/레거시 포맷으로 분류
func ResolveRef(url string) ManifestRef {
	return ManifestRef{
		URL:    url,
		Legacy: strings.HasSuffix(url, legacyExt),
	}
}

// Reader - manifest 조회기
type Reader struct {
	httpClient *http.Client
}

// NewReader - Reader 생성
func NewReader() *Reader {
	return &Reader{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Read - manifest URL을 VideoManifest로 파싱
// 레거시 URL이면 고정 fallback을 반환하고, fetch/파싱 실패는 nil로 보고한다
// (호출측은 nil을 "데이터 없음"으로 분기하면 된다, 하드 에러 아님).
func (r *Reader) Read(ctx context.Context, url string) *model.VideoManifest {
	ref := ResolveRef(url)

	if ref.Legacy {
		log.Printf("⚠️  [Manifest] Legacy manifest format: %s, serving fallback", url)
		return LegacyFallback()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", ref.URL, nil)
	if err != nil {
		log.Printf("❌ [Manifest] Failed to create request for %s: %v", url, err)
		return nil
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ [Manifest] Fetch failed for %s: %v", url, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ [Manifest] Fetch failed for %s: status %d", url, resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("❌ [Manifest] Failed to read body for %s: %v", url, err)
		return nil
	}

	var m model.VideoManifest
	if err := json.Unmarshal(data, &m); err != nil {
		log.Printf("❌ [Manifest] Failed to parse %s: %v", url, err)
		return nil
	}

	log.Printf("✅ [Manifest] Loaded manifest: %d images, %ds", len(m.Images), m.Duration)
	return &m
}

// LegacyFallback - 구버전 manifest 대체값
// 오디오는 재생 불가(빈 audioUrl), 길이는 60초 고정.
func LegacyFallback() *model.VideoManifest {
	images := make([]string, len(legacyImages))
	copy(images, legacyImages)

	return &model.VideoManifest{
		AudioURL: "",
		Images:   images,
		Script:   legacyScript,
		Duration: 60,
	}
}
