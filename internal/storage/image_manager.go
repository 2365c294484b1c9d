package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	// 포맷 검증용 디코더 등록
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/litup/gigfeed/internal/model"
	"github.com/litup/gigfeed/internal/security"
)

// formatExts 는 허용 포맷과 저장 확장자/Content-Type 의 대응.
var formatExts = map[string]struct {
	ext         string
	contentType string
}{
	"jpeg": {".jpg", "image/jpeg"},
	"png":  {".png", "image/png"},
	"gif":  {".gif", "image/gif"},
	"webp": {".webp", "image/webp"},
}

// ImageManager 는 게시물 이미지의 다운로드/검증/업로드 파이프라인.
// 다운로드는 SSRF 방지 클라이언트를 통과하고, 바이트가 실제로 허용 포맷으로
// 디코드되는 것을 확인한 뒤에만 업로드한다.
type ImageManager struct {
	storage    ObjectStorage
	httpClient *http.Client
	maxSize    int64
	logger     *slog.Logger
}

// NewImageManager 는 ImageManager 를 생성한다.
func NewImageManager(storage ObjectStorage, guard security.SSRFGuardService, timeout time.Duration, maxSize int64, logger *slog.Logger) *ImageManager {
	return &ImageManager{
		storage:    storage,
		httpClient: guard.NewSafeClient(timeout, maxSize),
		maxSize:    maxSize,
		logger:     logger,
	}
}

// UploadFromURLs 는 게시물의 이미지 URL 들을 다운로드해 스토리지에 올리고
// 메타데이터 목록을 반환한다. 첫 번째 이미지가 대표(is_main)가 된다.
// 개별 이미지의 실패는 기록하고 건너뛸 뿐, 전체를 중단하지 않는다.
func (m *ImageManager) UploadFromURLs(ctx context.Context, performID int64, urls []string) []*model.PerformanceImage {
	var images []*model.PerformanceImage
	for _, imageURL := range urls {
		img, err := m.uploadOne(ctx, performID, imageURL)
		if err != nil {
			m.logger.Warn("이미지 처리를 건너뜁니다",
				slog.Int64("perform_id", performID),
				slog.String("url", imageURL),
				slog.String("error", err.Error()),
			)
			continue
		}
		img.IsMain = len(images) == 0
		images = append(images, img)
	}
	return images
}

// uploadOne 은 이미지 한 장을 다운로드/검증/업로드한다.
func (m *ImageManager) uploadOne(ctx context.Context, performID int64, imageURL string) (*model.PerformanceImage, error) {
	data, err := m.download(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	// 바이트가 실제로 이미지로 디코드되는지 확인한다. Content-Type 은 신뢰하지 않는다.
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("이미지 디코드에 실패했습니다: %w", err)
	}
	meta, ok := formatExts[format]
	if !ok {
		return nil, fmt.Errorf("허용되지 않는 이미지 포맷입니다: %s", format)
	}

	key := fmt.Sprintf("performance/%d/%s%s", performID, uuid.New().String(), meta.ext)
	if err := m.storage.Upload(ctx, key, meta.contentType, data); err != nil {
		return nil, err
	}

	return &model.PerformanceImage{
		PerformID:    performID,
		FilePath:     key,
		FileSize:     int64(len(data)),
		OriginalName: originalName(imageURL),
	}, nil
}

// download 는 SSRF 검증을 거쳐 이미지 바이트를 가져온다.
func (m *ImageManager) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("다운로드 요청 생성에 실패했습니다: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("이미지 다운로드에 실패했습니다: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("이미지 다운로드가 상태 %d 를 반환했습니다", resp.StatusCode)
	}

	// 상한 +1 바이트까지 읽어 초과 여부를 판정한다
	data, err := io.ReadAll(io.LimitReader(resp.Body, m.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("이미지 본문 읽기에 실패했습니다: %w", err)
	}
	if int64(len(data)) > m.maxSize {
		return nil, fmt.Errorf("이미지 크기가 상한 %d 바이트를 초과했습니다", m.maxSize)
	}
	return data, nil
}

// originalName 은 URL 경로의 파일명을 원본 이름으로 기록한다.
func originalName(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	return path.Base(parsed.Path)
}
