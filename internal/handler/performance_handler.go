// Package handler 는 관리 API 의 HTTP 핸들러와 라우팅을 제공한다.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/litup/gigfeed/internal/model"
	"github.com/litup/gigfeed/internal/repository"
)

// performDateLayout 은 API 입출력의 공연 일시 포맷.
const performDateLayout = "2006-01-02 15:04"

// presignTTL 은 이미지 열람용 서명 URL 의 유효 기간.
const presignTTL = time.Hour

// ImageStore 는 공연 이미지 핸들러가 필요로 하는 오브젝트 스토리지 인터페이스.
// storage.ObjectStorage 전체에 의존하지 않도록 최소한으로 정의한다.
type ImageStore interface {
	// PresignGet 은 키에 대한 기간 한정 열람 URL 을 발행한다.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Delete 는 키의 오브젝트를 삭제한다.
	Delete(ctx context.Context, key string) error
}

// PerformanceHandler 는 공연 레코드 관리의 HTTP 핸들러.
type PerformanceHandler struct {
	perfRepo repository.PerformanceRepository
	imgRepo  repository.ImageRepository
	store    ImageStore
	location *time.Location
	logger   *slog.Logger
}

// NewPerformanceHandler 는 PerformanceHandler 를 생성한다.
// location 이 nil 이면 time.Local 을 사용한다.
func NewPerformanceHandler(
	perfRepo repository.PerformanceRepository,
	imgRepo repository.ImageRepository,
	store ImageStore,
	location *time.Location,
	logger *slog.Logger,
) *PerformanceHandler {
	if location == nil {
		location = time.Local
	}
	return &PerformanceHandler{
		perfRepo: perfRepo,
		imgRepo:  imgRepo,
		store:    store,
		location: location,
		logger:   logger,
	}
}

// performanceResponse 는 공연 정보의 API 응답.
type performanceResponse struct {
	ID           int64               `json:"id"`
	ClubID       int64               `json:"club_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	PerformDate  string              `json:"perform_date,omitempty"`
	BookingPrice *int                `json:"booking_price"`
	OnsitePrice  *int                `json:"onsite_price"`
	BookingURL   string              `json:"booking_url,omitempty"`
	Artists      []model.ArtistEntry `json:"artists"`
	SNSLinks     []model.SNSLink     `json:"sns_links"`
	IsCancelled  bool                `json:"is_cancelled"`
	Status       string              `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
}

// updatePerformanceRequest 는 운영자 수정 요청의 바디.
// 포인터가 아닌 필드는 항상 덮어쓴다 (전체 갱신).
type updatePerformanceRequest struct {
	Title        string              `json:"title"`
	PerformDate  string              `json:"perform_date"` // "YYYY-MM-DD HH:MM" 또는 빈 문자열
	BookingPrice *int                `json:"booking_price"`
	OnsitePrice  *int                `json:"onsite_price"`
	BookingURL   string              `json:"booking_url"`
	Artists      []model.ArtistEntry `json:"artists"`
	IsCancelled  bool                `json:"is_cancelled"`
}

// imageResponse 는 공연 이미지의 API 응답. URL 은 기간 한정 서명 URL.
type imageResponse struct {
	ID           int64  `json:"id"`
	URL          string `json:"url"`
	OriginalName string `json:"original_name"`
	IsMain       bool   `json:"is_main"`
}

// listPerformancesResponse 는 공연 목록 응답.
type listPerformancesResponse struct {
	Performances []performanceResponse `json:"performances"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// ListPerformances 는 공연 목록을 조회한다.
// GET /api/performances?status=&club=&limit=&offset=
func (h *PerformanceHandler) ListPerformances(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "all"
	}
	switch status {
	case "all", "pending", "completed":
	default:
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidStatusFilterError(status))
		return
	}

	var clubID int64
	if raw := r.URL.Query().Get("club"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("club 은 수치여야 합니다"))
			return
		}
		clubID = id
	}

	days := parseIntQuery(r, "days", 0)
	if days < 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("days 는 0 이상이어야 합니다"))
		return
	}

	limit := parseIntQuery(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := parseIntQuery(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	perfs, err := h.perfRepo.List(r.Context(), status, clubID, days, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := listPerformancesResponse{
		Performances: make([]performanceResponse, 0, len(perfs)),
		Limit:        limit,
		Offset:       offset,
	}
	for _, p := range perfs {
		resp.Performances = append(resp.Performances, toPerformanceResponse(p))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetPerformanceImages 는 공연 이미지의 서명 URL 목록을 반환한다.
// GET /api/performances/{id}/images
func (h *PerformanceHandler) GetPerformanceImages(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	perf, err := h.perfRepo.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if perf == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewPerformanceNotFoundError(id))
		return
	}

	images, err := h.imgRepo.ListByPerformID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]imageResponse, 0, len(images))
	for _, img := range images {
		url, err := h.store.PresignGet(r.Context(), img.FilePath, presignTTL)
		if err != nil {
			handleServiceError(w, model.NewStorageUnavailableError(err.Error()))
			return
		}
		resp = append(resp, imageResponse{
			ID:           img.ID,
			URL:          url,
			OriginalName: img.OriginalName,
			IsMain:       img.IsMain,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]imageResponse{"images": resp})
}

// UpdatePerformance 는 운영자의 공연 레코드 수정을 처리한다.
// PUT /api/performances/{id}
func (h *PerformanceHandler) UpdatePerformance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req updatePerformanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSON 해석에 실패했습니다"))
		return
	}

	perf, err := h.perfRepo.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if perf == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewPerformanceNotFoundError(id))
		return
	}

	if req.PerformDate != "" {
		parsed, err := time.ParseInLocation(performDateLayout, req.PerformDate, h.location)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest,
				model.NewInvalidRequestError("perform_date 는 YYYY-MM-DD HH:MM 형식이어야 합니다"))
			return
		}
		perf.PerformDate = &parsed
	} else {
		perf.PerformDate = nil
	}

	perf.Title = req.Title
	perf.BookingPrice = req.BookingPrice
	perf.OnsitePrice = req.OnsitePrice
	perf.BookingURL = req.BookingURL
	perf.Artists = req.Artists
	perf.IsCancelled = req.IsCancelled

	if err := h.perfRepo.Update(r.Context(), perf); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPerformanceResponse(perf))
}

// DeletePerformance 는 공연 레코드를 삭제한다.
// 스토리지의 이미지 오브젝트는 베스트 에포트로 삭제하고,
// 메타데이터는 DB 의 CASCADE 로 함께 삭제된다.
// DELETE /api/performances/{id}
func (h *PerformanceHandler) DeletePerformance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	perf, err := h.perfRepo.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if perf == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewPerformanceNotFoundError(id))
		return
	}

	images, err := h.imgRepo.ListByPerformID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	for _, img := range images {
		if err := h.store.Delete(r.Context(), img.FilePath); err != nil {
			h.logger.Warn("이미지 오브젝트 삭제에 실패했습니다",
				slog.String("key", img.FilePath),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := h.perfRepo.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- 헬퍼 함수 ---

// parseIDParam 은 URL 의 {id} 파라미터를 int64 로 해석한다.
// 실패 시 400 응답을 기록하고 false 를 반환한다.
func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("id 는 양의 정수여야 합니다"))
		return 0, false
	}
	return id, true
}

// parseIntQuery 는 쿼리 파라미터를 정수로 해석한다. 없거나 무효하면 기본값.
func parseIntQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// toPerformanceResponse 는 model.Performance 를 API 응답으로 변환한다.
func toPerformanceResponse(p *model.Performance) performanceResponse {
	resp := performanceResponse{
		ID:           p.ID,
		ClubID:       p.ClubID,
		Title:        p.Title,
		Description:  p.Description,
		BookingPrice: p.BookingPrice,
		OnsitePrice:  p.OnsitePrice,
		BookingURL:   p.BookingURL,
		Artists:      p.Artists,
		SNSLinks:     p.SNSLinks,
		IsCancelled:  p.IsCancelled,
		Status:       string(p.Status()),
		CreatedAt:    p.CreatedAt,
	}
	if resp.Artists == nil {
		resp.Artists = []model.ArtistEntry{}
	}
	if resp.SNSLinks == nil {
		resp.SNSLinks = []model.SNSLink{}
	}
	if p.PerformDate != nil {
		resp.PerformDate = p.PerformDate.Format(performDateLayout)
	}
	return resp
}

// apiErrorResponse 는 통일 에러 포맷의 응답.
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse 는 통일 에러 포맷으로 에러 응답을 기록한다.
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError 는 하위 계층의 에러를 적절한 HTTP 상태 코드로 변환한다.
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError 이외의 에러는 내부 서버 에러로 취급한다
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "내부 오류가 발생했습니다.",
		Category: "system",
		Action:   "잠시 기다린 후 다시 시도해 주세요.",
	})
}

// mapAPIErrorToHTTPStatus 는 APIError 코드를 HTTP 상태 코드로 매핑한다.
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidRequest, model.ErrCodeInvalidStatusFilter:
		return http.StatusBadRequest
	case model.ErrCodePerformanceNotFound, model.ErrCodeChannelNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateChannel:
		return http.StatusConflict
	case model.ErrCodeStorageUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
