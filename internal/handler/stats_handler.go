package handler

import (
	"encoding/json"
	"net/http"

	"github.com/litup/gigfeed/internal/model"
	"github.com/litup/gigfeed/internal/repository"
)

// StatsHandler 는 수집 현황 통계의 HTTP 핸들러.
type StatsHandler struct {
	perfRepo repository.PerformanceRepository
	clubRepo repository.ClubRepository
}

// NewStatsHandler 는 StatsHandler 를 생성한다.
func NewStatsHandler(perfRepo repository.PerformanceRepository, clubRepo repository.ClubRepository) *StatsHandler {
	return &StatsHandler{
		perfRepo: perfRepo,
		clubRepo: clubRepo,
	}
}

// statsResponse 는 수집 현황 통계의 API 응답.
// pending 은 제목이 비어 운영자 확인 대기 중인 레코드 수.
type statsResponse struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// clubResponse 는 클럽 정보의 API 응답.
type clubResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GetStats 는 상태별 공연 레코드 수를 반환한다.
// GET /api/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	pending, completed, err := h.perfRepo.CountByStatus(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statsResponse{
		Total:     pending + completed,
		Pending:   pending,
		Completed: completed,
	})
}

// ListClubs 는 등록된 클럽 목록을 반환한다.
// GET /api/clubs
func (h *StatsHandler) ListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubRepo.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]clubResponse, 0, len(clubs))
	for _, c := range clubs {
		resp = append(resp, toClubResponse(c))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]clubResponse{"clubs": resp})
}

func toClubResponse(c *model.Club) clubResponse {
	return clubResponse{ID: c.ID, Name: c.Name}
}
