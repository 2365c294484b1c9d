package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/litup/gigfeed/internal/model"
	"github.com/litup/gigfeed/internal/repository"
)

// usernamePattern 은 인스타그램 username 의 허용 문자.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._]{1,30}$`)

// ChannelHandler 는 수집 대상 채널 관리의 HTTP 핸들러.
type ChannelHandler struct {
	channelRepo repository.ChannelRepository
	clubRepo    repository.ClubRepository
}

// NewChannelHandler 는 ChannelHandler 를 생성한다.
func NewChannelHandler(channelRepo repository.ChannelRepository, clubRepo repository.ClubRepository) *ChannelHandler {
	return &ChannelHandler{
		channelRepo: channelRepo,
		clubRepo:    clubRepo,
	}
}

// registerChannelRequest 는 채널 등록 요청의 바디.
// 클럽은 이름으로 지정하며 존재하지 않으면 새로 만든다.
type registerChannelRequest struct {
	Username string `json:"username"`
	ClubName string `json:"club_name"`
}

// channelResponse 는 채널 정보의 API 응답.
type channelResponse struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	ClubID            int64     `json:"club_id"`
	ProfileURL        string    `json:"profile_url,omitempty"`
	ScrapeStatus      string    `json:"scrape_status"`
	ConsecutiveErrors int       `json:"consecutive_errors"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	NextScrapeAt      time.Time `json:"next_scrape_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// ListChannels 는 등록된 채널 목록을 반환한다.
// GET /api/channels
func (h *ChannelHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.channelRepo.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]channelResponse, 0, len(channels))
	for _, ch := range channels {
		resp = append(resp, toChannelResponse(ch))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]channelResponse{"channels": resp})
}

// RegisterChannel 은 채널을 등록한다. 클럽이 없으면 함께 생성한다.
// POST /api/channels
func (h *ChannelHandler) RegisterChannel(w http.ResponseWriter, r *http.Request) {
	var req registerChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSON 해석에 실패했습니다"))
		return
	}

	username := strings.TrimPrefix(strings.TrimSpace(req.Username), "@")
	if !usernamePattern.MatchString(username) {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("username 은 영숫자, 마침표, 밑줄 30자 이내여야 합니다"))
		return
	}

	clubName := strings.TrimSpace(req.ClubName)
	if clubName == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("club_name 이 비어 있습니다"))
		return
	}

	existing, err := h.channelRepo.FindByUsername(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if existing != nil {
		writeAPIErrorResponse(w, http.StatusConflict, model.NewDuplicateChannelError(username))
		return
	}

	club, err := h.clubRepo.FindByName(r.Context(), clubName)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if club == nil {
		club = &model.Club{Name: clubName}
		if err := h.clubRepo.Create(r.Context(), club); err != nil {
			handleServiceError(w, err)
			return
		}
	}

	channel := &model.Channel{
		Username:     username,
		ClubID:       club.ID,
		ScrapeStatus: model.ScrapeStatusActive,
		NextScrapeAt: time.Now(),
	}
	if err := h.channelRepo.Create(r.Context(), channel); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toChannelResponse(channel))
}

// DeleteChannel 은 채널 등록을 해제한다.
// DELETE /api/channels/{username}
func (h *ChannelHandler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	username := channelUsernameParam(r)

	existing, err := h.channelRepo.FindByUsername(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if existing == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewChannelNotFoundError(username))
		return
	}

	if err := h.channelRepo.Delete(r.Context(), username); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// channelUsernameParam 은 URL 의 {username} 파라미터를 정규화해 반환한다.
func channelUsernameParam(r *http.Request) string {
	return strings.TrimPrefix(chi.URLParam(r, "username"), "@")
}

// toChannelResponse 는 model.Channel 을 API 응답으로 변환한다.
func toChannelResponse(ch *model.Channel) channelResponse {
	return channelResponse{
		ID:                ch.ID,
		Username:          ch.Username,
		ClubID:            ch.ClubID,
		ProfileURL:        ch.ProfileURL,
		ScrapeStatus:      string(ch.ScrapeStatus),
		ConsecutiveErrors: ch.ConsecutiveErrors,
		ErrorMessage:      ch.ErrorMessage,
		NextScrapeAt:      ch.NextScrapeAt,
		CreatedAt:         ch.CreatedAt,
	}
}
