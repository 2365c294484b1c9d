package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/litup/gigfeed/internal/model"
)

func newHandlerLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// mockPerformanceRepo 는 PerformanceRepository 의 테스트 대역.
type mockPerformanceRepo struct {
	performances map[int64]*model.Performance
	listResult   []*model.Performance
	listStatus   string
	listClubID   int64
	listDays     int
	updated      *model.Performance
	deletedID    int64
	pending      int
	completed    int
	err          error
}

func newMockPerformanceRepo() *mockPerformanceRepo {
	return &mockPerformanceRepo{performances: make(map[int64]*model.Performance)}
}

func (m *mockPerformanceRepo) FindByID(ctx context.Context, id int64) (*model.Performance, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.performances[id], nil
}

func (m *mockPerformanceRepo) ExistsBySNSLink(ctx context.Context, clubID int64, postURL string) (bool, error) {
	return false, nil
}

func (m *mockPerformanceRepo) Create(ctx context.Context, perf *model.Performance) error {
	return nil
}

func (m *mockPerformanceRepo) List(ctx context.Context, status string, clubID int64, days int, limit, offset int) ([]*model.Performance, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.listStatus = status
	m.listClubID = clubID
	m.listDays = days
	return m.listResult, nil
}

func (m *mockPerformanceRepo) Update(ctx context.Context, perf *model.Performance) error {
	if m.err != nil {
		return m.err
	}
	m.updated = perf
	return nil
}

func (m *mockPerformanceRepo) Delete(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.deletedID = id
	return nil
}

func (m *mockPerformanceRepo) CountByStatus(ctx context.Context) (int, int, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	return m.pending, m.completed, nil
}

// mockImageRepo 는 ImageRepository 의 테스트 대역.
type mockImageRepo struct {
	images []*model.PerformanceImage
	err    error
}

func (m *mockImageRepo) FindByID(ctx context.Context, id int64) (*model.PerformanceImage, error) {
	return nil, nil
}

func (m *mockImageRepo) Create(ctx context.Context, img *model.PerformanceImage) error {
	return nil
}

func (m *mockImageRepo) ListByPerformID(ctx context.Context, performID int64) ([]*model.PerformanceImage, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.images, nil
}

func (m *mockImageRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

// fakeImageStore 는 ImageStore 의 테스트 대역.
type fakeImageStore struct {
	presignErr error
	deleteErr  error
	deleted    []string
}

func (f *fakeImageStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return fmt.Sprintf("https://r2.example.com/%s?sig=abc&ttl=%d", key, int(ttl.Seconds())), nil
}

func (f *fakeImageStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func samplePerformance(id int64) *model.Performance {
	date := time.Date(2025, 11, 15, 19, 0, 0, 0, time.UTC)
	price := 30000
	return &model.Performance{
		ID:           id,
		ClubID:       10,
		Title:        "단독 공연",
		Description:  "11/15 (토) 단독 공연",
		PerformDate:  &date,
		BookingPrice: &price,
		Artists:      []model.ArtistEntry{{Name: "혁오", Handle: "@hyukoh_official"}},
		CreatedAt:    time.Now(),
	}
}

// newPerformanceRouter 는 핸들러를 chi 라우트에 연결한 테스트 라우터를 반환한다.
func newPerformanceRouter(h *PerformanceHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/performances", h.ListPerformances)
	r.Put("/api/performances/{id}", h.UpdatePerformance)
	r.Delete("/api/performances/{id}", h.DeletePerformance)
	r.Get("/api/performances/{id}/images", h.GetPerformanceImages)
	return r
}

// TestListPerformances_Default 는 필터 미지정 시 전체 목록이 반환되는지 검증한다.
func TestListPerformances_Default(t *testing.T) {
	repo := newMockPerformanceRepo()
	repo.listResult = []*model.Performance{samplePerformance(1), samplePerformance(2)}
	h := NewPerformanceHandler(repo, &mockImageRepo{}, &fakeImageStore{}, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/performances", nil)
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	if repo.listStatus != "all" {
		t.Errorf("status filter = %q, want all", repo.listStatus)
	}

	var body listPerformancesResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(body.Performances) != 2 {
		t.Errorf("performances = %d, want 2", len(body.Performances))
	}
	if body.Performances[0].PerformDate != "2025-11-15 19:00" {
		t.Errorf("perform_date = %q", body.Performances[0].PerformDate)
	}
	if body.Performances[0].Status != "completed" {
		t.Errorf("status = %q, want completed", body.Performances[0].Status)
	}
}

// TestListPerformances_StatusAndClubFilter 는 필터가 리포지토리에 전달되는지 검증한다.
func TestListPerformances_StatusAndClubFilter(t *testing.T) {
	repo := newMockPerformanceRepo()
	h := NewPerformanceHandler(repo, &mockImageRepo{}, &fakeImageStore{}, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/performances?status=pending&club=7", nil)
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	if repo.listStatus != "pending" {
		t.Errorf("status filter = %q, want pending", repo.listStatus)
	}
	if repo.listClubID != 7 {
		t.Errorf("club filter = %d, want 7", repo.listClubID)
	}
}

// TestListPerformances_DaysFilter 는 days 필터가 리포지토리에 전달되는지 검증한다.
func TestListPerformances_DaysFilter(t *testing.T) {
	repo := newMockPerformanceRepo()
	h := NewPerformanceHandler(repo, &mockImageRepo{}, &fakeImageStore{}, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/performances?days=30", nil)
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	if repo.listDays != 30 {
		t.Errorf("days filter = %d, want 30", repo.listDays)
	}
}

// TestListPerformances_NegativeDays 는 음수 days 가 400 으로 거부되는지 검증한다.
func TestListPerformances_NegativeDays(t *testing.T) {
	h := NewPerformanceHandler(newMockPerformanceRepo(), &mockImageRepo{}, &fakeImageStore{}, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/performances?days=-1", nil)
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Result().StatusCode)
	}
}

// TestListPerformances_InvalidStatus 는 무효한 상태 필터가 400 으로 거부되는지 검증한다.
func TestListPerformances_InvalidStatus(t *testing.T) {
	h := NewPerformanceHandler(newMockPerformanceRepo(), &mockImageRepo{}, &fakeImageStore{}, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/performances?status=draft", nil)
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Result().StatusCode)
	}

	var body apiErrorResponse
	json.NewDecoder(w.Result().Body).Decode(&body)
	if body.Code != model.ErrCodeInvalidStatusFilter {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidStatusFilter)
	}
}

// TestGetPerformanceImages_ReturnsPresignedURLs 는 서명 URL 목록이 반환되는지 검증한다.
func TestGetPerformanceImages_ReturnsPresignedURLs(t *testing.T) {
	repo := newMockPerformanceRepo()
	repo.performances[5] = samplePerformance(5)
	imgRepo := &mockImageRepo{images: []*model.PerformanceImage{
		{ID: 1, PerformID: 5, FilePath: "performance/5/a.jpg", OriginalName: "a.jpg", IsMain: true},
		{ID: 2, PerformID: 5, FilePath: "performance/5/b.jpg", OriginalName: "b.jpg"},
	}}
	h := NewPerformanceHandler(repo, imgRepo, &fakeImageStore{}, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/performances/5/images", nil)
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}

	var body map[string][]imageResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	images := body["images"]
	if len(images) != 2 {
		t.Fatalf("images = %d, want 2", len(images))
	}
	if !strings.Contains(images[0].URL, "performance/5/a.jpg") {
		t.Errorf("url = %q", images[0].URL)
	}
	// 유효 기간 1시간이 스토리지에 전달되어야 한다
	if !strings.Contains(images[0].URL, "ttl=3600") {
		t.Errorf("url = %q, 1시간 서명이어야 한다", images[0].URL)
	}
	if !images[0].IsMain {
		t.Error("first image should be main")
	}
}

// TestGetPerformanceImages_NotFound 는 미존재 공연이 404 로 거부되는지 검증한다.
func TestGetPerformanceImages_NotFound(t *testing.T) {
	h := NewPerformanceHandler(newMockPerformanceRepo(), &mockImageRepo{}, &fakeImageStore{}, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/performances/99/images", nil)
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Result().StatusCode)
	}
}

// TestGetPerformanceImages_PresignFailure 는 서명 실패가 502 로 변환되는지 검증한다.
func TestGetPerformanceImages_PresignFailure(t *testing.T) {
	repo := newMockPerformanceRepo()
	repo.performances[5] = samplePerformance(5)
	imgRepo := &mockImageRepo{images: []*model.PerformanceImage{{ID: 1, FilePath: "performance/5/a.jpg"}}}
	store := &fakeImageStore{presignErr: errors.New("r2 unreachable")}
	h := NewPerformanceHandler(repo, imgRepo, store, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/performances/5/images", nil)
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Result().StatusCode)
	}
}

// TestUpdatePerformance_Saves 는 운영자 수정이 저장되는지 검증한다.
func TestUpdatePerformance_Saves(t *testing.T) {
	repo := newMockPerformanceRepo()
	repo.performances[5] = samplePerformance(5)
	h := NewPerformanceHandler(repo, &mockImageRepo{}, &fakeImageStore{}, time.UTC, newHandlerLogger())

	body := `{
		"title": "연말 단독 공연",
		"perform_date": "2025-12-31 20:00",
		"booking_price": 44000,
		"onsite_price": 55000,
		"booking_url": "https://ticket.melon.com/show/1",
		"artists": [{"name": "새소년", "insta": "@se_so_neon"}],
		"is_cancelled": false
	}`
	req := httptest.NewRequest(http.MethodPut, "/api/performances/5", strings.NewReader(body))
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	if repo.updated == nil {
		t.Fatal("Update should have been called")
	}
	if repo.updated.Title != "연말 단독 공연" {
		t.Errorf("title = %q", repo.updated.Title)
	}
	want := time.Date(2025, 12, 31, 20, 0, 0, 0, time.UTC)
	if repo.updated.PerformDate == nil || !repo.updated.PerformDate.Equal(want) {
		t.Errorf("perform_date = %v, want %v", repo.updated.PerformDate, want)
	}
	if repo.updated.BookingPrice == nil || *repo.updated.BookingPrice != 44000 {
		t.Errorf("booking_price = %v, want 44000", repo.updated.BookingPrice)
	}
	if len(repo.updated.Artists) != 1 || repo.updated.Artists[0].Handle != "@se_so_neon" {
		t.Errorf("artists = %v", repo.updated.Artists)
	}
}

// TestUpdatePerformance_EmptyDateClearsField 는 빈 perform_date 가 일시를
// 비우는지 검증한다.
func TestUpdatePerformance_EmptyDateClearsField(t *testing.T) {
	repo := newMockPerformanceRepo()
	repo.performances[5] = samplePerformance(5)
	h := NewPerformanceHandler(repo, &mockImageRepo{}, &fakeImageStore{}, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodPut, "/api/performances/5", strings.NewReader(`{"title": "일정 미정 공연"}`))
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	if repo.updated.PerformDate != nil {
		t.Errorf("perform_date = %v, want nil", repo.updated.PerformDate)
	}
}

// TestUpdatePerformance_InvalidDate 는 잘못된 일시 형식이 400 으로 거부되는지 검증한다.
func TestUpdatePerformance_InvalidDate(t *testing.T) {
	repo := newMockPerformanceRepo()
	repo.performances[5] = samplePerformance(5)
	h := NewPerformanceHandler(repo, &mockImageRepo{}, &fakeImageStore{}, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodPut, "/api/performances/5", strings.NewReader(`{"perform_date": "12월 31일"}`))
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Result().StatusCode)
	}
	if repo.updated != nil {
		t.Error("Update should not have been called")
	}
}

// TestUpdatePerformance_NotFound 는 미존재 공연 수정이 404 인지 검증한다.
func TestUpdatePerformance_NotFound(t *testing.T) {
	h := NewPerformanceHandler(newMockPerformanceRepo(), &mockImageRepo{}, &fakeImageStore{}, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodPut, "/api/performances/99", strings.NewReader(`{"title": "x"}`))
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Result().StatusCode)
	}
}

// TestUpdatePerformance_InvalidID 는 수치가 아닌 ID 가 400 인지 검증한다.
func TestUpdatePerformance_InvalidID(t *testing.T) {
	h := NewPerformanceHandler(newMockPerformanceRepo(), &mockImageRepo{}, &fakeImageStore{}, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodPut, "/api/performances/abc", strings.NewReader(`{"title": "x"}`))
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Result().StatusCode)
	}
}

// TestDeletePerformance_RemovesRecordAndObjects 는 삭제 시 스토리지 오브젝트도
// 함께 정리되는지 검증한다.
func TestDeletePerformance_RemovesRecordAndObjects(t *testing.T) {
	repo := newMockPerformanceRepo()
	repo.performances[5] = samplePerformance(5)
	imgRepo := &mockImageRepo{images: []*model.PerformanceImage{
		{ID: 1, FilePath: "performance/5/a.jpg"},
		{ID: 2, FilePath: "performance/5/b.jpg"},
	}}
	store := &fakeImageStore{}
	h := NewPerformanceHandler(repo, imgRepo, store, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/performances/5", nil)
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Result().StatusCode)
	}
	if repo.deletedID != 5 {
		t.Errorf("deletedID = %d, want 5", repo.deletedID)
	}
	if len(store.deleted) != 2 {
		t.Errorf("deleted objects = %d, want 2", len(store.deleted))
	}
}

// TestDeletePerformance_StorageFailureStillDeletes 는 오브젝트 삭제 실패가
// 레코드 삭제를 막지 않는지 검증한다.
func TestDeletePerformance_StorageFailureStillDeletes(t *testing.T) {
	repo := newMockPerformanceRepo()
	repo.performances[5] = samplePerformance(5)
	imgRepo := &mockImageRepo{images: []*model.PerformanceImage{{ID: 1, FilePath: "performance/5/a.jpg"}}}
	store := &fakeImageStore{deleteErr: errors.New("r2 down")}
	h := NewPerformanceHandler(repo, imgRepo, store, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/performances/5", nil)
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Result().StatusCode)
	}
	if repo.deletedID != 5 {
		t.Errorf("deletedID = %d, want 5", repo.deletedID)
	}
}

// TestDeletePerformance_NotFound 는 미존재 공연 삭제가 404 인지 검증한다.
func TestDeletePerformance_NotFound(t *testing.T) {
	h := NewPerformanceHandler(newMockPerformanceRepo(), &mockImageRepo{}, &fakeImageStore{}, time.UTC, newHandlerLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/performances/99", nil)
	w := httptest.NewRecorder()
	newPerformanceRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Result().StatusCode)
	}
}
