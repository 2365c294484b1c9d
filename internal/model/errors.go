// Package model 은 도메인 모델을 정의한다.
package model

import "fmt"

// APIError 는 관리 API 의 통일 에러 포맷을 표현한다.
// 원인 카테고리와 운영자용 대처 방법을 포함한다.
type APIError struct {
	Code     string // 에러 코드
	Message  string // 에러 메시지
	Category string // 카테고리: auth, validation, performance, channel, system
	Action   string // 운영자용 대처 방법
}

// Error 는 error 인터페이스를 구현한다.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 정의된 에러 코드
const (
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodePerformanceNotFound  = "PERFORMANCE_NOT_FOUND"
	ErrCodeChannelNotFound      = "CHANNEL_NOT_FOUND"
	ErrCodeDuplicateChannel     = "DUPLICATE_CHANNEL"
	ErrCodeInvalidStatusFilter  = "INVALID_STATUS_FILTER"
	ErrCodeStorageUnavailable   = "STORAGE_UNAVAILABLE"
)

// NewUnauthorizedError 는 인증 실패 에러를 생성한다.
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "관리 토큰이 없거나 올바르지 않습니다.",
		Category: "auth",
		Action:   "Authorization: Bearer <ADMIN_TOKEN> 헤더를 확인해 주세요.",
	}
}

// NewInvalidRequestError 는 요청 형식 오류 에러를 생성한다.
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("요청 형식이 올바르지 않습니다: %s", reason),
		Category: "validation",
		Action:   "요청 본문과 파라미터를 확인해 주세요.",
	}
}

// NewPerformanceNotFoundError 는 공연 레코드 미존재 에러를 생성한다.
func NewPerformanceNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodePerformanceNotFound,
		Message:  fmt.Sprintf("지정한 공연을 찾을 수 없습니다: %d", id),
		Category: "performance",
		Action:   "공연 ID를 확인해 주세요.",
	}
}

// NewChannelNotFoundError 는 채널 미존재 에러를 생성한다.
func NewChannelNotFoundError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeChannelNotFound,
		Message:  fmt.Sprintf("지정한 채널을 찾을 수 없습니다: %s", username),
		Category: "channel",
		Action:   "채널 username 을 확인해 주세요.",
	}
}

// NewDuplicateChannelError 는 이미 등록된 채널을 재등록하려 한 경우의 에러를 생성한다.
func NewDuplicateChannelError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateChannel,
		Message:  fmt.Sprintf("이미 등록된 채널입니다: %s", username),
		Category: "channel",
		Action:   "채널 목록에서 해당 채널을 확인해 주세요.",
	}
}

// NewInvalidStatusFilterError 는 무효한 상태 필터 에러를 생성한다.
func NewInvalidStatusFilterError(filter string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatusFilter,
		Message:  fmt.Sprintf("무효한 상태 필터입니다: %s", filter),
		Category: "validation",
		Action:   "필터에는 all, pending, completed 중 하나를 지정해 주세요.",
	}
}

// NewStorageUnavailableError 는 오브젝트 스토리지 오류 에러를 생성한다.
func NewStorageUnavailableError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeStorageUnavailable,
		Message:  fmt.Sprintf("이미지 스토리지 접근에 실패했습니다: %s", reason),
		Category: "system",
		Action:   "R2 설정과 네트워크 상태를 확인한 뒤 다시 시도해 주세요.",
	}
}
