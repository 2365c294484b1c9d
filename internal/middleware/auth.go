package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/litup/gigfeed/internal/model"
)

// NewAdminAuthMiddleware 는 Bearer 토큰으로 관리 API 를 보호하는 미들웨어를 반환한다.
// Authorization: Bearer <ADMIN_TOKEN> 헤더를 검사하고, 불일치 시 401 을 반환한다.
// 토큰 비교는 타이밍 공격을 피하기 위해 상수 시간으로 수행한다.
func NewAdminAuthMiddleware(adminToken string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
