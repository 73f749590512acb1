package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/mentalmate/mindbot/backend/pkg/apperrors"
	"github.com/mentalmate/mindbot/backend/pkg/utils"
)

const (
	// UserHeader carries the signed-in user's id.
	UserHeader = "X-User-ID"
	// AdminTokenHeader carries the support console token.
	AdminTokenHeader = "X-Admin-Token"
)

type userKey struct{}

// CORS 根据允许的来源构建跨域中间件
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", UserHeader, AdminTokenHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// RequireUser 要求请求携带用户标识，并写入上下文
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserHeader))
		if userID == "" {
			utils.RespondErr(w, apperrors.ErrNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, userID)))
	})
}

// UserID 返回 RequireUser 写入的用户标识
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(userKey{}).(string)
	return userID
}

// AdminToken 校验管理台令牌；token 为空时不校验
func AdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AdminTokenHeader)
			if got == "" {
				got = r.URL.Query().Get("token")
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				utils.RespondErr(w, apperrors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
