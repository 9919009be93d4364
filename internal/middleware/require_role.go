package middleware

import (
	"net/http"

	"github.com/hitoshi/tellerdesk/internal/authz"
	"github.com/hitoshi/tellerdesk/internal/model"
)

// NewRequireRoleMiddleware は指定ロール以上の権限を要求するミドルウェアを返す。
// セッションミドルウェアの後に配置する。BANNEDロールは常に拒否される。
func NewRequireRoleMiddleware(required model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := IdentityFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			if d := authz.Authorize(identity, required); !d.Allowed {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
