package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tellerdesk/internal/metrics"
	"github.com/hitoshi/tellerdesk/internal/middleware"
	"github.com/hitoshi/tellerdesk/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 行員管理
	StaffService StaffServiceInterface

	// 顧客管理
	PersonalService PersonalServiceInterface
	CompanyService  CompanyServiceInterface

	// 書類アップロード
	UploadRelay   UploadRelayInterface
	UploadMaxSize int64

	// メトリクス
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SessionMiddleware → CSRFMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 認証不要のルート（サインイン、/health、/metrics、融資参照）は
// セッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通: panic回復 → アクセスログ → セキュリティヘッダー
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Metrics)
	userHandler := NewUserHandler(deps.StaffService)
	customerHandler := NewCustomerHandler(deps.PersonalService, deps.Metrics)
	companyHandler := NewCompanyHandler(deps.CompanyService, deps.Metrics)
	uploadHandler := NewUploadHandler(deps.UploadRelay, deps.UploadMaxSize, deps.Metrics)

	csrfConfig := middleware.CSRFConfig{
		CookieSecure: deps.AuthConfig.CookieSecure,
		CookieDomain: deps.AuthConfig.CookieDomain,
	}

	// --- 認証不要のルート ---

	r.Get("/health", handleHealth)

	if deps.Gatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.Gatherer).ServeHTTP)
	}

	// 融資審査システム向けの公開参照。管理画面とは別オリジンから叩かれるため
	// ワイルドカードCORSを個別に適用する。
	r.With(middleware.NewPublicCORSMiddleware()).
		Get("/api/company-loan", companyHandler.CompanyLoan)

	// 管理画面オリジン向けのルート群
	r.Group(func(r chi.Router) {
		// CORS ミドルウェアを最上位に適用（全ルートに効く）
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

		// サインインとセッション確認はセッションミドルウェアの外に置く。
		// /api/sessionは自前でCookieを検証して401を返す。
		r.Post("/api/auth/sign-in", authHandler.SignIn)
		r.Post("/api/auth/sign-out", authHandler.SignOut)
		r.Get("/api/session", authHandler.Session)

		// 管理画面が状態変更リクエストに付与するCSRFトークンの取得
		r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(csrfConfig).ServeHTTP)

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: Session → CSRF → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.UserFinder))
			// BANNEDロールのセッションは全業務ルートで拒否する
			r.Use(middleware.NewRequireRoleMiddleware(model.RoleUser))
			// セッションCookieはSameSite=Laxだが、許可オリジンへ資格情報付きCORSを
			// 開けているため、状態変更メソッドはダブルサブミット検証も必須とする
			r.Use(middleware.NewCSRFMiddleware(csrfConfig))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			// パスワード変更（操作中以外のセッションは無効化される）
			r.Post("/api/auth/change-password", authHandler.ChangePassword)

			// 個人顧客管理
			r.Route("/api/customers", func(r chi.Router) {
				r.Get("/", customerHandler.GetCustomers)
				r.Post("/", customerHandler.CreateCustomer)
				r.Put("/", customerHandler.ReplaceCustomer)
				r.Patch("/", customerHandler.UpdateCustomer)
				r.Delete("/", customerHandler.DeleteCustomer)
			})

			// 法人顧客管理
			r.Route("/api/company-customers", func(r chi.Router) {
				r.Get("/", companyHandler.GetCompanyCustomers)
				r.Post("/", companyHandler.CreateCompanyCustomer)
				r.Put("/", companyHandler.ReplaceCompanyCustomer)
				r.Patch("/", companyHandler.UpdateCompanyCustomer)
				r.Delete("/", companyHandler.DeleteCompanyCustomer)
			})

			// 書類アップロード（アップロード専用レート制限を追加）
			r.With(deps.RateLimiter.UploadMiddleware()).
				Post("/api/upload", uploadHandler.Upload)

			// --- 管理者限定のルート ---
			r.Group(func(r chi.Router) {
				r.Use(middleware.NewRequireRoleMiddleware(model.RoleAdmin))

				r.Post("/api/auth/register", userHandler.Register)
				r.Post("/api/set-role", userHandler.SetRole)

				r.Route("/api/users", func(r chi.Router) {
					r.Get("/", userHandler.ListUsers)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", userHandler.GetUser)
						r.Patch("/", userHandler.UpdateUserRole)
						r.Delete("/", userHandler.DeleteUser)

						// 旧フロントエンド互換の削除エンドポイント
						r.Delete("/delete", userHandler.DeleteUser)
					})
				})
			})
		})
	})

	return r
}

// handleHealth はロードバランサー向けの死活監視エンドポイント。
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
