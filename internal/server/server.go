package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	adminapp "github.com/surveynest/surveynest-services/api/internal/admin/application"
	"github.com/surveynest/surveynest-services/api/internal/config"
	mongodoc "github.com/surveynest/surveynest-services/api/internal/infrastructure/mongo"
	stripeproc "github.com/surveynest/surveynest-services/api/internal/infrastructure/stripe"
	adminhttp "github.com/surveynest/surveynest-services/api/internal/interfaces/http/admin"
	commonhttp "github.com/surveynest/surveynest-services/api/internal/interfaces/http/common"
	publichttp "github.com/surveynest/surveynest-services/api/internal/interfaces/http/public"
	publicapp "github.com/surveynest/surveynest-services/api/internal/public/application"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Server は HTTP サーバーのライフサイクルを管理し、Public/Admin の各ハンドラへ依存注入するコンポジションルート。
// ストア接続はプロセス起動時に明示的に確立し、終了時に必ず切断する。
type Server struct {
	logger         *log.Logger
	client         *mongo.Client
	database       *mongo.Database
	entitlements   publicapp.RoleEntitlementService
	engagement     publicapp.EngagementService
	surveyQueries  publicapp.SurveyQueryService
	surveyCommands publicapp.SurveyCommandService
	adminUsers     adminapp.UserService
	adminSurveys   adminapp.SurveyService
	adminPayments  adminapp.PaymentService
	processor      publicapp.PaymentProcessor
	jwtConfigs     []config.JWTConfig
	jwtAudience    string
	tokenTTL       time.Duration
	addr           string
	allowedOrigins []string
}

type authenticatedUser = commonhttp.AuthenticatedUser

// Run はHTTPサーバーを起動し、Public/Adminのルーティングやミドルウェアを組み立てる。
// インフラ初期化に限定し、ドメインロジックをここに書かないことで層の責務を守る。
func (s *Server) Run() error {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())
	router.Post("/auth/token", s.tokenIssueHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:         s.logger,
		SurveyQueries:  s.surveyQueries,
		SurveyCommands: s.surveyCommands,
		Engagement:     s.engagement,
		Entitlements:   s.entitlements,
		Processor:      s.processor,
	})
	publicHandler.Register(router, s.authMiddleware)

	adminHandler := adminhttp.NewHandler(adminhttp.Config{
		Logger:         s.logger,
		UserService:    s.adminUsers,
		SurveyService:  s.adminSurveys,
		PaymentService: s.adminPayments,
		Entitlements:   s.entitlements,
	})
	router.Route("/admin", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Use(s.requireAdmin)
		adminHandler.Register(r)
	})

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP サーバー起動: http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	waitForShutdown(httpServer, errChan, s)
	return nil
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && len(allowed) > 0 && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler は MongoDB への疎通確認を行い、監視系からのヘルスチェック要求に応える。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// authMiddleware は Authorization ヘッダーから JWT を検証し、認証済みユーザーをコンテキストへ詰める。
// Public/Admin 双方のルートで利用するため Server に集約している。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authorization ヘッダーがありません"})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Bearer トークンを指定してください"})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "アクセストークンが空です"})
			return
		}

		claims, err := s.parseAuthToken(tokenString)
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		user := authenticatedUser{
			Email: claims.Subject,
			Name:  claims.Name,
		}

		ctx := commonhttp.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin は認証済みユーザーが admin ティアを持つことを検証する。
// 権限の導出は RoleEntitlementService に委ね、ここでは結果のフラグのみを見る。
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := commonhttp.UserFromContext(r.Context())
		if !ok {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "認証されていません"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		caps, err := s.entitlements.Capabilities(ctx, user.Email)
		if err != nil {
			s.logger.Printf("admin 権限の確認に失敗: %v", err)
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "権限の確認に失敗しました"})
			return
		}
		if !caps.IsAdmin {
			s.writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin 権限が必要です"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// parseAuthToken は複数の JWT 設定を順番に試し、署名検証と Issuer/Audience の整合性を確認する。
// いずれの設定にも一致しない場合は認証エラーを返す。
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	if len(s.jwtConfigs) == 0 {
		return nil, fmt.Errorf("認証設定が構成されていません")
	}

	for _, cfg := range s.jwtConfigs {
		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			return cfg.Secret, nil
		}, jwt.WithLeeway(30*time.Second))

		if err != nil || !token.Valid {
			continue
		}

		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			continue
		}

		now := time.Now()
		if claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Time) {
			continue
		}
		if claims.NotBefore != nil && now.Before(claims.NotBefore.Time) {
			continue
		}
		if claims.Subject == "" {
			continue
		}
		if s.jwtAudience != "" && !contains(claims.Audience, s.jwtAudience) {
			continue
		}

		return claims, nil
	}

	return nil, fmt.Errorf("アクセストークンが無効です")
}

// tokenIssueHandler はサインイン済みクライアントへ短命のアクセストークンを発行する。
// 外部の本人確認（OAuth 等）が済んでいる前提で、ここでは email をそのまま Subject に載せる。
func (s *Server) tokenIssueHandler() http.HandlerFunc {
	type tokenRequest struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		r.Body = http.MaxBytesReader(w, r.Body, commonhttp.MaxRequestBody)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "リクエストボディの形式が不正です"})
			return
		}

		email := strings.TrimSpace(req.Email)
		if email == "" {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email は必須です"})
			return
		}

		cfg := s.jwtConfigs[0]
		now := time.Now()
		claims := authClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   email,
				Issuer:    cfg.Issuer,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			},
			Name: strings.TrimSpace(req.Name),
		}
		if s.jwtAudience != "" {
			claims.Audience = jwt.ClaimStrings{s.jwtAudience}
		}

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
		if err != nil {
			s.logger.Printf("トークンの署名に失敗: %v", err)
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "トークンの発行に失敗しました"})
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

// contains は Audience 等の検証で利用する単純な包含チェック。
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

type authClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// writeJSON は JSON レスポンスの共通書き込み処理。
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("JSON エンコードに失敗: %v", err)
	}
}

// shutdown は MongoDB クライアントをタイムアウト付きで切断し、プロセス終了時のリソースリークを防ぐ。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Printf("MongoDB 切断時にエラー: %v", err)
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.logger.Fatalf("サーバーが異常終了: %v", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
}

// New は Config と Mongo クライアントを受け取り、アプリケーションサービスとハンドラを組み立てた Server を返す。
// 依存解決の起点となるファクトリとして機能する。
func New(cfg config.Config, client *mongo.Client) *Server {
	srv := &Server{
		logger:         cfg.ServerLog,
		client:         client,
		database:       client.Database(cfg.MongoDatabase),
		jwtConfigs:     append([]config.JWTConfig(nil), cfg.JWTConfigs...),
		jwtAudience:    cfg.JWTAudience,
		tokenTTL:       cfg.TokenTTL,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
	}

	surveyRepo := mongodoc.NewSurveyRepository(srv.database, cfg.SurveyCollection)
	userRepo := mongodoc.NewUserRepository(srv.database, cfg.UserCollection)
	paymentRepo := mongodoc.NewPaymentRepository(srv.database, cfg.PaymentCollection)

	// email の一意性はストア側のインデックスが担保する。作成できない状態で起動しても
	// upsert の重複防止が成り立たないため、ここで失敗したらプロセスごと落とす。
	indexCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		srv.logger.Fatalf("ユーザーインデックスの作成に失敗しました: %v", err)
	}

	srv.processor = stripeproc.NewProcessor(cfg.StripeSecretKey)
	srv.entitlements = publicapp.NewRoleEntitlementService(userRepo, paymentRepo, srv.processor)
	srv.engagement = publicapp.NewEngagementService(surveyRepo)
	srv.surveyQueries = publicapp.NewSurveyQueryService(surveyRepo)
	srv.surveyCommands = publicapp.NewSurveyCommandService(surveyRepo, srv.entitlements)

	srv.adminUsers = adminapp.NewUserService(userRepo)
	srv.adminSurveys = adminapp.NewSurveyService(surveyRepo)
	srv.adminPayments = adminapp.NewPaymentService(paymentRepo)

	return srv
}
