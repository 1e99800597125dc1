package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
)

// Ledger is the transaction side of the API.
type Ledger interface {
	Create(ctx context.Context, ownerID int64, t core.Transaction) (core.EnrichedTransaction, error)
	Update(ctx context.Context, ownerID, id int64, t core.Transaction) (core.EnrichedTransaction, error)
	Delete(ctx context.Context, ownerID, id int64) error
	Get(ctx context.Context, ownerID, id int64) (core.EnrichedTransaction, error)
	List(ctx context.Context, ownerID int64) ([]core.EnrichedTransaction, error)
	Groups(ctx context.Context, ownerID int64) ([]core.DateGroup, error)
}

// Catalog serves account groups, accounts and categories.
type Catalog interface {
	AccountGroup(ctx context.Context, ownerID, id int64) (core.AccountGroup, error)
	AccountGroups(ctx context.Context, ownerID int64) ([]core.AccountGroup, error)
	CreateAccountGroup(ctx context.Context, ownerID int64, g core.AccountGroup) (core.AccountGroup, error)
	UpdateAccountGroup(ctx context.Context, ownerID, id int64, g core.AccountGroup) (core.AccountGroup, error)
	DeleteAccountGroup(ctx context.Context, ownerID, id int64) error

	Account(ctx context.Context, ownerID, id int64) (core.Account, error)
	Accounts(ctx context.Context, ownerID int64) ([]core.Account, error)
	CreateAccount(ctx context.Context, ownerID int64, a core.Account) (core.Account, error)
	UpdateAccount(ctx context.Context, ownerID, id int64, a core.Account) (core.Account, error)
	DeleteAccount(ctx context.Context, ownerID, id int64) error

	Category(ctx context.Context, ownerID, id int64) (core.Category, error)
	Categories(ctx context.Context, ownerID int64, kind *core.CategoryKind) ([]core.Category, error)
	CreateCategory(ctx context.Context, ownerID int64, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, ownerID, id int64, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, ownerID, id int64) error
}

// Pinger reports storage reachability for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures NewServer. Zero values pick the defaults.
type Options struct {
	Addr               string
	OwnerID            int64
	CORSAllowedOrigins []string
	RateLimitRPM       int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	ledger  Ledger
	catalog Catalog
	pinger  Pinger
	ownerID int64

	limiter  *ratelimit.Limiter
	detector *security.Detector
	metrics  *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(opts Options, ledger Ledger, catalog Catalog, pinger Pinger) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	ownerID := opts.OwnerID
	if ownerID <= 0 {
		ownerID = 1
	}
	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		ledger:   ledger,
		catalog:  catalog,
		pinger:   pinger,
		ownerID:  ownerID,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM}),
		detector: security.NewDetector(),
		metrics:  &appMetrics{uptime: time.Now()},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/account-groups", s.handleListAccountGroups)
	mux.HandleFunc("POST /api/account-groups", s.handleCreateAccountGroup)
	mux.HandleFunc("GET /api/account-groups/{id}", s.handleGetAccountGroup)
	mux.HandleFunc("PUT /api/account-groups/{id}", s.handleUpdateAccountGroup)
	mux.HandleFunc("DELETE /api/account-groups/{id}", s.handleDeleteAccountGroup)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /api/accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/transaction-groups", s.handleTransactionGroups)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", trace.HeaderRequestID},
		ExposedHeaders: []string{trace.HeaderRequestID},
		MaxAge:         600,
	})

	rateLimited := func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	}

	s.Server = http.Server{
		Addr: opts.Addr,
		Handler: chain(mux,
			trace.NewMiddleware(logger, s.detector.ExtractClientIP).Middleware,
			log.Middleware(logger),
			log.RequestIDMiddleware(trace.RequestIDFromRequest),
			s.detector.Middleware,
			corsHandler.Handler,
			security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
			s.countWrites,
			s.limiter.Middleware(s.detector.ExtractClientIP, rateLimited),
		),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// chain wraps h so that the first middleware is the outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// countWrites feeds the write counters exposed on /metrics.
func (s *Server) countWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ratelimit.IsMutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		if rw.statusCode < 400 {
			s.metrics.writes.Add(1)
		} else {
			s.metrics.failedWrites.Add(1)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
