package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/cors"

	"lunastudios/internal/auth"
	"lunastudios/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Tokens   auth.TokenCodec
	Users    lastLoginStore
	Dispatch *service.Dispatcher

	Auth          *service.AuthService
	Profile       *service.ProfileService
	Sessions      *service.SessionService
	Payments      *service.PaymentService
	Packages      *service.PackageService
	Deliveries    *service.DeliveryService
	Notifications *service.NotificationService
	Admin         *service.AdminService
	Reports       *service.ReportService

	AllowedOrigins []string
	UploadDir      string
	UploadMaxBytes int64
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	tokens   auth.TokenCodec
	users    lastLoginStore
	dispatch *service.Dispatcher

	authSvc       *service.AuthService
	profileSvc    *service.ProfileService
	sessionSvc    *service.SessionService
	paymentSvc    *service.PaymentService
	packageSvc    *service.PackageService
	deliverySvc   *service.DeliveryService
	notifSvc      *service.NotificationService
	adminSvc      *service.AdminService
	reportSvc     *service.ReportService
	uploadDir     string
	uploadMax     int64

	loginLimiter *loginLimiter
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	if opts.UploadMaxBytes == 0 {
		opts.UploadMaxBytes = 100 << 20
	}

	a := &api{
		logger:       logger,
		isProd:       opts.IsProd,
		dbPing:       opts.DBPing,
		tokens:       opts.Tokens,
		users:        opts.Users,
		dispatch:     opts.Dispatch,
		authSvc:      opts.Auth,
		profileSvc:   opts.Profile,
		sessionSvc:   opts.Sessions,
		paymentSvc:   opts.Payments,
		packageSvc:   opts.Packages,
		deliverySvc:  opts.Deliveries,
		notifSvc:     opts.Notifications,
		adminSvc:     opts.Admin,
		reportSvc:    opts.Reports,
		uploadDir:    opts.UploadDir,
		uploadMax:    opts.UploadMaxBytes,
		loginLimiter: newLoginLimiter(5*time.Minute, 10),
	}

	apiMux := http.NewServeMux()

	apiMux.HandleFunc("POST /api/register", a.handleRegister)
	apiMux.HandleFunc("POST /api/login", a.handleLogin)
	apiMux.HandleFunc("POST /api/forgot-password", a.handleForgotPassword)
	apiMux.HandleFunc("POST /api/reset-password", a.handleResetPassword)
	apiMux.HandleFunc("POST /api/refresh-session", a.requireAuth(a.handleRefreshSession))
	apiMux.HandleFunc("POST /api/change-password", a.requireAuth(a.handleChangePassword))

	apiMux.HandleFunc("GET /api/profile", a.requireAuth(a.handleProfileGet))
	apiMux.HandleFunc("PUT /api/profile", a.requireAuth(a.handleProfileUpdate))

	apiMux.HandleFunc("GET /api/packages", a.handlePackagesList)
	apiMux.HandleFunc("POST /api/packages", a.requireAuth(a.handlePackagesCreate))
	apiMux.HandleFunc("POST /api/custom-package", a.requireAuth(a.handleCustomPackage))

	apiMux.HandleFunc("GET /api/sessions", a.requireAuth(a.handleSessionsList))
	apiMux.HandleFunc("POST /api/sessions", a.requireAuth(a.handleSessionsCreate))
	apiMux.HandleFunc("GET /api/sessions/{id}", a.requireAuth(a.handleSessionsGet))
	apiMux.HandleFunc("PUT /api/sessions/{id}", a.requireAuth(a.handleSessionsUpdate))
	apiMux.HandleFunc("GET /api/calendar-events", a.requireAuth(a.handleCalendarEvents))
	apiMux.HandleFunc("GET /api/search", a.requireAuth(a.handleSearch))

	apiMux.HandleFunc("GET /api/payments", a.requireAuth(a.handlePaymentsList))
	apiMux.HandleFunc("POST /api/payments", a.requireAuth(a.handlePaymentsCreate))

	apiMux.HandleFunc("GET /api/photo-deliveries", a.requireAuth(a.handleDeliveriesList))
	apiMux.HandleFunc("POST /api/photo-deliveries", a.requireAuth(a.handleDeliveriesCreate))
	apiMux.HandleFunc("POST /api/photo-deliveries/{id}/download", a.requireAuth(a.handleDeliveryDownload))

	apiMux.HandleFunc("GET /api/notifications", a.requireAuth(a.handleNotificationsList))
	apiMux.HandleFunc("PUT /api/notifications/{id}/read", a.requireAuth(a.handleNotificationRead))

	apiMux.HandleFunc("GET /api/reports/sessions", a.requireAuth(a.handleReportSessions))
	apiMux.HandleFunc("GET /api/reports/export/sessions", a.requireAuth(a.handleReportExportSessions))
	apiMux.HandleFunc("GET /api/reports/income", a.requireAdmin(a.handleReportIncome))

	apiMux.HandleFunc("GET /api/admin/dashboard", a.requireAdmin(a.handleAdminDashboard))
	apiMux.HandleFunc("GET /api/admin/stats", a.requireAdmin(a.handleAdminStats))
	apiMux.HandleFunc("GET /api/admin/users", a.requireAdmin(a.handleAdminUsers))
	apiMux.HandleFunc("PUT /api/admin/users/{id}/status", a.requireAdmin(a.handleAdminUserStatus))
	apiMux.HandleFunc("GET /api/admin/config", a.requireAdmin(a.handleAdminConfigGet))
	apiMux.HandleFunc("PUT /api/admin/config", a.requireAdmin(a.handleAdminConfigPut))
	apiMux.HandleFunc("POST /api/admin/send-reminders", a.requireAdmin(a.handleAdminSendReminders))

	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := apiMux.Handler(r)
		if pattern == "" {
			WriteError(w, http.StatusNotFound, "not_found", "not found")
			return
		}
		h.ServeHTTP(w, r)
	})

	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.uploadDir)))

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/healthz":
			a.handleHealthz(w, r)
		case strings.HasPrefix(r.URL.Path, "/uploads/"):
			uploads.ServeHTTP(w, r)
		case strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api":
			apiHandler.ServeHTTP(w, r)
		default:
			WriteError(w, http.StatusNotFound, "not_found", "not found")
		}
	})

	var h http.Handler = root
	h = cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})(h)
	h = ClientInfo()(h)
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
