package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/limbo/nexotime/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 10 * time.Second

type Server struct {
	mx               *chi.Mux
	srv              *http.Server
	logger           *zap.Logger
	requestTimeout   time.Duration
	userService      service.UserServiceI
	linkService      service.LinkServiceI
	habitsService    service.HabitsServiceI
	ledgerService    service.LedgerServiceI
	routinesService  service.RoutinesServiceI
	remindersService service.RemindersServiceI
	resolver         service.AccountResolver
	tokens           TokenIssuer
}

type ServicesList struct {
	UserService      service.UserServiceI
	LinkService      service.LinkServiceI
	HabitsService    service.HabitsServiceI
	LedgerService    service.LedgerServiceI
	RoutinesService  service.RoutinesServiceI
	RemindersService service.RemindersServiceI
	// Resolves bearer tokens of protected routes
	Resolver       service.AccountResolver
	Tokens         TokenIssuer
	Logger         *zap.Logger
	RequestTimeout time.Duration
}

func New(opts *ServicesList) *Server {
	s := &Server{
		mx:               chi.NewMux(),
		logger:           opts.Logger,
		requestTimeout:   opts.RequestTimeout,
		userService:      opts.UserService,
		linkService:      opts.LinkService,
		habitsService:    opts.HabitsService,
		ledgerService:    opts.LedgerService,
		routinesService:  opts.RoutinesService,
		remindersService: opts.RemindersService,
		resolver:         opts.Resolver,
		tokens:           opts.Tokens,
	}
	if s.logger == nil {
		s.logger = zap.L()
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = defaultRequestTimeout
	}
	s.mountRoutes()
	s.srv = &http.Server{
		Handler:           s.mx,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) mountRoutes() {
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware, s.MetricsMiddleware)

	s.mx.Get("/", s.Health)
	s.mx.Method(http.MethodGet, "/metrics", promhttp.Handler())
	s.mx.Post("/auth/register", s.Register)
	s.mx.Post("/auth/login", s.Login)

	s.mx.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware, s.LoggerExtensionMiddleware)

		r.Get("/auth/me", s.Me)
		r.Delete("/auth/me", s.DeleteAccount)

		r.Get("/habits", s.GetHabits)
		r.Post("/habits", s.CreateHabit)
		r.Delete("/habits/{id}", s.DeleteHabit)

		r.Get("/routines/{type}", s.GetRoutine)
		r.Post("/routines", s.AddRoutineStep)
		r.Put("/routines/bulk/{type}", s.ReplaceRoutine)

		r.Get("/reminders", s.GetReminders)
		r.Post("/reminders", s.CreateReminder)
		r.Delete("/reminders/{id}", s.DeleteReminder)

		r.Post("/logs", s.LogHabit)
		r.Get("/logs/{date}", s.GetDaySummary)
		r.Get("/logs/week/{date}", s.GetWeekSummary)

		r.Post("/telegram/generate-code", s.GenerateLinkCode)
	})
}

func (s *Server) Handler() http.Handler {
	return s.mx
}

// Run blocks serving on addr until Shutdown is called. Shutdown may be
// called before Run, in which case Run returns nil at once.
func (s *Server) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("api server started", zap.String("address", ln.Addr().String()))
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
