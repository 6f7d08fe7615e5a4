package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/internal/service"
	"github.com/limbo/nexotime/pkg/entity"
	"github.com/limbo/nexotime/pkg/httputil"
	"github.com/limbo/nexotime/pkg/metrics"
	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"
	appName    = "NexoTime API"
	appVersion = "2.0.0"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type UserResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	TelegramLinked bool   `json:"telegram_linked"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

type CreateHabitRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type RoutineStepRequest struct {
	Type        string `json:"type"`
	StepOrder   int    `json:"step_order"`
	Description string `json:"description"`
}

type CreateReminderRequest struct {
	Type string `json:"type"`
	Time string `json:"time"`
}

type LogRequest struct {
	HabitID   string `json:"habit_id"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type LogResponse struct {
	ID        int64  `json:"id"`
	HabitID   string `json:"habit_id"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type DaySummaryResponse struct {
	Date         string               `json:"date"`
	TotalHabits  int                  `json:"total_habits"`
	Completed    int                  `json:"completed"`
	Percentage   float64              `json:"percentage"`
	HabitsDetail []entity.HabitStatus `json:"habits_detail"`
}

type LinkCodeResponse struct {
	LinkCode string `json:"link_code"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"app":     appName,
		"version": appVersion,
	})
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req RegisterRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		logger.Error("registering error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	user, err := s.userService.Register(ctx, &service.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		s.writeServiceError(w, logger, "registering", err)
		return
	}
	s.writeToken(w, logger, http.StatusCreated, user)
	logger.Info("successful registration", zap.String("uid", user.ID.String()))
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req LoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		logger.Error("login error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	user, err := s.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, logger, "login", err)
		return
	}
	s.writeToken(w, logger, http.StatusOK, user)
	logger.Info("successful login", zap.String("uid", user.ID.String()))
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	user, err := s.userService.GetByID(ctx, uid)
	if err != nil {
		s.writeServiceError(w, logger, "getting profile", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	var req DeleteAccountRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		logger.Error("account deletion error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	if err := s.userService.DeleteAccount(ctx, uid, req.Password); err != nil {
		s.writeServiceError(w, logger, "account deletion", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusNoContent, nil)
	logger.Info("account deleted")
}

func (s *Server) GetHabits(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	habits, err := s.habitsService.ListHabits(ctx, uid)
	if err != nil {
		s.writeServiceError(w, logger, "getting habits", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, habits)
}

func (s *Server) CreateHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	var req CreateHabitRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		logger.Error("create habit error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	habit, err := s.habitsService.CreateHabit(ctx, uid, service.CreateHabitRequest{
		Name: req.Name,
		Icon: req.Icon,
	})
	if err != nil {
		s.writeServiceError(w, logger, "create habit", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, habit)
	logger.Info("habit created", zap.String("habit_id", habit.ID.String()))
}

func (s *Server) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("habit deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	if err = s.habitsService.DeleteHabit(ctx, id, uid); err != nil {
		s.writeServiceError(w, logger, "habit deletion", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"message": "habit deactivated"})
	logger.Info("habit deactivated", zap.String("habit_id", id.String()))
}

func (s *Server) GetRoutine(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	steps, err := s.routinesService.GetRoutine(ctx, uid, chi.URLParam(r, "type"))
	if err != nil {
		s.writeServiceError(w, logger, "getting routine", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, steps)
}

func (s *Server) AddRoutineStep(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	var req RoutineStepRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		logger.Error("adding routine step error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	step, err := s.routinesService.AddStep(ctx, uid, service.AddStepRequest{
		Type:        req.Type,
		StepOrder:   req.StepOrder,
		Description: req.Description,
	})
	if err != nil {
		s.writeServiceError(w, logger, "adding routine step", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, step)
}

// ReplaceRoutine takes a list of steps; only their descriptions and order in
// the list matter.
func (s *Server) ReplaceRoutine(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	var req []RoutineStepRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		logger.Error("replacing routine error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	descriptions := make([]string, 0, len(req))
	for _, step := range req {
		descriptions = append(descriptions, step.Description)
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	steps, err := s.routinesService.ReplaceRoutine(ctx, uid, chi.URLParam(r, "type"), descriptions)
	if err != nil {
		s.writeServiceError(w, logger, "replacing routine", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, steps)
	logger.Info("routine replaced", zap.Int("steps", len(steps)))
}

func (s *Server) GetReminders(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	reminders, err := s.remindersService.ListReminders(ctx, uid)
	if err != nil {
		s.writeServiceError(w, logger, "getting reminders", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, reminders)
}

func (s *Server) CreateReminder(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	var req CreateReminderRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		logger.Error("create reminder error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	reminder, err := s.remindersService.CreateReminder(ctx, uid, service.CreateReminderRequest{
		Type: req.Type,
		Time: req.Time,
	})
	if err != nil {
		s.writeServiceError(w, logger, "create reminder", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, reminder)
}

func (s *Server) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("reminder deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reminder id in path value")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	if err = s.remindersService.DeleteReminder(ctx, id, uid); err != nil {
		s.writeServiceError(w, logger, "reminder deletion", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"message": "reminder deleted"})
}

func (s *Server) LogHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	var req LogRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		logger.Error("logging habit error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	habitID, err := uuid.Parse(req.HabitID)
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit_id")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	rec, err := s.ledgerService.UpsertCompletion(ctx, uid, habitID, date, req.Completed)
	if err != nil {
		s.writeServiceError(w, logger, "logging habit", err)
		return
	}
	metrics.IncrementCompletionLogged(metrics.SurfaceAPI, rec.Completed)
	httputil.WriteJSONResponse(w, http.StatusOK, LogResponse{
		ID:        rec.ID,
		HabitID:   rec.HabitID.String(),
		Date:      rec.Date.Format(dateLayout),
		Completed: rec.Completed,
	})
}

func (s *Server) GetDaySummary(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	date, err := time.Parse(dateLayout, chi.URLParam(r, "date"))
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	summary, err := s.ledgerService.DaySummary(ctx, uid, date)
	if err != nil {
		s.writeServiceError(w, logger, "getting day summary", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, toDaySummaryResponse(summary))
}

func (s *Server) GetWeekSummary(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	date, err := time.Parse(dateLayout, chi.URLParam(r, "date"))
	if err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	week, err := s.ledgerService.WeekSummary(ctx, uid, date)
	if err != nil {
		s.writeServiceError(w, logger, "getting week summary", err)
		return
	}
	resp := make([]DaySummaryResponse, 0, len(week))
	for _, day := range week {
		resp = append(resp, toDaySummaryResponse(day))
	}
	httputil.WriteJSONResponse(w, http.StatusOK, resp)
}

func (s *Server) GenerateLinkCode(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, ok := s.requireUID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	code, err := s.linkService.IssueCode(ctx, uid)
	if err != nil {
		s.writeServiceError(w, logger, "generating link code", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, LinkCodeResponse{LinkCode: code})
	logger.Info("link code issued")
}

func (s *Server) requireUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	uid, err := GetUIDFromContext(r)
	if err != nil {
		GetLoggerFromCtx(r.Context()).Error("request without resolved account")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization")
		return uuid.UUID{}, false
	}
	return uid, true
}

func (s *Server) writeToken(w http.ResponseWriter, logger *zap.Logger, status int, user *entity.User) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		logger.Error("generating token error", zap.Error(err))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error creating token")
		return
	}
	httputil.WriteJSONResponse(w, status, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        toUserResponse(user),
	})
}

// writeServiceError maps error categories onto status codes. Uncategorized
// errors are logged and hidden behind a generic 500.
func (s *Server) writeServiceError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	switch errorvalues.Category(err) {
	case errorvalues.ErrValidation:
		logger.Info(op+" rejected", zap.Error(err))
		httputil.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
	case errorvalues.ErrUnauthorized:
		logger.Info(op+" unauthorized", zap.Error(err))
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, err.Error())
	case errorvalues.ErrNotFound:
		logger.Info(op+" target not found", zap.Error(err))
		httputil.WriteErrorResponse(w, http.StatusNotFound, err.Error())
	case errorvalues.ErrConflict:
		logger.Info(op+" conflict", zap.Error(err))
		httputil.WriteErrorResponse(w, http.StatusConflict, err.Error())
	default:
		logger.Error(op+" error: service error", zap.Error(err))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during "+op)
	}
}

func toUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:             user.ID.String(),
		Email:          user.Email,
		Name:           user.Name,
		TelegramLinked: user.TelegramLinked(),
	}
}

func toDaySummaryResponse(summary *entity.DaySummary) DaySummaryResponse {
	return DaySummaryResponse{
		Date:         summary.Date.Format(dateLayout),
		TotalHabits:  summary.Total,
		Completed:    summary.Completed,
		Percentage:   summary.Percentage,
		HabitsDetail: summary.Habits,
	}
}
