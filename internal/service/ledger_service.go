package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/internal/repository"
	"github.com/limbo/nexotime/pkg/entity"
)

const weekLength = 7

// LedgerService records per-day habit completion and derives progress
// summaries from it. Summaries are computed against the habits active now,
// so a habit created today also counts as pending on earlier days of a week.
type LedgerService struct {
	habitsRepo      repository.HabitsRepositoryI
	completionsRepo repository.CompletionsRepositoryI
}

func NewLedgerService(habitsRepo repository.HabitsRepositoryI, completionsRepo repository.CompletionsRepositoryI) *LedgerService {
	return &LedgerService{
		habitsRepo:      habitsRepo,
		completionsRepo: completionsRepo,
	}
}

func (ls *LedgerService) UpsertCompletion(ctx context.Context, uid, habitID uuid.UUID, date time.Time, completed bool) (*entity.CompletionRecord, error) {
	_, err := ls.habitsRepo.GetOwned(ctx, habitID, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	rec, err := ls.completionsRepo.Upsert(ctx, &entity.CompletionRecord{
		UserID:    uid,
		HabitID:   habitID,
		Date:      entity.Day(date),
		Completed: completed,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("completions repository error: " + err.Error())
	}
	return rec, nil
}

func (ls *LedgerService) DaySummary(ctx context.Context, uid uuid.UUID, date time.Time) (*entity.DaySummary, error) {
	day := entity.Day(date)
	summaries, err := ls.summaries(ctx, uid, day, day)
	if err != nil {
		return nil, err
	}
	return summaries[0], nil
}

func (ls *LedgerService) WeekSummary(ctx context.Context, uid uuid.UUID, end time.Time) ([]*entity.DaySummary, error) {
	to := entity.Day(end)
	return ls.summaries(ctx, uid, to.AddDate(0, 0, -(weekLength-1)), to)
}

// summaries builds one summary per day in [from, to], latest first, out of
// a single habits read and a single records read.
func (ls *LedgerService) summaries(ctx context.Context, uid uuid.UUID, from, to time.Time) ([]*entity.DaySummary, error) {
	habits, err := ls.habitsRepo.ListActive(ctx, uid)
	if err != nil {
		return nil, errors.New("habits repository error: " + err.Error())
	}
	records, err := ls.completionsRepo.ListByDateRange(ctx, uid, from, to)
	if err != nil {
		return nil, errors.New("completions repository error: " + err.Error())
	}
	type dayHabit struct {
		day   time.Time
		habit uuid.UUID
	}
	done := make(map[dayHabit]bool, len(records))
	for _, r := range records {
		done[dayHabit{day: entity.Day(r.Date), habit: r.HabitID}] = r.Completed
	}
	result := make([]*entity.DaySummary, 0, weekLength)
	for day := to; !day.Before(from); day = day.AddDate(0, 0, -1) {
		summary := &entity.DaySummary{
			Date:   day,
			Total:  len(habits),
			Habits: make([]entity.HabitStatus, 0, len(habits)),
		}
		for _, h := range habits {
			completed := done[dayHabit{day: day, habit: h.ID}]
			if completed {
				summary.Completed++
			}
			summary.Habits = append(summary.Habits, entity.HabitStatus{
				HabitID:   h.ID,
				Name:      h.Name,
				Icon:      h.Icon,
				Completed: completed,
			})
		}
		summary.Percentage = Percentage(summary.Completed, summary.Total)
		result = append(result, summary)
	}
	return result, nil
}

// Percentage returns completed/total*100 rounded to one decimal, 0 when
// there is nothing to complete. Exact halves round to even (6.25 -> 6.2).
func Percentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(completed) / float64(total) * 100
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(p, 'f', 1, 64), 64)
	return rounded
}
