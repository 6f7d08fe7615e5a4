package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/internal/repository"
	"github.com/limbo/nexotime/internal/service"
	jwtservice "github.com/limbo/nexotime/pkg/jwt_service"
	"github.com/limbo/nexotime/pkg/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Register on the web, link a chat, log from the chat, read back from the web.
func TestLinkAndLogScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	dbCfg := setupTestDB(t)
	ctx := context.Background()
	pool, err := repository.NewPool(ctx, dbCfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	usersRepo := repository.NewUsersRepo(pool)
	habitsRepo := repository.NewHabitsRepo(pool)
	users := service.NewUserService(usersRepo)
	links := service.NewLinkService(usersRepo)
	habits := service.NewHabitsService(habitsRepo)
	routines := service.NewRoutinesService(repository.NewRoutinesRepo(pool))
	ledger := service.NewLedgerService(habitsRepo, repository.NewCompletionsRepo(pool))
	tokens := jwtservice.New("scenario-secret")
	bearer := service.NewBearerResolver(tokens, users)
	chat := service.NewChatResolver(links)
	day := time.Date(2025, 2, 19, 0, 0, 0, 0, time.UTC)
	const chatID = "424242"

	alice, err := users.Register(ctx, &service.RegisterRequest{Email: "alice@example.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	_, err = users.Register(ctx, &service.RegisterRequest{Email: "alice@example.com", Password: "secret1", Name: "Alice"})
	assert.ErrorIs(t, err, errorvalues.ErrConflict)

	token, err := tokens.Issue(alice.ID)
	require.NoError(t, err)
	webID, err := bearer.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, webID)

	_, err = chat.Resolve(ctx, chatID)
	assert.ErrorIs(t, err, errorvalues.ErrNotFound, "chat is not linked yet")

	stale, err := links.IssueCode(ctx, webID)
	require.NoError(t, err)
	code, err := links.IssueCode(ctx, webID)
	require.NoError(t, err)
	_, err = links.RedeemCode(ctx, chatID, stale)
	assert.ErrorIs(t, err, errorvalues.ErrLinkCodeNotFound, "a new code replaces the previous one")
	linked, err := links.RedeemCode(ctx, chatID, code)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, linked)
	_, err = links.RedeemCode(ctx, chatID, code)
	assert.ErrorIs(t, err, errorvalues.ErrLinkCodeNotFound, "codes are single use")

	chatAccount, err := chat.Resolve(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, chatAccount)

	read, err := habits.CreateHabit(ctx, webID, service.CreateHabitRequest{Name: "Read"})
	require.NoError(t, err)
	assert.Equal(t, "✅", read.Icon)

	first, err := ledger.UpsertCompletion(ctx, chatAccount, read.ID, day, true)
	require.NoError(t, err)
	again, err := ledger.UpsertCompletion(ctx, chatAccount, read.ID, day.Add(20*time.Hour), true)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "one record per habit and day")

	summary, err := ledger.DaySummary(ctx, webID, day)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 100.0, summary.Percentage)

	t.Run("habits of another account are invisible", func(t *testing.T) {
		bob, err := users.Register(ctx, &service.RegisterRequest{Email: "bob@example.com", Password: "secret2", Name: "Bob"})
		require.NoError(t, err)
		_, err = ledger.UpsertCompletion(ctx, bob.ID, read.ID, day, true)
		assert.ErrorIs(t, err, errorvalues.ErrNotFound)
		assert.ErrorIs(t, habits.DeleteHabit(ctx, read.ID, bob.ID), errorvalues.ErrNotFound)

		bobCode, err := links.IssueCode(ctx, bob.ID)
		require.NoError(t, err)
		_, err = links.RedeemCode(ctx, chatID, bobCode)
		assert.ErrorIs(t, err, errorvalues.ErrConflict, "chat stays with its first account")
	})

	t.Run("two of three with undo", func(t *testing.T) {
		run, err := habits.CreateHabit(ctx, webID, service.CreateHabitRequest{Name: "Run", Icon: "🏃"})
		require.NoError(t, err)
		meditate, err := habits.CreateHabit(ctx, webID, service.CreateHabitRequest{Name: "Meditate"})
		require.NoError(t, err)
		_, err = ledger.UpsertCompletion(ctx, webID, meditate.ID, day, true)
		require.NoError(t, err)
		_, err = ledger.UpsertCompletion(ctx, webID, run.ID, day, true)
		require.NoError(t, err)
		_, err = ledger.UpsertCompletion(ctx, webID, run.ID, day, false)
		require.NoError(t, err)

		summary, err := ledger.DaySummary(ctx, webID, day)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 2, summary.Completed)
		assert.Equal(t, 66.7, summary.Percentage)

		week, err := ledger.WeekSummary(ctx, webID, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, week, 7)
		assert.Equal(t, day.AddDate(0, 0, 1), week[0].Date)
		assert.Equal(t, 0, week[0].Completed)
		assert.Equal(t, day, week[1].Date)
		assert.Equal(t, 2, week[1].Completed)
	})

	t.Run("routine bulk replace renumbers", func(t *testing.T) {
		_, err := routines.AddStep(ctx, webID, service.AddStepRequest{Type: "morning", StepOrder: 5, Description: "Old"})
		require.NoError(t, err)
		_, err = routines.ReplaceRoutine(ctx, webID, "morning", []string{"Water", "Stretch"})
		require.NoError(t, err)
		steps, err := routines.GetRoutine(ctx, webID, "morning")
		require.NoError(t, err)
		require.Len(t, steps, 2)
		assert.Equal(t, 1, steps[0].StepOrder)
		assert.Equal(t, "Water", steps[0].Description)
		assert.Equal(t, 2, steps[1].StepOrder)
	})

	t.Run("concurrent upserts keep one record", func(t *testing.T) {
		water, err := habits.CreateHabit(ctx, webID, service.CreateHabitRequest{Name: "Water", Icon: "💧"})
		require.NoError(t, err)
		const workers = 16
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(completed bool) {
				defer wg.Done()
				_, err := ledger.UpsertCompletion(ctx, webID, water.ID, day, completed)
				errs <- err
			}(i%2 == 0)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
		var rows int
		err = pool.QueryRow(ctx, `SELECT count(*) FROM habit_logs WHERE user_id = $1 AND habit_id = $2 AND log_date = $3;`,
			webID, water.ID, day).Scan(&rows)
		require.NoError(t, err)
		assert.Equal(t, 1, rows)
	})

	t.Run("one of two concurrent redemptions wins", func(t *testing.T) {
		carol, err := users.Register(ctx, &service.RegisterRequest{Email: "carol@example.com", Password: "secret3", Name: "Carol"})
		require.NoError(t, err)
		carolCode, err := links.IssueCode(ctx, carol.ID)
		require.NoError(t, err)
		var wg sync.WaitGroup
		errs := make(chan error, 2)
		for _, chat := range []string{"1001", "1002"} {
			wg.Add(1)
			go func(chat string) {
				defer wg.Done()
				_, err := links.RedeemCode(ctx, chat, carolCode)
				errs <- err
			}(chat)
		}
		wg.Wait()
		close(errs)
		linkedCount := 0
		for err := range errs {
			if err == nil {
				linkedCount++
				continue
			}
			assert.ErrorIs(t, err, errorvalues.ErrLinkCodeNotFound)
		}
		assert.Equal(t, 1, linkedCount)
	})

	t.Run("concurrent routine replaces don't merge", func(t *testing.T) {
		var wg sync.WaitGroup
		for _, set := range [][]string{{"Read", "Journal", "Sleep"}, {"Tea", "Sleep"}} {
			wg.Add(1)
			go func(set []string) {
				defer wg.Done()
				_, err := routines.ReplaceRoutine(ctx, webID, "night", set)
				assert.NoError(t, err)
			}(set)
		}
		wg.Wait()
		steps, err := routines.GetRoutine(ctx, webID, "night")
		require.NoError(t, err)
		require.True(t, len(steps) == 3 || len(steps) == 2, "got %d steps", len(steps))
		for i, s := range steps {
			assert.Equal(t, i+1, s.StepOrder)
		}
	})

	t.Run("account deletion cascades", func(t *testing.T) {
		require.NoError(t, users.DeleteAccount(ctx, webID, "secret1"))
		_, err := bearer.Resolve(ctx, token)
		assert.ErrorIs(t, err, errorvalues.ErrUnauthorized)
		_, err = chat.Resolve(ctx, chatID)
		assert.ErrorIs(t, err, errorvalues.ErrNotFound)
		list, err := habits.ListHabits(ctx, webID)
		require.NoError(t, err)
		assert.Empty(t, list)
		_, err = ledger.UpsertCompletion(ctx, webID, read.ID, day, true)
		assert.ErrorIs(t, err, errorvalues.ErrNotFound)
		_, err = users.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, errorvalues.ErrNotFound)
	})
}

type testPGConfig struct {
	connStr string
}

func (cfg *testPGConfig) ConnString() string {
	return cfg.connStr
}

func setupTestDB(t *testing.T) *testPGConfig {
	container, err := postgres.Run(context.Background(), "postgres:17",
		postgres.WithUsername("test_user"),
		postgres.WithDatabase("nexotime"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatal("error running test container: " + err.Error())
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})
	connStr, err := container.ConnectionString(context.Background(), "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	if err = migrate.Up(connStr, "../../migrations"); err != nil {
		t.Fatal(err)
	}
	return &testPGConfig{
		connStr: connStr,
	}
}
