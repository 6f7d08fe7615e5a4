package bot

import (
	"testing"

	"github.com/google/uuid"
	"github.com/limbo/nexotime/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMood(t *testing.T) {
	testCases := []struct {
		Percentage float64
		Want       string
	}{
		{100, "🏆"},
		{99.9, "😊"},
		{75, "😊"},
		{66.7, "💪"},
		{50, "💪"},
		{33.3, "🌱"},
		{25, "🌱"},
		{0, "😶"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.Want, mood(tc.Percentage), "percentage %v", tc.Percentage)
	}
}

func TestParseHabitCallback(t *testing.T) {
	id := uuid.New()
	t.Run("round trip", func(t *testing.T) {
		for _, completed := range []bool{true, false} {
			gotID, gotCompleted, err := parseHabitCallback(habitCallbackData(id, completed))
			require.NoError(t, err)
			assert.Equal(t, id, gotID)
			// a done habit's button undoes it
			assert.Equal(t, !completed, gotCompleted)
		}
	})
	for _, data := range []string{"", "habit", "habit:" + id.String(), "task:" + id.String() + ":done", "habit:xyz:done", "habit:" + id.String() + ":skip"} {
		_, _, err := parseHabitCallback(data)
		assert.Error(t, err, data)
	}
}

func TestEscapedNames(t *testing.T) {
	text := renderRoutine("morning", nil)
	assert.Equal(t, "You have no morning routine yet. Add it on the web.", text)
	assert.Equal(t, `snake\_case`, escape("snake_case"))
}

func TestRenderHabitsEscapesUserText(t *testing.T) {
	text, markup := renderHabits(&entity.DaySummary{
		Total: 1,
		Habits: []entity.HabitStatus{
			{HabitID: uuid.New(), Name: "deep_work", Icon: "*"},
		},
	})
	assert.Contains(t, text, `⬜ \* deep\_work`)
	require.Len(t, markup.InlineKeyboard, 1)
}
