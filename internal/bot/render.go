package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/pkg/entity"
)

const (
	callbackPrefix = "habit"
	actionDone     = "done"
	actionUndo     = "undo"
)

const commandsHelp = "📋 /habits: today's habits\n" +
	"🌅 /morning: morning routine\n" +
	"🌙 /night: night routine\n" +
	"📊 /summary: today's summary"

const (
	onboardingText = "👋 Hi! I'm the NexoTime bot.\n\n" +
		"To get started link your account:\n\n" +
		"1️⃣ Sign up on the web\n" +
		"2️⃣ Generate a link code there\n" +
		"3️⃣ Send it to me: /link CODE\n\n" +
		"Example: /link A7X9K2"
	linkUsageText    = "❌ The code is missing.\n\nUsage: /link CODE\nExample: /link A7X9K2\n\nGenerate the code on the web."
	linkedText       = "✅ Account linked!\n\nAll commands are available now:\n" + commandsHelp
	badCodeText      = "❌ Invalid or expired code.\n\nGenerate a new one on the web and try again."
	chatTakenText    = "❌ This Telegram account is already linked to another NexoTime account."
	notLinkedText    = "❌ Account not linked. Use /start to see how."
	noHabitsText     = "You have no habits yet. Add them on the web."
	notFoundText     = "❌ Not found. It may have been removed on the web."
	invalidInputText = "❌ Invalid input."
	deniedText       = "❌ Not allowed."
	failureText      = "❌ Something went wrong. Try again."
	unknownText      = "I don't know that command.\n\n" + commandsHelp
)

func greetingText(name string) string {
	return fmt.Sprintf("👋 Hi %s! Your account is linked.\n\n%s", name, commandsHelp)
}

func habitCallbackData(habitID uuid.UUID, completed bool) string {
	action := actionDone
	if completed {
		action = actionUndo
	}
	return fmt.Sprintf("%s:%s:%s", callbackPrefix, habitID, action)
}

// parseHabitCallback reads "habit:<id>:done|undo" and returns the habit id
// and the completed flag to store.
func parseHabitCallback(data string) (uuid.UUID, bool, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != callbackPrefix {
		return uuid.UUID{}, false, fmt.Errorf("%w: unexpected callback data %q", errorvalues.ErrValidation, data)
	}
	habitID, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.UUID{}, false, fmt.Errorf("%w: bad habit id in callback: %s", errorvalues.ErrValidation, err)
	}
	switch parts[2] {
	case actionDone:
		return habitID, true, nil
	case actionUndo:
		return habitID, false, nil
	}
	return uuid.UUID{}, false, fmt.Errorf("%w: unknown callback action %q", errorvalues.ErrValidation, parts[2])
}

// renderHabits draws today's checklist with one toggle button per habit.
func renderHabits(summary *entity.DaySummary) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("📋 *Today's habits:*\n\n")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(summary.Habits))
	for _, h := range summary.Habits {
		mark, button := "⬜", "✅ Done"
		if h.Completed {
			mark, button = "✅", "↩️ Undo"
		}
		name := escape(h.Name)
		fmt.Fprintf(&sb, "%s %s %s\n", mark, escape(h.Icon), name)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(button+": "+h.Name, habitCallbackData(h.HabitID, h.Completed)),
		))
	}
	fmt.Fprintf(&sb, "\n📊 Progress: %d/%d", summary.Completed, summary.Total)
	if summary.Total > 0 && summary.Completed == summary.Total {
		sb.WriteString("\n\n🎉 *All habits done!*")
	}
	return sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderRoutine(routineType string, steps []*entity.RoutineStep) string {
	title, outro := "🌅 *Your morning routine:*", "Go get the day! 💪"
	if routineType == entity.RoutineNight {
		title, outro = "🌙 *Your night routine:*", "Sleep well! 😴"
	}
	if len(steps) == 0 {
		return fmt.Sprintf("You have no %s routine yet. Add it on the web.", routineType)
	}
	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	for _, s := range steps {
		fmt.Fprintf(&sb, "  %d. %s\n", s.StepOrder, escape(s.Description))
	}
	sb.WriteString("\n" + outro)
	return sb.String()
}

func mood(percentage float64) string {
	switch {
	case percentage >= 100:
		return "🏆"
	case percentage >= 75:
		return "😊"
	case percentage >= 50:
		return "💪"
	case percentage >= 25:
		return "🌱"
	}
	return "😶"
}

func renderSummary(summary *entity.DaySummary) string {
	if summary.Total == 0 {
		return noHabitsText
	}
	var sb strings.Builder
	sb.WriteString("📊 *Today's summary:*\n\n")
	fmt.Fprintf(&sb, "%s Progress: %d/%d (%.0f%%)\n\n", mood(summary.Percentage), summary.Completed, summary.Total, summary.Percentage)
	for _, h := range summary.Habits {
		mark := "❌"
		if h.Completed {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, escape(h.Name))
	}
	switch {
	case summary.Percentage >= 100:
		sb.WriteString("\n🎉 *Perfect day!*")
	case summary.Percentage >= 50:
		sb.WriteString("\n👏 *Good job! Keep going.*")
	default:
		sb.WriteString("\n💡 *There's still time. You can do it!*")
	}
	return sb.String()
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}
