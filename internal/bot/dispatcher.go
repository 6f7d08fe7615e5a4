package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	errorvalues "github.com/limbo/nexotime/internal/error_values"
	"github.com/limbo/nexotime/internal/service"
	"github.com/limbo/nexotime/pkg/entity"
	"github.com/limbo/nexotime/pkg/metrics"
	"go.uber.org/zap"
)

const defaultUpdateTimeout = 10 * time.Second

// Sender is the part of *tgbotapi.BotAPI the dispatcher talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Deduper interface {
	AcquireOnce(ctx context.Context, id int64) bool
}

type Dispatcher struct {
	sender          Sender
	deduper         Deduper
	resolver        service.AccountResolver
	userService     service.UserServiceI
	linkService     service.LinkServiceI
	ledgerService   service.LedgerServiceI
	routinesService service.RoutinesServiceI
	logger          *zap.Logger
	updateTimeout   time.Duration
	now             func() time.Time
}

type Options struct {
	Sender          Sender
	Deduper         Deduper
	UserService     service.UserServiceI
	LinkService     service.LinkServiceI
	LedgerService   service.LedgerServiceI
	RoutinesService service.RoutinesServiceI
	Logger          *zap.Logger
	UpdateTimeout   time.Duration
	// Defaults to time.Now
	Now func() time.Time
}

func New(opts *Options) *Dispatcher {
	d := &Dispatcher{
		sender:          opts.Sender,
		deduper:         opts.Deduper,
		resolver:        service.NewChatResolver(opts.LinkService),
		userService:     opts.UserService,
		linkService:     opts.LinkService,
		ledgerService:   opts.LedgerService,
		routinesService: opts.RoutinesService,
		logger:          opts.Logger,
		updateTimeout:   opts.UpdateTimeout,
		now:             opts.Now,
	}
	if d.logger == nil {
		d.logger = zap.L()
	}
	if d.updateTimeout <= 0 {
		d.updateTimeout = defaultUpdateTimeout
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Run handles updates one at a time until ctx is done or the channel closes.
func (d *Dispatcher) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			d.Handle(ctx, update)
		}
	}
}

func (d *Dispatcher) Handle(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, d.updateTimeout)
	defer cancel()

	kind := updateKind(update)
	if kind == "" {
		return
	}
	logger := d.logger.With(zap.Int("update_id", update.UpdateID))
	if chatID, ok := updateChatID(update); ok {
		logger = logger.With(zap.Int64("chat_id", chatID))
	}
	if d.deduper != nil && !d.deduper.AcquireOnce(ctx, int64(update.UpdateID)) {
		metrics.IncrementBotUpdate(kind, "duplicate")
		return
	}

	var err error
	if update.CallbackQuery != nil {
		err = d.handleCallback(ctx, update.CallbackQuery)
	} else {
		err = d.handleCommand(ctx, update.Message)
	}
	switch {
	case err == nil:
		metrics.IncrementBotUpdate(kind, "ok")
	case errorvalues.Category(err) != nil:
		metrics.IncrementBotUpdate(kind, "rejected")
		logger.Info("update rejected", zap.String("kind", kind), zap.Error(err))
	default:
		metrics.IncrementBotUpdate(kind, "error")
		logger.Error("handling update error", zap.String("kind", kind), zap.Error(err))
	}
}

func updateKind(update tgbotapi.Update) string {
	if update.CallbackQuery != nil {
		return "callback"
	}
	if update.Message == nil || !update.Message.IsCommand() {
		return ""
	}
	switch cmd := strings.ToLower(update.Message.Command()); cmd {
	case "start", "link", "vincular", "habits", "habitos", "morning", "night", "summary", "resumen":
		return "command:" + cmd
	}
	return "command:unknown"
}

func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}

// handleCommand replies to msg and returns the error that shaped the reply,
// if any, for accounting.
func (d *Dispatcher) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	key := senderKey(msg.From, chatID)
	switch strings.ToLower(msg.Command()) {
	case "start":
		return d.start(ctx, chatID, key)
	case "link", "vincular":
		return d.link(ctx, chatID, key, msg.CommandArguments())
	case "habits", "habitos":
		return d.habits(ctx, chatID, key)
	case "morning":
		return d.routine(ctx, chatID, key, entity.RoutineMorning)
	case "night":
		return d.routine(ctx, chatID, key, entity.RoutineNight)
	case "summary", "resumen":
		return d.summary(ctx, chatID, key)
	}
	return d.reply(chatID, unknownText)
}

func (d *Dispatcher) start(ctx context.Context, chatID int64, key string) error {
	uid, err := d.resolver.Resolve(ctx, key)
	if err != nil {
		if errors.Is(err, errorvalues.ErrAccountNotLinked) {
			return d.reply(chatID, onboardingText)
		}
		return d.fail(chatID, err)
	}
	user, err := d.userService.GetByID(ctx, uid)
	if err != nil {
		return d.fail(chatID, err)
	}
	return d.reply(chatID, greetingText(escape(user.Name)))
}

func (d *Dispatcher) link(ctx context.Context, chatID int64, key, args string) error {
	code := strings.TrimSpace(args)
	if code == "" {
		return d.reply(chatID, linkUsageText)
	}
	if _, err := d.linkService.RedeemCode(ctx, key, strings.ToUpper(code)); err != nil {
		return d.fail(chatID, err)
	}
	return d.reply(chatID, linkedText)
}

func (d *Dispatcher) habits(ctx context.Context, chatID int64, key string) error {
	uid, err := d.resolver.Resolve(ctx, key)
	if err != nil {
		return d.fail(chatID, err)
	}
	summary, err := d.ledgerService.DaySummary(ctx, uid, d.today())
	if err != nil {
		return d.fail(chatID, err)
	}
	if summary.Total == 0 {
		return d.reply(chatID, noHabitsText)
	}
	text, markup := renderHabits(summary)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = markup
	_, err = d.sender.Send(msg)
	return err
}

func (d *Dispatcher) routine(ctx context.Context, chatID int64, key, routineType string) error {
	uid, err := d.resolver.Resolve(ctx, key)
	if err != nil {
		return d.fail(chatID, err)
	}
	steps, err := d.routinesService.GetRoutine(ctx, uid, routineType)
	if err != nil {
		return d.fail(chatID, err)
	}
	return d.reply(chatID, renderRoutine(routineType, steps))
}

func (d *Dispatcher) summary(ctx context.Context, chatID int64, key string) error {
	uid, err := d.resolver.Resolve(ctx, key)
	if err != nil {
		return d.fail(chatID, err)
	}
	summary, err := d.ledgerService.DaySummary(ctx, uid, d.today())
	if err != nil {
		return d.fail(chatID, err)
	}
	return d.reply(chatID, renderSummary(summary))
}

// handleCallback toggles a habit for today, then redraws the checklist in
// place of the message that carried the button.
func (d *Dispatcher) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	habitID, completed, err := parseHabitCallback(cq.Data)
	if err != nil {
		d.answer(cq.ID, invalidInputText)
		return err
	}
	chatID, _ := updateChatID(tgbotapi.Update{CallbackQuery: cq})
	uid, err := d.resolver.Resolve(ctx, senderKey(cq.From, chatID))
	if err != nil {
		d.answer(cq.ID, errorText(err))
		return err
	}
	today := d.today()
	if _, err = d.ledgerService.UpsertCompletion(ctx, uid, habitID, today, completed); err != nil {
		d.answer(cq.ID, errorText(err))
		return err
	}
	metrics.IncrementCompletionLogged(metrics.SurfaceBot, completed)
	d.answer(cq.ID, "")
	if cq.Message == nil {
		return nil
	}
	summary, err := d.ledgerService.DaySummary(ctx, uid, today)
	if err != nil {
		return err
	}
	text, markup := renderHabits(summary)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cq.Message.MessageID, text, markup)
	edit.ParseMode = tgbotapi.ModeMarkdown
	_, err = d.sender.Send(edit)
	return err
}

func (d *Dispatcher) today() time.Time {
	return entity.Day(d.now())
}

func (d *Dispatcher) reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := d.sender.Send(msg)
	return err
}

// fail answers with the fixed text of err's category and hands err back.
func (d *Dispatcher) fail(chatID int64, err error) error {
	if sendErr := d.reply(chatID, errorText(err)); sendErr != nil {
		d.logger.Warn("sending error reply failed", zap.Int64("chat_id", chatID), zap.Error(sendErr))
	}
	return err
}

func (d *Dispatcher) answer(callbackID, text string) {
	if _, err := d.sender.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		d.logger.Warn("answering callback failed", zap.String("callback_id", callbackID), zap.Error(err))
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, errorvalues.ErrAccountNotLinked):
		return notLinkedText
	case errors.Is(err, errorvalues.ErrLinkCodeNotFound):
		return badCodeText
	case errors.Is(err, errorvalues.ErrChatAlreadyLinked):
		return chatTakenText
	}
	switch errorvalues.Category(err) {
	case errorvalues.ErrNotFound:
		return notFoundText
	case errorvalues.ErrValidation:
		return invalidInputText
	case errorvalues.ErrUnauthorized:
		return deniedText
	case errorvalues.ErrConflict:
		return chatTakenText
	}
	return failureText
}

// senderKey is the secondary account key: the Telegram user id, falling back
// to the chat id for anonymous senders.
func senderKey(from *tgbotapi.User, chatID int64) string {
	if from != nil {
		return strconv.FormatInt(from.ID, 10)
	}
	return strconv.FormatInt(chatID, 10)
}
