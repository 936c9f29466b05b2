package bot

import (
	"context"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"countdown-tracker/internal/config"
	"countdown-tracker/internal/engine"
	"countdown-tracker/internal/model"
	"countdown-tracker/internal/repository"
	"countdown-tracker/internal/service"
)

// Bot is the Telegram transport: subscribers browse countdowns through
// commands and receive milestone achievements and occurrence shifts as push
// notifications.
type Bot struct {
	api         *tgbotapi.BotAPI
	subscribers *repository.SubscriberRepository
	eventSvc    *service.EventService
	config      *config.Config
}

func New(token string, subscribers *repository.SubscriberRepository, eventSvc *service.EventService, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:         api,
		subscribers: subscribers,
		eventSvc:    eventSvc,
		config:      cfg,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Chat == nil {
			continue
		}
		if !update.Message.Chat.IsPrivate() || !update.Message.IsCommand() {
			continue
		}
		if err := b.handleCommand(ctx, update.Message); err != nil {
			log.Printf("handle command: %v", err)
		}
	}

	return nil
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	log.Printf("[info] command from %d: /%s %s", msg.Chat.ID, msg.Command(), msg.CommandArguments())

	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "list":
		return b.handleList(ctx, msg)
	case "next":
		return b.handleNext(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "pause":
		return b.handleSetActive(ctx, msg, false)
	case "resume":
		return b.handleSetActive(ctx, msg, true)
	case "delete":
		return b.handleDelete(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help for the list.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureSubscriber(ctx, msg); err != nil {
		return err
	}

	name := "there"
	if msg.From != nil && strings.TrimSpace(msg.From.FirstName) != "" {
		name = strings.TrimSpace(msg.From.FirstName)
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I track countdowns and ping you when milestones pass.</b>\n\nCommands:\n"+
			"• /list — upcoming countdowns\n"+
			"• /next — the very next event\n"+
			"• /categories — categories in use\n"+
			"• /pause &lt;id&gt; — stop tracking an event\n"+
			"• /resume &lt;id&gt; — resume tracking\n"+
			"• /delete &lt;id&gt; — remove an event\n"+
			"• /help — hints",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Hints</b>\n" +
		"• /list — countdowns sorted by target date with time remaining\n" +
		"• /next — the single closest upcoming event\n" +
		"• /categories — distinct categories of active events\n" +
		"• /pause &lt;id&gt; and /resume &lt;id&gt; — toggle tracking without deleting\n" +
		"• /delete &lt;id&gt; — remove an event with its milestones and recurrence"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleList(ctx context.Context, msg *tgbotapi.Message) error {
	events, err := b.eventSvc.ListActive(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load events: %s", escape(err.Error())))
	}

	now := time.Now()
	upcoming := engine.Upcoming(events, now, b.config.UpcomingLimit)
	if len(upcoming) == 0 {
		return b.sendText(msg.Chat.ID, "No upcoming countdowns. Everything has either passed or nothing is tracked yet.")
	}

	remaining := engine.RemainingAll(upcoming, now)

	var builder strings.Builder
	builder.WriteString("📋 <b>Upcoming countdowns</b>\n\n")
	for _, ev := range upcoming {
		builder.WriteString(b.formatEvent(ev, remaining[ev.ID]))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleNext(ctx context.Context, msg *tgbotapi.Message) error {
	events, err := b.eventSvc.ListActive(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load events: %s", escape(err.Error())))
	}

	now := time.Now()
	next := engine.NextUpcoming(events, now)
	if next == nil {
		return b.sendText(msg.Chat.ID, "Nothing upcoming.")
	}

	text := "⏱ <b>Next up</b>\n\n" + b.formatEvent(*next, engine.Remaining(*next, now))
	return b.sendText(msg.Chat.ID, strings.TrimSpace(text))
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	events, err := b.eventSvc.ListActive(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load events: %s", escape(err.Error())))
	}

	categories := engine.Categories(events)
	if len(categories) == 0 {
		return b.sendText(msg.Chat.ID, "No categories yet.")
	}

	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, cat := range categories {
		builder.WriteString(fmt.Sprintf("• %s\n", escape(cat)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleSetActive(ctx context.Context, msg *tgbotapi.Message, active bool) error {
	id, ok := parseEventID(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Give me an event id, e.g. /pause 12")
	}

	event, err := b.eventSvc.GetEvent(ctx, id)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	if event == nil {
		return b.sendText(msg.Chat.ID, "Event not found.")
	}

	if err := b.eventSvc.SetActive(ctx, id, active); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}

	verb := "paused"
	if active {
		verb = "resumed"
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Countdown \"%s\" %s.", escape(event.Title), verb))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	id, ok := parseEventID(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Give me an event id, e.g. /delete 12")
	}

	event, err := b.eventSvc.GetEvent(ctx, id)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	if event == nil {
		return b.sendText(msg.Chat.ID, "Event not found.")
	}

	if err := b.eventSvc.DeleteEvent(ctx, id); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Countdown \"%s\" deleted.", escape(event.Title)))
}

// NotifyAchievements pushes each achieved milestone to every subscriber.
func (b *Bot) NotifyAchievements(ctx context.Context, achievements []service.Achievement) error {
	if len(achievements) == 0 {
		return nil
	}

	subs, err := b.subscribers.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, a := range achievements {
		if !a.Milestone.NotifyEnabled {
			continue
		}
		text := fmt.Sprintf(
			"%s <b>%s</b>\n%s",
			effectMarker(a.Milestone.Effect),
			escape(a.Milestone.Title),
			escape(a.Milestone.Message),
		)
		b.broadcast(ctx, subs, text)
	}
	return nil
}

// NotifyAdvances tells subscribers that recurring events moved to their next
// occurrence or ended their series.
func (b *Bot) NotifyAdvances(ctx context.Context, advances []service.Advance) error {
	if len(advances) == 0 {
		return nil
	}

	subs, err := b.subscribers.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, adv := range advances {
		var text string
		if adv.Ended {
			text = fmt.Sprintf("🏁 <b>%s</b> has run its last occurrence.", escape(adv.Event.Title))
		} else {
			text = fmt.Sprintf("🔁 <b>%s</b> rolled over to %s.", escape(adv.Event.Title), adv.Next.Format("2006-01-02"))
		}
		b.broadcast(ctx, subs, text)
	}
	return nil
}

// SendDailySummaries sends the upcoming-countdown digest to every
// subscriber.
func (b *Bot) SendDailySummaries(ctx context.Context) error {
	subs, err := b.subscribers.ListAll(ctx)
	if err != nil {
		return err
	}

	events, err := b.eventSvc.ListActive(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	upcoming := engine.Upcoming(events, now, b.config.UpcomingLimit)
	remaining := engine.RemainingAll(upcoming, now)

	var builder strings.Builder
	builder.WriteString("🗓 <b>Daily countdown digest</b>\n")
	builder.WriteString(fmt.Sprintf("%s\n\n", now.In(b.config.Location()).Format("02.01.2006")))
	if len(upcoming) == 0 {
		builder.WriteString("— nothing on the horizon\n")
	} else {
		for _, ev := range upcoming {
			builder.WriteString(b.formatEvent(ev, remaining[ev.ID]))
		}
	}
	text := strings.TrimSpace(builder.String())

	b.broadcast(ctx, subs, text)
	return nil
}

func (b *Bot) broadcast(ctx context.Context, subs []model.Subscriber, text string) {
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := b.sendText(sub.ChatID, text); err != nil {
			log.Printf("send to %d: %v", sub.ChatID, err)
		}
	}
}

func (b *Bot) formatEvent(ev model.Event, left model.CountdownTime) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s <b>%s</b> <i>#%d</i>", b.urgencyMarker(left), escape(ev.Title), ev.ID))
	if ev.Category != "" && ev.Category != engine.DefaultCategory {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(ev.Category)))
	}

	if left.Expired {
		sb.WriteString("\n   ⏰ already passed")
	} else {
		sb.WriteString(fmt.Sprintf("\n   ⏰ %s · %s left",
			ev.TargetAt.In(b.config.Location()).Format("2006-01-02 15:04"),
			formatRemaining(left),
		))
	}

	if ev.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", escape(strings.TrimSpace(ev.Description))))
	}

	sb.WriteByte('\n')
	return sb.String()
}

// urgencyMarker picks the list marker for an event. With a color-blind mode
// set, color-coded dots give way to shape-coded markers.
func (b *Bot) urgencyMarker(left model.CountdownTime) string {
	colorBlind := config.ParseColorBlindMode(b.config.ColorBlindMode) != config.ColorBlindNone

	switch {
	case left.Expired:
		if colorBlind {
			return "✖️"
		}
		return "⚠️"
	case left.TotalSeconds <= 2*24*3600:
		return "⏳"
	default:
		if colorBlind {
			return "▪️"
		}
		return "🟢"
	}
}

func effectMarker(effect model.CelebrationEffect) string {
	switch model.ParseCelebrationEffect(string(effect)) {
	case model.EffectConfetti:
		return "🎊"
	case model.EffectFirework:
		return "🎆"
	case model.EffectSparkles:
		return "✨"
	default:
		return "🎯"
	}
}

func formatRemaining(left model.CountdownTime) string {
	switch {
	case left.Days > 0:
		return fmt.Sprintf("%dd %dh", left.Days, left.Hours)
	case left.Hours > 0:
		return fmt.Sprintf("%dh %dm", left.Hours, left.Minutes)
	default:
		return fmt.Sprintf("%dm %ds", left.Minutes, left.Seconds)
	}
}

func (b *Bot) ensureSubscriber(ctx context.Context, msg *tgbotapi.Message) (*model.Subscriber, error) {
	firstName, username := "", ""
	if msg.From != nil {
		firstName = msg.From.FirstName
		username = msg.From.UserName
	}
	return b.subscribers.UpsertFromTelegram(ctx, msg.Chat.ID, firstName, username)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func parseEventID(args string) (uint, bool) {
	id64, err := strconv.ParseUint(strings.TrimSpace(args), 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

func escape(s string) string {
	return html.EscapeString(s)
}
