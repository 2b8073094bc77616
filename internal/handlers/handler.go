package handlers

import (
	"context"
	"io"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"suitcraft-ai/internal/pipeline"
	"suitcraft-ai/internal/preference"
	"suitcraft-ai/internal/session"
	"suitcraft-ai/internal/telegram"
)

// Messenger is the subset of the Telegram client the handler talks to.
type Messenger interface {
	SendTyping(chatID int64)
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(callbackID, text string, alert bool) error
	SendPhotoURLs(chatID int64, urls []string, caption string) error
}

type Recommender interface {
	Recommend(ctx context.Context, raw preference.Raw) pipeline.Result
}

type Options struct {
	Telegram    Messenger
	Recommender Recommender
	Sessions    *session.Store
	Logger      *slog.Logger
}

type Handler struct {
	tg       Messenger
	rec      Recommender
	sessions *session.Store
	logger   *slog.Logger
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore(session.Options{})
	}

	return &Handler{
		tg:       opts.Telegram,
		rec:      opts.Recommender,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, msg.Command(), msg.CommandArguments())
	}
	if strings.TrimSpace(msg.Text) != "" {
		return h.handleText(ctx, chatID, userID, msg.Text)
	}
	return nil
}

func (h *Handler) handleCommand(ctx context.Context, chatID, userID int64, command, args string) error {
	switch command {
	case "start", "help":
		return h.tg.SendText(chatID, helpText)
	case "suit", "recommend":
		draft := h.sessions.Get(chatID, userID)
		raw := preference.ParseArgs(args, draft.Prefs)
		if strings.TrimSpace(args) != "" {
			h.sessions.Update(chatID, userID, func(d *session.Draft) { d.Prefs = raw })
		}
		if strings.TrimSpace(raw.Occasion) == "" {
			return h.startWizard(chatID, userID, "occasion")
		}
		return h.recommend(ctx, chatID, raw)
	case "set":
		if strings.TrimSpace(args) == "" {
			return h.tg.SendText(chatID, "Usage: /set occasion=wedding color=navy season=summer")
		}
		d := h.sessions.Update(chatID, userID, func(d *session.Draft) {
			d.Prefs = preference.ParseArgs(args, d.Prefs)
		})
		return h.tg.SendText(chatID, "✅ Saved.\n\n"+formatPrefs(d.Prefs))
	case "prefs":
		return h.tg.SendText(chatID, formatPrefs(h.sessions.Get(chatID, userID).Prefs))
	case "reset":
		h.sessions.Clear(chatID, userID)
		return h.tg.SendText(chatID, "✅ Preferences cleared.")
	case "menu", "options":
		return h.startWizard(chatID, userID, "main")
	case "cancel":
		h.sessions.Update(chatID, userID, func(d *session.Draft) { d.AwaitingCustom = false })
		return h.tg.SendText(chatID, "OK, cancelled.")
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Use /help.")
	}
}

func (h *Handler) handleText(ctx context.Context, chatID, userID int64, text string) error {
	text = strings.TrimSpace(text)

	draft := h.sessions.Get(chatID, userID)
	if draft.AwaitingCustom {
		h.sessions.Update(chatID, userID, func(d *session.Draft) {
			d.Prefs.Occasion = "custom:" + text
			d.AwaitingCustom = false
			d.Menu = "main"
		})
		return h.renderWizard(chatID, userID, 0, false)
	}

	intent, ok := detectIntent(text)
	if !ok {
		return nil
	}
	raw := draft.Prefs
	raw.Occasion = intent.Occasion
	if intent.ColorPreference != "" {
		raw.ColorPreference = intent.ColorPreference
		raw.SuitColor = ""
	}
	h.sessions.Update(chatID, userID, func(d *session.Draft) { d.Prefs = raw })
	return h.recommend(ctx, chatID, raw)
}

func (h *Handler) recommend(ctx context.Context, chatID int64, raw preference.Raw) error {
	h.tg.SendTyping(chatID)
	_ = h.tg.SendText(chatID, "🧵 Putting your outfit together, this can take a minute...")

	res := h.rec.Recommend(ctx, raw)
	if res.Failed() {
		h.logger.Warn("recommendation failed", "chat_id", chatID, "error_kind", res.ErrorKind, "err", res.Error)
		return h.tg.SendText(chatID, formatError(res))
	}

	if len(res.Images) > 0 {
		caption := "Your " + strings.ToLower(describeOccasion(raw.Occasion)) + " look"
		if err := h.tg.SendPhotoURLs(chatID, res.Images, caption); err != nil {
			h.logger.Error("send preview images failed", "chat_id", chatID, "err", err)
		}
	}
	return h.tg.SendText(chatID, formatResult(res))
}
