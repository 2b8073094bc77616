package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"suitcraft-ai/internal/preference"
	"suitcraft-ai/internal/session"
)

const wizardCallbackPrefix = "sw"

type wizardField struct {
	key     string
	title   string
	options func() []preference.NamedOption
	set     func(*preference.Raw, string)
}

var wizardFields = []wizardField{
	{"occasion", "Occasion", preference.Occasions, func(r *preference.Raw, v string) { r.Occasion = v }},
	{"color", "Color", preference.Palettes, func(r *preference.Raw, v string) { r.ColorPreference = v; r.SuitColor = "" }},
	{"formality", "Formality", preference.FormalityLevels, func(r *preference.Raw, v string) { r.FormalityLevel = v }},
	{"body", "Body type", preference.BodyTypes, func(r *preference.Raw, v string) { r.BodyType = v }},
	{"skin", "Skin tone", preference.SkinTones, func(r *preference.Raw, v string) { r.SkinTone = v }},
	{"season", "Season", preference.Seasons, func(r *preference.Raw, v string) { r.Season = v }},
	{"budget", "Budget", preference.Budgets, func(r *preference.Raw, v string) { r.Budget = v }},
}

func findField(key string) (wizardField, bool) {
	for _, f := range wizardFields {
		if f.key == key {
			return f, true
		}
	}
	return wizardField{}, false
}

func (h *Handler) startWizard(chatID, userID int64, menu string) error {
	h.sessions.Update(chatID, userID, func(d *session.Draft) {
		d.Menu = menu
		d.AwaitingCustom = false
		d.MessageID = 0
	})
	return h.renderWizard(chatID, userID, 0, false)
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.From == nil {
		return nil
	}
	parts := strings.Split(strings.TrimSpace(q.Data), ":")
	if len(parts) < 3 || parts[0] != wizardCallbackPrefix {
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}
	if ownerID != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This menu belongs to someone else.", true)
		return nil
	}

	action := parts[2]
	args := parts[3:]
	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID

	d := h.sessions.Update(chatID, ownerID, func(d *session.Draft) {
		d.MessageID = msgID
		switch action {
		case "menu":
			if len(args) >= 1 {
				d.Menu = args[0]
			}
		case "set":
			if len(args) >= 2 {
				if f, ok := findField(args[0]); ok {
					f.set(&d.Prefs, args[1])
				}
			}
			d.Menu = "main"
		case "custom":
			d.AwaitingCustom = true
			d.Menu = "main"
		case "reset":
			d.Prefs = preference.Raw{}
			d.AwaitingCustom = false
			d.Menu = "main"
		case "close":
			d.AwaitingCustom = false
			d.Menu = "closed"
		}
	})

	switch action {
	case "custom":
		_ = h.tg.AnswerCallback(q.ID, "Describe the occasion (cancel: /cancel).", false)
		_ = h.tg.SendText(chatID, "📝 Describe the occasion in a few words (cancel: /cancel).")
	case "go":
		if strings.TrimSpace(d.Prefs.Occasion) == "" {
			_ = h.tg.AnswerCallback(q.ID, "Pick an occasion first.", true)
			h.sessions.Update(chatID, ownerID, func(d *session.Draft) { d.Menu = "occasion" })
			return h.renderWizard(chatID, ownerID, msgID, true)
		}
		_ = h.tg.AnswerCallback(q.ID, "Working on it…", false)
		return h.recommend(ctx, chatID, d.Prefs)
	case "close":
		_ = h.tg.AnswerCallback(q.ID, "Saved.", false)
		return h.tg.EditTextWithKeyboard(chatID, msgID, formatPrefs(d.Prefs), tgbotapi.NewInlineKeyboardMarkup())
	default:
		_ = h.tg.AnswerCallback(q.ID, "OK", false)
	}

	return h.renderWizard(chatID, ownerID, msgID, true)
}

func (h *Handler) renderWizard(chatID, userID int64, messageID int, edit bool) error {
	d := h.sessions.Get(chatID, userID)
	if messageID == 0 {
		messageID = d.MessageID
	}

	text := wizardText(d)
	kb := wizardKeyboard(userID, d)

	if edit && messageID != 0 {
		if err := h.tg.EditTextWithKeyboard(chatID, messageID, text, kb); err == nil {
			return nil
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	if err != nil {
		return err
	}
	h.sessions.Update(chatID, userID, func(d *session.Draft) { d.MessageID = msgID })
	return nil
}

func wizardText(d session.Draft) string {
	text := formatPrefs(d.Prefs)
	if f, ok := findField(d.Menu); ok {
		return text + "\nChoose " + strings.ToLower(f.title) + ":"
	}
	if d.AwaitingCustom {
		return text + "\n📝 Now send a short description of the occasion."
	}
	return text + "\nTap a setting to change it, then 👔 Recommend."
}

func wizardKeyboard(userID int64, d session.Draft) tgbotapi.InlineKeyboardMarkup {
	cb := func(parts ...string) string {
		return fmt.Sprintf("%s:%d:%s", wizardCallbackPrefix, userID, strings.Join(parts, ":"))
	}

	if f, ok := findField(d.Menu); ok {
		var rows [][]tgbotapi.InlineKeyboardButton
		var row []tgbotapi.InlineKeyboardButton
		for _, o := range f.options() {
			label := o.Name
			if currentValue(d.Prefs, f.key) == o.Key {
				label = "✅ " + label
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb("set", f.key, o.Key)))
			if len(row) == 2 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
		if f.key == "occasion" {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✏️ Something else", cb("custom")),
			))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", cb("menu", "main")),
		))
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(wizardFields); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(wizardFields[i].title, cb("menu", wizardFields[i].key)),
		}
		if i+1 < len(wizardFields) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(wizardFields[i+1].title, cb("menu", wizardFields[i+1].key)))
		}
		rows = append(rows, row)
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("👔 Recommend", cb("go"))),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("♻️ Reset", cb("reset")),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Close", cb("close")),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func currentValue(raw preference.Raw, field string) string {
	switch field {
	case "occasion":
		return raw.Occasion
	case "color":
		return raw.ColorPreference
	case "formality":
		return raw.FormalityLevel
	case "body":
		return raw.BodyType
	case "skin":
		return raw.SkinTone
	case "season":
		return raw.Season
	case "budget":
		return raw.Budget
	}
	return ""
}
