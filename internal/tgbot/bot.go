// Package tgbot runs the Telegram side of the service: the /start
// entry point that opens the webapp plus chat commands mirroring the
// core flows (profile check, paid like, balance).
package tgbot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Yichu-bro/Myfaff/internal/app"
	"github.com/Yichu-bro/Myfaff/internal/config"
	"github.com/Yichu-bro/Myfaff/internal/profile"
	"github.com/Yichu-bro/Myfaff/internal/simulate"
	"github.com/Yichu-bro/Myfaff/internal/store"
)

type Bot struct {
	api *tgbotapi.BotAPI
	cfg config.Config
	app *app.App
}

func New(cfg config.Config, a *app.App) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("bot api: %w", err)
	}
	log.Printf("telegram bot authorized as @%s", api.Self.UserName)
	return &Bot{api: api, cfg: cfg, app: a}, nil
}

// StartPolling consumes updates until ctx is cancelled.
func (b *Bot) StartPolling(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	go func() {
		for upd := range updates {
			b.handleUpdate(ctx, upd)
		}
		log.Printf("telegram polling stopped")
	}()
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || !msg.IsCommand() {
		return
	}

	switch msg.Command() {
	case "start":
		b.sendStart(msg)
	case "help":
		b.reply(msg, helpText)
	case "check":
		b.sendBalance(ctx, msg)
	case "like":
		// The execute pipeline blocks on artificial delays; run it off
		// the update loop so other chats are not held up.
		go b.runLike(ctx, msg)
	}
}

const helpText = `📘 Commands

/like <region> <uid> - send a like (costs 5 coins)
/check - your coin balance and last UID
/help - this menu

Open the webapp from /start for profile checks and history.`

func (b *Bot) sendStart(msg *tgbotapi.Message) {
	out := tgbotapi.NewMessage(msg.Chat.ID, "🔥 <b>FF Master Tools</b>\n\nUID Manager & Profile Tools.\n\n👇 <b>Open App:</b>")
	out.ParseMode = tgbotapi.ModeHTML
	if url := strings.TrimSpace(b.cfg.WebappURL); url != "" {
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("🚀 Open Tools", url),
			),
		)
	}
	if _, err := b.api.Send(out); err != nil {
		log.Printf("tg send start: %v", err)
	}
}

func (b *Bot) sendBalance(ctx context.Context, msg *tgbotapi.Message) {
	tgID := strconv.FormatInt(msg.From.ID, 10)
	acct, err := b.app.Account(ctx, tgID, msg.From.UserName)
	if err != nil {
		b.reply(msg, "Server error, try again later.")
		return
	}
	text := fmt.Sprintf("💰 Coins: %d", acct.Coins)
	if acct.SavedUID != "" {
		text += fmt.Sprintf("\n🆔 Last UID: %s (%s)", acct.SavedUID, acct.Region)
	}
	b.reply(msg, text)
}

func (b *Bot) runLike(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		b.reply(msg, "⚠️ Usage: /like <region> <uid>\nExample: /like ind 1234567890")
		return
	}
	region := strings.ToUpper(args[0])
	targetUID := args[1]

	processing, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "⏳ Processing your request..."))
	if err != nil {
		log.Printf("tg send processing: %v", err)
		return
	}

	tgID := strconv.FormatInt(msg.From.ID, 10)
	out, err := b.app.Execute(ctx, tgID, msg.From.UserName, targetUID, region, "LIKE")
	if err != nil {
		b.edit(processing, likeErrorText(err))
		return
	}

	text := fmt.Sprintf(
		"✅ Like Sent Successfully!\n\n👤 Name: %s\n🆔 UID: %s\n📊 Level: %d\n🌍 Region: %s\n👍 Likes: %d\n💰 Coins left: %d",
		out.Profile.Nickname, out.Profile.UID, out.Profile.Level, out.Profile.Region, out.Profile.Likes, out.Account.Coins,
	)
	b.edit(processing, text)
}

func likeErrorText(err error) string {
	switch {
	case isAny(err, app.ErrInvalidUID, simulate.ErrInvalidUID):
		return "⚠️ Invalid UID. It must be 8-12 digits."
	case isAny(err, store.ErrInsufficientCoins):
		return "⛔ Low coins. Each like costs 5 coins."
	case isAny(err, profile.ErrNotFound, profile.ErrUnavailable):
		return "⚠️ Invalid UID or the region might be wrong. Please check and try again."
	case isAny(err, simulate.ErrTargetBusy):
		return "🚨 The like server might be down. Please try again later."
	default:
		return "🚨 Server error. Please try again later."
	}
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	if _, err := b.api.Send(out); err != nil {
		log.Printf("tg send: %v", err)
	}
}

func (b *Bot) edit(msg tgbotapi.Message, text string) {
	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, msg.MessageID, text)
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("tg edit: %v", err)
	}
}
