package telegramNotifier

import (
	"context"
	"log/slog"

	"github.com/payout-hq/payout/config"
	"github.com/payout-hq/payout/utils"
	tele "gopkg.in/telebot.v4"
)

// TelegramNotifier pushes ingestion-cycle summaries to an ops chat.
type TelegramNotifier struct {
	bot    *tele.Bot
	chatID int64
}

func New(cfg *config.Config) *TelegramNotifier {
	settings := tele.Settings{
		Token:   cfg.Telegram.Token,
		Offline: cfg.Telegram.Token == "",
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TelegramNotifier{bot: b, chatID: cfg.Telegram.OpsChatID}
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	_, err := n.bot.Send(tele.ChatID(n.chatID), text)
	if err != nil {
		slog.Error("failed to send telegram notification", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("telegram notification sent", slog.String("rqID", rqID))

	return nil
}
