package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/posadzki/internal/quote"
)

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts a short message about every exported quote to the
// contractor's chats.
type Telegram struct {
	bot     botAPI
	chatIDs []int64
	logger  *zap.Logger
}

func NewTelegram(token string, chatIDs []int64, logger *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	logger.Info("telegram notifications enabled",
		zap.String("bot", bot.Self.UserName),
		zap.Int("chats", len(chatIDs)))
	return &Telegram{bot: bot, chatIDs: chatIDs, logger: logger}, nil
}

// QuoteExported sends the lead summary to every chat. Every chat is attempted;
// the first failure is returned.
func (t *Telegram) QuoteExported(_ context.Context, lead quote.Lead) error {
	if len(t.chatIDs) == 0 {
		return nil
	}
	text := FormatLead(lead)

	var first error
	for _, chatID := range t.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.DisableWebPagePreview = true
		if _, err := t.bot.Send(msg); err != nil {
			t.logger.Error("send telegram notification",
				zap.Int64("chat_id", chatID),
				zap.String("number", lead.Document.Number),
				zap.Error(err))
			if first == nil {
				first = fmt.Errorf("telegram chat %d: %w", chatID, err)
			}
		}
	}
	return first
}

var channelNames = map[quote.Channel]string{
	quote.ChannelPDF:   "pobranie PDF",
	quote.ChannelXLSX:  "pobranie XLSX",
	quote.ChannelEmail: "e-mail",
}

// FormatLead renders the notification text.
func FormatLead(lead quote.Lead) string {
	doc := lead.Document
	lines := []string{
		"🧾 Nowa wycena " + doc.Number,
		"Pomieszczenie: " + doc.RoomType,
	}
	if doc.ConcreteState != "" {
		lines = append(lines, "Podłoże: "+doc.ConcreteState)
	}
	lines = append(lines,
		"Wymiary: "+doc.DimensionSummary(),
		"Specyfikacja: "+doc.Specification(),
		"Razem netto: "+quote.FormatMoney(doc.Totals.Total),
		"Kanał: "+channelNames[lead.Channel],
	)
	if lead.Email != "" {
		lines = append(lines, "Klient: "+lead.Email)
	}
	return strings.Join(lines, "\n")
}
