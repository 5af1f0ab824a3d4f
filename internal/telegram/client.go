// Package telegram provides a client for sending bet notifications via Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/slatewatch/internal/logger"
	"github.com/rewired-gh/slatewatch/internal/models"
	"github.com/rewired-gh/slatewatch/internal/storage"
)

const historySize = 10

// BetLister returns the currently tracked bets.
type BetLister interface {
	Bets() []models.Bet
}

// OutcomeLister returns recently settled bets.
type OutcomeLister interface {
	RecentOutcomes(k int) ([]storage.Outcome, error)
}

// Client handles Telegram notifications.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// ListenForCommands starts a goroutine that polls for Telegram updates and handles bot commands.
// It returns immediately; the goroutine stops when ctx is cancelled.
func (c *Client) ListenForCommands(ctx context.Context, bets BetLister, history OutcomeLister) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil && update.Message.IsCommand() {
					c.handleCommand(update.Message, bets, history)
				}
			}
		}
	}()
}

func (c *Client) handleCommand(msg *tgbotapi.Message, bets BetLister, history OutcomeLister) {
	var reply tgbotapi.MessageConfig
	switch msg.Command() {
	case "ping":
		reply = tgbotapi.NewMessage(msg.Chat.ID, "Pong")
	case "bets":
		reply = tgbotapi.NewMessage(msg.Chat.ID, formatBetList(bets.Bets()))
		reply.ParseMode = "MarkdownV2"
	case "history":
		outcomes, err := history.RecentOutcomes(historySize)
		if err != nil {
			logger.Error("Failed to load bet history: %v", err)
			reply = tgbotapi.NewMessage(msg.Chat.ID, "History unavailable")
			break
		}
		reply = tgbotapi.NewMessage(msg.Chat.ID, formatHistory(outcomes))
		reply.ParseMode = "MarkdownV2"
	default:
		return
	}
	if _, err := c.bot.Send(reply); err != nil {
		logger.Warn("Failed to reply to /%s: %v", msg.Command(), err)
	}
}

// sendMarkdownV2 sends a MarkdownV2 message with linear-backoff retry.
func (c *Client) sendMarkdownV2(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// SendError sends a tracking error notification.
// Call this only on the first occurrence of a consecutive error sequence.
func (c *Client) SendError(cycleErr error) error {
	text := fmt.Sprintf("⚠️ *Tracking error*\n`%s`", escapeMarkdownV2(cycleErr.Error()))
	return c.sendMarkdownV2(text)
}

// SendRecovery sends a recovery notification after consecutive failures.
func (c *Client) SendRecovery(failureCount int) error {
	text := fmt.Sprintf("✅ *Tracking recovered* after %d consecutive failure\\(s\\)", failureCount)
	return c.sendMarkdownV2(text)
}

// SendOutcomes announces bets that were just settled.
func (c *Client) SendOutcomes(bets []models.Bet) error {
	if len(bets) == 0 {
		return nil
	}
	return c.sendMarkdownV2(formatOutcomes(bets))
}

// formatOutcomes formats settled bets into a Telegram MarkdownV2 message.
func formatOutcomes(bets []models.Bet) string {
	var b strings.Builder
	b.WriteString("🏁 *Bets Settled*\n\n")
	for i, bet := range bets {
		fmt.Fprintf(&b, "%d\\. %s\n", i+1, betHeadline(bet))
		writeRequirements(&b, bet)
		b.WriteString("\n")
	}
	return b.String()
}

func formatBetList(bets []models.Bet) string {
	if len(bets) == 0 {
		return "No bets tracked"
	}
	var b strings.Builder
	b.WriteString("📋 *Tracked Bets*\n\n")
	for i, bet := range bets {
		fmt.Fprintf(&b, "%d\\. %s\n", i+1, betHeadline(bet))
		writeRequirements(&b, bet)
		b.WriteString("\n")
	}
	return b.String()
}

func formatHistory(outcomes []storage.Outcome) string {
	if len(outcomes) == 0 {
		return "No settled bets yet"
	}
	var b strings.Builder
	b.WriteString("🗂 *Recent Results*\n\n")
	for i, o := range outcomes {
		when := escapeMarkdownV2(o.Bet.SettledAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "%d\\. %s\n   📅 %s\n", i+1, betHeadline(o.Bet), when)
	}
	return b.String()
}

func betHeadline(bet models.Bet) string {
	done, total := bet.Progress()
	title := bet.Title
	if title == "" {
		title = defaultTitle(bet.Type)
	}
	return fmt.Sprintf("%s *%s* %s \\(%d/%d\\)",
		statusEmoji(bet.Status), escapeMarkdownV2(title),
		escapeMarkdownV2(strings.ToUpper(string(bet.Status))), done, total)
}

func writeRequirements(b *strings.Builder, bet models.Bet) {
	for _, r := range bet.Requirements {
		mark := "⏳"
		switch {
		case r.Completed:
			mark = "✔️"
		case bet.Status == models.StatusLost:
			mark = "✖️"
		}
		line := fmt.Sprintf("%s %s: %d/%d", r.Target.Label(), r.Stat, r.Current, r.Threshold)
		fmt.Fprintf(b, "   %s %s\n", mark, escapeMarkdownV2(line))
	}
	if bet.Notes != "" {
		fmt.Fprintf(b, "   📝 %s\n", escapeMarkdownV2(bet.Notes))
	}
}

func statusEmoji(s models.BetStatus) string {
	switch s {
	case models.StatusWon:
		return "✅"
	case models.StatusLost:
		return "❌"
	default:
		return "🏈"
	}
}

func defaultTitle(t models.BetType) string {
	if t == models.TeamSlate {
		return "Team slate"
	}
	return "Player parlay"
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
