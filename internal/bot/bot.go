package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"gopkg.in/telebot.v4"

	"github.com/Houeta/deal-watch/internal/delivery"
	"github.com/Houeta/deal-watch/internal/models"
)

// handlerTimeout bounds the storage work of one command.
const handlerTimeout = 10 * time.Second

// Bot contains the bot API instance and other information.
type Bot struct {
	bot     API
	log     *slog.Logger
	subs    Subscriptions
	baseURL *url.URL
}

var _ delivery.Pusher = (*Bot)(nil)

func NewBot(log *slog.Logger, token string, poller time.Duration, subs Subscriptions, baseURL string) (*Bot, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	botInstance := &Bot{bot: bot, log: log, subs: subs, baseURL: base}

	botInstance.registerRoutes()

	return botInstance, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// Push sends a new listing to the chat that owns the search.
func (b *Bot) Push(ctx context.Context, ob models.Obligation) error {
	const opn = "bot.Push"

	chatID, err := strconv.ParseInt(ob.OwnerID, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: owner %q is not a chat id: %w", opn, ob.OwnerID, err)
	}

	if _, err = b.bot.Send(telebot.ChatID(chatID), formatAlert(ob, b.baseURL)); err != nil {
		return fmt.Errorf("%s: failed to send message: %w", opn, err)
	}
	b.log.DebugContext(ctx, "Listing pushed", "op", opn, "chat", chatID, "listing", ob.Listing.ListingURL)

	return nil
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	// Public routes.
	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle("/add", b.addHandler)
	b.bot.Handle("/remove", b.removeHandler)
	b.bot.Handle("/list", b.listHandler)
	b.bot.Handle("/recent", b.recentHandler)
	b.bot.Handle("/cheapest", b.cheapestHandler)
	b.bot.Handle("/range", b.rangeHandler)
	b.bot.Handle(telebot.OnText, b.unknownHandler)
}
