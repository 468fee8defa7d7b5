package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/telebot.v4"

	"github.com/Houeta/deal-watch/internal/models"
	"github.com/Houeta/deal-watch/internal/repository"
	"github.com/Houeta/deal-watch/internal/services/subscriptions"
)

const (
	usageAdd      = "Usage: /add <term> [min=N] [max=N] [exclude=word,word]"
	usageRemove   = "Usage: /remove <term>"
	usageRecent   = "Usage: /recent <term> [n]"
	usageCheapest = "Usage: /cheapest <term> [n]"
	usageRange    = "Usage: /range <term> <low> <high>"
	replyFailure  = "Something went wrong, please try again later."
)

const greeting = `Hi! I watch marketplace searches and message you when a new listing matches.

/add <term> [min=N] [max=N] [exclude=word,word] - watch a search
/remove <term> - stop watching
/list - your searches
/recent <term> [n] - newest listings
/cheapest <term> [n] - cheapest listings
/range <term> <low> <high> - listings in a price range`

// reply runs a command body with a bounded context and sends its answer to the chat.
func (b *Bot) reply(c telebot.Context, command string, body func(ctx context.Context, ownerID, payload string) string) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	ownerID := strconv.FormatInt(c.Chat().ID, 10)
	b.log.DebugContext(ctx, "Command received", "command", command, "owner", ownerID)

	if err := c.Send(body(ctx, ownerID, c.Message().Payload), telebot.NoPreview); err != nil {
		return fmt.Errorf("failed to reply to %s: %w", command, err)
	}

	return nil
}

// startHandler process command /start.
func (b *Bot) startHandler(ctx telebot.Context) error {
	b.log.Info("User started the bot", "username", ctx.Sender().Username)

	if err := ctx.Send(greeting); err != nil {
		return fmt.Errorf("failed to send greeting message: %w", err)
	}

	return nil
}

func (b *Bot) addHandler(c telebot.Context) error { return b.reply(c, "/add", b.addReply) }
func (b *Bot) removeHandler(c telebot.Context) error { return b.reply(c, "/remove", b.removeReply) }
func (b *Bot) listHandler(c telebot.Context) error { return b.reply(c, "/list", b.listReply) }
func (b *Bot) recentHandler(c telebot.Context) error { return b.reply(c, "/recent", b.recentReply) }
func (b *Bot) rangeHandler(c telebot.Context) error { return b.reply(c, "/range", b.rangeReply) }
func (b *Bot) cheapestHandler(c telebot.Context) error { return b.reply(c, "/cheapest", b.cheapestReply) }

// unknownHandler answers slash commands that have no route. Plain text is ignored.
func (b *Bot) unknownHandler(c telebot.Context) error {
	if !strings.HasPrefix(c.Text(), "/") {
		return nil
	}

	if err := c.Send("Sorry, I didn't understand that command. Try /start."); err != nil {
		return fmt.Errorf("failed to reply to unknown command: %w", err)
	}

	return nil
}

func (b *Bot) addReply(ctx context.Context, ownerID, payload string) string {
	search, err := parseAddArgs(payload)
	if err != nil {
		return err.Error() + "\n" + usageAdd
	}
	search.OwnerID = ownerID

	stored, err := b.subs.Add(ctx, search)
	if err != nil {
		for _, invalid := range []error{
			subscriptions.ErrNegativePrice, subscriptions.ErrInvertedRange, repository.ErrEmptyTerm,
		} {
			if errors.Is(err, invalid) {
				return "Invalid search: " + invalid.Error() + "\n" + usageAdd
			}
		}
		b.log.ErrorContext(ctx, "Failed to add search", "owner", ownerID, "error", err)
		return replyFailure
	}

	return fmt.Sprintf("Watching %q (%s).", stored.SearchTerm, formatBounds(stored))
}

func (b *Bot) removeReply(ctx context.Context, ownerID, payload string) string {
	term := strings.TrimSpace(payload)
	if term == "" {
		return usageRemove
	}

	err := b.subs.Remove(ctx, ownerID, term)
	switch {
	case errors.Is(err, repository.ErrSearchNotFound):
		return fmt.Sprintf("You are not watching %q.", subscriptions.NormalizeTerm(term))
	case err != nil:
		b.log.ErrorContext(ctx, "Failed to remove search", "owner", ownerID, "error", err)
		return replyFailure
	}

	return fmt.Sprintf("Stopped watching %q.", subscriptions.NormalizeTerm(term))
}

func (b *Bot) listReply(ctx context.Context, ownerID, _ string) string {
	searches, err := b.subs.List(ctx, ownerID)
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to list searches", "owner", ownerID, "error", err)
		return replyFailure
	}
	if len(searches) == 0 {
		return "You are not watching anything yet. Use /add <term>."
	}

	var sb strings.Builder
	sb.WriteString("Your searches:")
	for _, s := range searches {
		fmt.Fprintf(&sb, "\n- %s (%s)", s.SearchTerm, formatBounds(s))
	}

	return sb.String()
}

func (b *Bot) recentReply(ctx context.Context, ownerID, payload string) string {
	term, n, err := b.termAndCount(ctx, ownerID, payload)
	if err != nil {
		return usageRecent
	}

	listings, err := b.subs.Snapshot(ctx, term)
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to load snapshot", "term", term, "error", err)
		return replyFailure
	}

	return formatListings(fmt.Sprintf("Newest listings for %q:", term), listings[:min(n, len(listings))], 0, b.baseURL)
}

func (b *Bot) cheapestReply(ctx context.Context, ownerID, payload string) string {
	term, n, err := b.termAndCount(ctx, ownerID, payload)
	if err != nil {
		return usageCheapest
	}

	listings, err := b.subs.Snapshot(ctx, term)
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to load snapshot", "term", term, "error", err)
		return replyFailure
	}

	sorted := slices.Clone(listings)
	slices.SortStableFunc(sorted, func(x, y models.Listing) int {
		switch {
		case x.Price < y.Price:
			return -1
		case x.Price > y.Price:
			return 1
		}
		return 0
	})

	return formatListings(fmt.Sprintf("Cheapest listings for %q:", term), sorted[:min(n, len(sorted))], 0, b.baseURL)
}

func (b *Bot) rangeReply(ctx context.Context, _, payload string) string {
	term, low, high, err := parseRangeArgs(payload)
	if err != nil {
		return usageRange
	}
	term = subscriptions.NormalizeTerm(term)

	listings, err := b.subs.Snapshot(ctx, term)
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to load snapshot", "term", term, "error", err)
		return replyFailure
	}

	var inRange []models.Listing
	for _, l := range listings {
		if l.Price >= low && l.Price <= high {
			inRange = append(inRange, l)
		}
	}

	header := fmt.Sprintf("Listings for %q between %s and %s:", term, formatPrice(low), formatPrice(high))
	shown := inRange[:min(maxListCount, len(inRange))]

	return formatListings(header, shown, len(inRange)-len(shown), b.baseURL)
}

// termAndCount resolves "<term> [n]". When the whole payload names one of the owner's
// searches, a trailing number is part of the term ("iphone 13").
func (b *Bot) termAndCount(ctx context.Context, ownerID, payload string) (string, int, error) {
	whole := subscriptions.NormalizeTerm(payload)
	if whole == "" {
		return "", 0, errNoTerm
	}

	if searches, err := b.subs.List(ctx, ownerID); err == nil {
		for _, s := range searches {
			if s.SearchTerm == whole {
				return whole, defaultListCount, nil
			}
		}
	}

	term, n, err := parseTermCount(payload)
	if err != nil {
		return "", 0, err
	}

	return subscriptions.NormalizeTerm(term), n, nil
}
