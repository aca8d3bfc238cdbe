package bots_monitor

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"memescout/internal/features/discovery"
	"memescout/internal/features/sentiment"
	"memescout/internal/features/tg_charts"
	"memescout/internal/filter"
	"memescout/internal/infra/log"
	"memescout/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	command := message.Command()
	args := strings.TrimSpace(message.CommandArguments())

	log.LogInfo("Command received",
		zap.String("command", command),
		zap.Int64("chat_id", chatID),
		zap.String("username", message.From.UserName))

	switch command {
	case "start":
		return b.cmdStart(chatID, message.From.FirstName)
	case "help":
		return b.cmdHelp(chatID)
	case "search":
		return b.cmdSearch(ctx, chatID, args)
	case "presets":
		return b.cmdPresets(chatID)
	case "trending":
		return b.cmdTrending(ctx, chatID)
	case "token":
		return b.cmdToken(ctx, chatID, args)
	case "sentiment":
		return b.cmdSentiment(ctx, chatID, args)
	case "filters":
		return b.cmdFilters(ctx, chatID)
	case "chart":
		return b.cmdChart(chatID)
	default:
		return b.sendHTML(chatID, fallbackText, keyboardPtr(mainMenuKeyboard()))
	}
}

func (b *Bot) cmdStart(chatID int64, firstName string) error {
	b.sessions.Reset(chatID)
	return b.sendHTML(chatID, welcomeText(firstName), keyboardPtr(mainMenuKeyboard()))
}

func (b *Bot) cmdHelp(chatID int64) error {
	return b.sendHTML(chatID, helpText, keyboardPtr(helpKeyboard()))
}

func (b *Bot) cmdSearch(ctx context.Context, chatID int64, args string) error {
	if args == "" {
		s := b.sessions.Get(chatID)
		s.AwaitingInput = awaitingFilterText
		return b.sendHTML(chatID,
			"🔍 Send me a filter expression, for example:\n\n"+
				"<code>mc &gt; 1m volume &gt; 100k</code>", nil)
	}
	return b.runTextSearch(ctx, chatID, args)
}

// runTextSearch parses a free-text filter and shows the first result page.
func (b *Bot) runTextSearch(ctx context.Context, chatID int64, text string) error {
	p := filter.Parse(text)
	if p.Empty() {
		return b.sendHTML(chatID,
			"⚠️ I couldn't read any filters from that.\n\n"+filterHelpText,
			keyboardPtr(backKeyboard(cbMenuFilters)))
	}
	return b.runSearch(ctx, chatID, 0, p)
}

// runSearch executes a search for the predicate and renders page zero.
// messageID > 0 edits that message in place instead of sending a new one.
func (b *Bot) runSearch(ctx context.Context, chatID int64, messageID int, p filter.Predicate) error {
	result, err := b.discovery.Search(ctx, p)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	s := b.sessions.Get(chatID)
	if len(result.Records) == 0 {
		kb := filtersMenuKeyboard()
		if messageID > 0 {
			return b.editOrSend(chatID, messageID, noResultsText, kb)
		}
		return b.sendHTML(chatID, noResultsText, &kb)
	}

	s.SetResults(result.Records, p, result.FilterText)
	return b.showResults(chatID, messageID, s, 0)
}

// showResults renders one page of the session's last results.
func (b *Bot) showResults(chatID int64, messageID int, s *Session, page int) error {
	totalPages := (len(s.LastResults) + b.pageSize - 1) / b.pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}
	s.LastPage = page

	start := page * b.pageSize
	end := start + b.pageSize
	if end > len(s.LastResults) {
		end = len(s.LastResults)
	}
	pageRecords := s.LastResults[start:end]

	canSave := b.filters != nil && !s.LastPredicate.Empty()
	text := formatTokenList(pageRecords, s.LastFilterText, page, totalPages)
	kb := resultsKeyboard(pageRecords, page, totalPages, canSave)

	if messageID > 0 {
		return b.editOrSend(chatID, messageID, text, kb)
	}
	return b.sendHTML(chatID, text, &kb)
}

func (b *Bot) cmdPresets(chatID int64) error {
	var sb strings.Builder
	sb.WriteString("🔍 <b>Filter Presets</b>\n\n")
	for _, e := range filter.Presets() {
		if emoji, ok := presetEmoji[e.Key]; ok {
			sb.WriteString(emoji + " ")
		}
		sb.WriteString("<b>" + html.EscapeString(e.Name) + "</b>\n")
		sb.WriteString("<i>" + html.EscapeString(filter.FormatFilters(e.Predicate)) + "</i>\n\n")
	}
	sb.WriteString("Tap a preset to run it:")
	return b.sendHTML(chatID, sb.String(), keyboardPtr(filtersMenuKeyboard()))
}

func (b *Bot) cmdTrending(ctx context.Context, chatID int64) error {
	records, err := b.discovery.Trending(ctx, discovery.DefaultTrendingLimit)
	if err != nil {
		return fmt.Errorf("trending: %w", err)
	}
	if len(records) == 0 {
		return b.sendHTML(chatID, "😕 Nothing trending right now. Try again in a minute.", nil)
	}

	s := b.sessions.Get(chatID)
	s.SetResults(records, filter.Predicate{}, "trending, ranked by activity")

	kb := resultsKeyboard(records, 0, 1, false)
	return b.sendHTML(chatID, formatTrendingList(records), &kb)
}

func (b *Bot) cmdToken(ctx context.Context, chatID int64, args string) error {
	if args == "" {
		s := b.sessions.Get(chatID)
		s.AwaitingInput = awaitingTokenAddress
		return b.sendHTML(chatID, "📋 Send me the token's contract address.", nil)
	}
	return b.showTokenInfo(ctx, chatID, args)
}

func (b *Bot) showTokenInfo(ctx context.Context, chatID int64, address string) error {
	rec, err := b.discovery.TokenInfo(ctx, address)
	if errors.Is(err, discovery.ErrInvalidAddress) {
		return b.sendHTML(chatID, "⚠️ That doesn't look like a Solana contract address.", nil)
	}
	if err != nil {
		return fmt.Errorf("token info: %w", err)
	}

	kb := detailsKeyboard(*rec, b.sentiment != nil)
	return b.sendHTML(chatID, formatTokenDetails(*rec), &kb)
}

func (b *Bot) cmdSentiment(ctx context.Context, chatID int64, args string) error {
	if args == "" {
		return b.sendHTML(chatID, "Usage: /sentiment &lt;contract address&gt;", nil)
	}
	return b.showSentiment(ctx, chatID, 0, args)
}

// showSentiment resolves the token first so the analysis can search by its
// symbol and name rather than the raw address.
func (b *Bot) showSentiment(ctx context.Context, chatID int64, messageID int, address string) error {
	if b.sentiment == nil {
		return b.sendHTML(chatID, "Sentiment analysis is not configured.", nil)
	}

	rec, ok := b.sessions.Get(chatID).FindResult(address)
	if !ok {
		found, err := b.discovery.TokenInfo(ctx, address)
		if errors.Is(err, discovery.ErrInvalidAddress) {
			return b.sendHTML(chatID, "⚠️ That doesn't look like a Solana contract address.", nil)
		}
		if err != nil {
			return fmt.Errorf("sentiment lookup: %w", err)
		}
		rec = *found
	}

	res, err := b.sentiment.Analyze(ctx, rec.Address, rec.Name, rec.Symbol)
	if errors.Is(err, sentiment.ErrNoSymbol) {
		return b.sendHTML(chatID, "⚠️ This token has no symbol or name to search posts by.", nil)
	}
	if err != nil {
		return fmt.Errorf("sentiment: %w", err)
	}

	text := formatSentiment(rec, res.Sentiment, res.Explanation, res.TweetCount, res.FromCache)
	kb := backKeyboard(prefixDetails + rec.Address)
	if messageID > 0 {
		return b.editOrSend(chatID, messageID, text, kb)
	}
	return b.sendHTML(chatID, text, &kb)
}

func (b *Bot) cmdFilters(ctx context.Context, chatID int64) error {
	if b.filters == nil {
		return b.sendHTML(chatID, "Saved filters need database storage, which is not configured.", nil)
	}

	f, err := b.filters.Get(ctx, chatID)
	if errors.Is(err, storage.ErrNotFound) {
		return b.sendHTML(chatID, noSavedFilterText, keyboardPtr(mainMenuKeyboard()))
	}
	if err != nil {
		return fmt.Errorf("load saved filter: %w", err)
	}
	return b.sendHTML(chatID, formatSavedFilter(f), keyboardPtr(savedFilterKeyboard()))
}

func (b *Bot) cmdChart(chatID int64) error {
	s := b.sessions.Get(chatID)
	if len(s.LastResults) == 0 {
		return b.sendHTML(chatID, "Run a search first, then /chart shows the results as a picture.", nil)
	}

	path, err := tg_charts.GenerateResultsChart(s.LastResults, b.chartsDir)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	photo.Caption = "📊 " + s.LastFilterText
	if _, err := b.api.Send(photo); err != nil {
		log.LogError("Failed to send chart, falling back to text",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return b.showResults(chatID, 0, s, s.LastPage)
	}
	return nil
}

// handleText routes free text by what the session is waiting for.
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	s := b.sessions.Get(chatID)

	switch s.AwaitingInput {
	case awaitingFilterText:
		s.AwaitingInput = awaitingNothing
		return b.runTextSearch(ctx, chatID, message.Text)
	case awaitingTokenAddress:
		s.AwaitingInput = awaitingNothing
		return b.showTokenInfo(ctx, chatID, message.Text)
	default:
		return b.sendHTML(chatID, fallbackText, keyboardPtr(mainMenuKeyboard()))
	}
}

func keyboardPtr(kb tgbotapi.InlineKeyboardMarkup) *tgbotapi.InlineKeyboardMarkup {
	return &kb
}
