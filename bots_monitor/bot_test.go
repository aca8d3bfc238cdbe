package bots_monitor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"memescout/internal/clients_api/grok"
	"memescout/internal/features/discovery"
	"memescout/internal/features/sentiment"
	"memescout/internal/filter"
	"memescout/internal/storage"
	"memescout/internal/storage/memory"
	"memescout/internal/token"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mintWSOL = "So11111111111111111111111111111111111111112"
	mintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	mintUSDT = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

// fakeSender captures outgoing Telegram traffic. Failed edits are not
// recorded so fallback sends can be asserted in isolation.
type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	editErr  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && f.editErr != nil {
		return tgbotapi.Message{}, f.editErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func lastMessage(t *testing.T, f *fakeSender) tgbotapi.MessageConfig {
	t.Helper()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok, "last send was %T, want MessageConfig", f.sent[len(f.sent)-1])
	return msg
}

func lastEdit(t *testing.T, f *fakeSender) tgbotapi.EditMessageTextConfig {
	t.Helper()
	require.NotEmpty(t, f.sent)
	edit, ok := f.sent[len(f.sent)-1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok, "last send was %T, want EditMessageTextConfig", f.sent[len(f.sent)-1])
	return edit
}

func lastCallbackAnswer(t *testing.T, f *fakeSender) tgbotapi.CallbackConfig {
	t.Helper()
	require.NotEmpty(t, f.requests)
	cb, ok := f.requests[len(f.requests)-1].(tgbotapi.CallbackConfig)
	require.True(t, ok, "last request was %T, want CallbackConfig", f.requests[len(f.requests)-1])
	return cb
}

type fakePairs struct {
	records     []token.Record
	info        map[string]token.Record
	err         error
	searchCalls int
	infoCalls   int
}

func (f *fakePairs) SearchMemecoins(_ context.Context, _ int) ([]token.Record, error) {
	f.searchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakePairs) GetTokenInfo(_ context.Context, address string) (*token.Record, error) {
	f.infoCalls++
	if f.err != nil {
		return nil, f.err
	}
	if rec, ok := f.info[address]; ok {
		return &rec, nil
	}
	return nil, errors.New("token not found")
}

type fakeAnalyzer struct {
	analysis grok.Analysis
	err      error
	calls    int
}

func (f *fakeAnalyzer) AnalyzeWithSearch(_ context.Context, _, _ string) (grok.Analysis, error) {
	f.calls++
	return f.analysis, f.err
}

func (f *fakeAnalyzer) AnalyzeTexts(_ context.Context, _, _ string, _ []string) (grok.Analysis, error) {
	f.calls++
	return f.analysis, f.err
}

func rec(address, symbol string, mc, vol float64) token.Record {
	return token.Record{
		Address:         address,
		Name:            symbol + " Token",
		Symbol:          symbol,
		MarketCap:       mc,
		Volume24h:       vol,
		Liquidity:       50_000,
		HoldersEstimate: 100,
		PriceUSD:        0.002,
		DexID:           "raydium",
		DexURL:          "https://dexscreener.com/solana/" + address,
	}
}

func newTestBot(t *testing.T, pairs *fakePairs) (*Bot, *fakeSender) {
	t.Helper()
	api := &fakeSender{}
	b := &Bot{
		api: api,
		discovery: discovery.NewService(discovery.Options{
			Pairs: pairs,
			Cache: memory.NewMemecoinCacheStore(),
		}),
		sentiment: sentiment.NewService(sentiment.Options{
			Analyzer: &fakeAnalyzer{analysis: grok.Analysis{
				Sentiment:   grok.SentimentBullish,
				Explanation: "Strong community buzz.",
				TweetCount:  12,
			}},
			Store: memory.NewSentimentCacheStore(),
		}),
		filters:   memory.NewUserFilterStore(),
		sessions:  NewSessionManager(),
		pageSize:  2,
		chartsDir: t.TempDir(),
	}
	return b, api
}

func commandUpdate(chatID int64, text string) tgbotapi.Update {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i > 0 {
		cmdLen = i
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: chatID, UserName: "tester", FirstName: "Tess"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}}
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 2,
		From:      &tgbotapi.User{ID: chatID, UserName: "tester", FirstName: "Tess"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: chatID, UserName: "tester", FirstName: "Tess"},
		Message: &tgbotapi.Message{
			MessageID: 42,
			Chat:      &tgbotapi.Chat{ID: chatID},
		},
		Data: data,
	}}
}

func TestStartCommandSendsWelcomeWithMenu(t *testing.T) {
	b, api := newTestBot(t, &fakePairs{})

	b.handleUpdate(context.Background(), commandUpdate(1, "/start"))

	msg := lastMessage(t, api)
	assert.Equal(t, int64(1), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "Welcome Tess")

	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, cbMenuFilters, *kb.InlineKeyboard[0][0].CallbackData)
}

func TestSearchCommandFiltersAndRendersResults(t *testing.T) {
	pairs := &fakePairs{records: []token.Record{
		rec(mintWSOL, "AAA", 2_000_000, 100_000),
		rec(mintUSDC, "BBB", 500_000, 400_000), // below the mc bound
		rec(mintUSDT, "CCC", 3_000_000, 50_000),
	}}
	b, api := newTestBot(t, pairs)

	b.handleUpdate(context.Background(), commandUpdate(1, "/search mc > 1m"))

	msg := lastMessage(t, api)
	assert.Contains(t, msg.Text, "Memecoin Results")
	assert.Contains(t, msg.Text, "AAA")
	assert.Contains(t, msg.Text, "CCC")
	assert.NotContains(t, msg.Text, "BBB")

	s := b.sessions.Get(1)
	assert.Len(t, s.LastResults, 2)
	assert.False(t, s.LastPredicate.Empty())
}

func TestSearchCommandNoArgsAwaitsFilterText(t *testing.T) {
	pairs := &fakePairs{records: []token.Record{
		rec(mintWSOL, "AAA", 2_000_000, 100_000),
	}}
	b, api := newTestBot(t, pairs)
	ctx := context.Background()

	b.handleUpdate(ctx, commandUpdate(1, "/search"))
	assert.Equal(t, awaitingFilterText, b.sessions.Get(1).AwaitingInput)
	assert.Contains(t, lastMessage(t, api).Text, "filter expression")

	b.handleUpdate(ctx, textUpdate(1, "mc > 1m"))
	assert.Contains(t, lastMessage(t, api).Text, "AAA")
	assert.Equal(t, awaitingNothing, b.sessions.Get(1).AwaitingInput)

	// Plain text with nothing awaited falls back to the menu hint.
	b.handleUpdate(ctx, textUpdate(1, "hello bot"))
	assert.Contains(t, lastMessage(t, api).Text, "use the menu buttons")
}

func TestSearchUnparseableTextShowsHelp(t *testing.T) {
	b, api := newTestBot(t, &fakePairs{})

	b.handleUpdate(context.Background(), commandUpdate(1, "/search total nonsense"))

	msg := lastMessage(t, api)
	assert.Contains(t, msg.Text, "couldn't read any filters")
}

func TestSearchNoMatchesSaysSo(t *testing.T) {
	pairs := &fakePairs{records: []token.Record{
		rec(mintWSOL, "AAA", 10_000, 1_000),
	}}
	b, api := newTestBot(t, pairs)

	b.handleUpdate(context.Background(), commandUpdate(1, "/search mc > 1m"))

	assert.Contains(t, lastMessage(t, api).Text, "No memecoins matched")
}

func TestPaginationCallbacksMovePages(t *testing.T) {
	pairs := &fakePairs{records: []token.Record{
		rec(mintWSOL, "AAA", 2_000_000, 500_000),
		rec(mintUSDC, "BBB", 2_000_000, 400_000),
		rec(mintUSDT, "CCC", 2_000_000, 300_000),
		rec("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R", "DDD", 2_000_000, 200_000),
		rec("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", "EEE", 2_000_000, 100_000),
	}}
	b, api := newTestBot(t, pairs)
	ctx := context.Background()

	b.handleUpdate(ctx, commandUpdate(1, "/search mc > 1m"))

	first := lastMessage(t, api)
	assert.Contains(t, first.Text, "AAA")
	assert.Contains(t, first.Text, "BBB")
	assert.NotContains(t, first.Text, "CCC")
	assert.Contains(t, first.Text, "Page 1/3")

	b.handleUpdate(ctx, callbackUpdate(1, prefixPage+"1"))

	edit := lastEdit(t, api)
	assert.Contains(t, edit.Text, "CCC")
	assert.Contains(t, edit.Text, "DDD")
	// Numbering restarts on every page.
	assert.Contains(t, edit.Text, "<code> 1.</code>")
	assert.Contains(t, edit.Text, "Page 2/3")
	assert.Equal(t, 1, b.sessions.Get(1).LastPage)
}

func TestTokenCommandShowsDetails(t *testing.T) {
	target := rec(mintWSOL, "WSOL", 5_000_000, 900_000)
	pairs := &fakePairs{info: map[string]token.Record{mintWSOL: target}}
	b, api := newTestBot(t, pairs)

	b.handleUpdate(context.Background(), commandUpdate(1, "/token "+mintWSOL))

	msg := lastMessage(t, api)
	assert.Contains(t, msg.Text, "WSOL")
	assert.Contains(t, msg.Text, "<code>"+mintWSOL+"</code>")

	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.NotEmpty(t, kb.InlineKeyboard)
}

func TestTokenCommandRejectsInvalidAddress(t *testing.T) {
	pairs := &fakePairs{}
	b, api := newTestBot(t, pairs)

	b.handleUpdate(context.Background(), commandUpdate(1, "/token not-an-address"))

	assert.Contains(t, lastMessage(t, api).Text, "doesn't look like a Solana")
	assert.Zero(t, pairs.infoCalls)
}

func TestDetailsAndCopyCallbacks(t *testing.T) {
	pairs := &fakePairs{records: []token.Record{
		rec(mintWSOL, "AAA", 2_000_000, 100_000),
	}}
	b, api := newTestBot(t, pairs)
	ctx := context.Background()

	b.handleUpdate(ctx, commandUpdate(1, "/search mc > 1m"))
	b.handleUpdate(ctx, callbackUpdate(1, prefixDetails+mintWSOL))

	edit := lastEdit(t, api)
	assert.Contains(t, edit.Text, "AAA Token")
	assert.Contains(t, edit.Text, "<code>"+mintWSOL+"</code>")

	b.handleUpdate(ctx, callbackUpdate(1, prefixCopyCA+mintWSOL))

	answer := lastCallbackAnswer(t, api)
	assert.Equal(t, copiedAlert, answer.Text)
	assert.True(t, answer.ShowAlert)
}

func TestDetailsCallbackForUnknownTokenAlerts(t *testing.T) {
	b, api := newTestBot(t, &fakePairs{})

	b.handleUpdate(context.Background(), callbackUpdate(1, prefixDetails+mintWSOL))

	answer := lastCallbackAnswer(t, api)
	assert.True(t, answer.ShowAlert)
	assert.Contains(t, answer.Text, "not found")
	assert.Empty(t, api.sent)
}

func TestBuilderFlowSetsBoundsAndSearches(t *testing.T) {
	pairs := &fakePairs{records: []token.Record{
		rec(mintWSOL, "AAA", 2_000_000, 100_000),
		rec(mintUSDC, "BBB", 5_000, 100_000),
	}}
	b, api := newTestBot(t, pairs)
	ctx := context.Background()

	b.handleUpdate(ctx, callbackUpdate(1, cbFilterBuilder))
	assert.Contains(t, lastEdit(t, api).Text, "Filter Builder")

	b.handleUpdate(ctx, callbackUpdate(1, prefixBuilder+"mc"))
	assert.Contains(t, lastEdit(t, api).Text, "Market Cap")

	b.handleUpdate(ctx, callbackUpdate(1, prefixSet+"mc_min_10000"))

	s := b.sessions.Get(1)
	v, ok := s.Builder.Threshold(filter.AttrMarketCap, filter.Min)
	require.True(t, ok)
	assert.Equal(t, 10_000.0, v)
	assert.Contains(t, lastEdit(t, api).Text, "MC ≥ $10.0K")

	b.handleUpdate(ctx, callbackUpdate(1, cbBuilderSearch))
	result := lastEdit(t, api)
	assert.Contains(t, result.Text, "AAA")
	assert.NotContains(t, result.Text, "BBB")
}

func TestBuilderSearchWithNoFiltersAlerts(t *testing.T) {
	pairs := &fakePairs{}
	b, api := newTestBot(t, pairs)

	b.handleUpdate(context.Background(), callbackUpdate(1, cbBuilderSearch))

	answer := lastCallbackAnswer(t, api)
	assert.Equal(t, emptyBuilderAlert, answer.Text)
	assert.True(t, answer.ShowAlert)
	assert.Zero(t, pairs.searchCalls)
}

func TestBuilderResetClearsAllBounds(t *testing.T) {
	b, api := newTestBot(t, &fakePairs{})
	ctx := context.Background()

	b.handleUpdate(ctx, callbackUpdate(1, prefixSet+"volume_min_50000"))
	require.False(t, b.sessions.Get(1).Builder.Empty())

	b.handleUpdate(ctx, callbackUpdate(1, cbBuilderReset))

	assert.True(t, b.sessions.Get(1).Builder.Empty())
	assert.Contains(t, lastEdit(t, api).Text, filter.NoFiltersText)
}

func TestClearCallbackRemovesOneParameter(t *testing.T) {
	b, _ := newTestBot(t, &fakePairs{})
	ctx := context.Background()

	b.handleUpdate(ctx, callbackUpdate(1, prefixSet+"mc_min_10000"))
	b.handleUpdate(ctx, callbackUpdate(1, prefixSet+"volume_min_1000"))
	b.handleUpdate(ctx, callbackUpdate(1, prefixClear+"mc"))

	s := b.sessions.Get(1)
	_, hasMC := s.Builder.Threshold(filter.AttrMarketCap, filter.Min)
	_, hasVol := s.Builder.Threshold(filter.AttrVolume24h, filter.Min)
	assert.False(t, hasMC)
	assert.True(t, hasVol)
}

func TestPresetCallbackRunsSearch(t *testing.T) {
	pairs := &fakePairs{records: []token.Record{
		rec(mintWSOL, "AAA", 2_000_000, 200_000),
	}}
	b, api := newTestBot(t, pairs)

	b.handleUpdate(context.Background(), callbackUpdate(1, prefixPreset+"high_mc"))

	assert.Equal(t, 1, pairs.searchCalls)
	assert.Contains(t, lastEdit(t, api).Text, "AAA")
}

func TestSaveApplyDeleteSavedFilter(t *testing.T) {
	pairs := &fakePairs{records: []token.Record{
		rec(mintWSOL, "AAA", 2_000_000, 100_000),
	}}
	b, api := newTestBot(t, pairs)
	ctx := context.Background()

	b.handleUpdate(ctx, commandUpdate(1, "/search mc > 1m"))
	b.handleUpdate(ctx, callbackUpdate(1, cbSaveFilter))

	saved, err := b.filters.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "market_cap.min=1000000", saved.FilterText)
	assert.NotEmpty(t, saved.Rendered)

	b.handleUpdate(ctx, commandUpdate(1, "/filters"))
	assert.Contains(t, lastMessage(t, api).Text, "Saved Filter")

	b.handleUpdate(ctx, callbackUpdate(1, cbSavedApply))
	assert.Contains(t, lastEdit(t, api).Text, "AAA")

	b.handleUpdate(ctx, callbackUpdate(1, cbSavedDelete))
	_, err = b.filters.Get(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaveFilterWithoutSearchAlerts(t *testing.T) {
	b, api := newTestBot(t, &fakePairs{})

	b.handleUpdate(context.Background(), callbackUpdate(1, cbSaveFilter))

	answer := lastCallbackAnswer(t, api)
	assert.True(t, answer.ShowAlert)
	assert.Contains(t, answer.Text, "Nothing to save")
}

func TestSentimentCallbackShowsVerdict(t *testing.T) {
	pairs := &fakePairs{records: []token.Record{
		rec(mintWSOL, "AAA", 2_000_000, 100_000),
	}}
	b, api := newTestBot(t, pairs)
	ctx := context.Background()

	b.handleUpdate(ctx, commandUpdate(1, "/search mc > 1m"))
	b.handleUpdate(ctx, callbackUpdate(1, prefixSentiment+mintWSOL))

	edit := lastEdit(t, api)
	assert.Contains(t, edit.Text, "🟢 <b>Bullish</b>")
	assert.Contains(t, edit.Text, "Strong community buzz")
}

func TestSentimentCommandResolvesTokenFirst(t *testing.T) {
	target := rec(mintWSOL, "WSOL", 5_000_000, 900_000)
	pairs := &fakePairs{info: map[string]token.Record{mintWSOL: target}}
	b, api := newTestBot(t, pairs)

	b.handleUpdate(context.Background(), commandUpdate(1, "/sentiment "+mintWSOL))

	msg := lastMessage(t, api)
	assert.Contains(t, msg.Text, "Sentiment: WSOL Token (WSOL)")
	assert.Equal(t, 1, pairs.infoCalls)
}

func TestSentimentCommandWithoutArgsShowsUsage(t *testing.T) {
	b, api := newTestBot(t, &fakePairs{})

	b.handleUpdate(context.Background(), commandUpdate(1, "/sentiment"))

	assert.Contains(t, lastMessage(t, api).Text, "Usage:")
}

func TestChartCommandSendsPhoto(t *testing.T) {
	pairs := &fakePairs{records: []token.Record{
		rec(mintWSOL, "AAA", 2_000_000, 100_000),
	}}
	b, api := newTestBot(t, pairs)
	ctx := context.Background()

	b.handleUpdate(ctx, commandUpdate(1, "/search mc > 1m"))
	b.handleUpdate(ctx, commandUpdate(1, "/chart"))

	require.NotEmpty(t, api.sent)
	photo, ok := api.sent[len(api.sent)-1].(tgbotapi.PhotoConfig)
	require.True(t, ok, "last send was %T, want PhotoConfig", api.sent[len(api.sent)-1])
	assert.Contains(t, photo.Caption, "MC ≥ $1.0M")
}

func TestChartCommandWithoutResultsPrompts(t *testing.T) {
	b, api := newTestBot(t, &fakePairs{})

	b.handleUpdate(context.Background(), commandUpdate(1, "/chart"))

	assert.Contains(t, lastMessage(t, api).Text, "Run a search first")
}

func TestProviderFailureSendsErrorNotice(t *testing.T) {
	pairs := &fakePairs{err: errors.New("api down")}
	b, api := newTestBot(t, pairs)

	b.handleUpdate(context.Background(), commandUpdate(1, "/search mc > 1m"))

	assert.Equal(t, errorText, lastMessage(t, api).Text)
}

func TestMenuCallbacksEditInPlace(t *testing.T) {
	b, api := newTestBot(t, &fakePairs{})
	ctx := context.Background()

	b.handleUpdate(ctx, callbackUpdate(1, cbMenuFilters))
	edit := lastEdit(t, api)
	assert.Equal(t, 42, edit.MessageID)
	assert.Contains(t, edit.Text, "Memecoin Filters")

	b.handleUpdate(ctx, callbackUpdate(1, cbMenuHelp))
	assert.Contains(t, lastEdit(t, api).Text, "Help")

	b.handleUpdate(ctx, callbackUpdate(1, cbHelpAbout))
	assert.Contains(t, lastEdit(t, api).Text, "About")
}

func TestEditFallsBackToFreshMessage(t *testing.T) {
	b, api := newTestBot(t, &fakePairs{})
	api.editErr = errors.New("Bad Request: message to edit not found")

	b.handleUpdate(context.Background(), callbackUpdate(1, cbMenuFilters))

	msg := lastMessage(t, api)
	assert.Contains(t, msg.Text, "Memecoin Filters")
}

func TestEditNotModifiedIsSwallowed(t *testing.T) {
	b, api := newTestBot(t, &fakePairs{})
	api.editErr = errors.New("Bad Request: message is not modified")

	b.handleUpdate(context.Background(), callbackUpdate(1, cbMenuFilters))

	// No fallback message and no error notice.
	assert.Empty(t, api.sent)
}
