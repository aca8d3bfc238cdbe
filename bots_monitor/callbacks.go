package bots_monitor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"memescout/internal/filter"
	"memescout/internal/infra/log"
	"memescout/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleCallback routes inline keyboard presses. Exact matches are checked
// before prefixes so "filter_builder" never falls into the "filter_" preset
// branch.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID
	data := cq.Data
	s := b.sessions.Get(chatID)

	log.LogDebug("Callback received",
		zap.String("data", data),
		zap.Int64("chat_id", chatID),
		zap.String("username", cq.From.UserName))

	switch data {
	case cbNoop:
		b.answerCallback(cq.ID, "")
		return nil

	case cbMenuMain:
		b.answerCallback(cq.ID, "")
		return b.editOrSend(chatID, messageID, welcomeText(cq.From.FirstName), mainMenuKeyboard())

	case cbMenuFilters:
		b.answerCallback(cq.ID, "")
		return b.editOrSend(chatID, messageID, filtersMenuText(), filtersMenuKeyboard())

	case cbMenuHelp:
		b.answerCallback(cq.ID, "")
		return b.editOrSend(chatID, messageID, helpText, helpKeyboard())

	case cbHelpFilters:
		b.answerCallback(cq.ID, "")
		return b.editOrSend(chatID, messageID, filterHelpText, backKeyboard(cbMenuHelp))

	case cbHelpAbout:
		b.answerCallback(cq.ID, "")
		return b.editOrSend(chatID, messageID, aboutText, backKeyboard(cbMenuHelp))

	case cbFilterBuilder:
		b.answerCallback(cq.ID, "")
		return b.editOrSend(chatID, messageID, builderText(s.Builder), builderKeyboard(s.Builder))

	case cbBuilderReset:
		s.Builder = filter.Predicate{}
		b.answerCallback(cq.ID, "Filters reset")
		return b.editOrSend(chatID, messageID, builderText(s.Builder), builderKeyboard(s.Builder))

	case cbBuilderSearch:
		if s.Builder.Empty() {
			b.alertCallback(cq.ID, emptyBuilderAlert)
			return nil
		}
		b.answerCallback(cq.ID, "")
		return b.runSearch(ctx, chatID, messageID, s.Builder)

	case cbBackToResults:
		b.answerCallback(cq.ID, "")
		if len(s.LastResults) == 0 {
			return b.editOrSend(chatID, messageID, filtersMenuText(), filtersMenuKeyboard())
		}
		return b.showResults(chatID, messageID, s, s.LastPage)

	case cbSaveFilter:
		return b.saveFilter(ctx, cq, s)

	case cbSavedApply:
		return b.applySavedFilter(ctx, cq)

	case cbSavedDelete:
		return b.deleteSavedFilter(ctx, cq)
	}

	switch {
	case strings.HasPrefix(data, prefixSet):
		return b.setBuilderValue(cq, s, strings.TrimPrefix(data, prefixSet))

	case strings.HasPrefix(data, prefixClear):
		return b.clearBuilderParam(cq, s, strings.TrimPrefix(data, prefixClear))

	case strings.HasPrefix(data, prefixBuilder):
		return b.showBuilderParam(cq, strings.TrimPrefix(data, prefixBuilder))

	case strings.HasPrefix(data, prefixPreset):
		return b.runPreset(ctx, cq, strings.TrimPrefix(data, prefixPreset))

	case strings.HasPrefix(data, prefixPage):
		page, err := strconv.Atoi(strings.TrimPrefix(data, prefixPage))
		if err != nil {
			b.answerCallback(cq.ID, "")
			return nil
		}
		b.answerCallback(cq.ID, "")
		return b.showResults(chatID, messageID, s, page)

	case strings.HasPrefix(data, prefixDetails):
		return b.showDetails(cq, s, strings.TrimPrefix(data, prefixDetails))

	case strings.HasPrefix(data, prefixCopyCA):
		b.alertCallback(cq.ID, copiedAlert)
		return nil

	case strings.HasPrefix(data, prefixSentiment):
		b.answerCallback(cq.ID, "Analyzing recent posts...")
		return b.showSentiment(ctx, chatID, messageID, strings.TrimPrefix(data, prefixSentiment))

	default:
		log.LogWarn("Unknown callback", zap.String("data", data))
		b.answerCallback(cq.ID, "")
		return nil
	}
}

// setBuilderValue applies one "param_kind_value" bound to the session's
// builder predicate and re-renders the builder.
func (b *Bot) setBuilderValue(cq *tgbotapi.CallbackQuery, s *Session, suffix string) error {
	parts := strings.SplitN(suffix, "_", 3)
	if len(parts) != 3 {
		b.answerCallback(cq.ID, "")
		return nil
	}

	param, ok := paramByKey(parts[0])
	if !ok {
		b.answerCallback(cq.ID, "")
		return nil
	}

	bound := filter.Min
	if parts[1] == "max" {
		bound = filter.Max
	}

	value, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		b.answerCallback(cq.ID, "")
		return nil
	}

	s.Builder = s.Builder.With(param.attr, bound, value)
	b.answerCallback(cq.ID, "")
	return b.editOrSend(cq.Message.Chat.ID, cq.Message.MessageID,
		builderText(s.Builder), builderKeyboard(s.Builder))
}

func (b *Bot) clearBuilderParam(cq *tgbotapi.CallbackQuery, s *Session, key string) error {
	param, ok := paramByKey(key)
	if !ok {
		b.answerCallback(cq.ID, "")
		return nil
	}

	s.Builder = s.Builder.Without(param.attr)
	b.answerCallback(cq.ID, "Cleared")
	return b.editOrSend(cq.Message.Chat.ID, cq.Message.MessageID,
		builderText(s.Builder), builderKeyboard(s.Builder))
}

func (b *Bot) showBuilderParam(cq *tgbotapi.CallbackQuery, key string) error {
	param, ok := paramByKey(key)
	if !ok {
		b.answerCallback(cq.ID, "")
		return nil
	}

	b.answerCallback(cq.ID, "")
	return b.editOrSend(cq.Message.Chat.ID, cq.Message.MessageID,
		paramText(param), paramKeyboard(param))
}

func (b *Bot) runPreset(ctx context.Context, cq *tgbotapi.CallbackQuery, key string) error {
	p, ok := filter.Preset(key)
	if !ok {
		b.alertCallback(cq.ID, "Unknown preset")
		return nil
	}
	b.answerCallback(cq.ID, "")
	return b.runSearch(ctx, cq.Message.Chat.ID, cq.Message.MessageID, p)
}

func (b *Bot) showDetails(cq *tgbotapi.CallbackQuery, s *Session, address string) error {
	rec, ok := s.FindResult(address)
	if !ok {
		b.alertCallback(cq.ID, "Token not found in current results. Run the search again.")
		return nil
	}

	b.answerCallback(cq.ID, "")
	return b.editOrSend(cq.Message.Chat.ID, cq.Message.MessageID,
		formatTokenDetails(rec), detailsKeyboard(rec, b.sentiment != nil))
}

func (b *Bot) saveFilter(ctx context.Context, cq *tgbotapi.CallbackQuery, s *Session) error {
	if b.filters == nil {
		b.alertCallback(cq.ID, "Saved filters need database storage.")
		return nil
	}
	if s.LastPredicate.Empty() {
		b.alertCallback(cq.ID, "Nothing to save, the last search had no filters.")
		return nil
	}

	f := &storage.SavedFilter{
		ChatID:     cq.Message.Chat.ID,
		FilterText: filter.EncodePredicate(s.LastPredicate),
		Rendered:   s.LastFilterText,
	}
	if err := b.filters.Save(ctx, f); err != nil {
		return fmt.Errorf("save filter: %w", err)
	}

	b.answerCallback(cq.ID, "Filter saved 💾")
	return nil
}

func (b *Bot) applySavedFilter(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	if b.filters == nil {
		b.alertCallback(cq.ID, "Saved filters need database storage.")
		return nil
	}

	f, err := b.filters.Get(ctx, cq.Message.Chat.ID)
	if errors.Is(err, storage.ErrNotFound) {
		b.alertCallback(cq.ID, "No saved filter found.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load saved filter: %w", err)
	}

	p := filter.DecodePredicate(f.FilterText)
	if p.Empty() {
		b.alertCallback(cq.ID, "Saved filter is empty.")
		return nil
	}

	b.answerCallback(cq.ID, "")
	return b.runSearch(ctx, cq.Message.Chat.ID, cq.Message.MessageID, p)
}

func (b *Bot) deleteSavedFilter(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	if b.filters == nil {
		b.alertCallback(cq.ID, "Saved filters need database storage.")
		return nil
	}

	err := b.filters.Delete(ctx, cq.Message.Chat.ID)
	if errors.Is(err, storage.ErrNotFound) {
		b.alertCallback(cq.ID, "No saved filter found.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete saved filter: %w", err)
	}

	b.answerCallback(cq.ID, "Deleted 🗑")
	return b.editOrSend(cq.Message.Chat.ID, cq.Message.MessageID,
		noSavedFilterText, mainMenuKeyboard())
}
