package i18n

import (
	"log/slog"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a user-facing message
type Key string

const (
	MsgIssueFailed      Key = "issue.failed"
	MsgThemeRequired    Key = "issue.theme_required"
	MsgIssueInProgress  Key = "issue.in_progress"
	MsgNothingToRetry   Key = "issue.nothing_to_retry"
	MsgThemePlaceholder Key = "form.placeholder"
	MsgIdlePrompt       Key = "hero.prompt"
)

// Supported is the list of locales with a full catalog; the first entry is
// the fallback for unmatched requests
var Supported = []language.Tag{language.Korean, language.English}

var translations = map[language.Tag]map[Key]string{
	language.Korean: {
		MsgIssueFailed:      "매거진 발행 중 오류가 발생했습니다. 테마를 조금 더 구체적으로 입력해 보세요.",
		MsgThemeRequired:    "테마를 입력해 주세요.",
		MsgIssueInProgress:  "이미 매거진을 발행하고 있습니다. 잠시만 기다려 주세요.",
		MsgNothingToRetry:   "다시 발행할 매거진이 없습니다.",
		MsgThemePlaceholder: "테마를 입력하세요...",
		MsgIdlePrompt:       "오늘의 감성을 입력하고 매거진을 발행하세요.",
	},
	language.English: {
		MsgIssueFailed:      "Something went wrong while publishing the issue. Try a more specific theme.",
		MsgThemeRequired:    "Please enter a theme.",
		MsgIssueInProgress:  "An issue is already being curated. Please wait a moment.",
		MsgNothingToRetry:   "There is no issue to publish again.",
		MsgThemePlaceholder: "Enter a theme...",
		MsgIdlePrompt:       "Type today's mood and publish your issue.",
	},
}

// Localizer resolves message keys for a locale
type Localizer struct {
	catalog  *catalog.Builder
	matcher  language.Matcher
	fallback language.Tag
}

// NewLocalizer builds the message catalog. defaultLocale is used when a
// request carries no usable Accept-Language; unknown values fall back to Korean.
func NewLocalizer(defaultLocale string) *Localizer {
	b := catalog.NewBuilder(catalog.Fallback(Supported[0]))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, string(key), msg); err != nil {
				slog.Error("failed to register message", "locale", tag, "key", key, "error", err)
			}
		}
	}

	l := &Localizer{
		catalog:  b,
		matcher:  language.NewMatcher(Supported),
		fallback: Supported[0],
	}
	if defaultLocale != "" {
		l.fallback = l.Match(defaultLocale)
	}
	return l
}

// Match picks the best supported locale for an Accept-Language header value
func (l *Localizer) Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.fallback
	}
	_, idx, confidence := l.matcher.Match(tags...)
	if confidence == language.No {
		return l.fallback
	}
	return Supported[idx]
}

// Default returns the configured fallback locale
func (l *Localizer) Default() language.Tag {
	return l.fallback
}

// Printer returns a printer bound to the catalog for a locale
func (l *Localizer) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(l.catalog))
}

// Translate returns the message for key in the given locale
func (l *Localizer) Translate(tag language.Tag, key Key) string {
	return l.Printer(tag).Sprintf(message.Key(string(key), string(key)))
}
