// Package i18n translates user-facing text. Messages live in embedded YAML
// locale files; English is the fallback for missing messages and languages.
package i18n

import (
	"os"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// SupportedLanguages lists the language codes with a locale file
var SupportedLanguages = []string{"en", "ko"}

var (
	localizer *i18n.Localizer
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Korean})
)

// Init loads the locales and picks the language: configLang when set,
// otherwise the POSIX locale environment (LC_ALL, LC_MESSAGES, LANG).
func Init(configLang string) error {
	bundle, err := newBundle()
	if err != nil {
		return err
	}
	localizer = i18n.NewLocalizer(bundle, detectLanguage(configLang), "en")
	return nil
}

func detectLanguage(configLang string) string {
	if configLang != "" {
		return normalizeLanguage(configLang)
	}
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return normalizeLanguage(v)
		}
	}
	return "en"
}

// normalizeLanguage maps a locale such as ko_KR.UTF-8 to a supported code
func normalizeLanguage(locale string) string {
	locale, _, _ = strings.Cut(locale, ".")
	locale, _, _ = strings.Cut(locale, "@")
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "en"
	}

	_, idx, confidence := matcher.Match(tag)
	if confidence < language.High {
		return "en"
	}
	return SupportedLanguages[idx]
}

// T translates a message ID with optional template data.
// Unknown IDs, and every ID before Init, come back unchanged.
func T(id string, data ...map[string]interface{}) string {
	cfg := &i18n.LocalizeConfig{MessageID: id}
	if len(data) > 0 && data[0] != nil {
		cfg.TemplateData = data[0]
	}
	return localize(cfg)
}

// TPlural translates a plural message; count is also available as {{.Count}}
func TPlural(id string, count int, data map[string]interface{}) string {
	td := map[string]interface{}{"Count": count}
	for k, v := range data {
		td[k] = v
	}
	return localize(&i18n.LocalizeConfig{MessageID: id, PluralCount: count, TemplateData: td})
}

func localize(cfg *i18n.LocalizeConfig) string {
	if localizer == nil {
		return cfg.MessageID
	}
	msg, err := localizer.Localize(cfg)
	if err != nil {
		return cfg.MessageID
	}
	return msg
}

// IsSupported checks if a language code is supported
func IsSupported(code string) bool {
	for _, l := range SupportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}
