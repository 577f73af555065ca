// Package i18n translates user-facing page strings. Translations live in
// embedded YAML files and the language is picked per request from the
// Accept-Language header, falling back to English.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Translator holds the loaded message bundle.
type Translator struct {
	bundle *i18n.Bundle
}

// New parses all embedded locale files.
func New() (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("reading locales: %w", err)
	}
	for _, f := range files {
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			return nil, fmt.Errorf("reading locale %s: %w", f.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, f.Name()); err != nil {
			return nil, fmt.Errorf("parsing locale %s: %w", f.Name(), err)
		}
	}

	return &Translator{bundle: bundle}, nil
}

// Locale translates messages for one request's language preference.
type Locale struct {
	localizer *i18n.Localizer
}

// Locale creates a localizer for the given language preferences, usually the
// raw Accept-Language header value.
func (t *Translator) Locale(langs ...string) *Locale {
	return &Locale{localizer: i18n.NewLocalizer(t.bundle, langs...)}
}

// T translates a message by ID, returning the ID itself when no translation
// exists.
func (l *Locale) T(messageID string) string {
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID
	}
	return msg
}
