// Package service holds the user-facing message catalog.
package service

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Localizer renders catalog messages in the configured language, falling
// back to English for messages the language lacks.
type Localizer struct {
	lang      language.Tag
	localizer *i18n.Localizer
}

func NewLocalizer(lang string) (*Localizer, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("invalid interface language %q: %w", lang, err)
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(localeFS, "locales/*.toml")
	if err != nil {
		return nil, err
	}
	for _, name := range files {
		data, err := localeFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(data, path.Base(name)); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}

	return &Localizer{
		lang:      tag,
		localizer: i18n.NewLocalizer(bundle, tag.String(), language.English.String()),
	}, nil
}

// Lookup renders messageID and reports whether the catalog has it.
func (l *Localizer) Lookup(messageID string, data map[string]any) (string, bool) {
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID, false
	}
	return msg, true
}

// Localize is Lookup without the flag. Missing messages render as their id.
func (l *Localizer) Localize(messageID string, data map[string]any) string {
	msg, _ := l.Lookup(messageID, data)
	return msg
}

func (l *Localizer) Language() language.Tag {
	return l.lang
}
