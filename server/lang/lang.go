// Package lang loads the extension's language files and translates message
// keys for a player's locale.
package lang

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed languages/*.yml
var embedded embed.FS

// Translator translates message keys into the language best matching a
// requested locale. Keys without a translation are returned as is.
type Translator struct {
	cat      *catalog.Builder
	tags     []language.Tag
	matcher  language.Matcher
	fallback language.Tag
}

// Load reads every language file shipped with the extension. fallback is the
// language used when no loaded language matches a requested locale.
func Load(fallback string) (*Translator, error) {
	return LoadFS(embedded, "languages", fallback)
}

// LoadFS reads every *.yml file in dir of fsys. File names are locale names
// such as en_us.yml.
func LoadFS(fsys fs.FS, dir, fallback string) (*Translator, error) {
	fallbackTag, err := ParseLocale(fallback)
	if err != nil {
		return nil, fmt.Errorf("parse fallback language: %w", err)
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read language directory: %w", err)
	}
	t := &Translator{cat: catalog.NewBuilder(catalog.Fallback(fallbackTag)), fallback: fallbackTag}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yml" {
			continue
		}
		tag, err := ParseLocale(strings.TrimSuffix(entry.Name(), ".yml"))
		if err != nil {
			return nil, fmt.Errorf("language file %s: %w", entry.Name(), err)
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read language file %s: %w", entry.Name(), err)
		}
		var messages map[string]string
		if err := yaml.Unmarshal(raw, &messages); err != nil {
			return nil, fmt.Errorf("decode language file %s: %w", entry.Name(), err)
		}
		for key, msg := range messages {
			if err := t.cat.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("language file %s: key %s: %w", entry.Name(), key, err)
			}
		}
		t.tags = append(t.tags, tag)
	}
	if len(t.tags) == 0 {
		return nil, fmt.Errorf("no language files found in %s", dir)
	}
	// The fallback must come first so that it wins when nothing matches.
	for i, tag := range t.tags {
		if tag == fallbackTag {
			t.tags[0], t.tags[i] = t.tags[i], t.tags[0]
			break
		}
	}
	t.matcher = language.NewMatcher(t.tags)
	return t, nil
}

// ParseLocale parses locales in either the Minecraft (en_US) or BCP 47 (en-US)
// form.
func ParseLocale(s string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
}

// Match returns the loaded language best matching tag.
func (t *Translator) Match(tag language.Tag) language.Tag {
	_, index, confidence := t.matcher.Match(tag)
	if confidence == language.No {
		return t.fallback
	}
	return t.tags[index]
}

// Translate formats the message for key in the language best matching tag.
func (t *Translator) Translate(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(t.Match(tag), message.Catalog(t.cat)).Sprintf(key, args...)
}

// Default formats the message for key in the fallback language.
func (t *Translator) Default(key string, args ...any) string {
	return t.Translate(t.fallback, key, args...)
}

// Bool translates a boolean using the UI.Tip.true and UI.Tip.false keys.
func (t *Translator) Bool(tag language.Tag, v bool) string {
	if v {
		return t.Translate(tag, "UI.Tip.true")
	}
	return t.Translate(tag, "UI.Tip.false")
}
