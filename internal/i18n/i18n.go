// Package i18n resolves the translated reason strings carried by Failed
// responses. Default locales ship embedded in the binary; a deployment
// can replace or extend them with an override directory.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

//go:embed locales/*.json
var locales embed.FS

// Reason keys looked up for Failed responses.
const (
	KeyUserDuplicateJoin    = "user_duplicate_join"
	KeyRoomAlreadyExist     = "room_already_exist"
	KeyRoomDuplicateCreate  = "room_duplicate_create"
	KeyRoomInReadyState     = "room_in_ready_state"
	KeyRoomNotExist         = "room_not_exist"
	KeyUserAlreadyExist     = "user_already_exist"
	KeyRoomAlreadyLocked    = "room_already_locked"
	KeyRoomDuplicateJoin    = "room_duplicate_join"
	KeyNotInRoom            = "not_in_room"
	KeyUserNotExist         = "user_not_exist"
	KeyNotHost              = "not_host"
	KeyRoomAlreadyUnlocked  = "room_already_unlocked"
	KeyRoomAlreadyCycled    = "room_already_cycled"
	KeyRoomAlreadyNotCycled = "room_already_not_cycled"
	KeyNotSelectChart       = "not_select_chart"
	KeyNotReadyState        = "not_ready_state"
)

// Catalog maps language tags to key→text tables. It is immutable after
// New returns, so lookups need no locking.
type Catalog struct {
	languages map[string]map[string]string
}

// New loads the embedded locales, then merges *.json files from
// overrideDir on top of them (file name minus extension is the language
// tag). A missing override directory is fine; unreadable or malformed
// override files are skipped with a warning.
func New(overrideDir string) (*Catalog, error) {
	c := &Catalog{languages: make(map[string]map[string]string)}

	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil, fmt.Errorf("reading embedded locales: %w", err)
	}
	for _, e := range entries {
		data, err := fs.ReadFile(locales, "locales/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading embedded locale %s: %w", e.Name(), err)
		}
		if err := c.merge(e.Name(), data); err != nil {
			return nil, fmt.Errorf("parsing embedded locale %s: %w", e.Name(), err)
		}
	}

	if overrideDir != "" {
		if err := c.loadOverrides(overrideDir); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Catalog) merge(fileName string, data []byte) error {
	lang := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		return err
	}
	dst := c.languages[lang]
	if dst == nil {
		dst = make(map[string]string, len(table))
		c.languages[lang] = dst
	}
	for k, v := range table {
		dst[k] = v
	}
	return nil
}

func (c *Catalog) loadOverrides(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("locale override directory does not exist, skipping", "dir", dir)
			return nil
		}
		return fmt.Errorf("reading locale overrides: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			slog.Warn("failed to read locale override", "file", e.Name(), "error", err)
			continue
		}
		if err := c.merge(e.Name(), data); err != nil {
			slog.Warn("failed to parse locale override", "file", e.Name(), "error", err)
		}
	}
	return nil
}

// Text returns the translation of key for the given language. Unknown
// languages and keys come back as bracketed placeholders so the client
// still renders something legible.
func (c *Catalog) Text(language, key string) string {
	table, ok := c.languages[language]
	if !ok {
		return fmt.Sprintf("[Missing i10n file: %s]", language)
	}
	text, ok := table[key]
	if !ok {
		return fmt.Sprintf("[Missing key: %s]", key)
	}
	return text
}

// Languages returns the loaded language tags, mainly for startup logging.
func (c *Catalog) Languages() []string {
	tags := make([]string, 0, len(c.languages))
	for lang := range c.languages {
		tags = append(tags, lang)
	}
	return tags
}
