package aspen

import (
	"encoding/json"
	"errors"

	"github.com/charmbracelet/log"
)

// ErrConfigMalformed marks a configuration document that could not be
// decoded. It is logged and recovered from, never surfaced to the user.
var ErrConfigMalformed = errors.New("aspen: malformed configuration")

// CatalogEntry is one action in a category's ordered list.
type CatalogEntry struct {
	ID      string `json:"id"`
	Label   string `json:"label,omitempty"`
	Enabled bool   `json:"enabled"`
}

// ActionCatalog maps a category key (layer or content kind) to its ordered
// action list. Loaded once, read at show time, never mutated by overlays.
type ActionCatalog struct {
	categories map[string][]CatalogEntry
}

// defaultActionLabels resolves ids to display labels when a configuration
// entry omits its label.
var defaultActionLabels = map[string]string{
	"fade-in":       "Fade In",
	"fade-out":      "Fade Out",
	"pop-in":        "Pop In",
	"slide-in":      "Slide In",
	"wiggle":        "Wiggle",
	"loop":          "Loop",
	"trim-to-frame": "Trim To Frame",
	"typewriter":    "Typewriter",
	"tracking-in":   "Tracking In",
	"draw-on":       "Draw On",
	"repeat":        "Repeat",
	"time-remap":    "Time Remap",
	"freeze-frame":  "Freeze Frame",
}

// DefaultCatalog is the built-in per-category ordering used when no
// configuration is present.
func DefaultCatalog() *ActionCatalog {
	mk := func(ids ...string) []CatalogEntry {
		entries := make([]CatalogEntry, 0, len(ids))
		for _, id := range ids {
			entries = append(entries, CatalogEntry{
				ID:      id,
				Label:   defaultActionLabels[id],
				Enabled: true,
			})
		}
		return entries
	}
	return &ActionCatalog{categories: map[string][]CatalogEntry{
		"shape":   mk("fade-in", "fade-out", "pop-in", "slide-in", "repeat", "wiggle"),
		"text":    mk("typewriter", "tracking-in", "fade-in", "slide-in", "wiggle"),
		"solid":   mk("fade-in", "fade-out", "slide-in", "wiggle"),
		"footage": mk("fade-in", "fade-out", "loop", "time-remap", "freeze-frame", "trim-to-frame"),
	}}
}

// LoadCatalog decodes a configuration document of the shape
// {"category": [{"id": ..., "enabled": ...}, ...], ...}. Malformed input
// falls back to the built-in defaults, logged but non-fatal. Categories
// absent from the document keep their default ordering.
func LoadCatalog(data []byte, logger *log.Logger) *ActionCatalog {
	if logger == nil {
		logger = log.Default()
	}
	cat := DefaultCatalog()
	if len(data) == 0 {
		return cat
	}

	var doc map[string][]CatalogEntry
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("action catalog unreadable, using defaults",
			"err", errors.Join(ErrConfigMalformed, err))
		return cat
	}

	for key, entries := range doc {
		for i := range entries {
			if entries[i].Label == "" {
				if label, ok := defaultActionLabels[entries[i].ID]; ok {
					entries[i].Label = label
				} else {
					entries[i].Label = entries[i].ID
				}
			}
		}
		cat.categories[key] = entries
	}
	return cat
}

// Actions returns the enabled actions for a category, in configured order.
// An unknown category falls back to the shape ordering.
func (c *ActionCatalog) Actions(category string) []CatalogEntry {
	entries, ok := c.categories[category]
	if !ok {
		entries = c.categories["shape"]
	}
	out := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

// Categories lists the known category keys.
func (c *ActionCatalog) Categories() []string {
	keys := make([]string, 0, len(c.categories))
	for k := range c.categories {
		keys = append(keys, k)
	}
	return keys
}
