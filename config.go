package aspen

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/peterbourgon/diskv/v3"
)

const (
	settingsKey = "settings"
	slotsKey    = "curve-slots"
	catalogKey  = "catalog"
)

// Settings are the user-adjustable knobs read at show time. Out-of-range
// values are pulled back into range on load, never rejected.
type Settings struct {
	GridColumns int  `json:"gridColumns"`
	GridRows    int  `json:"gridRows"`
	UseMask     bool `json:"useMask"`
	FullBounds  bool `json:"fullBounds"`

	// CustomAnchors back the grid's side slots.
	CustomAnchors []Vec2 `json:"customAnchors,omitempty"`

	// Scale holds per-overlay-kind scale factors keyed by
	// OverlayKind.String(). Missing entries mean 1.
	Scale map[string]float64 `json:"scale,omitempty"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		GridColumns: 3,
		GridRows:    3,
		CustomAnchors: []Vec2{
			{X: 0.5, Y: 0},
			{X: 0.5, Y: 1.2},
			{X: -0.2, Y: 0.5},
		},
	}
}

// ScaleFor returns the scale factor for an overlay kind.
func (s Settings) ScaleFor(kind OverlayKind) float64 {
	if v, ok := s.Scale[kind.String()]; ok && v > 0 {
		return v
	}
	return 1
}

func (s Settings) validated() Settings {
	s.GridColumns = clampGridDim(s.GridColumns)
	s.GridRows = clampGridDim(s.GridRows)
	for i, r := range s.CustomAnchors {
		s.CustomAnchors[i] = ClampPasteRatio(r)
	}
	for k, v := range s.Scale {
		if v <= 0 || v > 8 {
			delete(s.Scale, k)
		}
	}
	return s
}

// Store persists settings, curve slots, and the action catalog document on
// a diskv-backed key space. Every read degrades to defaults on missing or
// malformed data; writes report errors to the caller.
type Store struct {
	d      *diskv.Diskv
	logger *log.Logger
}

// OpenStore opens (creating if needed) a store rooted at dir. An empty dir
// resolves to an "aspen" directory under the user config directory.
func OpenStore(dir string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "aspen")
	}
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			CacheSizeMax: 64 * 1024,
		}),
		logger: logger,
	}, nil
}

// Settings loads settings, falling back to defaults on missing or
// malformed data.
func (s *Store) Settings() Settings {
	cfg := DefaultSettings()
	if !s.readJSON(settingsKey, &cfg) {
		return DefaultSettings()
	}
	return cfg.validated()
}

// SaveSettings writes settings.
func (s *Store) SaveSettings(cfg Settings) error {
	return s.writeJSON(settingsKey, cfg.validated())
}

// CurveSlots loads the saved slot table. Missing or malformed data yields
// an empty table.
func (s *Store) CurveSlots() [CurveSlotCount]PresetSlot {
	var slots [CurveSlotCount]PresetSlot
	if !s.readJSON(slotsKey, &slots) {
		return [CurveSlotCount]PresetSlot{}
	}
	for i := range slots {
		slots[i].Curve = slots[i].Curve.Clamp()
	}
	return slots
}

// SaveCurveSlots writes the slot table.
func (s *Store) SaveCurveSlots(slots [CurveSlotCount]PresetSlot) error {
	return s.writeJSON(slotsKey, slots)
}

// Catalog loads the action catalog document and decodes it with the usual
// malformed-falls-back-to-defaults semantics.
func (s *Store) Catalog() *ActionCatalog {
	data, err := s.d.Read(catalogKey)
	if err != nil {
		return DefaultCatalog()
	}
	return LoadCatalog(data, s.logger)
}

// SaveCatalogDocument writes a raw catalog document. The document is
// validated on the next load, not here.
func (s *Store) SaveCatalogDocument(data []byte) error {
	return s.d.Write(catalogKey, data)
}

func (s *Store) readJSON(key string, v any) bool {
	data, err := s.d.Read(key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("stored document unreadable, using defaults",
			"key", key, "err", errors.Join(ErrConfigMalformed, err))
		return false
	}
	return true
}

func (s *Store) writeJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.d.Write(key, data)
}
