package menu

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/goliatone/go-menu/internal/hydrate"
	"github.com/goliatone/go-menu/internal/vkey"
)

const (
	DefaultItemWidth      = 160
	DefaultItemHeight     = 30
	DefaultShowMenuPress  = vkey.Shift
	DefaultShowMenuToggle = vkey.F9
)

// Palette holds the menu colours as #rrggbb or #rrggbbaa strings.
type Palette struct {
	Background       string `json:"background" jsonschema:"pattern=^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$"`
	ActiveBackground string `json:"active_background" jsonschema:"pattern=^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$"`
	Border           string `json:"border" jsonschema:"pattern=^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$"`
	Text             string `json:"text" jsonschema:"pattern=^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$"`
	On               string `json:"on" jsonschema:"pattern=^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$"`
	Off              string `json:"off" jsonschema:"pattern=^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$"`
	Arrow            string `json:"arrow" jsonschema:"pattern=^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$"`
	SliderMarker     string `json:"slider_marker" jsonschema:"pattern=^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$"`
}

// Settings configures geometry, colours, hotkeys and storage of a Manager.
type Settings struct {
	BaseX             int     `json:"base_x" jsonschema:"minimum=0"`
	BaseY             int     `json:"base_y" jsonschema:"minimum=0"`
	ItemWidth         int     `json:"item_width" jsonschema:"minimum=1"`
	ItemHeight        int     `json:"item_height" jsonschema:"minimum=1"`
	ShowMenuPressKey  uint32  `json:"show_menu_press_key,omitempty" jsonschema:"description=Virtual key held to show the menu (0 selects Shift)"`
	ShowMenuToggleKey uint32  `json:"show_menu_toggle_key,omitempty" jsonschema:"description=Virtual key released to toggle the menu (0 selects F9)"`
	Owner             string  `json:"owner,omitempty" jsonschema:"description=Group file used by items that are not shared"`
	StoreDir          string  `json:"store_dir,omitempty"`
	RegistryTickMS    int     `json:"registry_tick_ms,omitempty" jsonschema:"minimum=0"`
	Palette           Palette `json:"palette"`
	// Translations replaces drawn labels, choices and prompts by exact text.
	Translations map[string]string `json:"translations,omitempty" jsonschema:"description=Label text mapped to its translation"`
}

// DefaultSettings returns the stock layout: rows of 160x30 starting at (10,10).
func DefaultSettings() Settings {
	return Settings{
		BaseX:             10,
		BaseY:             10,
		ItemWidth:         DefaultItemWidth,
		ItemHeight:        DefaultItemHeight,
		ShowMenuPressKey:  DefaultShowMenuPress,
		ShowMenuToggleKey: DefaultShowMenuToggle,
		Owner:             "Menu",
		RegistryTickMS:    1,
		Palette: Palette{
			Background:       "#000000c8",
			ActiveBackground: "#696969ff",
			Border:           "#000000ff",
			Text:             "#ffffffff",
			On:               "#008000ff",
			Off:              "#ff0000ff",
			Arrow:            "#0000ffff",
			SliderMarker:     "#ffff00ff",
		},
	}
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	if s.ItemWidth <= 0 {
		return fmt.Errorf("menu: settings: item_width must be positive, got %d", s.ItemWidth)
	}
	if s.ItemHeight <= 0 {
		return fmt.Errorf("menu: settings: item_height must be positive, got %d", s.ItemHeight)
	}
	if s.RegistryTickMS < 0 {
		return fmt.Errorf("menu: settings: registry_tick_ms must not be negative")
	}
	if strings.ContainsAny(s.Owner, `/\:*?"<>|`) {
		return fmt.Errorf("menu: settings: owner %q is not a valid file name", s.Owner)
	}
	_, err := s.Palette.resolve()
	return err
}

// normalized fills zero keys and empty colours from the defaults and folds
// side-specific modifier keys onto their generic codes.
func (s Settings) normalized() Settings {
	def := DefaultSettings()
	if s.ShowMenuPressKey == 0 {
		s.ShowMenuPressKey = def.ShowMenuPressKey
	}
	if s.ShowMenuToggleKey == 0 {
		s.ShowMenuToggleKey = def.ShowMenuToggleKey
	}
	s.ShowMenuPressKey = vkey.Fix(s.ShowMenuPressKey)
	s.ShowMenuToggleKey = vkey.Fix(s.ShowMenuToggleKey)
	if strings.TrimSpace(s.Owner) == "" {
		s.Owner = def.Owner
	}
	fill := func(v *string, d string) {
		if strings.TrimSpace(*v) == "" {
			*v = d
		}
	}
	fill(&s.Palette.Background, def.Palette.Background)
	fill(&s.Palette.ActiveBackground, def.Palette.ActiveBackground)
	fill(&s.Palette.Border, def.Palette.Border)
	fill(&s.Palette.Text, def.Palette.Text)
	fill(&s.Palette.On, def.Palette.On)
	fill(&s.Palette.Off, def.Palette.Off)
	fill(&s.Palette.Arrow, def.Palette.Arrow)
	fill(&s.Palette.SliderMarker, def.Palette.SliderMarker)
	s.Translations = maps.Clone(s.Translations)
	return s
}

func (s Settings) registryTick() time.Duration {
	if s.RegistryTickMS <= 0 {
		return time.Millisecond
	}
	return time.Duration(s.RegistryTickMS) * time.Millisecond
}

type palette struct {
	background       Color
	activeBackground Color
	border           Color
	text             Color
	on               Color
	off              Color
	arrow            Color
	sliderMarker     Color
}

func (p Palette) resolve() (palette, error) {
	var out palette
	var errs []error
	parse := func(name, raw string, dst *Color) {
		c, err := ParseHexColor(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("palette.%s: %w", name, err))
			return
		}
		*dst = c
	}
	parse("background", p.Background, &out.background)
	parse("active_background", p.ActiveBackground, &out.activeBackground)
	parse("border", p.Border, &out.border)
	parse("text", p.Text, &out.text)
	parse("on", p.On, &out.on)
	parse("off", p.Off, &out.off)
	parse("arrow", p.Arrow, &out.arrow)
	parse("slider_marker", p.SliderMarker, &out.sliderMarker)
	if len(errs) > 0 {
		return palette{}, fmt.Errorf("menu: settings: %w", errors.Join(errs...))
	}
	return out, nil
}

// ParseHexColor parses #rrggbb or #rrggbbaa; alpha defaults to 0xff.
func ParseHexColor(raw string) (Color, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("invalid colour %q", raw)
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", raw, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

var settingsDecoder = hydrate.NewDecoder(
	hydrate.WithBase(DefaultSettings),
	hydrate.WithDisallowUnknownFields[Settings](),
	hydrate.WithPostHook[Settings](func(_ hydrate.Source, s *Settings) error {
		*s = s.normalized()
		return s.Validate()
	}),
)

// ParseSettings decodes a YAML settings document. Keys missing from the
// document keep their default values.
func ParseSettings(data []byte) (Settings, error) {
	return settingsDecoder.DecodeYAML(hydrate.Source{Name: "settings"}, data)
}

// LoadSettings reads and decodes the YAML settings file at path.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, newError("load_settings", ErrorFileIO, path, err)
	}
	return settingsDecoder.DecodeYAML(hydrate.Source{Name: path}, data)
}

// SettingsSchema describes the settings file as a JSON schema document.
func SettingsSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(&Settings{})
	schema.Title = "Menu settings"
	schema.Description = "Layout, colours, hotkeys and storage of the menu tree."
	return schema
}

// WithSettings replaces the default settings. Invalid settings are logged
// and the defaults are used instead.
func WithSettings(settings Settings) Option {
	return func(cfg *managerConfig) {
		cfg.settings = settings
		cfg.settingsSet = true
	}
}
