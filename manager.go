package menu

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/goliatone/go-menu/pkg/activity"
	"github.com/goliatone/go-menu/pkg/render"
	"github.com/goliatone/go-menu/pkg/store"
)

// Option configures a Manager.
type Option func(*managerConfig)

type managerConfig struct {
	store        store.Store
	canvas       render.Canvas
	logger       Logger
	settings     Settings
	settingsSet  bool
	hooks        activity.Hooks
	verbs        []string
	actorID      string
	picker       ColorPicker
	textInput    func() bool
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	functionErrs []error
	translations map[string]string
	clock        func() time.Time
}

func applyOptions(opts []Option) managerConfig {
	cfg := managerConfig{logger: noopLogger{}, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithStore sets the backing store for group files. Without it the Manager
// writes to a FileStore under Settings.StoreDir or the per-user default.
func WithStore(s store.Store) Option {
	return func(cfg *managerConfig) {
		cfg.store = s
	}
}

// WithCanvas sets the drawing surface used by Draw and for text measurement.
func WithCanvas(c render.Canvas) Option {
	return func(cfg *managerConfig) {
		cfg.canvas = c
	}
}

// WithActivityHooks attaches activity hooks. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *managerConfig) {
		cfg.hooks = normalized
	}
}

// WithActivityVerbs limits activity events to the listed verbs.
func WithActivityVerbs(verbs ...string) Option {
	return func(cfg *managerConfig) {
		cfg.verbs = append([]string(nil), verbs...)
	}
}

// WithTranslations adds label translations on top of Settings.Translations.
func WithTranslations(table map[string]string) Option {
	return func(cfg *managerConfig) {
		if cfg.translations == nil {
			cfg.translations = map[string]string{}
		}
		maps.Copy(cfg.translations, table)
	}
}

// WithActor stamps activity events with actorID.
func WithActor(actorID string) Option {
	return func(cfg *managerConfig) {
		cfg.actorID = actorID
	}
}

// WithTextInputProbe reports whether the host currently routes keys to a text
// field. Key binds ignore their keys while it returns true.
func WithTextInputProbe(probe func() bool) Option {
	return func(cfg *managerConfig) {
		cfg.textInput = probe
	}
}

// WithClock overrides the time source used for events and snapshots.
func WithClock(clock func() time.Time) Option {
	return func(cfg *managerConfig) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

type rootEntry struct {
	uniqueID string
	menu     MenuID
}

// Manager owns every menu tree of a process: the node arena, the ordered
// root registry, the global shown flag and the persisted group cache.
//
// Input and draw callbacks are expected from a single host thread. SaveAll,
// Snapshot and the rule helpers may be called from any goroutine.
type Manager struct {
	cfg      managerConfig
	settings Settings
	palette  palette
	// translations is read-only after New.
	translations map[string]string
	canvas       render.Canvas
	cache        *store.Cache
	emitter      *activity.Emitter
	objects      *render.Registry

	mu    sync.Mutex
	menus []*menuNode
	items []*itemNode
	roots []rootEntry
	shown bool

	evalMu    sync.Mutex
	evaluator Evaluator

	closeOnce sync.Once
	closeErr  error
}

// New builds a Manager. Configuration problems are logged and replaced with
// working defaults; New never fails.
func New(opts ...Option) *Manager {
	cfg := applyOptions(opts)
	m := &Manager{cfg: cfg}

	settings := DefaultSettings()
	if cfg.settingsSet {
		candidate := cfg.settings.normalized()
		if err := candidate.Validate(); err != nil {
			m.logError("settings", ErrorUnknown, "", err)
		} else {
			settings = candidate
		}
	}
	m.settings = settings
	m.palette, _ = settings.Palette.resolve()
	m.translations = maps.Clone(settings.Translations)
	if len(cfg.translations) > 0 {
		if m.translations == nil {
			m.translations = map[string]string{}
		}
		maps.Copy(m.translations, cfg.translations)
	}
	for _, err := range cfg.functionErrs {
		m.logError("register_function", ErrorUnknown, "", err)
	}

	m.canvas = cfg.canvas
	if m.canvas == nil {
		m.canvas = render.Discard{FaceMeasurer: render.DefaultMeasurer()}
	}

	backing := cfg.store
	if backing == nil {
		fs, err := store.NewFileStore(settings.StoreDir)
		if err != nil {
			m.logError("open_store", ErrorFileIO, settings.StoreDir, err)
			backing = store.NewMemoryStore()
		} else {
			backing = fs
		}
	}
	m.cache = store.NewCache(backing)
	m.emitter = activity.NewEmitter(cfg.hooks, activity.Config{Enabled: true, Verbs: cfg.verbs})
	m.objects = render.NewRegistry(
		render.WithTick(settings.registryTick()),
		render.WithErrorHandler(func(err error) {
			m.logError("render_objects", ErrorUnknown, "", err)
		}),
	)
	m.evaluator = cfg.evaluator
	return m
}

// Settings returns the effective settings.
func (m *Manager) Settings() Settings {
	return m.settings
}

// Store returns the backing store.
func (m *Manager) Store() store.Store {
	return m.cache.Store()
}

// Objects returns the render object registry drawn after the menus.
func (m *Manager) Objects() *render.Registry {
	return m.objects
}

// Run keeps the render object snapshot fresh until ctx is done or the
// Manager is closed.
func (m *Manager) Run(ctx context.Context) error {
	return m.objects.Run(ctx)
}

// SetShown sets the global flag that makes root menus visible.
func (m *Manager) SetShown(shown bool) {
	m.mu.Lock()
	m.shown = shown
	m.mu.Unlock()
}

// Shown reports the global shown flag.
func (m *Manager) Shown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shown
}

// Roots returns the registered root menus in display order.
func (m *Manager) Roots() []Menu {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Menu, 0, len(m.roots))
	for _, entry := range m.roots {
		out = append(out, Menu{m: m, id: entry.menu})
	}
	return out
}

// Close saves every registered root, deregisters them and releases the
// render objects. Later calls return the first result.
func (m *Manager) Close(ctx context.Context) error {
	m.closeOnce.Do(func() {
		var errs []error
		if err := m.SaveAll(ctx); err != nil {
			errs = append(errs, err)
		}
		for _, root := range m.Roots() {
			root.RemoveFromMainMenu()
		}
		if err := m.objects.Close(); err != nil {
			errs = append(errs, err)
		}
		m.closeErr = errors.Join(errs...)
	})
	return m.closeErr
}

// tr returns the translation of text, or text itself.
func (m *Manager) tr(text string) string {
	if t, ok := m.translations[text]; ok {
		return t
	}
	return text
}

func (m *Manager) now() time.Time {
	return m.cfg.clock()
}

func (m *Manager) emit(ctx context.Context, event activity.Event) {
	if err := m.emitter.Emit(ctx, event); err != nil {
		m.logError("activity", ErrorUnknown, event.ObjectID, err)
	}
}
