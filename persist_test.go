package menu

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/goliatone/go-menu/layering"
	"github.com/goliatone/go-menu/pkg/store"
)

// buildSettings registers a root with one item per kind; values are the
// defaults a plugin would declare.
func buildSettings(t *testing.T, m *Manager, values map[string]Value) Menu {
	t.Helper()
	root := m.NewRootMenu("Settings", "settings")
	for _, name := range []string{"flag", "count", "volume", "trigger", "tint", "ring", "mode"} {
		v, ok := values[name]
		if !ok {
			continue
		}
		mustAddItem(t, root, name, name, v)
	}
	mustRegister(t, root)
	return root
}

func TestRoundTripPersistence(t *testing.T) {
	backing := store.NewMemoryStore()
	defaults := map[string]Value{
		"flag":    Bool(false),
		"count":   Int(1),
		"volume":  NewSlider(50, 0, 100),
		"trigger": NewKeyBind('K', KeyBindToggle),
		"tint":    Color{A: 255},
		"ring":    NewCircle(false, Color{A: 255}, 100),
		"mode":    NewStringList([]string{"A", "B", "C"}),
	}
	changed := map[string]Value{
		"flag":    Bool(true),
		"count":   Int(42),
		"volume":  NewSlider(75, 0, 100),
		"trigger": NewKeyBind('L', KeyBindToggle, true),
		"tint":    Color{R: 200, G: 100, B: 50, A: 255},
		"ring":    NewCircle(true, Color{B: 255, A: 255}, 100),
		"mode":    NewStringList([]string{"A", "B", "C"}, 1),
	}

	first := newTestManager(t, backing)
	root := buildSettings(t, first, defaults)
	for name, v := range changed {
		mustSet(t, root.Item(name), v)
	}
	mustSaveAll(t, first)

	second := newTestManager(t, backing)
	reloaded := buildSettings(t, second, defaults)
	for name, want := range changed {
		it := reloaded.Item(name)
		if got := it.Value(); !ValuesEqual(got, want) {
			t.Fatalf("%s: expected %#v, got %#v", name, want, got)
		}
		if it.Origin() != OriginPersisted {
			t.Fatalf("%s: expected persisted origin, got %s", name, it.Origin())
		}
	}
}

func TestSliderAdoptionRequiresMatchingBounds(t *testing.T) {
	backing := store.NewMemoryStore()
	first := newTestManager(t, backing)
	root := buildSettings(t, first, map[string]Value{"volume": NewSlider(50, 0, 100)})
	mustSet(t, root.Item("volume"), NewSlider(75, 0, 100))
	mustSaveAll(t, first)

	cases := []struct {
		name     string
		fresh    Slider
		expected int
	}{
		{"same bounds", NewSlider(50, 0, 100), 75},
		{"wider bounds", NewSlider(50, 0, 200), 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestManager(t, backing)
			r := buildSettings(t, m, map[string]Value{"volume": tc.fresh})
			got, err := ValueAs[Slider](r.Item("volume"))
			if err != nil {
				t.Fatalf("value: %v", err)
			}
			if got.Value != tc.expected || got.Max != tc.fresh.Max {
				t.Fatalf("expected %d within [0,%d], got %+v", tc.expected, tc.fresh.Max, got)
			}
		})
	}
}

func TestStringListAdoptionRequiresMatchingChoices(t *testing.T) {
	backing := store.NewMemoryStore()
	first := newTestManager(t, backing)
	root := buildSettings(t, first, map[string]Value{"mode": NewStringList([]string{"A", "B", "C"})})
	mustSet(t, root.Item("mode"), NewStringList([]string{"A", "B", "C"}, 1))
	mustSaveAll(t, first)

	cases := []struct {
		name     string
		fresh    StringList
		expected string
	}{
		{"same choices", NewStringList([]string{"A", "B", "C"}), "B"},
		{"fewer choices", NewStringList([]string{"A", "B"}), "A"},
		{"reordered choices", NewStringList([]string{"C", "B", "A"}, 2), "A"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestManager(t, backing)
			r := buildSettings(t, m, map[string]Value{"mode": tc.fresh})
			got, err := ValueAs[StringList](r.Item("mode"))
			if err != nil {
				t.Fatalf("value: %v", err)
			}
			if got.SelectedValue() != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got.SelectedValue())
			}
		})
	}
}

func TestKeyBindPressAdoptsInactive(t *testing.T) {
	backing := store.NewMemoryStore()
	first := newTestManager(t, backing)
	root := buildSettings(t, first, map[string]Value{"trigger": NewKeyBind('K', KeyBindPress)})
	mustSet(t, root.Item("trigger"), NewKeyBind('J', KeyBindPress, true))
	mustSaveAll(t, first)

	second := newTestManager(t, backing)
	r := buildSettings(t, second, map[string]Value{"trigger": NewKeyBind('K', KeyBindPress)})
	got, _ := ValueAs[KeyBind](r.Item("trigger"))
	if got.Key != 'J' || got.Active {
		t.Fatalf("expected key J restored inactive, got %+v", got)
	}
}

func TestCircleAdoptionKeepsFreshRadius(t *testing.T) {
	backing := store.NewMemoryStore()
	first := newTestManager(t, backing)
	root := buildSettings(t, first, map[string]Value{"ring": NewCircle(false, Color{}, 100)})
	mustSet(t, root.Item("ring"), NewCircle(true, Color{G: 255, A: 255}, 100))
	mustSaveAll(t, first)

	second := newTestManager(t, backing)
	r := buildSettings(t, second, map[string]Value{"ring": NewCircle(false, Color{}, 600)})
	got, _ := ValueAs[Circle](r.Item("ring"))
	if !got.Active || got.Color.G != 255 || got.Radius != 600 {
		t.Fatalf("unexpected circle %+v", got)
	}
}

func TestSaveMergesIntoExistingGroup(t *testing.T) {
	ctx := context.Background()
	backing := store.NewMemoryStore()
	_, _ = backing.Save(ctx, "Menu", store.Entries{"foreign": []byte("keep")}, store.Meta{})

	m := newTestManager(t, backing)
	buildSettings(t, m, map[string]Value{"flag": Bool(true)})
	mustSaveAll(t, m)

	entries, meta, ok, err := backing.Load(ctx, "Menu")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(entries["foreign"]) != "keep" {
		t.Fatalf("expected foreign key to survive the merge")
	}
	if _, ok := entries[persistKey("flag", "flag")]; !ok {
		t.Fatalf("expected flag to be written")
	}
	if meta.SnapshotID == "" || meta.Extra["owner"] != "Menu" {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestSharedAndSkippedItems(t *testing.T) {
	backing := store.NewMemoryStore()
	m := newTestManager(t, backing)
	root := m.NewRootMenu("Settings", "settings")
	shared := mustAddItem(t, root, "shared", "Shared", true).SetShared()
	mustAddItem(t, root, "scratch", "Scratch", 5).DontSave()
	mustRegister(t, root)

	groups := root.Collect()
	if len(groups) != 1 || len(groups[store.SharedGroup]) != 1 {
		t.Fatalf("expected only the shared item, got %v", groups)
	}
	if shared.Group() != store.SharedGroup {
		t.Fatalf("unexpected group %q", shared.Group())
	}
	mustSaveAll(t, m)
	if backing.Groups() != 1 {
		t.Fatalf("expected one group file, got %d", backing.Groups())
	}
}

func TestManagerCollectMergesRoots(t *testing.T) {
	m := newTestManager(t, nil)
	alpha := m.Plugin("Alpha").NewRootMenu("Alpha", "alpha")
	mustAddItem(t, alpha, "speed", "Speed", 1)
	mustAddItem(t, alpha, "theme", "Theme", 1).SetShared()
	mustRegister(t, alpha)

	beta := m.Plugin("Beta").NewRootMenu("Beta", "beta")
	mustAddItem(t, beta, "speed", "Speed", 2)
	mustAddItem(t, beta, "theme", "Theme", 2).SetShared()
	mustRegister(t, beta)

	loose := m.NewRootMenu("Loose", "loose")
	mustAddItem(t, loose, "hidden", "Hidden", true)

	groups := m.Collect()
	names := layering.Keys(groups)
	slices.Sort(names)
	if !slices.Equal(names, []string{"Alpha", "Beta", store.SharedGroup}) {
		t.Fatalf("unexpected groups %v", names)
	}
	key := persistKey("Speed", "speed")
	if !bytes.Equal(groups["Alpha"][key], alpha.Collect()["Alpha"][key]) {
		t.Fatalf("alpha payload not collected")
	}
	shared := groups[store.SharedGroup]
	if len(shared) != 1 {
		t.Fatalf("expected one shared key, got %d", len(shared))
	}
	theme := persistKey("Theme", "theme")
	if !bytes.Equal(shared[theme], beta.Collect()[store.SharedGroup][theme]) {
		t.Fatalf("expected the later root to win the shared key")
	}
	if bytes.Equal(shared[theme], alpha.Collect()[store.SharedGroup][theme]) {
		t.Fatalf("expected alpha and beta payloads to differ")
	}
}

func TestCorruptPayloadFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	backing := store.NewMemoryStore()
	_, _ = backing.Save(ctx, "Menu", store.Entries{persistKey("count", "count"): []byte("garbage")}, store.Meta{})

	logger := &captureLogger{}
	m := newTestManager(t, backing, WithLogger(logger))
	r := buildSettings(t, m, map[string]Value{"count": Int(3)})

	if got := r.Item("count").Value(); got != Int(3) {
		t.Fatalf("expected default 3, got %v", got)
	}
	if len(logger.failures(ErrorPersistedDataCorrupt)) != 1 {
		t.Fatalf("expected corrupt payload to be logged")
	}
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) (store.Entries, store.Meta, bool, error) {
	return nil, store.Meta{}, false, errors.New("permission denied")
}

func (brokenStore) Save(context.Context, string, store.Entries, store.Meta) (store.Meta, error) {
	return store.Meta{}, errors.New("permission denied")
}

func TestStoreFailuresAreRecovered(t *testing.T) {
	logger := &captureLogger{}
	m := newTestManager(t, brokenStore{}, WithLogger(logger))
	r := buildSettings(t, m, map[string]Value{"flag": Bool(true)})

	if r.Item("flag").Value() != Bool(true) {
		t.Fatalf("expected default when the group cannot be read")
	}
	err := m.SaveAll(context.Background())
	if !errors.Is(err, ErrFileIO) {
		t.Fatalf("expected ErrFileIO, got %v", err)
	}
	if len(logger.failures(ErrorFileIO)) == 0 {
		t.Fatalf("expected file failures to be logged")
	}
}

func TestFileStorePersistenceAcrossManagers(t *testing.T) {
	dir := t.TempDir()
	settings := DefaultSettings()
	settings.StoreDir = dir

	first := New(WithSettings(settings))
	t.Cleanup(func() { _ = first.Objects().Close() })
	root := buildSettings(t, first, map[string]Value{"count": Int(1)})
	mustSet(t, root.Item("count"), 9)
	mustSaveAll(t, first)

	second := New(WithSettings(settings))
	t.Cleanup(func() { _ = second.Objects().Close() })
	r := buildSettings(t, second, map[string]Value{"count": Int(1)})
	if got := r.Item("count").Value(); got != Int(9) {
		t.Fatalf("expected 9 from disk, got %v", got)
	}
}
