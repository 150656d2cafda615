package menu

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string]any
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]any{}}
}

func (c *mapCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *mapCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
}

var evaluatorFactories = []struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
}{
	{
		name: "expr",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry))
		},
	},
	{
		name: "cel",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry))
		},
	},
	{
		name: "js",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
		},
	},
}

func buildRuleTree(t *testing.T, m *Manager) {
	t.Helper()
	root := m.NewRootMenu("Settings", "settings")
	combo := root.SubMenu("combo")
	mustAddItem(t, root, "enabled", "Enabled", true)
	mustAddItem(t, combo, "volume", "Volume", NewSlider(75, 0, 100))
	mustAddItem(t, combo, "mode", "Mode", NewStringList([]string{"Fast", "Slow"}, 1))
	mustAddItem(t, combo, "tint", "Tint", Color{R: 255, A: 255})
	mustAddItem(t, combo, "use q", "Use Q", true)
	mustRegister(t, root)
}

func TestSnapshotFlattensRegisteredTrees(t *testing.T) {
	m := newTestManager(t, nil)
	buildRuleTree(t, m)
	m.NewItem("detached", "Detached")

	snap := m.Snapshot()
	cases := map[string]any{
		"enabled": true,
		"volume":  75,
		"mode":    "Slow",
		"tint":    "#ff0000ff",
	}
	for name, want := range cases {
		if snap[name] != want {
			t.Fatalf("%s: expected %v, got %v", name, want, snap[name])
		}
	}
	if _, ok := snap["use q"]; ok {
		t.Fatalf("expected non-identifier names to be skipped")
	}
	if _, ok := snap["detached"]; ok {
		t.Fatalf("expected unregistered items to be skipped")
	}
	menus := snap["menus"].(map[string]any)
	combo := menus["settings"].(map[string]any)["combo"].(map[string]any)
	if combo["volume"] != 75 || combo["use q"] != true {
		t.Fatalf("unexpected nested snapshot %v", combo)
	}
}

func TestEvaluatorsAgainstSnapshot(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			registry := NewFunctionRegistry()
			if err := registry.Register("double", func(args ...any) (any, error) {
				switch v := args[0].(type) {
				case int:
					return v * 2, nil
				case int64:
					return v * 2, nil
				case float64:
					return v * 2, nil
				}
				return nil, errors.New("double expects a number")
			}); err != nil {
				t.Fatalf("register: %v", err)
			}
			evaluator := factory.new(newMapCache(), registry)
			if evaluator == nil {
				t.Skip("engine not built in")
			}
			m := newTestManager(t, nil, WithEvaluator(evaluator))
			buildRuleTree(t, m)

			ok, err := m.Condition(`enabled && volume > 50 && mode == "Slow"`)
			if err != nil || !ok {
				t.Fatalf("expected condition to hold, got %v err=%v", ok, err)
			}
			ok, err = m.Condition(`volume < 50`)
			if err != nil || ok {
				t.Fatalf("expected condition to fail, got %v err=%v", ok, err)
			}
		})
	}
}

func TestDefaultEvaluatorIsExpr(t *testing.T) {
	registry := NewFunctionRegistry()
	_ = registry.Register("double", func(args ...any) (any, error) {
		return args[0].(int) * 2, nil
	})
	m := newTestManager(t, nil, WithFunctionRegistry(registry), WithProgramCache(newMapCache()))
	buildRuleTree(t, m)

	got, err := m.Evaluate(`double(volume)`)
	if err != nil || got != 150 {
		t.Fatalf("expected 150, got %v err=%v", got, err)
	}
	if got := evaluatorEngineName(m.currentEvaluator()); got != "expr" {
		t.Fatalf("expected expr engine, got %q", got)
	}
}

func TestConditionRequiresBoolean(t *testing.T) {
	m := newTestManager(t, nil)
	buildRuleTree(t, m)

	_, err := m.Condition(`volume + 1`)
	if !errors.Is(err, ErrConditionNotBoolean) {
		t.Fatalf("expected ErrConditionNotBoolean, got %v", err)
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Engine != "expr" || evalErr.Expr != "volume + 1" {
		t.Fatalf("unexpected evaluation error %#v", err)
	}
	if _, err := m.Evaluate(""); err == nil {
		t.Fatalf("expected empty expression to fail")
	}
}

func TestEvaluateWithArgsAndClock(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(t, nil, WithClock(func() time.Time { return fixed }))
	buildRuleTree(t, m)

	got, err := m.EvaluateWith(RuleContext{Args: map[string]any{"limit": 70}}, `volume > args.limit && now.Year() == 2024`)
	if err != nil || got != true {
		t.Fatalf("expected true, got %v err=%v", got, err)
	}

	explicit := time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)
	got, err = m.EvaluateWith(RuleContext{Now: &explicit}, `now.Year()`)
	if err != nil || got != 1999 {
		t.Fatalf("expected the context clock, got %v err=%v", got, err)
	}
}

func TestEvaluationsAreLogged(t *testing.T) {
	logger := &captureLogger{}
	m := newTestManager(t, nil, WithLogger(logger))
	buildRuleTree(t, m)

	_, _ = m.Evaluate(`enabled`)
	_, _ = m.Evaluate(`enabled +`)

	logger.mu.Lock()
	defer logger.mu.Unlock()
	var evaluations []LogEvent
	for _, event := range logger.events {
		if event.Op == "evaluate" {
			evaluations = append(evaluations, event)
		}
	}
	if len(evaluations) != 2 {
		t.Fatalf("expected two evaluation events, got %d", len(evaluations))
	}
	if evaluations[0].Err != nil || evaluations[1].Err == nil {
		t.Fatalf("expected the second evaluation to fail")
	}
	if !strings.Contains(evaluations[1].Err.Error(), "expr") {
		t.Fatalf("expected the engine in the error, got %v", evaluations[1].Err)
	}
}

func TestCompiledRulesReuseCache(t *testing.T) {
	cache := newMapCache()
	e := NewExprEvaluator(ExprWithProgramCache(cache))
	rule, err := e.Compile(`flag == true`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, flag := range []bool{true, false} {
		got, err := rule.Evaluate(RuleContext{Snapshot: map[string]any{"flag": flag}})
		if err != nil || got != flag {
			t.Fatalf("expected %v, got %v err=%v", flag, got, err)
		}
	}
	if _, err := e.Evaluate(RuleContext{}, `flag == true`); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected a single compilation, got %d", cache.sets)
	}
}

func TestFunctionRegistry(t *testing.T) {
	r := NewFunctionRegistry()
	if err := r.Register("Echo", func(args ...any) (any, error) { return args[0], nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("echo", func(args ...any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate names to be rejected")
	}
	got, err := r.Call("ECHO", "hi")
	if err != nil || got != "hi" {
		t.Fatalf("unexpected call result %v err=%v", got, err)
	}
	if _, err := r.Call("missing"); !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("expected ErrUnknownFunction, got %v", err)
	}
	if err := r.Register(" ", func(args ...any) (any, error) { return nil, nil }); !errors.Is(err, ErrInvalidFunction) {
		t.Fatalf("expected ErrInvalidFunction, got %v", err)
	}
	if names := r.Names(); len(names) != 1 || names[0] != "echo" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestMenuFunctionsInDefaultEngine(t *testing.T) {
	m := newTestManager(t, nil, WithCustomFunction("percent", func(args ...any) (any, error) { return -1, nil }))
	buildRuleTree(t, m)

	cases := []struct {
		expr string
		want any
	}{
		{`keytext(75)`, "K"},
		{`keytext(113)`, "F2"},
		{`between(volume, 50, 100)`, true},
		{`between(volume, 0, 10)`, false},
		{`percent(volume, 0, 100)`, -1},
	}
	for _, tc := range cases {
		got, err := m.Evaluate(tc.expr)
		if err != nil || got != tc.want {
			t.Fatalf("%s: expected %v, got %v err=%v", tc.expr, tc.want, got, err)
		}
	}
	if _, err := m.Evaluate(`keytext()`); err == nil {
		t.Fatalf("expected an arity error")
	}
}

func TestRejectedCustomFunctionsAreLogged(t *testing.T) {
	logger := &captureLogger{}
	twice := func(args ...any) (any, error) { return 2, nil }
	m := newTestManager(t, nil,
		WithLogger(logger),
		WithCustomFunction("twice", twice),
		WithCustomFunction("TWICE", func(args ...any) (any, error) { return 3, nil }),
		WithCustomFunction("", twice),
	)

	failures := logger.failures(ErrorUnknown)
	if len(failures) != 2 {
		t.Fatalf("expected two registration failures, got %+v", failures)
	}
	for _, event := range failures {
		if event.Op != "register_function" {
			t.Fatalf("unexpected op %q", event.Op)
		}
	}
	if !errors.Is(failures[0].Err, ErrFunctionExists) || !errors.Is(failures[1].Err, ErrInvalidFunction) {
		t.Fatalf("unexpected errors %v, %v", failures[0].Err, failures[1].Err)
	}
	if got, err := m.Evaluate(`twice()`); err != nil || got != 2 {
		t.Fatalf("expected the first registration to stay, got %v err=%v", got, err)
	}
}
