package menu

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"slices"

	"github.com/goliatone/go-menu/pkg/activity"
)

// Origin records where an item's current value came from.
type Origin int

const (
	// OriginDefault is the value passed to the first SetValue.
	OriginDefault Origin = iota
	// OriginPersisted is a value adopted from the group file on first set.
	OriginPersisted
	// OriginUpdate is a value committed by a later SetValue or by input.
	OriginUpdate
)

func (o Origin) String() string {
	switch o {
	case OriginPersisted:
		return "persisted"
	case OriginUpdate:
		return "update"
	default:
		return "default"
	}
}

// ChangeEvent is raised for every set after the first. Calling Cancel keeps
// the previous value.
type ChangeEvent struct {
	Item     Item
	Old      Value
	New      Value
	canceled bool
}

func (e *ChangeEvent) Cancel()        { e.canceled = true }
func (e *ChangeEvent) Canceled() bool { return e.canceled }

// ChangeListener observes value changes and may veto them.
type ChangeListener func(*ChangeEvent)

type cell struct {
	kind        Kind
	value       Value
	set         bool
	shared      bool
	skipPersist bool
	encoded     []byte
	origin      Origin
	version     uint64
	listeners   []ChangeListener
}

// commit stores v. Callers hold m.mu.
func (c *cell) commit(v Value, origin Origin, encoded []byte) {
	c.kind = v.Kind()
	c.value = v
	c.set = true
	c.origin = origin
	if encoded != nil {
		c.encoded = encoded
	}
	c.version++
}

// SetValue assigns v. The first call fixes the item's kind and may adopt a
// previously saved value; later calls notify change listeners, which can
// cancel the change. When another commit lands while listeners run, the set
// is redone against that value, so Old always names the value replaced.
func (it Item) SetValue(v any) (Item, error) {
	if it.m == nil {
		return it, newError("set_value", ErrorTree, "", ErrInvalidHandle)
	}
	return it, it.m.setValue(it.id, v)
}

// Value returns the current value, or nil before the first SetValue.
func (it Item) Value() Value {
	if it.m == nil {
		return nil
	}
	it.m.mu.Lock()
	defer it.m.mu.Unlock()
	n := it.m.item(it.id)
	if n == nil {
		return nil
	}
	return cloneValue(n.cell.value)
}

// Kind returns the kind fixed by the first SetValue.
func (it Item) Kind() Kind {
	if it.m == nil {
		return KindNone
	}
	it.m.mu.Lock()
	defer it.m.mu.Unlock()
	if n := it.m.item(it.id); n != nil {
		return n.cell.kind
	}
	return KindNone
}

// Origin reports where the current value came from.
func (it Item) Origin() Origin {
	if it.m == nil {
		return OriginDefault
	}
	it.m.mu.Lock()
	defer it.m.mu.Unlock()
	if n := it.m.item(it.id); n != nil {
		return n.cell.origin
	}
	return OriginDefault
}

// IsActive reports the on state of Bool, Circle and KeyBind items. Other
// kinds are never active.
func (it Item) IsActive() bool {
	switch v := it.Value().(type) {
	case Bool:
		return bool(v)
	case Circle:
		return v.Active
	case KeyBind:
		return v.Active
	}
	return false
}

// ValueAs returns the item's value as T.
func ValueAs[T Value](it Item) (T, error) {
	var zero T
	v := it.Value()
	typed, ok := v.(T)
	if !ok {
		return zero, newError("get_value", ErrorTypeMismatch, it.Path(),
			fmt.Errorf("%w: have %s, want %s", ErrTypeMismatch, kindOf(v), zero.Kind()))
	}
	return typed, nil
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindNone
	}
	return v.Kind()
}

// maxSetAttempts bounds the redo loop of setValue for listeners that set
// their own item on every change.
const maxSetAttempts = 4

func (m *Manager) setValue(id ItemID, raw any) error {
	v, normErr := Normalize(raw)
	for attempt := 1; ; attempt++ {
		m.mu.Lock()
		n := m.item(id)
		if n == nil {
			m.mu.Unlock()
			return newError("set_value", ErrorTree, "", ErrInvalidHandle)
		}
		path := m.itemPath(id)
		if normErr != nil {
			m.mu.Unlock()
			e := newError("set_value", ErrorUnsupportedKind, path, normErr)
			m.logError(e.Op, e.Kind, e.Path, normErr)
			return e
		}
		c := &n.cell
		if c.set && c.kind != v.Kind() {
			m.mu.Unlock()
			return newError("set_value", ErrorTypeMismatch, path,
				fmt.Errorf("%w: item holds %s, got %s", ErrTypeMismatch, c.kind, v.Kind()))
		}
		first := !c.set
		group, key := m.groupOf(n), persistKey(n.display, n.name)
		old, version := c.value, c.version
		listeners := slices.Clone(c.listeners)
		m.mu.Unlock()

		next, origin := v, OriginUpdate
		if first {
			origin = OriginDefault
			if adopted, ok := m.adoptPersisted(group, key, path, v); ok {
				next, origin = adopted, OriginPersisted
			}
		} else {
			event := &ChangeEvent{Item: Item{m: m, id: id}, Old: cloneValue(old), New: cloneValue(next)}
			for _, listener := range listeners {
				listener(event)
			}
			if event.Canceled() {
				return nil
			}
		}

		encoded, err := encodeValue(next)
		if err != nil {
			m.logError("encode_value", ErrorUnknown, path, err)
		}

		m.mu.Lock()
		if c.version != version && attempt < maxSetAttempts {
			// Another commit landed while listeners ran; redo against it.
			m.mu.Unlock()
			continue
		}
		c.commit(next, origin, encoded)
		m.mu.Unlock()

		m.emit(context.Background(), activity.BuildValueChangedEvent(activity.MenuEventInput{
			ActorID:    m.cfg.actorID,
			Path:       path,
			Kind:       next.Kind().String(),
			Group:      group,
			Key:        key,
			OldValue:   plainValue(old),
			NewValue:   plainValue(next),
			Metadata:   map[string]any{"origin": origin.String()},
			OccurredAt: m.now(),
		}))
		return nil
	}
}

// adoptPersisted applies the saved payload for (group, key) to the caller's
// default. Read and decode failures are logged and the default is kept.
func (m *Manager) adoptPersisted(group, key, path string, fresh Value) (Value, bool) {
	data, ok, err := m.cache.Lookup(context.Background(), group, key)
	if err != nil {
		m.logError("load_group", ErrorFileIO, group, err)
	}
	if !ok {
		return nil, false
	}
	saved, err := decodeValue(fresh.Kind(), data)
	if err != nil {
		m.logError("adopt_persisted", ErrorPersistedDataCorrupt, path,
			fmt.Errorf("%w: %v", ErrPersistedCorrupt, err))
		return nil, false
	}
	return adopt(fresh, saved)
}

// adopt merges a saved value into the caller's default under the per-kind
// compatibility rules.
func adopt(fresh, saved Value) (Value, bool) {
	switch f := fresh.(type) {
	case KeyBind:
		s := saved.(KeyBind)
		if s.Type == KeyBindPress {
			s.Active = false
		}
		return s, true
	case Circle:
		s := saved.(Circle)
		s.Radius = f.Radius
		return s, true
	case Slider:
		s := saved.(Slider)
		if s.Min != f.Min || s.Max != f.Max {
			return nil, false
		}
		return f.WithValue(s.Value), true
	case StringList:
		s := saved.(StringList)
		if !slices.Equal(s.Choices, f.Choices) {
			return nil, false
		}
		if s.Selected < 0 || s.Selected >= len(f.Choices) {
			return nil, false
		}
		return NewStringList(f.Choices, s.Selected), true
	default:
		return saved, true
	}
}

func encodeValue(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeValue decodes a payload written by encodeValue for a value of kind.
func decodeValue(kind Kind, data []byte) (Value, error) {
	dec := gob.NewDecoder(bytes.NewReader(data))
	switch kind {
	case KindBool:
		var v Bool
		err := dec.Decode(&v)
		return v, err
	case KindInt:
		var v Int
		err := dec.Decode(&v)
		return v, err
	case KindSlider:
		var v Slider
		err := dec.Decode(&v)
		return v, err
	case KindKeyBind:
		var v KeyBind
		err := dec.Decode(&v)
		return v, err
	case KindColor:
		var v Color
		err := dec.Decode(&v)
		return v, err
	case KindCircle:
		var v Circle
		err := dec.Decode(&v)
		return v, err
	case KindStringList:
		var v StringList
		err := dec.Decode(&v)
		return v, err
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
}

func cloneValue(v Value) Value {
	if sl, ok := v.(StringList); ok {
		return NewStringList(sl.Choices, sl.Selected)
	}
	return v
}
