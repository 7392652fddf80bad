package filter

import (
	"net/url"
	"slices"

	"github.com/aihavenlabs/pathwei-admin/internal/logger"
)

// Option configures a State.
type Option func(*State)

// WithOnChange registers a callback invoked with a copy of the values after
// every mutation.
func WithOnChange(fn func(Values)) Option {
	return func(s *State) { s.onChange = fn }
}

// WithResetPageOnChange controls whether changing a filter other than page
// resets page to 1. Enabled by default.
func WithResetPageOnChange(reset bool) Option {
	return func(s *State) { s.resetPage = reset }
}

// WithLogger sets the logger used to report unparseable query values.
func WithLogger(l logger.Logger) Option {
	return func(s *State) { s.log = l }
}

// State holds the current filter values of one list screen. It is owned by a
// single caller and is not safe for concurrent use.
type State struct {
	schema    *Schema
	initial   Values
	values    Values
	onChange  func(Values)
	resetPage bool
	log       logger.Logger

	hasActive   bool
	activeCount int
}

// New creates a State holding the schema's initial values.
func New(schema *Schema, opts ...Option) *State {
	s := &State{
		schema:    schema,
		initial:   schema.Initial(),
		resetPage: true,
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.values = s.initial.Clone()
	s.derive()
	return s
}

// Values returns a copy of the current values.
func (s *State) Values() Values {
	return s.values.Clone()
}

// Set overwrites one key. Unless key is page, page is reset to 1 when the
// state resets pages on change. Values are not validated against the schema.
func (s *State) Set(key string, value any) {
	next := s.values.Clone()
	next[key] = normalize(value)
	if s.resetPage && key != KeyPage {
		next[KeyPage] = float64(1)
	}
	s.commit(next)
}

// SetMany merges partial into the current values. When the state resets
// pages on change, page is set to 1 even if partial carries a page.
func (s *State) SetMany(partial Values) {
	next := s.values.Clone()
	for k, v := range partial {
		next[k] = normalize(v)
	}
	if s.resetPage {
		next[KeyPage] = float64(1)
	}
	s.commit(next)
}

// Reset restores the initial values.
func (s *State) Reset() {
	s.commit(s.initial.Clone())
}

// Clear resets one key to its kind's empty value: "" for strings, nil for
// numbers, false for booleans and the initial value otherwise.
func (s *State) Clear(key string) {
	next := s.values.Clone()
	next[key] = s.schema.fieldFor(key).Empty()
	if s.resetPage && key != KeyPage {
		next[KeyPage] = float64(1)
	}
	s.commit(next)
}

// HasActive reports whether any non-pagination filter is applied.
func (s *State) HasActive() bool {
	return s.hasActive
}

// ActiveCount returns the number of applied non-pagination filters.
func (s *State) ActiveCount() int {
	return s.activeCount
}

// Active returns the applied non-pagination filters, the ones counted by
// ActiveCount.
func (s *State) Active() Values {
	out := Values{}
	for k, v := range s.values {
		if k == KeyPage || k == KeyLimit {
			continue
		}
		if s.schema.fieldFor(k).Active(v) {
			out[k] = v
		}
	}
	return out
}

// Page returns the page value, or 1 when it is unset or below 1.
func (s *State) Page() int {
	return max(s.values.Int(KeyPage, 1), 1)
}

// Limit returns the limit value, or def when it is unset or below 1.
func (s *State) Limit(def int) int {
	if l := s.values.Int(KeyLimit, def); l >= 1 {
		return l
	}
	return def
}

// SearchParams serializes every value that is not nil or "" into query
// parameters.
func (s *State) SearchParams() url.Values {
	q := url.Values{}
	for _, k := range s.sortedKeys() {
		v := s.values[k]
		if v == nil || v == "" {
			continue
		}
		q.Set(k, format(v))
	}
	return q
}

// SetFromSearchParams rebuilds the values from the initial ones, overlaying
// the parameters whose key is declared in the schema. Each parameter is
// coerced to its field's kind; unparseable numbers keep the initial value.
func (s *State) SetFromSearchParams(params url.Values) {
	next := s.initial.Clone()
	for key := range params {
		f, ok := s.schema.Field(key)
		if !ok {
			continue
		}
		v, ok := f.Parse(params.Get(key))
		if !ok {
			s.log.Warn("ignoring unparseable filter parameter", "key", key, "value", params.Get(key), "kind", f.Kind)
			continue
		}
		next[key] = v
	}
	s.commit(next)
}

func (s *State) commit(next Values) {
	s.values = next
	s.derive()
	if s.onChange != nil {
		s.onChange(next.Clone())
	}
}

func (s *State) derive() {
	count := 0
	for k, v := range s.values {
		if k == KeyPage || k == KeyLimit {
			continue
		}
		if s.schema.fieldFor(k).Active(v) {
			count++
		}
	}
	s.activeCount = count
	s.hasActive = count > 0
}

func (s *State) sortedKeys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
