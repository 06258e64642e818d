// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package retain

// Table is a map whose entries survive a Trim only if they were touched
// since the previous Trim.
//
// Table is not safe for concurrent use.
type Table[K comparable, V any] struct {
	entries map[K]*entry[V]
	trims   uint64
}

// entry holds a value with its liveness flag.
type entry[V any] struct {
	value   V
	touched bool
}

// New creates an empty table.
func New[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{
		entries: make(map[K]*entry[V]),
	}
}

// Get returns the value stored under key and marks it touched.
// Returns (zero, false) if the key is absent.
func (t *Table[K, V]) Get(key K) (V, bool) {
	e, ok := t.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	e.touched = true
	return e.value, true
}

// Peek returns the value stored under key without marking it touched.
func (t *Table[K, V]) Peek(key K) (V, bool) {
	e, ok := t.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Touch marks key as used this cycle.
// Returns false if the key is absent.
func (t *Table[K, V]) Touch(key K) bool {
	e, ok := t.entries[key]
	if !ok {
		return false
	}
	e.touched = true
	return true
}

// Set stores value under key and marks it touched.
// An existing value is replaced without being released.
func (t *Table[K, V]) Set(key K, value V) {
	if e, ok := t.entries[key]; ok {
		e.value = value
		e.touched = true
		return
	}
	t.entries[key] = &entry[V]{value: value, touched: true}
}

// Trim removes every entry not touched since the previous Trim, calling
// evict (if non-nil) for each removed entry, and clears the flag of every
// remaining entry. Returns the number of evicted entries.
func (t *Table[K, V]) Trim(evict func(K, V)) int {
	evicted := 0
	for key, e := range t.entries {
		if e.touched {
			e.touched = false
			continue
		}
		delete(t.entries, key)
		evicted++
		if evict != nil {
			evict(key, e.value)
		}
	}
	t.trims++
	return evicted
}

// Range calls fn for each entry without touching it.
// Iteration stops when fn returns false. Order is unspecified.
func (t *Table[K, V]) Range(fn func(K, V) bool) {
	for key, e := range t.entries {
		if !fn(key, e.value) {
			return
		}
	}
}

// Clear removes all entries, calling release (if non-nil) for each.
func (t *Table[K, V]) Clear(release func(K, V)) {
	for key, e := range t.entries {
		if release != nil {
			release(key, e.value)
		}
	}
	t.entries = make(map[K]*entry[V])
}

// Len returns the number of entries.
func (t *Table[K, V]) Len() int {
	return len(t.entries)
}

// Trims returns how many times Trim has run.
func (t *Table[K, V]) Trims() uint64 {
	return t.trims
}
