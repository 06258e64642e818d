// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package retain provides the per-cycle liveness table used by the atlas
// sub-caches.
//
// A Table maps keys to values and keeps one flag per entry recording whether
// the entry was used since the last call to Trim. Trim drops every entry whose
// flag is clear and clears the flag of every survivor, so an entry lives for
// as long as something asks for it at least once per cycle.
//
//	t := retain.New[uint64, *Memory]()
//	t.Set(id, mem)        // inserted as touched
//	t.Trim(release)       // survives, flag cleared
//	t.Trim(release)       // not touched since: release(id, mem) is called
//
// There is no reference counting and no distinction between an entry used
// once and one used every cycle. Table is not safe for concurrent use; the
// owner serializes access.
package retain
