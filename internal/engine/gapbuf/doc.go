// Package gapbuf provides the character store for the editor engine: a
// growable rune array with a movable hole (the gap) kept at the most recent
// edit site.
//
// Typing and backspacing happen next to the previous edit almost all the
// time. Sliding the gap to the edit position costs the distance to the last
// edit, after which the insert or delete itself touches only the characters
// involved.
//
// # Offsets
//
// Callers address text by logical offset, which ignores the gap. The
// backing array is addressed by real offset. A logical offset l maps to
// real offset l when l < gapStart and to l + gapSize otherwise. No code
// outside this file indexes the backing array; traversals use segments,
// which splits a logical range into at most two real slices around the gap.
//
// # Sentinel
//
// The last logical character is always EOF. TextLength includes it and Len
// excludes it. Inserts may target the sentinel's offset (appending before
// it); deletes may never remove it.
//
// # Deleted text
//
// A delete leaves the removed characters at the head of the gap, where
// GapSubSequence can still read them until the next edit overwrites them.
// The undo engine uses this, together with ShiftGapStart, to restore the
// most recent edit without copying text.
//
// Basic usage:
//
//	buf := gapbuf.NewFromString("hello world")
//	_ = buf.Insert([]rune(", big"), 5)  // "hello, big world"
//	_ = buf.Delete(0, 7)                // "big world"
//	line := buf.FindLineNumber(4)       // 0
//
// Buffer is not safe for concurrent use. The engine package serialises
// access.
package gapbuf
