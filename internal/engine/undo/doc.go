// Package undo records insertions and deletions on a gap buffer and replays
// them backwards and forwards.
//
// The stack is tightly coupled to the gap buffer's layout. An edit is
// captured before it is applied, and the affected text is not copied at
// capture time. Text is only recorded when it has to be: when the next
// unrelated edit arrives, when the command is undone, or when Seal is
// called before an edit that bypasses the stack.
//
// That works because of where a gap buffer leaves things. After an insert
// the new text sits immediately before the gap, so undoing it only needs
// the gap start moved back. After a delete the removed text is still in the
// head of the gap, so undoing it only needs the gap start moved forward.
//
// # Coalescing
//
// An edit merges into the top command when it is the same kind, it arrives
// within the merge window of the previous edit, and it continues where that
// edit left off:
//
//	insert: start == prev.Start + prev.Length
//	delete: start == prev.Start - prev.Length - length + 1
//
// # Groups
//
// Every command carries a group id and Undo/Redo process a whole group at a
// time. Outside a batch each new command gets its own group; between
// BeginBatchEdit and EndBatchEdit all new commands share one.
//
// Undo and redo only move the top pointer. Commands above it are dropped
// when the next new edit is pushed.
package undo
