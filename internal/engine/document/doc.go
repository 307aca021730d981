// Package document layers a row index and undo history over the gap
// buffer.
//
// The row table is an ascending list of offsets where display rows start.
// Row 0 always starts at 0. With word wrap off every row is a hard line.
// With word wrap on, hard lines are further split so that no row is wider
// than Metrics.RowWidth, breaking after spaces, tabs and newlines where
// possible and between characters when a single word is too wide.
//
// Edits do not rebuild the table. After an insert or delete the document
// re-analyses only the rows from the one before the edit up to the start
// of the next hard line, shifts the offsets of every later row by the
// length change, and splices the new rows in.
//
// Edits enter through Insert and Delete. Undoable edits are captured by
// the undo stack before the buffer changes; the stack replays its commands
// through an internal target that performs the same row repair without
// capturing again.
package document
