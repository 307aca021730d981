// Package engine is the text engine facade: a document with undo history
// and a row index, paired with a background tokenizer whose results stay
// aligned with the text while edits continue.
//
// Basic usage:
//
//	e, err := engine.New(
//		engine.WithContent("local x = 1\n"),
//		engine.WithLanguage(lua.Default()),
//	)
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
//	e.Type(0, "-- hi\n")
//	e.WaitTokenize()
//	res := e.Tokens()
//
// # Tokens
//
// With auto-tokenize on (the default) every edit schedules a scan of a
// snapshot of the text, restarting any scan still running. Until the next
// result arrives, Tokens returns the last result with the intervening
// edits applied to its lengths, so the token lengths always sum to Len.
//
// Fold positions are reported as scanned and are not adjusted.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Callbacks registered with
// OnTokens run one at a time on a goroutine of their own.
package engine
