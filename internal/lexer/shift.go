package lexer

// ShiftTokens adjusts a token list for an edit at offset that changed the
// text length by delta, so that it keeps covering the text until the next
// scan arrives. Inserted text joins the token containing offset, or the
// last token when offset is at the end. Deleted text is removed from every
// token it overlaps and emptied tokens are dropped. The input is not
// modified.
func ShiftTokens(tokens []Token, offset, delta int) []Token {
	out := make([]Token, 0, len(tokens))
	switch {
	case delta > 0:
		done := false
		start := 0
		for i, tok := range tokens {
			end := start + tok.Length
			if !done && (offset < end || (offset == end && i == len(tokens)-1)) {
				tok.Length += delta
				done = true
			}
			out = append(out, tok)
			start = end
		}
		if !done {
			out = append(out, Token{Length: delta, Type: Normal})
		}
	case delta < 0:
		delStart, delEnd := offset, offset-delta
		start := 0
		for _, tok := range tokens {
			end := start + tok.Length
			lo, hi := max(start, delStart), min(end, delEnd)
			if hi > lo {
				tok.Length -= hi - lo
			}
			if tok.Length > 0 {
				out = append(out, tok)
			}
			start = end
		}
	default:
		out = append(out, tokens...)
	}
	return out
}
