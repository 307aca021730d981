// Package lua tokenizes, formats and checks Lua source.
//
// Language implements lexer.Language. Besides tokens, a scan reports fold
// regions for do, while, for, function, if and switch blocks closed by end,
// and for table constructors, when the block spans more than one line in
// between. Names introduced by function declarations and by require are
// collected as user words and coloured as literals for the rest of the
// scan.
package lua
