// Copyright (c) 2018 Andrew Fort
//

// Package lexer provides the streaming XML tokenizer.
//
// The Lexer converts a byte buffer holding one XML document into a lazy
// sequence of structural tokens: element opens, element closes, character
// data and a terminal end-of-document marker. Tokens are pulled one at a
// time with Next, with exactly one token of memoized lookahead available
// through Peek.
//
// The Lexer tracks element nesting depth and the in-scope namespace
// prefix bindings. Qualified names on open and close tokens carry the
// namespace URI their prefix resolved to at the point the token was
// produced; xmlns and xmlns:prefix attributes feed the prefix scope and
// never appear as token attributes. A self-closing element produces an
// open token flagged SelfClosing followed immediately by a synthesized
// close token, so consumers see <a/> and <a></a> as the same token
// sequence.
//
// Comments, processing instructions and other markup declarations never
// surface. Character data runs split only by comments or CDATA sections
// are merged into a single text token, with entity and character
// references resolved. Whitespace-only character data between elements
// is suppressed.
//
// Lexical and structural failures are reported as
// xmlerr.MalformedDocument errors carrying the byte offset of the
// offending input, after which the Lexer is dead: every later call
// returns the same error.
package lexer
