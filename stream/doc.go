/*
Package stream provides cursor access to a lexed XML token stream.

A Cursor wraps a lexer.Lexer with bounded multi-token lookahead and
subtree operations. Cursors are cheap views over a single shared read
head: a subtree cursor obtained from Subtree advances the same
underlying position as its parent, so a parent must not be advanced
while a subtree cursor derived from it is still in use. Decoders use
StartDepth to recognise the close token that ends their element.
*/
package stream
