/*
Package xmlcodec is a streaming, schema-driven XML codec.

The packages beneath this one convert between XML documents and typed
values (structures, lists, maps, primitives) without building a
document tree. Decoding is pull-based: a hand-written lexer produces
tokens one at a time, a cursor layers bounded lookahead and subtree
views over the token stream, and schema-driven decoders resolve the
stream against field descriptors supplied by the caller. Encoding runs
the other way through a stack-based tag writer.

Package layout:

	token	the token union and qualified-name model
	lexer	the streaming tokenizer
	stream	cursors with lookahead and subtree scoping
	schema	field and object descriptors with serialization traits
	decode	the deserializer: field resolution, list and map decoding
	encode	the tag writer and schema-driven serializer
	xmlerr	the codec's error taxonomy

Descriptors are built once by calling code and shared read-only across
any number of decode and encode operations; see package schema for the
trait model (attribute binding, flattened collections, custom member
and entry element names).
*/
package xmlcodec
