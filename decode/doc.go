// Copyright (c) 2018 Andrew Fort

// Package decode reads typed values out of XML documents.
//
// A Deserializer owns the document buffer and hands out decoders
// driven by schema descriptors. DeserializeStruct consumes the root
// element and returns a StructDecoder; the caller then alternates
// between NextField, which resolves the schema field the next piece of
// document maps to, and the typed decode call for that field. Elements
// the schema does not recognise are skipped whole, so documents from
// newer schema revisions decode without error.
//
// Nested structures, lists and maps are decoded through child decoders
// sharing the parent's position in the document. A child decoder must
// be driven to completion before the parent is used again; the parent
// discards its own stale state when control returns to it.
package decode
