// Copyright (c) 2018 Andrew Fort

// Package encode produces XML documents from typed values.
//
// The Writer is a stack-based tag emitter: it tracks open elements,
// allocates namespace prefixes, escapes character data and reports
// misuse such as writing text and child elements into the same
// element. The Serializer layers the schema model on top, mirroring
// the decode package's shape: a root call returns a structure, list or
// map serializer whose typed calls emit one field, member or entry
// each. Documents written here read back through the decode package
// with identical values.
package encode
