// Copyright 2018 Andrew Fort

// Package schema describes how typed values map onto XML documents.
//
// An Object lists the fields of a structure in index order. Each Field
// carries the element (or attribute) name it serializes to, its kind,
// and the serialization options that alter the XML shape:
//
//	BoundToAttribute
//	    The value is an attribute on the enclosing element rather
//	    than a child element.
//
//	Flattened
//	    A list or map field has no wrapper element; each member or
//	    entry repeats as a sibling element named after the field.
//
//	WithElementName
//	    Overrides the member element name of a list ("member" when
//	    wrapped, the field name when flattened).
//
//	WithEntryNames
//	    Overrides the entry, key and value element names of a map
//	    (normally "entry", "key" and "value").
//
// Descriptors are built once, are immutable afterwards, and are shared
// read-only by any number of concurrent encode and decode calls. The
// codec consults them through the query methods only; in particular
// Matches and MemberName settle the flattened-collection naming rules
// in one place.
package schema
