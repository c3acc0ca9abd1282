package token

// Name is a qualified XML name: a local name plus the resolved namespace
// URI and the display prefix used in the document, when present.
type Name struct {
	Local  string
	Space  string
	Prefix string
}

// QName is a shortcut for creating a Name, where typically you want at
// least a local name, and perhaps a namespace URI as well.
func QName(local string, spaces ...string) Name {
	n := Name{Local: local}
	if len(spaces) > 0 {
		n.Space = spaces[0]
	}
	return n
}

// Match reports whether n and o identify the same element or attribute.
// When both names carry a namespace URI, the URI and local name must both
// match; otherwise only local names are compared. The display prefix never
// participates, so names spelled with different prefixes bound to the same
// URI still match.
func (n Name) Match(o Name) bool {
	if n.Space != "" && o.Space != "" {
		return n.Local == o.Local && n.Space == o.Space
	}
	return n.Local == o.Local
}

// String returns the name as written in a document, prefix included.
func (n Name) String() string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Local
	}
	return n.Local
}
