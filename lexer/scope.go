package lexer

// xmlNamespace is the URI permanently bound to the "xml" prefix.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// scopes is the namespace prefix binding stack. One frame is pushed per
// open element holding only that element's own xmlns declarations; lookup
// walks outward so children inherit ancestor bindings. The default
// namespace is the binding for the empty prefix.
type scopes struct {
	frames []map[string]string
}

func (s *scopes) push(decls map[string]string) {
	s.frames = append(s.frames, decls)
}

func (s *scopes) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// lookup resolves prefix against the innermost binding, or the built-in
// "xml" binding. The empty prefix resolves the default namespace.
func (s *scopes) lookup(prefix string) (string, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if uri, ok := s.frames[i][prefix]; ok {
			return uri, true
		}
	}
	if prefix == "xml" {
		return xmlNamespace, true
	}
	return "", false
}
