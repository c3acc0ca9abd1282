package token

import "fmt"

// Token is a single structural item of an XML document: an element open or
// close tag, a run of character data, or the end of the document. Consumers
// discriminate with a type switch over the four concrete types.
type Token interface {
	xmlToken()
}

// Attr is a single attribute from an element's opening tag. Namespace
// declarations never appear here; the lexer diverts them into its prefix
// scope.
type Attr struct {
	Name  Name
	Value string
}

// ElementOpen is the opening tag of an element. Attrs preserves document
// order. SelfClosing is set for <name/> forms, whose matching ElementClose
// is synthesized by the lexer as the immediately-following token.
type ElementOpen struct {
	Name        Name
	Attrs       []Attr
	SelfClosing bool
}

// Attr returns the value of the first attribute matching name.
func (e ElementOpen) Attr(name Name) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Match(name) {
			return a.Value, true
		}
	}
	return "", false
}

// End returns the close token matching e.
func (e ElementOpen) End() ElementClose { return ElementClose{Name: e.Name} }

// ElementClose is the closing tag of an element.
type ElementClose struct {
	Name Name
}

// Text is a run of character data with entities and CDATA sections already
// resolved. Runs separated only by comments or CDATA markers arrive merged.
type Text struct {
	Value string
}

// EndOfDocument is the terminal token. Depth is 0 once it is produced.
type EndOfDocument struct{}

func (ElementOpen) xmlToken()   {}
func (ElementClose) xmlToken()  {}
func (Text) xmlToken()          {}
func (EndOfDocument) xmlToken() {}

func (e ElementOpen) String() string {
	if e.SelfClosing {
		return fmt.Sprintf("<%s/>", e.Name)
	}
	return fmt.Sprintf("<%s>", e.Name)
}

func (e ElementClose) String() string { return fmt.Sprintf("</%s>", e.Name) }

func (t Text) String() string { return fmt.Sprintf("text %q", t.Value) }

func (EndOfDocument) String() string { return "end of document" }
