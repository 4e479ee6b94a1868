package expr

// A queryPart represents a section of a parsed SQL template. The parsed
// template is represented as a list of queryParts.
type queryPart interface {
	// String returns a string representation of the part for debugging and
	// testing purposes.
	String() string

	// part is a marker method.
	part()
}

// placeholderPart represents a ":name" placeholder.
type placeholderPart struct {
	name string
}

func (p *placeholderPart) String() string {
	return "placeholderPart[" + p.name + "]"
}

// raw returns the placeholder as it appeared in the template.
func (p *placeholderPart) raw() string {
	return ":" + p.name
}

// Marker function for queryPart.
func (p *placeholderPart) part() {}

// bypassPart represents a part of the template that is passed to the
// database verbatim.
type bypassPart struct {
	chunk string
}

func (p *bypassPart) String() string {
	return "bypassPart[" + p.chunk + "]"
}

// Marker function for queryPart.
func (p *bypassPart) part() {}
