package schema

// Property is a named property schema.
type Property struct {
	Name   string
	Schema *Schema
}

// Properties is an ordered set of property schemas.
type Properties []Property

// Get returns the schema for the property name.
func (p Properties) Get(name string) (*Schema, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Schema, true
		}
	}
	return nil, false
}

// Names returns property names in declaration order.
func (p Properties) Names() []string {
	res := make([]string, 0, len(p))
	for _, prop := range p {
		res = append(res, prop.Name)
	}
	return res
}

// Set replaces an existing property in place or appends a new one.
func (p Properties) Set(name string, s *Schema) Properties {
	for i, prop := range p {
		if prop.Name == name {
			p[i].Schema = s
			return p
		}
	}
	return append(p, Property{Name: name, Schema: s})
}
