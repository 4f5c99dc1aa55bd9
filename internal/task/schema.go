package task

import "github.com/krakenbuild/kraken/internal/property"

// PropertyDescriptor declares one named property a task kind exposes. The
// schema table is static and explicit: there is no reflection-based
// discovery of fields on a Go struct.
type PropertyDescriptor struct {
	Name     string
	ItemType property.ItemType
	IsOutput bool
	// Default, if non-nil, is assigned via SetDefault immediately after the
	// property is created.
	Default any
}

// Schema is an ordered set of property descriptors shared by every task of a
// kind (e.g. every VoidTask has the same two-property schema).
type Schema []PropertyDescriptor

func (s Schema) build(ownerPath string) map[string]*property.Property[any] {
	props := make(map[string]*property.Property[any], len(s))
	for _, d := range s {
		p := property.New[any](ownerPath, d.Name, d.ItemType, d.IsOutput)
		if d.Default != nil {
			_ = p.SetDefault(d.Default)
		}
		props[d.Name] = p
	}
	return props
}
