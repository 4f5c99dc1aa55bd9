package property

import "reflect"

// Kind tags one branch of an ItemType union. The set of kinds is closed
// except for KindOpaque, which defers to an exact reflect.Type match against
// a user-registered adapter (see RegisterOpaque).
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindPath
	KindSequence
	KindMap
	KindSet
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindPath:
		return "Path"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Path is the adapter-aware string type used for filesystem-path properties.
type Path string

// Branch is one member of an ItemType union. Elem describes the element
// type for Sequence/Set/Map branches.
type Branch struct {
	Kind       Kind
	Elem       *ItemType
	OpaqueType reflect.Type
	OpaqueName string
}

func (b Branch) name() string {
	switch b.Kind {
	case KindSequence:
		return "[]" + b.Elem.String()
	case KindSet:
		return "set<" + b.Elem.String() + ">"
	case KindMap:
		return "map<string," + b.Elem.String() + ">"
	case KindOpaque:
		return b.OpaqueName
	default:
		return b.Kind.String()
	}
}

// ItemType is a closed, ordered union of Branch values. Order matters: when
// adapting a raw value, the first branch that accepts it wins.
type ItemType struct {
	Branches []Branch
}

// String renders the union using its declaration order, e.g. "string|Path".
func (it ItemType) String() string {
	if len(it.Branches) == 0 {
		return "void"
	}
	out := it.Branches[0].name()
	for _, b := range it.Branches[1:] {
		out += "|" + b.name()
	}
	return out
}

// Names returns the display name of every branch, in order.
func (it ItemType) Names() []string {
	names := make([]string, len(it.Branches))
	for i, b := range it.Branches {
		names[i] = b.name()
	}
	return names
}

func single(k Kind) ItemType { return ItemType{Branches: []Branch{{Kind: k}}} }

// String declares a string-only item type.
func String() ItemType { return single(KindString) }

// Int declares an int-only item type.
func Int() ItemType { return single(KindInt) }

// Bool declares a bool-only item type.
func Bool() ItemType { return single(KindBool) }

// PathType declares a Path-only item type (still accepts plain strings and
// converts them, per the Path adapter).
func PathType() ItemType { return single(KindPath) }

// SequenceOf declares a sequence (ordered list) of elem.
func SequenceOf(elem ItemType) ItemType {
	return ItemType{Branches: []Branch{{Kind: KindSequence, Elem: &elem}}}
}

// SetOf declares a deduplicated collection of elem.
func SetOf(elem ItemType) ItemType {
	return ItemType{Branches: []Branch{{Kind: KindSet, Elem: &elem}}}
}

// MapOf declares a string-keyed map with elem values.
func MapOf(elem ItemType) ItemType {
	return ItemType{Branches: []Branch{{Kind: KindMap, Elem: &elem}}}
}

// Opaque declares a branch matched by exact reflect.Type identity, for
// user-registered scalar types that do not fit the built-in kinds.
func Opaque(name string, t reflect.Type) ItemType {
	return ItemType{Branches: []Branch{{Kind: KindOpaque, OpaqueType: t, OpaqueName: name}}}
}

// Union combines item types into a single ordered union, preserving the
// order branches are given in (first-match-wins during adaptation).
func Union(types ...ItemType) ItemType {
	var out ItemType
	for _, t := range types {
		out.Branches = append(out.Branches, t.Branches...)
	}
	return out
}
