package decl

import "fmt"

// Kind classifies a top-level declaration.
type Kind uint8

const (
	KindStruct Kind = iota
	KindInterface
	// KindTypedef covers named types that are neither structs nor
	// interfaces: aliases, defined basic types, function types.
	KindTypedef
	KindFunc
	KindMethod
	KindConst
	KindVar
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindTypedef:
		return "typedef"
	case KindFunc:
		return "func"
	case KindMethod:
		return "method"
	case KindConst:
		return "const"
	case KindVar:
		return "var"
	}
	return "unknown"
}

// ParseKind maps a configuration string to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "struct":
		return KindStruct, nil
	case "interface":
		return KindInterface, nil
	case "typedef":
		return KindTypedef, nil
	case "func":
		return KindFunc, nil
	case "method":
		return KindMethod, nil
	case "const":
		return KindConst, nil
	case "var":
		return KindVar, nil
	}
	return 0, fmt.Errorf("unknown declaration kind %q (want struct|interface|typedef|func|method|const|var)", name)
}

// KindSet is a small bitmask of declaration kinds.
type KindSet uint16

func NewKindSet(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

// DefaultKinds is the set checked when the configuration names none:
// named type declarations only.
func DefaultKinds() KindSet {
	return NewKindSet(KindStruct, KindInterface, KindTypedef)
}

func (s KindSet) Has(k Kind) bool {
	return s&(1<<k) != 0
}

func (s KindSet) Union(other KindSet) KindSet {
	return s | other
}

func (s KindSet) Empty() bool {
	return s == 0
}

// Kinds returns the members in declaration-kind order.
func (s KindSet) Kinds() []Kind {
	out := make([]Kind, 0, 7)
	for k := KindStruct; k <= KindVar; k++ {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// ParseKindSet builds a KindSet from configuration strings.
func ParseKindSet(names []string) (KindSet, error) {
	if len(names) == 0 {
		return DefaultKinds(), nil
	}
	var s KindSet
	for _, name := range names {
		k, err := ParseKind(name)
		if err != nil {
			return 0, err
		}
		s |= 1 << k
	}
	return s, nil
}
