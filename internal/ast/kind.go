package ast

import "fmt"

// Kind identifies a node variant.
type Kind int

const (
	// KindNode is the abstract root of the hierarchy. No concrete node has it.
	KindNode Kind = iota
	KindInstitution
	KindBridge
	KindLink
	KindTypeDec
	KindEvent
	KindFluent
	// KindRule is the abstract parent of all rule kinds.
	KindRule
	KindGenerationRule
	KindInertialRule
	KindTransientRule
	KindCrossRule
	KindInitial
	KindCondition
	KindTerm
	KindQuery
	KindDomain

	// NumKinds is the number of kinds, for sizing lookup tables.
	NumKinds
)

var kindNames = [NumKinds]string{
	KindNode:           "Node",
	KindInstitution:    "Institution",
	KindBridge:         "Bridge",
	KindLink:           "Link",
	KindTypeDec:        "TypeDec",
	KindEvent:          "Event",
	KindFluent:         "Fluent",
	KindRule:           "Rule",
	KindGenerationRule: "GenerationRule",
	KindInertialRule:   "InertialRule",
	KindTransientRule:  "TransientRule",
	KindCrossRule:      "CrossRule",
	KindInitial:        "Initial",
	KindCondition:      "Condition",
	KindTerm:           "Term",
	KindQuery:          "Query",
	KindDomain:         "Domain",
}

// String returns the variant name.
func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k >= KindNode && k < NumKinds
}

// Parent returns the direct supertype of k. The root returns itself and false.
func (k Kind) Parent() (Kind, bool) {
	switch k {
	case KindNode:
		return KindNode, false
	case KindBridge:
		return KindInstitution, true
	case KindGenerationRule, KindInertialRule, KindTransientRule, KindCrossRule:
		return KindRule, true
	default:
		return KindNode, true
	}
}

// Ancestry returns k followed by each of its supertypes up to KindNode.
func (k Kind) Ancestry() []Kind {
	chain := []Kind{k}
	for cur := k; ; {
		parent, ok := cur.Parent()
		if !ok {
			return chain
		}
		chain = append(chain, parent)
		cur = parent
	}
}

// Abstract reports whether no concrete node may carry k.
func (k Kind) Abstract() bool {
	return k == KindNode || k == KindRule
}

// Is reports whether k is target or a subtype of it.
func (k Kind) Is(target Kind) bool {
	for _, a := range k.Ancestry() {
		if a == target {
			return true
		}
	}
	return false
}
