package domain

// GraphKind names one of the structurally distinct node-graph domains that
// share the uniform command surface.
type GraphKind string

const (
	KindLogic   GraphKind = "logic"
	KindShading GraphKind = "shading"
	KindMotion  GraphKind = "motion"
	KindLayout  GraphKind = "layout"
	KindEffect  GraphKind = "effect"
)

// Capability strings advertised by a graph domain. Callers check these
// instead of downcasting node types.
const (
	CapPins        = "pins"
	CapEnable      = "enable"
	CapReconstruct = "reconstruct"
	CapValues      = "values"
)

// GraphTypeDescriptor describes which domain services a graph and what
// operations that domain supports.
type GraphTypeDescriptor struct {
	Kind         GraphKind `json:"kind"`
	Capabilities []string  `json:"capabilities"`
}

// Supports reports whether the descriptor advertises the capability.
func (d GraphTypeDescriptor) Supports(cap string) bool {
	for _, c := range d.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// Verbosity controls how much descriptive detail query responses include.
type Verbosity string

const (
	VerbosityMinimal Verbosity = "minimal"
	VerbosityNormal  Verbosity = "normal"
	VerbosityFull    Verbosity = "full"
)

// PinSnapshot is a read-only view of a pin at describe time.
type PinSnapshot struct {
	Name      string       `json:"name"`
	Direction PinDirection `json:"direction"`
	Value     any          `json:"value,omitempty"`
	LinkedTo  []PinRef     `json:"linked_to,omitempty"`
}

// NodeSnapshot is a read-only view of a node. Each node exposes a stable
// kind tag; describe logic switches on the tag rather than on concrete
// types.
type NodeSnapshot struct {
	Ref      NodeRef       `json:"ref"`
	Kind     string        `json:"kind"`
	Title    string        `json:"title,omitempty"`
	Enabled  bool          `json:"enabled"`
	Position Position      `json:"position"`
	Pins     []PinSnapshot `json:"pins,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
	// SubRefs lists dependent default sub-objects owned by this node.
	SubRefs []NodeRef `json:"sub_refs,omitempty"`
}

// Pin looks up a pin snapshot by name and direction.
func (n *NodeSnapshot) Pin(name string, dir PinDirection) (*PinSnapshot, bool) {
	for i := range n.Pins {
		if n.Pins[i].Name == name && n.Pins[i].Direction == dir {
			return &n.Pins[i], true
		}
	}
	return nil, false
}

// FindPin looks up a pin by name alone, preferring outputs when the name is
// ambiguous. Used when resolving compact "<node>.<pin>" addresses that carry
// no direction.
func (n *NodeSnapshot) FindPin(name string) (*PinSnapshot, bool) {
	if p, ok := n.Pin(name, PinOut); ok {
		return p, true
	}
	return n.Pin(name, PinIn)
}

// NodeFilter narrows FindNodesByKind results.
type NodeFilter struct {
	Kind         string `json:"kind,omitempty"`
	NameContains string `json:"name_contains,omitempty"`
}
