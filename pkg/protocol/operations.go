package protocol

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/rigwire/rigwire/pkg/domain"
)

// OpKind tags one operation variant in a batch.
type OpKind string

const (
	OpCreateNode     OpKind = "create_node"
	OpDeleteNode     OpKind = "delete_node"
	OpSetEnabled     OpKind = "set_enabled"
	OpReconstruct    OpKind = "reconstruct"
	OpConnectPins    OpKind = "connect_pins"
	OpDisconnectPins OpKind = "disconnect_pins"
	OpSetPinValue    OpKind = "set_pin_value"
	OpBreakAllLinks  OpKind = "break_all_links"
)

// RefPrefix marks a node address that refers to the client-supplied label of
// a node created earlier in the same batch, e.g. "$ref:n1".
const RefPrefix = "$ref:"

// PinAddress names one pin in an operation. Clients send either the compact
// "<node>.<pin>" string or an object with "node", "name" and optional
// "direction" keys; the object form disambiguates nodes that carry an input
// and an output pin of the same name. The node part may be a "$ref:" label.
type PinAddress struct {
	Node      string              `mapstructure:"node" json:"node"`
	Name      string              `mapstructure:"name" json:"name"`
	Direction domain.PinDirection `mapstructure:"direction" json:"direction,omitempty"`
}

// IsZero reports whether the address is absent.
func (a PinAddress) IsZero() bool { return a.Node == "" && a.Name == "" }

func (a PinAddress) String() string { return a.Node + "." + a.Name }

func (a PinAddress) validate() error {
	if (a.Node == "") != (a.Name == "") {
		return &ValidationError{Key: "pin", Reason: "address needs both node and name", Value: a.String()}
	}
	switch a.Direction {
	case "", domain.PinIn, domain.PinOut:
		return nil
	}
	return &ValidationError{
		Key:    "direction",
		Reason: fmt.Sprintf("must be %q or %q", domain.PinIn, domain.PinOut),
		Value:  string(a.Direction),
	}
}

// ParsePin parses the compact "<node>.<pin>" address form. The direction is
// left unset.
func ParsePin(addr string) (PinAddress, error) {
	ref, err := domain.ParsePinAddress(addr)
	if err != nil {
		return PinAddress{}, err
	}
	return PinAddress{Node: string(ref.Node), Name: ref.Name}, nil
}

// Operation is one tagged variant in a batch. Each variant carries its own
// typed payload plus an optional client-supplied correlation label.
type Operation interface {
	Kind() OpKind
	// Label returns the client-supplied ref used to correlate results back
	// to the caller's batch request. May be empty.
	Label() string
}

// CreateNode adds a node of the given kind to the graph.
type CreateNode struct {
	NodeKind string           `mapstructure:"kind"`
	Position *domain.Position `mapstructure:"position"`
	Params   map[string]any   `mapstructure:"params"`
	Ref      string           `mapstructure:"ref"`
}

func (o CreateNode) Kind() OpKind  { return OpCreateNode }
func (o CreateNode) Label() string { return o.Ref }

// DeleteNode removes a node and all of its links.
type DeleteNode struct {
	Node string `mapstructure:"node"`
	Ref  string `mapstructure:"ref"`
}

func (o DeleteNode) Kind() OpKind  { return OpDeleteNode }
func (o DeleteNode) Label() string { return o.Ref }

// SetEnabled toggles a node's enabled flag.
type SetEnabled struct {
	Node    string `mapstructure:"node"`
	Enabled bool   `mapstructure:"enabled"`
	Ref     string `mapstructure:"ref"`
}

func (o SetEnabled) Kind() OpKind  { return OpSetEnabled }
func (o SetEnabled) Label() string { return o.Ref }

// Reconstruct rebuilds a node's pins from its current definition.
type Reconstruct struct {
	Node string `mapstructure:"node"`
	Ref  string `mapstructure:"ref"`
}

func (o Reconstruct) Kind() OpKind  { return OpReconstruct }
func (o Reconstruct) Label() string { return o.Ref }

// ConnectPins links an output pin to an input pin.
type ConnectPins struct {
	From PinAddress `mapstructure:"from"`
	To   PinAddress `mapstructure:"to"`
	Ref  string     `mapstructure:"ref"`
}

func (o ConnectPins) Kind() OpKind  { return OpConnectPins }
func (o ConnectPins) Label() string { return o.Ref }

// DisconnectPins breaks the link between two pins, or every link on From
// when To is absent.
type DisconnectPins struct {
	From PinAddress `mapstructure:"from"`
	To   PinAddress `mapstructure:"to"`
	Ref  string     `mapstructure:"ref"`
}

func (o DisconnectPins) Kind() OpKind  { return OpDisconnectPins }
func (o DisconnectPins) Label() string { return o.Ref }

// SetPinValue sets the default value carried by a pin.
type SetPinValue struct {
	Pin   PinAddress `mapstructure:"pin"`
	Value any        `mapstructure:"value"`
	Ref   string     `mapstructure:"ref"`
}

func (o SetPinValue) Kind() OpKind  { return OpSetPinValue }
func (o SetPinValue) Label() string { return o.Ref }

// BreakAllLinks removes every link touching the node.
type BreakAllLinks struct {
	Node string `mapstructure:"node"`
	Ref  string `mapstructure:"ref"`
}

func (o BreakAllLinks) Kind() OpKind  { return OpBreakAllLinks }
func (o BreakAllLinks) Label() string { return o.Ref }

// DecodeOperations parses the raw "operations" parameter of a batch command
// into typed variants. Decoding is strict about the tag but tolerant about
// numeric widths (JSON numbers arrive as float64).
func DecodeOperations(raw any) ([]Operation, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, &ValidationError{Key: "operations", Reason: "must be a list of operation objects", Value: raw}
	}

	ops := make([]Operation, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &ValidationError{Key: fmt.Sprintf("operations[%d]", i), Reason: "must be an object", Value: item}
		}
		tag, _ := m["op"].(string)
		if tag == "" {
			return nil, &ValidationError{Key: fmt.Sprintf("operations[%d].op", i), Reason: "missing operation tag"}
		}

		op, err := decodeOperation(OpKind(tag), m)
		if err != nil {
			return nil, fmt.Errorf("operations[%d]: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func decodeOperation(kind OpKind, m map[string]any) (Operation, error) {
	var target Operation
	switch kind {
	case OpCreateNode:
		target = &CreateNode{}
	case OpDeleteNode:
		target = &DeleteNode{}
	case OpSetEnabled:
		target = &SetEnabled{}
	case OpReconstruct:
		target = &Reconstruct{}
	case OpConnectPins:
		target = &ConnectPins{}
	case OpDisconnectPins:
		target = &DisconnectPins{}
	case OpSetPinValue:
		target = &SetPinValue{}
	case OpBreakAllLinks:
		target = &BreakAllLinks{}
	default:
		return nil, &ValidationError{Key: "op", Reason: "unknown operation", Value: string(kind)}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook:       pinAddressHook,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, &ValidationError{Key: string(kind), Reason: err.Error()}
	}

	op := deref(target)
	for _, a := range pinFields(op) {
		if err := a.validate(); err != nil {
			return nil, err
		}
	}
	return op, nil
}

var pinAddressType = reflect.TypeOf(PinAddress{})

// pinAddressHook converts compact string pin addresses to PinAddress; the
// object form decodes through mapstructure natively. An empty string yields
// the zero address so optional fields stay optional.
func pinAddressHook(from, to reflect.Type, data any) (any, error) {
	if to != pinAddressType || from.Kind() != reflect.String {
		return data, nil
	}
	s := data.(string)
	if s == "" {
		return PinAddress{}, nil
	}
	return ParsePin(s)
}

// pinFields returns the operation's pin addresses for post-decode checks.
func pinFields(op Operation) []PinAddress {
	switch v := op.(type) {
	case ConnectPins:
		return []PinAddress{v.From, v.To}
	case DisconnectPins:
		return []PinAddress{v.From, v.To}
	case SetPinValue:
		return []PinAddress{v.Pin}
	}
	return nil
}

// deref returns the value form so that batch code can switch on concrete
// types without pointer cases.
func deref(op Operation) Operation {
	switch v := op.(type) {
	case *CreateNode:
		return *v
	case *DeleteNode:
		return *v
	case *SetEnabled:
		return *v
	case *Reconstruct:
		return *v
	case *ConnectPins:
		return *v
	case *DisconnectPins:
		return *v
	case *SetPinValue:
		return *v
	case *BreakAllLinks:
		return *v
	}
	return op
}
