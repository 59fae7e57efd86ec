package domain

import (
	"fmt"
	"strings"
)

// NodeRef is a stable, globally unique identifier for a node. It is valid
// only within its owning graph and is never reused after deletion.
type NodeRef string

func (r NodeRef) String() string { return string(r) }

// IsZero reports whether the reference is empty.
func (r NodeRef) IsZero() bool { return r == "" }

// PinDirection distinguishes input from output pins.
type PinDirection string

const (
	PinIn  PinDirection = "in"
	PinOut PinDirection = "out"
)

// PinRef addresses a single pin on a node.
type PinRef struct {
	Node      NodeRef      `json:"node"`
	Name      string       `json:"name"`
	Direction PinDirection `json:"direction"`
}

func (p PinRef) String() string {
	return fmt.Sprintf("%s.%s", p.Node, p.Name)
}

// ParsePinAddress parses the compact "<node>.<pin>" pin address form.
// The direction is left unset; callers resolve it against the node.
func ParsePinAddress(addr string) (PinRef, error) {
	idx := strings.LastIndex(addr, ".")
	if idx <= 0 || idx == len(addr)-1 {
		return PinRef{}, fmt.Errorf("invalid pin address %q: want \"<node>.<pin>\"", addr)
	}
	return PinRef{Node: NodeRef(addr[:idx]), Name: addr[idx+1:]}, nil
}

// Position is a 2D placement hint for a node in its graph editor.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AssetHandle identifies an asset (document) in the owning environment.
type AssetHandle string

func (a AssetHandle) String() string { return string(a) }

// GraphHandle identifies one graph inside an asset.
type GraphHandle struct {
	Asset AssetHandle `json:"asset"`
	Name  string      `json:"name"`
}

func (g GraphHandle) String() string {
	return fmt.Sprintf("%s/%s", g.Asset, g.Name)
}
