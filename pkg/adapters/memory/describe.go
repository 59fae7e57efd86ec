package memory

import (
	"github.com/rigwire/rigwire/pkg/domain"
)

// Describe renders the describe payload for a node at the requested
// verbosity. Detail logic switches on the node's stable kind tag; there is
// no type probing.
func (f *Factory) Describe(gh domain.GraphHandle, ref domain.NodeRef, verbosity domain.Verbosity) (map[string]any, error) {
	_, n, err := f.node(gh, ref)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"ref":    n.Ref,
		"kind":   n.Kind,
		"domain": f.kind,
	}
	if verbosity == domain.VerbosityMinimal {
		return out, nil
	}

	out["title"] = n.Title
	out["enabled"] = n.Enabled
	out["position"] = n.Position

	pins := make([]map[string]any, 0, len(n.Pins))
	for _, p := range n.Pins {
		entry := map[string]any{
			"name":      p.Name,
			"direction": p.Dir,
		}
		if verbosity == domain.VerbosityFull {
			entry["type"] = p.Type
			entry["value"] = p.Value
			entry["linked_to"] = p.Links
		}
		pins = append(pins, entry)
	}
	if len(pins) > 0 {
		out["pins"] = pins
	}

	if verbosity != domain.VerbosityFull {
		return out, nil
	}

	if len(n.Params) > 0 {
		out["params"] = n.Params
	}
	if len(n.SubRefs) > 0 {
		out["sub_objects"] = n.SubRefs
	}
	out["protected"] = n.Protected

	// Kind-specific detail, keyed off the tag.
	switch n.Kind {
	case "branch":
		out["branch_outputs"] = []string{"true", "false"}
	case "emitter":
		out["renderer_count"] = len(n.SubRefs)
	case "panel", "text", "button", "image":
		out["widget"] = true
	}
	return out, nil
}
