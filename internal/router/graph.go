package router

import (
	"context"

	"github.com/rigwire/rigwire/pkg/domain"
	"github.com/rigwire/rigwire/pkg/protocol"
)

// GraphBatch applies an ordered operation list under the requested error
// policy. A failed non-dry batch against the focused asset poisons the
// focus so that EndFocus leaves the asset open for inspection.
func (h *Handlers) GraphBatch(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	params, err := protocol.DecodeStandardParams(cmd.Params)
	if err != nil {
		return protocol.Errorf(err)
	}
	if h.maxOps > 0 && params.MaxOperations > h.maxOps {
		params.MaxOperations = h.maxOps
	}

	asset, graphName, err := h.target(cmd.Params)
	if err != nil {
		return protocol.Errorf(err)
	}
	graph, factory, err := h.registry.Resolve(asset, graphName)
	if err != nil {
		return protocol.Errorf(err)
	}

	rawOps, ok := cmd.Params["operations"]
	if !ok {
		return protocol.Errorf(&protocol.ValidationError{Key: "operations", Reason: "required parameter is missing"})
	}
	ops, err := protocol.DecodeOperations(rawOps)
	if err != nil {
		return protocol.Errorf(err)
	}

	result, err := h.engine.Apply(ctx, graph, factory, ops, params)
	if err != nil {
		return protocol.Errorf(err)
	}

	if h.stats != nil {
		for _, r := range result.Results {
			outcome := "failed"
			if r.Success {
				outcome = "applied"
				if result.DryRun {
					outcome = "validated"
				}
			}
			h.stats.OperationsTotal.WithLabelValues(string(r.Op), outcome).Inc()
		}
	}

	if !result.Success && !result.DryRun {
		if focused, _, ok := h.focus.Current(); ok && focused == asset {
			msg := "batch failed"
			if len(result.Errors) > 0 {
				msg = result.Errors[0].Error
			}
			h.focus.SetError(msg)
		}
	}
	return protocol.Success(result)
}

// GraphQuery lists nodes matching a filter. Read-only; still runs on the
// owner goroutine.
func (h *Handlers) GraphQuery(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	params, err := protocol.DecodeStandardParams(cmd.Params)
	if err != nil {
		return protocol.Errorf(err)
	}
	asset, graphName, err := h.target(cmd.Params)
	if err != nil {
		return protocol.Errorf(err)
	}
	graph, factory, err := h.registry.Resolve(asset, graphName)
	if err != nil {
		return protocol.Errorf(err)
	}

	var filter domain.NodeFilter
	filter.Kind, _ = protocol.StringParam(cmd.Params, "kind")
	filter.NameContains, _ = protocol.StringParam(cmd.Params, "name_contains")

	matches, err := factory.FindNodesByKind(graph, filter)
	if err != nil {
		return protocol.Errorf(err)
	}

	nodes := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		desc, err := factory.Describe(graph, m.Ref, params.Verbosity)
		if err != nil {
			return protocol.Errorf(err)
		}
		nodes = append(nodes, desc)
	}
	return protocol.Success(map[string]any{
		"graph": graph,
		"count": len(nodes),
		"nodes": nodes,
	})
}

// GraphDescribe renders one node at the requested verbosity.
func (h *Handlers) GraphDescribe(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	params, err := protocol.DecodeStandardParams(cmd.Params)
	if err != nil {
		return protocol.Errorf(err)
	}
	asset, graphName, err := h.target(cmd.Params)
	if err != nil {
		return protocol.Errorf(err)
	}
	graph, factory, err := h.registry.Resolve(asset, graphName)
	if err != nil {
		return protocol.Errorf(err)
	}

	nodeAddr, err := protocol.RequireString(cmd.Params, "node")
	if err != nil {
		return protocol.Errorf(err)
	}
	desc, err := factory.Describe(graph, domain.NodeRef(nodeAddr), params.Verbosity)
	if err != nil {
		return protocol.Errorf(err)
	}
	return protocol.Success(desc)
}

// GraphResolve reports which domain services an asset/graph pair.
func (h *Handlers) GraphResolve(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	asset, graphName, err := h.target(cmd.Params)
	if err != nil {
		return protocol.Errorf(err)
	}
	graph, factory, err := h.registry.Resolve(asset, graphName)
	if err != nil {
		return protocol.Errorf(err)
	}
	return protocol.Success(map[string]any{
		"graph":      graph,
		"descriptor": factory.Descriptor(),
	})
}
