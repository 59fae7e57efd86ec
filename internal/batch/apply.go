package batch

import (
	"fmt"

	"github.com/rigwire/rigwire/pkg/domain"
	"github.com/rigwire/rigwire/pkg/protocol"
)

// applyOne executes a single operation, capturing its inverse on success.
// The second return reports whether the graph changed structurally.
func (e *Engine) applyOne(run *batchRun, op protocol.Operation) (protocol.OperationResult, bool) {
	res := protocol.OperationResult{Op: op.Kind(), Ref: op.Label()}

	fail := func(err error) (protocol.OperationResult, bool) {
		res.Success = false
		res.Error = protocol.SafeErrorMessage(err)
		return res, false
	}

	f := run.factory
	g := run.graph

	switch v := op.(type) {
	case protocol.CreateNode:
		if v.NodeKind == "" {
			return fail(&protocol.ValidationError{Key: "kind", Reason: "missing node kind"})
		}
		var pos domain.Position
		if v.Position != nil {
			pos = *v.Position
		}
		node, err := f.CreateNode(g, v.NodeKind, pos, v.Params)
		if err != nil {
			return fail(err)
		}
		res.NodeID = node.Ref
		if v.Ref != "" {
			run.refs[v.Ref] = node.Ref
		}
		created := node.Ref
		run.pushUndo(fmt.Sprintf("create %s", created), func() error {
			return f.DeleteNode(g, created)
		})
		res.Success = true
		return res, true

	case protocol.DeleteNode:
		ref, err := run.resolveNode(v.Node)
		if err != nil {
			return fail(err)
		}
		snap, err := f.FindNode(g, ref)
		if err != nil {
			return fail(err)
		}
		subs := make([]domain.NodeSnapshot, 0, len(snap.SubRefs))
		for _, subRef := range snap.SubRefs {
			if sub, err := f.FindNode(g, subRef); err == nil {
				subs = append(subs, *sub)
			}
		}
		if err := f.DeleteNode(g, ref); err != nil {
			return fail(err)
		}
		res.NodeID = ref
		restore := *snap
		run.pushUndo(fmt.Sprintf("delete %s", ref), func() error {
			for _, sub := range subs {
				if err := f.RestoreNode(g, sub); err != nil {
					return err
				}
			}
			return f.RestoreNode(g, restore)
		})
		res.Success = true
		return res, true

	case protocol.SetEnabled:
		ref, err := run.resolveNode(v.Node)
		if err != nil {
			return fail(err)
		}
		snap, err := f.FindNode(g, ref)
		if err != nil {
			return fail(err)
		}
		prior := snap.Enabled
		if err := f.SetEnabled(g, ref, v.Enabled); err != nil {
			return fail(err)
		}
		res.NodeID = ref
		run.pushUndo(fmt.Sprintf("set_enabled %s", ref), func() error {
			return f.SetEnabled(g, ref, prior)
		})
		res.Success = true
		return res, true

	case protocol.Reconstruct:
		ref, err := run.resolveNode(v.Node)
		if err != nil {
			return fail(err)
		}
		snap, err := f.FindNode(g, ref)
		if err != nil {
			return fail(err)
		}
		if err := f.Reconstruct(g, ref); err != nil {
			return fail(err)
		}
		res.NodeID = ref
		restore := *snap
		run.pushUndo(fmt.Sprintf("reconstruct %s", ref), func() error {
			return f.RestoreNode(g, restore)
		})
		res.Success = true
		return res, true

	case protocol.ConnectPins:
		from, err := run.resolvePin(v.From)
		if err != nil {
			return fail(err)
		}
		to, err := run.resolvePin(v.To)
		if err != nil {
			return fail(err)
		}
		if err := f.Connect(g, from, to); err != nil {
			return fail(err)
		}
		from.Direction = domain.PinOut
		to.Direction = domain.PinIn
		run.pushUndo(fmt.Sprintf("connect %s -> %s", from, to), func() error {
			return f.Disconnect(g, from, &to)
		})
		res.Success = true
		return res, true

	case protocol.DisconnectPins:
		from, err := run.resolvePin(v.From)
		if err != nil {
			return fail(err)
		}
		if v.To.IsZero() {
			// Break every link on the pin; capture the link set first.
			links, dir, err := pinLinks(f, g, from)
			if err != nil {
				return fail(err)
			}
			from.Direction = dir
			if err := f.Disconnect(g, from, nil); err != nil {
				return fail(err)
			}
			self := from
			run.pushUndo(fmt.Sprintf("disconnect all on %s", from), func() error {
				return reconnect(f, g, self, links)
			})
			res.Success = true
			return res, true
		}
		to, err := run.resolvePin(v.To)
		if err != nil {
			return fail(err)
		}
		if err := f.Disconnect(g, from, &to); err != nil {
			return fail(err)
		}
		run.pushUndo(fmt.Sprintf("disconnect %s -> %s", from, to), func() error {
			return reconnectPair(f, g, from, to)
		})
		res.Success = true
		return res, true

	case protocol.SetPinValue:
		pin, err := run.resolvePin(v.Pin)
		if err != nil {
			return fail(err)
		}
		prior, err := pinValue(f, g, pin)
		if err != nil {
			return fail(err)
		}
		if err := f.SetPinValue(g, pin, v.Value); err != nil {
			return fail(err)
		}
		run.pushUndo(fmt.Sprintf("set_pin_value %s", pin), func() error {
			return f.SetPinValue(g, pin, prior)
		})
		res.Success = true
		return res, false

	case protocol.BreakAllLinks:
		ref, err := run.resolveNode(v.Node)
		if err != nil {
			return fail(err)
		}
		snap, err := f.FindNode(g, ref)
		if err != nil {
			return fail(err)
		}
		if err := f.BreakAllLinks(g, ref); err != nil {
			return fail(err)
		}
		res.NodeID = ref
		restore := *snap
		run.pushUndo(fmt.Sprintf("break_all_links %s", ref), func() error {
			for _, p := range restore.Pins {
				self := domain.PinRef{Node: restore.Ref, Name: p.Name, Direction: p.Direction}
				if err := reconnect(f, g, self, p.LinkedTo); err != nil {
					return err
				}
			}
			return nil
		})
		res.Success = true
		return res, true
	}

	return fail(fmt.Errorf("unhandled operation %q", op.Kind()))
}

func (run *batchRun) pushUndo(desc string, fn func() error) {
	run.undos = append(run.undos, undoEntry{desc: desc, fn: fn})
}
