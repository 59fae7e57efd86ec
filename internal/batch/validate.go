package batch

import (
	"fmt"
	"strings"

	"github.com/rigwire/rigwire/pkg/domain"
	"github.com/rigwire/rigwire/pkg/protocol"
)

// pseudoRef marks a node that a dry run would have created. Pin-level
// checks are skipped for pseudo nodes since their pins do not exist yet.
const pseudoRef = domain.NodeRef("$dry-run-created")

// validateAll produces the would-apply/would-fail verdict for every
// operation without calling any mutating factory method. Verdicts are
// against the current graph state; calling it twice yields identical
// results.
func (e *Engine) validateAll(run *batchRun, ops []protocol.Operation, result *protocol.BatchResult) {
	created := make(map[string]bool)

	resolve := func(addr string) (domain.NodeRef, error) {
		if strings.HasPrefix(addr, protocol.RefPrefix) {
			label := addr[len(protocol.RefPrefix):]
			if created[label] {
				return pseudoRef, nil
			}
			return "", fmt.Errorf("ref label %q does not name a node created earlier in this batch", label)
		}
		return domain.NodeRef(addr), nil
	}

	for _, op := range ops {
		err := e.validateOne(run, op, created, resolve)
		res := protocol.OperationResult{Op: op.Kind(), Ref: op.Label(), Success: err == nil}
		if err != nil {
			res.Error = protocol.SafeErrorMessage(err)
			result.Failed++
			result.Counters.Failed++
			result.Errors = append(result.Errors, res)
			result.Success = false
		} else {
			result.Completed++
			countSuccess(&result.Counters, op.Kind())
		}
		result.Results = append(result.Results, res)
	}
}

func (e *Engine) validateOne(run *batchRun, op protocol.Operation, created map[string]bool, resolve func(string) (domain.NodeRef, error)) error {
	f := run.factory
	g := run.graph
	desc := f.Descriptor()

	nodeExists := func(addr string) (domain.NodeRef, error) {
		ref, err := resolve(addr)
		if err != nil {
			return "", err
		}
		if ref == pseudoRef {
			return ref, nil
		}
		if _, err := f.FindNode(g, ref); err != nil {
			return "", err
		}
		return ref, nil
	}

	pinExists := func(addr protocol.PinAddress, dir domain.PinDirection) error {
		if addr.IsZero() {
			return &protocol.ValidationError{Key: "pin", Reason: "missing pin address"}
		}
		ref, err := nodeExists(addr.Node)
		if err != nil {
			return err
		}
		if ref == pseudoRef {
			return nil
		}
		node, err := f.FindNode(g, ref)
		if err != nil {
			return err
		}
		if dir == "" {
			dir = addr.Direction
		}
		var ok bool
		if dir != "" {
			_, ok = node.Pin(addr.Name, dir)
		} else {
			_, ok = node.FindPin(addr.Name)
		}
		if !ok {
			return fmt.Errorf("pin %q on node %q: %w", addr.Name, ref, domain.ErrPinNotFound)
		}
		return nil
	}

	switch v := op.(type) {
	case protocol.CreateNode:
		if v.NodeKind == "" {
			return &protocol.ValidationError{Key: "kind", Reason: "missing node kind"}
		}
		if !f.SupportsKind(v.NodeKind) {
			return fmt.Errorf("node kind %q is unknown in %s graphs", v.NodeKind, f.Kind())
		}
		if v.Ref != "" {
			created[v.Ref] = true
		}
		return nil

	case protocol.DeleteNode:
		_, err := nodeExists(v.Node)
		return err

	case protocol.SetEnabled:
		if !desc.Supports(domain.CapEnable) {
			return fmt.Errorf("set_enabled in %s graphs: %w", f.Kind(), domain.ErrUnsupported)
		}
		_, err := nodeExists(v.Node)
		return err

	case protocol.Reconstruct:
		if !desc.Supports(domain.CapReconstruct) {
			return fmt.Errorf("reconstruct in %s graphs: %w", f.Kind(), domain.ErrUnsupported)
		}
		_, err := nodeExists(v.Node)
		return err

	case protocol.ConnectPins:
		if !desc.Supports(domain.CapPins) {
			return fmt.Errorf("connect in %s graphs: %w", f.Kind(), domain.ErrUnsupported)
		}
		if err := pinExists(v.From, domain.PinOut); err != nil {
			return err
		}
		return pinExists(v.To, domain.PinIn)

	case protocol.DisconnectPins:
		if !desc.Supports(domain.CapPins) {
			return fmt.Errorf("disconnect in %s graphs: %w", f.Kind(), domain.ErrUnsupported)
		}
		if err := pinExists(v.From, ""); err != nil {
			return err
		}
		if !v.To.IsZero() {
			return pinExists(v.To, "")
		}
		return nil

	case protocol.SetPinValue:
		if !desc.Supports(domain.CapValues) {
			return fmt.Errorf("pin values in %s graphs: %w", f.Kind(), domain.ErrUnsupported)
		}
		return pinExists(v.Pin, "")

	case protocol.BreakAllLinks:
		if !desc.Supports(domain.CapPins) {
			return fmt.Errorf("break links in %s graphs: %w", f.Kind(), domain.ErrUnsupported)
		}
		_, err := nodeExists(v.Node)
		return err
	}

	return fmt.Errorf("unhandled operation %q", op.Kind())
}
