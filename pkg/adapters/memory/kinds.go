package memory

import "github.com/rigwire/rigwire/pkg/domain"

// pinSpec declares one default pin carried by a node kind.
type pinSpec struct {
	Name string
	Dir  domain.PinDirection
	Type string // value type tag; empty means untyped
	Def  any    // default value, nil when the pin carries none
}

// kindSpec declares a node kind available in a graph domain.
type kindSpec struct {
	Pins []pinSpec
	// Protected nodes cannot be deleted or rebuilt (e.g. a shading
	// graph's final output node).
	Protected bool
	// SubKinds are dependent default sub-objects created alongside the
	// node and removed with it.
	SubKinds []string
}

// catalogs maps each graph domain to its node kinds. The layout domain is a
// widget tree: its nodes carry no pins at all.
var catalogs = map[domain.GraphKind]map[string]kindSpec{
	domain.KindLogic: {
		"event": {Pins: []pinSpec{
			{Name: "exec", Dir: domain.PinOut, Type: "exec"},
		}},
		"branch": {Pins: []pinSpec{
			{Name: "exec", Dir: domain.PinIn, Type: "exec"},
			{Name: "condition", Dir: domain.PinIn, Type: "bool", Def: false},
			{Name: "true", Dir: domain.PinOut, Type: "exec"},
			{Name: "false", Dir: domain.PinOut, Type: "exec"},
		}},
		"sequence": {Pins: []pinSpec{
			{Name: "exec", Dir: domain.PinIn, Type: "exec"},
			{Name: "then_0", Dir: domain.PinOut, Type: "exec"},
			{Name: "then_1", Dir: domain.PinOut, Type: "exec"},
		}},
		"function_call": {Pins: []pinSpec{
			{Name: "exec", Dir: domain.PinIn, Type: "exec"},
			{Name: "target", Dir: domain.PinIn, Type: "object"},
			{Name: "exec_out", Dir: domain.PinOut, Type: "exec"},
			{Name: "result", Dir: domain.PinOut, Type: "value"},
		}},
		"variable_get": {Pins: []pinSpec{
			{Name: "value", Dir: domain.PinOut, Type: "value"},
		}},
		"variable_set": {Pins: []pinSpec{
			{Name: "exec", Dir: domain.PinIn, Type: "exec"},
			{Name: "value", Dir: domain.PinIn, Type: "value"},
			{Name: "exec_out", Dir: domain.PinOut, Type: "exec"},
		}},
	},
	domain.KindShading: {
		"output": {Protected: true, Pins: []pinSpec{
			{Name: "base_color", Dir: domain.PinIn, Type: "color"},
			{Name: "roughness", Dir: domain.PinIn, Type: "scalar", Def: 0.5},
		}},
		"texture_sample": {Pins: []pinSpec{
			{Name: "uv", Dir: domain.PinIn, Type: "vector"},
			{Name: "rgb", Dir: domain.PinOut, Type: "color"},
			{Name: "a", Dir: domain.PinOut, Type: "scalar"},
		}},
		"constant": {Pins: []pinSpec{
			{Name: "value", Dir: domain.PinOut, Type: "scalar"},
		}},
		"multiply": {Pins: []pinSpec{
			{Name: "a", Dir: domain.PinIn, Type: "scalar", Def: 0.0},
			{Name: "b", Dir: domain.PinIn, Type: "scalar", Def: 1.0},
			{Name: "result", Dir: domain.PinOut, Type: "scalar"},
		}},
		"add": {Pins: []pinSpec{
			{Name: "a", Dir: domain.PinIn, Type: "scalar", Def: 0.0},
			{Name: "b", Dir: domain.PinIn, Type: "scalar", Def: 0.0},
			{Name: "result", Dir: domain.PinOut, Type: "scalar"},
		}},
	},
	domain.KindMotion: {
		"entry": {Protected: true, Pins: []pinSpec{
			{Name: "out", Dir: domain.PinOut, Type: "pose"},
		}},
		"state": {Pins: []pinSpec{
			{Name: "in", Dir: domain.PinIn, Type: "pose"},
			{Name: "out", Dir: domain.PinOut, Type: "pose"},
		}},
		"clip": {Pins: []pinSpec{
			{Name: "out", Dir: domain.PinOut, Type: "pose"},
		}},
		"blend": {Pins: []pinSpec{
			{Name: "a", Dir: domain.PinIn, Type: "pose"},
			{Name: "b", Dir: domain.PinIn, Type: "pose"},
			{Name: "alpha", Dir: domain.PinIn, Type: "scalar", Def: 0.5},
			{Name: "out", Dir: domain.PinOut, Type: "pose"},
		}},
	},
	domain.KindLayout: {
		"panel":  {},
		"text":   {},
		"button": {},
		"image":  {},
	},
	domain.KindEffect: {
		"emitter": {SubKinds: []string{"renderer"}, Pins: []pinSpec{
			{Name: "spawn_rate", Dir: domain.PinIn, Type: "scalar", Def: 10.0},
			{Name: "particles", Dir: domain.PinOut, Type: "particles"},
		}},
		"renderer": {Pins: []pinSpec{
			{Name: "particles", Dir: domain.PinIn, Type: "particles"},
		}},
		"velocity": {Pins: []pinSpec{
			{Name: "particles", Dir: domain.PinIn, Type: "particles"},
			{Name: "out", Dir: domain.PinOut, Type: "particles"},
		}},
		"color_over_life": {Pins: []pinSpec{
			{Name: "particles", Dir: domain.PinIn, Type: "particles"},
			{Name: "out", Dir: domain.PinOut, Type: "particles"},
		}},
	},
}

// capabilities per domain. Layout trees have no pins and carry no values.
var capabilities = map[domain.GraphKind][]string{
	domain.KindLogic:   {domain.CapPins, domain.CapEnable, domain.CapReconstruct, domain.CapValues},
	domain.KindShading: {domain.CapPins, domain.CapEnable, domain.CapReconstruct, domain.CapValues},
	domain.KindMotion:  {domain.CapPins, domain.CapEnable, domain.CapReconstruct, domain.CapValues},
	domain.KindLayout:  {domain.CapEnable},
	domain.KindEffect:  {domain.CapPins, domain.CapEnable, domain.CapReconstruct, domain.CapValues},
}
