package env

import (
	"slices"

	"flintc/internal/ast"
)

// MatchKind tells what a call site resolved to.
type MatchKind uint8

const (
	MatchFailed MatchKind = iota
	MatchFunction
	MatchInitializer
	MatchEvent
)

func (k MatchKind) String() string {
	switch k {
	case MatchFunction:
		return "function"
	case MatchInitializer:
		return "initializer"
	case MatchEvent:
		return "event"
	}
	return "failed"
}

// CallMatch is the outcome of MatchCall. On failure Candidates lists the
// same-named functions that were rejected.
type CallMatch struct {
	Kind       MatchKind
	Function   *FunctionInformation
	Event      *EventInformation
	Candidates []*FunctionInformation
}

// Params returns the declared parameters of the matched callee. The
// implicit initializer of a struct without one has none.
func (m CallMatch) Params() []*ast.Param {
	switch m.Kind {
	case MatchFunction, MatchInitializer:
		if m.Function == nil {
			return nil
		}
		return m.Function.Decl.Params
	case MatchEvent:
		return m.Event.Decl.Params
	}
	return nil
}

// CallContext is where a call appears.
type CallContext struct {
	Enclosing         string
	Scope             *ast.Scope
	CallerProtections []string
	TypeStates        []string
}

// MatchCall resolves a call. Events are tried first, then initializers of the
// type the call names, then functions of the enclosing type and the defaults
// it inherits from traits.
func (e *Environment) MatchCall(call ast.CallData, cc CallContext) CallMatch {
	ti, hasOwner := e.types[cc.Enclosing]
	if hasOwner {
		if ev, ok := ti.Events[call.Name]; ok && e.argsFit(call.Args, ev.Decl.Params, cc) {
			return CallMatch{Kind: MatchEvent, Event: ev}
		}
	}
	if target, ok := e.types[call.Name]; ok {
		for _, fi := range target.Initializers {
			if e.argsFit(call.Args, fi.Decl.Params, cc) {
				return CallMatch{Kind: MatchInitializer, Function: fi}
			}
		}
		if target.Kind == KindStruct && len(target.Initializers) == 0 && len(call.Args) == 0 {
			return CallMatch{Kind: MatchInitializer}
		}
	}
	if !hasOwner {
		return CallMatch{Kind: MatchFailed}
	}

	candidates := slices.Clone(ti.Functions[call.Name])
	for _, fi := range e.ConformingFunctions(cc.Enclosing) {
		if fi.Decl.Name == call.Name {
			candidates = append(candidates, fi)
		}
	}
	for _, fi := range candidates {
		if !e.argsFit(call.Args, fi.Decl.Params, cc) {
			continue
		}
		if !CallerProtectionsCompatible(cc.CallerProtections, fi.CallerProtections) {
			continue
		}
		if !TypeStatesCompatible(cc.TypeStates, fi.TypeStates) {
			continue
		}
		return CallMatch{Kind: MatchFunction, Function: fi}
	}
	return CallMatch{Kind: MatchFailed, Candidates: candidates}
}

// argsFit checks a call's arguments against declared parameters. Positional
// arguments bind left to right; labeled arguments must name a parameter. All
// parameters without a default must be supplied.
func (e *Environment) argsFit(args []ast.Arg, params []*ast.Param, cc CallContext) bool {
	if len(args) > len(params) {
		return false
	}
	bound := make([]bool, len(params))
	pos := 0
	for _, a := range args {
		idx := -1
		if a.Label == "" {
			for pos < len(params) && bound[pos] {
				pos++
			}
			idx = pos
		} else {
			idx = slices.IndexFunc(params, func(p *ast.Param) bool { return p.Name == a.Label })
		}
		if idx < 0 || idx >= len(params) || bound[idx] {
			return false
		}
		bound[idx] = true
		want := params[idx].Type.ReplaceSelf(cc.Enclosing).Deref()
		got := e.TypeOf(a.Value, cc.Enclosing, cc.Scope).Deref()
		if !typesCompatible(got, want) {
			return false
		}
	}
	for i, p := range params {
		if !bound[i] && p.Default == nil {
			return false
		}
	}
	return true
}

func typesCompatible(got, want ast.Type) bool {
	if got.Kind == ast.TypeAny || want.Kind == ast.TypeAny {
		return true
	}
	if got.IsCollection() && want.IsCollection() && got.Kind == want.Kind {
		if got.Kind == ast.TypeDict && !typesCompatible(*got.Key, *want.Key) {
			return false
		}
		if got.Kind == ast.TypeFixedArray && got.Size != want.Size {
			return false
		}
		return typesCompatible(*got.Elem, *want.Elem)
	}
	return got.Equal(want)
}

// CallerProtectionsCompatible reports whether code running under source may
// call a function guarded by target: every source protection has to be
// covered by some target protection, and "any" covers everything.
func CallerProtectionsCompatible(source, target []string) bool {
	return covered(source, target)
}

// TypeStatesCompatible applies the same rule to type-states.
func TypeStatesCompatible(source, target []string) bool {
	return covered(source, target)
}

func covered(source, target []string) bool {
	if len(target) == 0 || slices.Contains(target, "any") {
		return true
	}
	for _, s := range source {
		if s == "any" {
			return false
		}
		if !slices.Contains(target, s) {
			return false
		}
	}
	return true
}
