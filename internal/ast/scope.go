package ast

// Local is a parameter or local variable visible in a function body.
type Local struct {
	Name     string
	Type     Type
	Constant bool
	Param    bool
}

// Scope is the ordered table of locals of one function body. It is what
// tells a local variable apart from a property of the receiver.
type Scope struct {
	Locals []Local
}

// NewScope seeds a scope from the function parameters.
func NewScope(params []*Param) *Scope {
	s := &Scope{Locals: make([]Local, 0, len(params))}
	for _, p := range params {
		s.Locals = append(s.Locals, Local{Name: p.Name, Type: p.Type, Param: true})
	}
	return s
}

// Declare adds a local unless one with the same name already exists.
func (s *Scope) Declare(l Local) {
	if s == nil || s.Contains(l.Name) {
		return
	}
	s.Locals = append(s.Locals, l)
}

// Contains reports whether name is a parameter or local.
func (s *Scope) Contains(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Lookup returns the local named name.
func (s *Scope) Lookup(name string) (Local, bool) {
	if s == nil {
		return Local{}, false
	}
	for _, l := range s.Locals {
		if l.Name == name {
			return l, true
		}
	}
	return Local{}, false
}

// Clone returns an independent copy.
func (s *Scope) Clone() *Scope {
	if s == nil {
		return nil
	}
	out := &Scope{Locals: make([]Local, len(s.Locals))}
	for i, l := range s.Locals {
		l.Type = l.Type.clone()
		out.Locals[i] = l
	}
	return out
}
