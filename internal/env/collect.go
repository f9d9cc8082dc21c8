package env

import (
	"fmt"
	"math/big"

	"flintc/internal/ast"
	"flintc/internal/diag"
)

// Collect builds the environment from the declarations of mod. It also seeds
// every function scope with its parameters (and the caller binding of its
// behavior block) and synthesizes missing Int enum values.
func Collect(mod *ast.Module, r diag.Reporter) *Environment {
	e := New()

	for _, d := range mod.Decls {
		switch data := d.Data.(type) {
		case ast.ContractData:
			ti := newTypeInformation(data.Name, KindContract, d.Span)
			ti.Conformances = data.Conformances
			ti.States = data.States
			addProperties(ti, data.Properties, r)
			for _, ev := range data.Events {
				ti.Events[ev.Name] = &EventInformation{Decl: ev}
			}
			declareType(e, ti, r)
		case ast.StructData:
			ti := newTypeInformation(data.Name, KindStruct, d.Span)
			ti.Conformances = data.Conformances
			addProperties(ti, data.Properties, r)
			declareType(e, ti, r)
		case ast.TraitData:
			declareType(e, newTypeInformation(data.Name, KindTrait, d.Span), r)
		case ast.EnumData:
			ti := newTypeInformation(data.Name, KindEnum, d.Span)
			ti.Hidden = data.Hidden
			synthesizeEnumValues(&data, r)
			d.Data = data
			for _, c := range data.Cases {
				if _, dup := ti.CaseValues[c.Name]; dup {
					diag.ReportError(r, diag.EnvDuplicateCase, c.Span,
						fmt.Sprintf("enum %s declares case %s twice", data.Name, c.Name)).Emit()
					continue
				}
				ti.Cases = append(ti.Cases, c.Name)
				ti.CaseValues[c.Name] = c.Value
			}
			declareType(e, ti, r)
		}
	}

	for _, d := range mod.Decls {
		switch data := d.Data.(type) {
		case ast.BehaviorData:
			if !e.IsContract(data.Contract) {
				diag.ReportError(r, diag.EnvUnknownContract, d.Span,
					fmt.Sprintf("behavior block for unknown contract %s", data.Contract)).Emit()
				continue
			}
			for _, fn := range data.Members {
				seedScope(fn, data.CallerBinding)
				e.AddFunction(&FunctionInformation{
					Decl:              fn,
					Owner:             data.Contract,
					CallerProtections: data.CallerProtections,
					CallerBinding:     data.CallerBinding,
					TypeStates:        data.States,
					Mutating:          fn.Mutating,
				})
			}
		case ast.StructData:
			addMembers(e, data.Name, data.Members)
		case ast.TraitData:
			addMembers(e, data.Name, data.Members)
		}
	}

	for _, ti := range e.Types() {
		for _, conf := range ti.Conformances {
			if !e.IsTrait(conf) {
				diag.ReportError(r, diag.EnvUnknownConformance, ti.Span,
					fmt.Sprintf("%s conforms to unknown trait %s", ti.Name, conf)).Emit()
			}
		}
		for _, p := range ti.OrderedProperties() {
			checkKnownType(e, p.Type, p, r)
		}
	}
	return e
}

func declareType(e *Environment, ti *TypeInformation, r diag.Reporter) {
	if !e.declare(ti) {
		diag.ReportError(r, diag.EnvDuplicateType, ti.Span,
			fmt.Sprintf("type %s is declared more than once", ti.Name)).Emit()
	}
}

func addProperties(ti *TypeInformation, props []*ast.Property, r diag.Reporter) {
	for _, p := range props {
		if _, dup := ti.PropertyInfo[p.Name]; dup {
			diag.ReportError(r, diag.EnvDuplicateProperty, p.Span,
				fmt.Sprintf("%s declares property %s twice", ti.Name, p.Name)).Emit()
			continue
		}
		ti.Properties = append(ti.Properties, p.Name)
		ti.PropertyInfo[p.Name] = &PropertyInformation{
			Name:       p.Name,
			Type:       p.Type,
			Constant:   p.Constant,
			HasDefault: p.Default != nil,
			Default:    p.Default,
			Span:       p.Span,
		}
	}
}

func addMembers(e *Environment, owner string, members []*ast.FunctionDecl) {
	for _, fn := range members {
		seedScope(fn, "")
		e.AddFunction(&FunctionInformation{
			Decl:          fn,
			Owner:         owner,
			Mutating:      fn.Mutating,
			SignatureOnly: fn.SignatureOnly || fn.Body == nil,
		})
	}
}

func seedScope(fn *ast.FunctionDecl, callerBinding string) {
	if fn.Scope == nil {
		fn.Scope = ast.NewScope(fn.Params)
	}
	if callerBinding != "" {
		fn.Scope.Declare(ast.Local{Name: callerBinding, Type: ast.AddressType(), Constant: true})
	}
}

func checkKnownType(e *Environment, t ast.Type, p *PropertyInformation, r diag.Reporter) {
	switch t.Kind {
	case ast.TypeNamed:
		if _, ok := e.Type(t.Name); !ok {
			diag.ReportError(r, diag.EnvUnknownType, p.Span,
				fmt.Sprintf("property %s has unknown type %s", p.Name, t.Name)).Emit()
		}
	case ast.TypeArray, ast.TypeFixedArray, ast.TypeInout, ast.TypeRange:
		checkKnownType(e, *t.Elem, p, r)
	case ast.TypeDict:
		checkKnownType(e, *t.Key, p, r)
		checkKnownType(e, *t.Elem, p, r)
	}
}

// synthesizeEnumValues numbers Int enum cases without an explicit value,
// continuing from the previous case.
func synthesizeEnumValues(data *ast.EnumData, r diag.Reporter) {
	if !data.Hidden.IsBasic(ast.BasicInt) {
		return
	}
	next := big.NewInt(0)
	for _, c := range data.Cases {
		if c.Value == nil {
			c.Value = ast.IntLit(next.String())
			next = new(big.Int).Add(next, big.NewInt(1))
			continue
		}
		lit, ok := c.Value.Data.(ast.LiteralData)
		if !ok || lit.Kind != ast.LiteralInt {
			diag.ReportError(r, diag.EnvBadEnumValue, c.Span,
				fmt.Sprintf("case %s.%s must have an integer literal value", data.Name, c.Name)).Emit()
			continue
		}
		v, ok := new(big.Int).SetString(lit.Text, 0)
		if !ok {
			diag.ReportError(r, diag.EnvBadEnumValue, c.Span,
				fmt.Sprintf("case %s.%s has malformed value %q", data.Name, c.Name, lit.Text)).Emit()
			continue
		}
		next = v.Add(v, big.NewInt(1))
	}
}
