package astio

// The document types are the interchange shape of a typed module. YAML
// fixtures and msgpack payloads share them; both codecs read the yaml tags.

// ModuleDoc is a whole module.
type ModuleDoc struct {
	Decls []DeclDoc `yaml:"decls"`
}

// DeclDoc holds exactly one declaration.
type DeclDoc struct {
	Contract *ContractDoc `yaml:"contract,omitempty"`
	Behavior *BehaviorDoc `yaml:"behavior,omitempty"`
	Struct   *StructDoc   `yaml:"struct,omitempty"`
	Trait    *TraitDoc    `yaml:"trait,omitempty"`
	Enum     *EnumDoc     `yaml:"enum,omitempty"`
	At       string       `yaml:"at,omitempty"`
}

type ContractDoc struct {
	Name         string        `yaml:"name"`
	Conformances []string      `yaml:"conformances,omitempty"`
	States       []string      `yaml:"states,omitempty"`
	Properties   []PropertyDoc `yaml:"properties,omitempty"`
	Events       []EventDoc    `yaml:"events,omitempty"`
}

type BehaviorDoc struct {
	Contract    string        `yaml:"contract"`
	States      []string      `yaml:"states,omitempty"`
	Caller      string        `yaml:"caller,omitempty"`
	Protections []string      `yaml:"protections,omitempty"`
	Functions   []FunctionDoc `yaml:"functions,omitempty"`
}

type StructDoc struct {
	Name         string        `yaml:"name"`
	Conformances []string      `yaml:"conformances,omitempty"`
	Properties   []PropertyDoc `yaml:"properties,omitempty"`
	Functions    []FunctionDoc `yaml:"functions,omitempty"`
}

type TraitDoc struct {
	Name      string        `yaml:"name"`
	Functions []FunctionDoc `yaml:"functions,omitempty"`
}

type EnumDoc struct {
	Name   string    `yaml:"name"`
	Hidden string    `yaml:"hidden"`
	Cases  []CaseDoc `yaml:"cases"`
}

type CaseDoc struct {
	Name  string   `yaml:"name"`
	Value *ExprDoc `yaml:"value,omitempty"`
	At    string   `yaml:"at,omitempty"`
}

type PropertyDoc struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Constant bool     `yaml:"const,omitempty"`
	Default  *ExprDoc `yaml:"default,omitempty"`
	At       string   `yaml:"at,omitempty"`
}

type EventDoc struct {
	Name   string     `yaml:"name"`
	Params []ParamDoc `yaml:"params,omitempty"`
	At     string     `yaml:"at,omitempty"`
}

type ParamDoc struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Default *ExprDoc `yaml:"default,omitempty"`
	At      string   `yaml:"at,omitempty"`
}

// FunctionDoc is a function; Kind is "init" or "fallback" for special members.
type FunctionDoc struct {
	Kind      string     `yaml:"kind,omitempty"`
	Name      string     `yaml:"name,omitempty"`
	Public    bool       `yaml:"public,omitempty"`
	Mutating  bool       `yaml:"mutating,omitempty"`
	Signature bool       `yaml:"signature,omitempty"`
	Params    []ParamDoc `yaml:"params,omitempty"`
	Result    string     `yaml:"result,omitempty"`
	Pre       []ExprDoc  `yaml:"pre,omitempty"`
	Post      []ExprDoc  `yaml:"post,omitempty"`
	Body      []StmtDoc  `yaml:"body,omitempty"`
	At        string     `yaml:"at,omitempty"`
}

// StmtDoc holds exactly one statement.
type StmtDoc struct {
	Expr   *ExprDoc   `yaml:"expr,omitempty"`
	Return *ReturnDoc `yaml:"return,omitempty"`
	If     *IfDoc     `yaml:"if,omitempty"`
	For    *ForDoc    `yaml:"for,omitempty"`
	Become string     `yaml:"become,omitempty"`
	Emit   *ExprDoc   `yaml:"emit,omitempty"`
	At     string     `yaml:"at,omitempty"`
}

type ReturnDoc struct {
	Value *ExprDoc `yaml:"value,omitempty"`
}

type IfDoc struct {
	Cond ExprDoc   `yaml:"cond"`
	Then []StmtDoc `yaml:"then,omitempty"`
	Else []StmtDoc `yaml:"else,omitempty"`
}

type ForDoc struct {
	Var  string    `yaml:"var"`
	Type string    `yaml:"type,omitempty"`
	In   ExprDoc   `yaml:"in"`
	Body []StmtDoc `yaml:"body,omitempty"`
}

// ExprDoc holds exactly one expression form.
type ExprDoc struct {
	Ident     string        `yaml:"ident,omitempty"`
	Enclosing string        `yaml:"enclosing,omitempty"`
	Int       string        `yaml:"int,omitempty"`
	Bool      *bool         `yaml:"bool,omitempty"`
	Str       *string       `yaml:"str,omitempty"`
	Addr      string        `yaml:"addr,omitempty"`
	Decimal   string        `yaml:"decimal,omitempty"`
	Self      bool          `yaml:"self,omitempty"`
	Op        string        `yaml:"op,omitempty"`
	Lhs       *ExprDoc      `yaml:"lhs,omitempty"`
	Rhs       *ExprDoc      `yaml:"rhs,omitempty"`
	Group     *ExprDoc      `yaml:"group,omitempty"`
	Call      string        `yaml:"call,omitempty"`
	Args      []ArgDoc      `yaml:"args,omitempty"`
	Subscript *SubscriptDoc `yaml:"subscript,omitempty"`
	Let       *LetDoc       `yaml:"let,omitempty"`
	Range     *RangeDoc     `yaml:"range,omitempty"`
	Array     []ExprDoc     `yaml:"array,omitempty"`
	Dict      []EntryDoc    `yaml:"dict,omitempty"`
	Inout     *ExprDoc      `yaml:"inout,omitempty"`
	Not       *ExprDoc      `yaml:"not,omitempty"`
	Type      string        `yaml:"type,omitempty"`
	At        string        `yaml:"at,omitempty"`
}

type ArgDoc struct {
	Label string  `yaml:"label,omitempty"`
	Value ExprDoc `yaml:"value"`
}

type SubscriptDoc struct {
	Base  ExprDoc `yaml:"base"`
	Index ExprDoc `yaml:"index"`
}

type LetDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Constant bool   `yaml:"const,omitempty"`
}

type RangeDoc struct {
	Start    ExprDoc `yaml:"start"`
	End      ExprDoc `yaml:"end"`
	HalfOpen bool    `yaml:"halfOpen,omitempty"`
}

type EntryDoc struct {
	Key   ExprDoc `yaml:"key"`
	Value ExprDoc `yaml:"value"`
}
