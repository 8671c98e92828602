package tsast

type ExprKind int

const (
	KindOther ExprKind = iota
	KindString
	KindArray
	KindCall
	KindObject
)

func (k ExprKind) String() string {
	switch k {
	case KindString:
		return "StringLiteral"
	case KindArray:
		return "ArrayLiteralExpression"
	case KindCall:
		return "CallExpression"
	case KindObject:
		return "ObjectLiteralExpression"
	default:
		return "Expression"
	}
}

// Expr is an initializer or argument expression. The concrete type is one of
// *StringLiteral, *ArrayLiteral, *CallExpr, *ObjectLiteral or *OtherExpr.
type Expr interface {
	Kind() ExprKind
	// Text is the exact source text of the expression.
	Text() string
}

// StringLiteral covers quoted strings and backtick templates.
type StringLiteral struct {
	// Value is the literal content without quotes or backticks. Escape
	// sequences in quoted strings are decoded; template bodies are raw.
	Value    string
	Raw      string
	Template bool
}

func (e *StringLiteral) Kind() ExprKind { return KindString }
func (e *StringLiteral) Text() string   { return e.Raw }

type ArrayLiteral struct {
	Elements []Expr
	Raw      string
}

func (e *ArrayLiteral) Kind() ExprKind { return KindArray }
func (e *ArrayLiteral) Text() string   { return e.Raw }

type CallExpr struct {
	// Callee is the text of the called expression, e.g. "AngularPerfModule.forRoot".
	Callee    string
	Arguments []Expr
	Raw       string
}

func (e *CallExpr) Kind() ExprKind { return KindCall }
func (e *CallExpr) Text() string   { return e.Raw }

type ObjectLiteral struct {
	Properties []Property
	Raw        string
}

func (e *ObjectLiteral) Kind() ExprKind { return KindObject }
func (e *ObjectLiteral) Text() string   { return e.Raw }

// Property returns the first property with the given name.
func (e *ObjectLiteral) Property(name string) (Property, bool) {
	if e == nil {
		return Property{}, false
	}
	for _, p := range e.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// OtherExpr is any expression the rules do not look inside
// (identifiers, member accesses, arrows, numbers...).
type OtherExpr struct {
	NodeType string
	Raw      string
}

func (e *OtherExpr) Kind() ExprKind { return KindOther }
func (e *OtherExpr) Text() string   { return e.Raw }

// StringValue returns the literal value of e when it is a string literal.
func StringValue(e Expr) (string, bool) {
	s, ok := e.(*StringLiteral)
	if !ok || s == nil {
		return "", false
	}
	return s.Value, true
}

// ArrayElements returns the elements of e when it is an array literal.
func ArrayElements(e Expr) ([]Expr, bool) {
	a, ok := e.(*ArrayLiteral)
	if !ok || a == nil {
		return nil, false
	}
	return a.Elements, true
}
