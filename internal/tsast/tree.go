// Package tsast is a read-only, strongly typed view of the parts of a
// TypeScript source file that the marking rules look at: imports, top-level
// classes, their decorators and their constructors.
package tsast

// File is one parsed source file.
type File struct {
	Path    string
	Imports []Import
	// Classes holds top-level class declarations in source order.
	Classes []*Class
}

// Import is a single import declaration.
type Import struct {
	// Specifier is the module specifier without quotes, e.g. "@angular/core".
	Specifier string
}

// ImportDeclaration returns the first import whose specifier equals specifier.
func (f *File) ImportDeclaration(specifier string) (Import, bool) {
	if f == nil {
		return Import{}, false
	}
	for _, imp := range f.Imports {
		if imp.Specifier == specifier {
			return imp, true
		}
	}
	return Import{}, false
}

// Class is a class-like declaration (plain, exported or abstract).
type Class struct {
	Name         string
	Decorators   []Decorator
	Constructors []Constructor
}

// Decorator is an annotation such as @Component({...}).
// Arguments is empty for bare decorators (@Injectable).
type Decorator struct {
	Name      string
	Arguments []Expr
}

// Property returns the first property called name found in any object
// literal argument of the decorator.
func (d *Decorator) Property(name string) (Property, bool) {
	if d == nil {
		return Property{}, false
	}
	for _, arg := range d.Arguments {
		obj, ok := arg.(*ObjectLiteral)
		if !ok {
			continue
		}
		if p, ok := obj.Property(name); ok {
			return p, true
		}
	}
	return Property{}, false
}

// Property is a key/value pair of an object literal.
type Property struct {
	Name        string
	Initializer Expr
}

// Constructor is a class constructor.
type Constructor struct {
	Params []Param
	Body   []Statement
}

// Param is a constructor parameter. TypeText is the annotation text without
// the leading colon and is empty when the parameter is untyped.
type Param struct {
	Name     string
	TypeText string
}

type StatementKind int

const (
	StatementOther StatementKind = iota
	StatementExpression
)

func (k StatementKind) String() string {
	switch k {
	case StatementExpression:
		return "ExpressionStatement"
	default:
		return "Statement"
	}
}

// Statement is a body statement classified by kind and kept as text.
type Statement struct {
	Kind StatementKind
	Text string
}
