package rules

import (
	"context"

	"markscan/internal/tsast"
)

func str(v string) *tsast.StringLiteral {
	return &tsast.StringLiteral{Value: v, Raw: "'" + v + "'"}
}

func call(text string) *tsast.CallExpr {
	return &tsast.CallExpr{Raw: text}
}

func ident(text string) *tsast.OtherExpr {
	return &tsast.OtherExpr{NodeType: "identifier", Raw: text}
}

func arr(elems ...tsast.Expr) *tsast.ArrayLiteral {
	return &tsast.ArrayLiteral{Elements: elems}
}

func obj(props ...tsast.Property) *tsast.ObjectLiteral {
	return &tsast.ObjectLiteral{Properties: props}
}

func prop(name string, init tsast.Expr) tsast.Property {
	return tsast.Property{Name: name, Initializer: init}
}

func decorator(name string, args ...tsast.Expr) tsast.Decorator {
	return tsast.Decorator{Name: name, Arguments: args}
}

func routerCtor(typeText, stmt string) tsast.Constructor {
	return tsast.Constructor{
		Params: []tsast.Param{{Name: "router", TypeText: typeText}},
		Body:   []tsast.Statement{{Kind: tsast.StatementExpression, Text: stmt}},
	}
}

// fakeTemplates resolves names from a map and counts lookups.
type fakeTemplates struct {
	files   map[string]string
	lookups []string
}

func (f *fakeTemplates) LookupTemplate(_ context.Context, name string) (Template, bool) {
	f.lookups = append(f.lookups, name)
	text, ok := f.files[name]
	if !ok {
		return Template{}, false
	}
	return Template{Path: "src/" + name, Text: text}, true
}
