package tsast

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// DefaultMaxFileSize bounds the input accepted by TreeSitterParser.
const DefaultMaxFileSize int64 = 4 << 20

var (
	// ErrSyntax is returned when the parsed tree contains error nodes.
	ErrSyntax         = errors.New("tsast: source contains syntax errors")
	ErrFileTooLarge   = errors.New("tsast: file too large")
	ErrInvalidContent = errors.New("tsast: content is not valid UTF-8")
)

// Parser turns source bytes into a File.
type Parser interface {
	Parse(ctx context.Context, path string, src []byte) (*File, error)
}

// TreeSitterParser parses TypeScript with tree-sitter. A new tree-sitter
// parser is created per call, so one TreeSitterParser can be shared across
// goroutines.
type TreeSitterParser struct {
	MaxFileSize int64
}

func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{MaxFileSize: DefaultMaxFileSize}
}

func (p *TreeSitterParser) Parse(ctx context.Context, path string, src []byte) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := p.MaxFileSize
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}
	if int64(len(src)) > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, len(src), limit)
	}
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidContent, path)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if strings.HasSuffix(strings.ToLower(path), ".tsx") {
		parser.SetLanguage(tsx.GetLanguage())
	} else {
		parser.SetLanguage(typescript.GetLanguage())
	}
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter parse %s: empty tree", path)
	}
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, path)
	}

	b := builder{src: src}
	return b.file(path, root), nil
}

// builder copies what the rules need out of the tree-sitter tree, so the
// returned File stays valid after the tree is closed.
type builder struct {
	src []byte
}

func (b *builder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.src)
}

func (b *builder) file(path string, root *sitter.Node) *File {
	f := &File{Path: path}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			if s, ok := b.importSpecifier(child); ok {
				f.Imports = append(f.Imports, Import{Specifier: s})
			}
		case "export_statement":
			if cls := b.exportedClass(child); cls != nil {
				f.Classes = append(f.Classes, cls)
			}
		case "class_declaration", "abstract_class_declaration":
			f.Classes = append(f.Classes, b.class(child, nil))
		}
	}
	return f
}

func (b *builder) importSpecifier(n *sitter.Node) (string, bool) {
	source := n.ChildByFieldName("source")
	if source == nil {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c.Type() == "string" {
				source = c
				break
			}
		}
	}
	if source == nil {
		return "", false
	}
	return decodeEscapes(unquote(b.text(source))), true
}

// exportedClass handles `@Dec() export class X {}` where the decorators hang
// off the export statement rather than the class.
func (b *builder) exportedClass(n *sitter.Node) *Class {
	var decorators []Decorator
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "decorator":
			decorators = append(decorators, b.decorator(child))
		case "class_declaration", "abstract_class_declaration", "class":
			if child.Type() == "class" && child.ChildByFieldName("name") == nil {
				return nil
			}
			return b.class(child, decorators)
		}
	}
	return nil
}

func (b *builder) class(n *sitter.Node, outer []Decorator) *Class {
	cls := &Class{Name: b.text(n.ChildByFieldName("name"))}
	cls.Decorators = append(cls.Decorators, outer...)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == "decorator" {
			cls.Decorators = append(cls.Decorators, b.decorator(child))
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		cls.Constructors = b.constructors(body)
	}
	return cls
}

func (b *builder) decorator(n *sitter.Node) Decorator {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "identifier":
			return Decorator{Name: b.text(child)}
		case "member_expression":
			return Decorator{Name: b.memberName(child)}
		case "call_expression":
			d := Decorator{Name: b.memberName(child.ChildByFieldName("function"))}
			d.Arguments = b.arguments(child.ChildByFieldName("arguments"))
			return d
		}
	}
	return Decorator{}
}

// memberName reduces `ng.Component` to `Component`; identifiers pass through.
func (b *builder) memberName(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	if n.Type() == "member_expression" {
		if prop := n.ChildByFieldName("property"); prop != nil {
			return b.text(prop)
		}
	}
	return b.text(n)
}

func (b *builder) arguments(n *sitter.Node) []Expr {
	if n == nil {
		return nil
	}
	var out []Expr
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, b.expr(child))
	}
	return out
}

func (b *builder) expr(n *sitter.Node) Expr {
	raw := b.text(n)
	switch n.Type() {
	case "string":
		return &StringLiteral{Value: decodeEscapes(unquote(raw)), Raw: raw}
	case "template_string":
		return &StringLiteral{Value: unquote(raw), Raw: raw, Template: true}
	case "array":
		return &ArrayLiteral{Elements: b.arguments(n), Raw: raw}
	case "call_expression":
		return &CallExpr{
			Callee:    b.text(n.ChildByFieldName("function")),
			Arguments: b.arguments(n.ChildByFieldName("arguments")),
			Raw:       raw,
		}
	case "object":
		return &ObjectLiteral{Properties: b.properties(n), Raw: raw}
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return b.expr(n.NamedChild(0))
		}
	}
	return &OtherExpr{NodeType: n.Type(), Raw: raw}
}

func (b *builder) properties(n *sitter.Node) []Property {
	var props []Property
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "pair":
			key := child.ChildByFieldName("key")
			value := child.ChildByFieldName("value")
			if key == nil || value == nil {
				continue
			}
			name := b.text(key)
			if key.Type() == "string" {
				name = decodeEscapes(unquote(name))
			}
			props = append(props, Property{Name: name, Initializer: b.expr(value)})
		case "shorthand_property_identifier":
			name := b.text(child)
			props = append(props, Property{Name: name, Initializer: &OtherExpr{NodeType: "identifier", Raw: name}})
		}
	}
	return props
}

func (b *builder) constructors(body *sitter.Node) []Constructor {
	var out []Constructor
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() != "method_definition" {
			continue
		}
		if b.text(member.ChildByFieldName("name")) != "constructor" {
			continue
		}
		out = append(out, Constructor{
			Params: b.params(member.ChildByFieldName("parameters")),
			Body:   b.statements(member.ChildByFieldName("body")),
		})
	}
	return out
}

func (b *builder) params(n *sitter.Node) []Param {
	if n == nil {
		return nil
	}
	var out []Param
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "required_parameter", "optional_parameter":
		default:
			continue
		}
		typeText := b.text(child.ChildByFieldName("type"))
		typeText = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(typeText), ":"))
		out = append(out, Param{
			Name:     b.text(child.ChildByFieldName("pattern")),
			TypeText: typeText,
		})
	}
	return out
}

func (b *builder) statements(block *sitter.Node) []Statement {
	if block == nil {
		return nil
	}
	var out []Statement
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		kind := StatementOther
		switch child.Type() {
		case "comment":
			continue
		case "expression_statement":
			kind = StatementExpression
		}
		out = append(out, Statement{Kind: kind, Text: b.text(child)})
	}
	return out
}

// unquote strips one pair of matching quotes or backticks. Escape sequences
// are left as written.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	first, last := raw[0], raw[len(raw)-1]
	if first == last && (first == '"' || first == '\'' || first == '`') {
		return raw[1 : len(raw)-1]
	}
	return raw
}
