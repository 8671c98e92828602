package rules

import (
	"context"
	"strings"

	"markscan/internal/tsast"
	t "markscan/internal/types"
)

// Template is external markup resolved from the workspace.
type Template struct {
	Path string
	Text string
}

// TemplateSource resolves a bare template file name anywhere in the
// workspace. ok is false when the file is not found or cannot be read;
// callers treat that as "not marked" rather than as an error.
type TemplateSource interface {
	LookupTemplate(ctx context.Context, fileName string) (tpl Template, ok bool)
}

// TemplateFileName returns the part of a templateUrl after the last forward
// or back slash.
func TemplateFileName(templateURL string) string {
	idx := strings.LastIndexAny(templateURL, `/\`)
	return templateURL[idx+1:]
}

// literalProperty returns the string value of a decorator property, or false
// when the property is absent, not a string literal, or empty.
func literalProperty(dec *tsast.Decorator, name string) (string, bool) {
	prop, ok := dec.Property(name)
	if !ok {
		return "", false
	}
	v, ok := tsast.StringValue(prop.Initializer)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// externalTemplate holds the outcome of the templateUrl check.
type externalTemplate struct {
	url          string
	resolvedName string
	marked       bool
}

func checkTemplateURL(ctx context.Context, dec *tsast.Decorator, src TemplateSource) (externalTemplate, bool) {
	url, ok := literalProperty(dec, templateURLProperty)
	if !ok {
		return externalTemplate{}, false
	}
	out := externalTemplate{url: url}
	if src == nil {
		return out, true
	}
	name := TemplateFileName(url)
	tpl, found := src.LookupTemplate(ctx, name)
	if found && IsMarked(tpl.Text) {
		out.marked = true
		out.resolvedName = name
	}
	return out, true
}

// checkInlineTemplate returns whether an inline template is present and
// whether it is marked.
func checkInlineTemplate(dec *tsast.Decorator) (present, marked bool) {
	markup, ok := literalProperty(dec, templateProperty)
	if !ok {
		return false, false
	}
	return true, IsMarked(markup)
}

// EvaluateComponent applies the component rules to the first class in f
// carrying the component decorator. Later decorated classes in the same file
// are ignored. It returns false when no class is decorated.
func EvaluateComponent(ctx context.Context, path string, f *tsast.File, src TemplateSource) (t.ComponentRecord, bool) {
	for _, cls := range ListClasses(f) {
		dec, found := FindDecorator(cls, ComponentDecoratorName)
		if !found {
			continue
		}
		rec := t.ComponentRecord{
			ComponentName: cls.Name,
			FilePath:      path,
		}
		if ext, ok := checkTemplateURL(ctx, dec, src); ok {
			rec.TemplateURL = ext.url
			if ext.marked {
				rec.Status = t.Marked
				rec.ResolvedHTMLFileName = ext.resolvedName
			}
		}
		if present, marked := checkInlineTemplate(dec); present {
			rec.InlineTemplatePresent = true
			if marked {
				rec.Status = t.Marked
			}
		}
		return rec, true
	}
	return t.ComponentRecord{}, false
}
