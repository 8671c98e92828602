package rules

import "strings"

// ContainsModuleMarker is a cheap pre-filter: false means the file cannot
// declare a module, true means it is worth parsing.
func ContainsModuleMarker(text string) bool {
	return strings.Contains(text, ModuleDecoratorToken)
}

// ContainsComponentMarker is the component counterpart of ContainsModuleMarker.
func ContainsComponentMarker(text string) bool {
	return strings.Contains(text, ComponentDecoratorToken)
}

// IsMarked reports whether markup carries both monitoring directives.
func IsMarked(markup string) bool {
	return markup != "" &&
		strings.Contains(markup, TrackingDirective) &&
		strings.Contains(markup, TitleDirective)
}
