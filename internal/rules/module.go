package rules

import (
	"strings"

	"markscan/internal/tsast"
	t "markscan/internal/types"
)

// ImportsMonitoringPackage is the file-level pass: does any import
// declaration name the monitoring package.
func ImportsMonitoringPackage(f *tsast.File) bool {
	_, ok := f.ImportDeclaration(MonitoringPackage)
	return ok
}

// HasRootRegistration reports whether the decorator's imports array contains
// the root registration call. A nil decorator or a missing/non-array imports
// property is simply false.
func HasRootRegistration(dec *tsast.Decorator) bool {
	if dec == nil {
		return false
	}
	prop, ok := dec.Property(importsProperty)
	if !ok {
		return false
	}
	elems, ok := tsast.ArrayElements(prop.Initializer)
	if !ok {
		return false
	}
	for _, el := range elems {
		if el.Kind() == tsast.KindCall && el.Text() == RootRegistrationCall {
			return true
		}
	}
	return false
}

// HasRouterStart reports whether some constructor of cls takes a routing
// service and calls start in an expression statement.
func HasRouterStart(cls *tsast.Class) bool {
	if cls == nil {
		return false
	}
	for _, ctor := range cls.Constructors {
		if acceptsRoutingService(ctor) && callsStart(ctor) {
			return true
		}
	}
	return false
}

func acceptsRoutingService(ctor tsast.Constructor) bool {
	for _, p := range ctor.Params {
		if strings.Contains(p.TypeText, RoutingServiceType) {
			return true
		}
	}
	return false
}

func callsStart(ctor tsast.Constructor) bool {
	for _, st := range ctor.Body {
		if st.Kind == tsast.StatementExpression && strings.Contains(st.Text, StartCallText) {
			return true
		}
	}
	return false
}

// moduleFacts accumulates per-file module flags. Flags only move from false
// to true.
type moduleFacts struct {
	decorated    bool
	name         string
	imports      bool
	rootRegister bool
	routerStart  bool
}

func (m *moduleFacts) complete() bool {
	return m.imports && m.rootRegister && m.routerStart
}

// EvaluateModule applies the module rules to a parsed file. It returns false
// when no class in the file carries the module decorator.
//
// Router wiring is checked on every class, not only the decorated one, since
// it usually lives in a root component next to the module.
func EvaluateModule(path string, f *tsast.File) (t.ModuleRecord, bool) {
	facts := moduleFacts{imports: ImportsMonitoringPackage(f)}

	for _, cls := range ListClasses(f) {
		dec, found := FindDecorator(cls, ModuleDecoratorName)
		if found && !facts.decorated {
			facts.decorated = true
			facts.name = cls.Name
		}
		if !facts.rootRegister && HasRootRegistration(dec) {
			facts.rootRegister = true
		}
		if !facts.routerStart && HasRouterStart(cls) {
			facts.routerStart = true
		}
		if facts.complete() {
			break
		}
	}

	if !facts.decorated {
		return t.ModuleRecord{}, false
	}
	return t.ModuleRecord{
		ModuleName:               facts.name,
		FilePath:                 path,
		ImportsMonitoringPackage: facts.imports,
		HasRootRegistration:      facts.rootRegister,
		HasRouterStart:           facts.routerStart,
	}, true
}
