// Package rules decides whether UI modules and components carry the
// Mezzurite monitoring convention.
//
// Everything here is a pure function over a parsed tsast.File, except
// EvaluateComponent which asks a TemplateSource for external markup.
package rules

// Tokens the rules match on. All comparisons are case-sensitive.
const (
	ModuleDecoratorToken    = "@NgModule"
	ComponentDecoratorToken = "@Component"

	ModuleDecoratorName    = "NgModule"
	ComponentDecoratorName = "Component"

	MonitoringPackage    = "@microsoft/mezzurite-angular"
	RoutingServiceType   = "RoutingService"
	StartCallText        = "start()"
	RootRegistrationCall = "AngularPerfModule.forRoot()"

	TrackingDirective = "mezzurite"
	TitleDirective    = "component-title"

	importsProperty     = "imports"
	templateProperty    = "template"
	templateURLProperty = "templateUrl"
)
