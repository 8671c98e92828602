package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsMarkers(t *testing.T) {
	assert.True(t, ContainsModuleMarker("@NgModule({})\nexport class A {}"))
	assert.False(t, ContainsModuleMarker("@ngmodule"))
	assert.True(t, ContainsComponentMarker("@Component({selector: 'x'})"))
	assert.False(t, ContainsComponentMarker("Component"))
	assert.False(t, ContainsModuleMarker(""))
}

func TestIsMarked(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		want   bool
	}{
		{"both", `<div mezzurite component-title="home"></div>`, true},
		{"tracking only", `<div mezzurite></div>`, false},
		{"title only", `<div component-title="home"></div>`, false},
		{"neither", `<div></div>`, false},
		{"empty", "", false},
		{"case sensitive", `<div Mezzurite Component-Title="x"></div>`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsMarked(tc.markup))
		})
	}
}

func TestTemplateFileName(t *testing.T) {
	assert.Equal(t, "x.html", TemplateFileName("./views/x.html"))
	assert.Equal(t, "x.html", TemplateFileName(`.\views\x.html`))
	assert.Equal(t, "x.html", TemplateFileName("x.html"))
	assert.Equal(t, "", TemplateFileName("views/"))
}
