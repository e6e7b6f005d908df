package cli

import (
	"testing"

	"github.com/matzehuels/docdiagrams/pkg/render"
)

func TestDiagnosticsTitle(t *testing.T) {
	one := render.NewTally()
	one.Add(render.ReasonSyntax)

	several := render.NewTally()
	several.Add(render.ReasonSyntax)
	several.Add(render.ReasonParentheses)
	several.Add(render.ReasonConnection)

	tests := []struct {
		name  string
		tally render.Tally
		want  string
	}{
		{"single failure", one, "Diagnostics (1 failure)"},
		{"across reasons", several, "Diagnostics (3 failures)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := diagnosticsTitle(tt.tally); got != tt.want {
				t.Errorf("diagnosticsTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
