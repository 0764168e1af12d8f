package printer

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	bt "github.com/comalice/behaviortreex"
)

func newTestPrinter(t *testing.T) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var out, errOut bytes.Buffer
	return New(&out, &errOut), &out, &errOut
}

func TestSuccess(t *testing.T) {
	t.Run("adds checkmark prefix", func(t *testing.T) {
		p, out, _ := newTestPrinter(t)
		p.Success("Match finished\n")
		assert.Equal(t, "✓ Match finished\n", out.String())
	})

	t.Run("keeps existing checkmark", func(t *testing.T) {
		p, out, _ := newTestPrinter(t)
		p.Success("✓ done\n")
		assert.Equal(t, "✓ done\n", out.String())
	})
}

func TestWarningAndStep(t *testing.T) {
	p, out, _ := newTestPrinter(t)
	p.Warning("no winner\n")
	p.Step("ticking %d trees\n", 2)
	assert.Equal(t, "⚠️  no winner\n→ ticking 2 trees\n", out.String())
}

func TestStatus(t *testing.T) {
	p, _, _ := newTestPrinter(t)
	assert.Equal(t, "success", p.Status(bt.StatusSuccess))
	assert.Equal(t, "inactive", p.Status(bt.StatusInactive))
}

func TestError(t *testing.T) {
	t.Run("single suggestion", func(t *testing.T) {
		p, out, errOut := newTestPrinter(t)
		err := p.Error("config not found", "No tanksim.yml in the current directory.", []string{"Run with --config"})
		assert.EqualError(t, err, "config not found")
		assert.Empty(t, out.String())
		assert.Equal(t, "config not found\n\nNo tanksim.yml in the current directory.\n\nRun with --config\n", errOut.String())
	})

	t.Run("multiple suggestions", func(t *testing.T) {
		p, _, errOut := newTestPrinter(t)
		p.Error("bad driver", "Unknown driver.", []string{"use native", "use gobt"})
		assert.Contains(t, errOut.String(), "Either:\n  1. use native\n  2. use gobt\n")
	})
}
