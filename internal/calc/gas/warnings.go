package gas

import (
	"fmt"

	"github.com/Luqman-Ismat/engivault-api-sub002/internal/calc/friction"
)

const (
	WarnHighMach     = "high_mach"
	WarnChoked       = "choked"
	WarnTransitional = "transitional_flow"
	WarnLaminar      = "laminar_flow"
	WarnNotConverged = "not_converged"

	// HighMachThreshold is where compressibility stops being negligible.
	HighMachThreshold = 0.3
)

type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Warnings []Warning

func (w Warnings) Has(code string) bool {
	for _, x := range w {
		if x.Code == code {
			return true
		}
	}
	return false
}

// collector gathers advisories once the numbers are final. It only appends.
type collector struct {
	list Warnings
}

func (c *collector) add(code, format string, args ...any) {
	c.list = append(c.list, Warning{Code: code, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) mach(maxMach float64) {
	if maxMach > HighMachThreshold {
		c.add(WarnHighMach, "high Mach number (%.3f), compressibility effects significant", maxMach)
	}
}

func (c *collector) choked(choked bool) {
	if choked {
		c.add(WarnChoked, "flow is choked: Mach 1 reached, pressure drop saturates")
	}
}

func (c *collector) reynolds(re float64) {
	switch friction.Classify(re) {
	case friction.RegimeLaminar:
		c.add(WarnLaminar, "laminar flow (Re=%.0f), friction factor follows 64/Re", re)
	case friction.RegimeTransitional:
		c.add(WarnTransitional, "flow regime uncertain (Re=%.0f in transition band)", re)
	}
}

func (c *collector) convergence(converged bool, iterations int) {
	if !converged {
		c.add(WarnNotConverged, "solver did not converge within %d iterations, result is a best estimate", iterations)
	}
}

func (c *collector) result() Warnings {
	if c.list == nil {
		return Warnings{}
	}
	return c.list
}
