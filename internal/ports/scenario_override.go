package ports

import "github.com/tzander/parkfee-cli/internal/domain"

// ScenarioOverride can force the billing classification for
// deterministic testing against a live gate. When active, the quote
// flow recomputes the validity window locally with the usual policy
// table instead of trusting the backend's flags.
type ScenarioOverride interface {
	// Scenario returns the forced classification; ok is false when the
	// override is inactive.
	Scenario() (s domain.Scenario, ok bool)
}
