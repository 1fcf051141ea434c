// Package payload builds provider-correct request bodies from a
// provider-agnostic RequestSpec. Building is pure string/byte work: no
// I/O, no clock, no globals. The only failure is a programmer error (a
// publisher the builder does not know).
package payload

import (
	"fmt"

	"github.com/vexhq/vex/provider"
)

// Build maps the spec onto the wire body for its publisher and access
// mode. Custom mode always produces an OpenAI-compatible body regardless
// of publisher, because that is the contract of user-supplied endpoints.
func Build(spec provider.RequestSpec) ([]byte, error) {
	if spec.Mode == provider.AccessCustom {
		return buildCompat(spec)
	}
	switch spec.Config.Publisher {
	case provider.PublisherAnthropic:
		return buildAnthropic(spec)
	case provider.PublisherGoogle:
		return buildGoogle(spec)
	default:
		return nil, fmt.Errorf("unknown publisher: %s", spec.Config.Publisher)
	}
}

// outputTokenBudget applies the extended-context clamp: when the 1M beta is
// active the output allowance shrinks so estimated input plus output stays
// under the extended ceiling. A floor keeps the request valid even for
// very large prompts. Attachment bytes do not count toward the estimate.
func outputTokenBudget(spec provider.RequestSpec) int {
	const floor = 1024

	maxOutput := spec.Config.MaxOutputTokens
	if spec.ExtendedContext && spec.Config.SupportsExtendedContext {
		if remaining := spec.Config.MaxInputTokensExtended - spec.InputTokenEstimate(); remaining < maxOutput {
			maxOutput = remaining
		}
	}
	if maxOutput < floor {
		return floor
	}
	return maxOutput
}
