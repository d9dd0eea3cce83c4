package driven

import "github.com/custodia-labs/reqscan/internal/core/domain"

// ResponseParser turns the model's free text into a requirement set.
type ResponseParser interface {
	// Parse extracts the categorised items. A missing section yields an
	// empty slice. Fails with domain.ErrEmptyResponse, domain.ErrModelRefusal
	// or domain.ErrMalformedResponse when no section is recognised.
	Parse(response string) (domain.RequirementSet, error)
}
