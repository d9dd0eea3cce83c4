package domain

// Category identifies one of the buckets a requirement is sorted into.
type Category string

// Requirement categories.
const (
	// CategoryFunctional describes what the system must do.
	CategoryFunctional Category = "functional"

	// CategoryNonFunctional describes qualities such as performance or security.
	CategoryNonFunctional Category = "non_functional"

	// CategoryRisk holds risks and open questions raised by the document.
	CategoryRisk Category = "risk"
)

// Title returns the heading used for the category in reports.
func (c Category) Title() string {
	switch c {
	case CategoryFunctional:
		return "Functional Requirements"
	case CategoryNonFunctional:
		return "Non-Functional Requirements"
	case CategoryRisk:
		return "Open Questions / Risks"
	default:
		return string(c)
	}
}

// AllCategories returns the categories in report order.
func AllCategories() []Category {
	return []Category{CategoryFunctional, CategoryNonFunctional, CategoryRisk}
}

// ModelResponse is the raw text returned by the model.
type ModelResponse struct {
	// Model is the name of the model that produced the text.
	Model string

	// Text is the reply exactly as returned.
	Text string
}

// RequirementSet is the parsed result of an analysis.
// Sequences keep the order in which items appeared in the model output.
// An absent section is an empty slice.
type RequirementSet struct {
	// Summary is the short free-text summary, if the model produced one.
	Summary string `json:"summary,omitempty"`

	// Functional lists functional requirements.
	Functional []string `json:"functional"`

	// NonFunctional lists non-functional requirements.
	NonFunctional []string `json:"non_functional"`

	// Risks lists risks and open questions.
	Risks []string `json:"risks"`
}

// NewRequirementSet returns a set with all sequences initialised.
func NewRequirementSet() RequirementSet {
	return RequirementSet{
		Functional:    []string{},
		NonFunctional: []string{},
		Risks:         []string{},
	}
}

// Items returns the items for a category.
func (s *RequirementSet) Items(c Category) []string {
	switch c {
	case CategoryFunctional:
		return s.Functional
	case CategoryNonFunctional:
		return s.NonFunctional
	case CategoryRisk:
		return s.Risks
	default:
		return nil
	}
}

// Add appends an item to the sequence for a category.
func (s *RequirementSet) Add(c Category, item string) {
	switch c {
	case CategoryFunctional:
		s.Functional = append(s.Functional, item)
	case CategoryNonFunctional:
		s.NonFunctional = append(s.NonFunctional, item)
	case CategoryRisk:
		s.Risks = append(s.Risks, item)
	}
}

// Total returns the number of items across all categories.
func (s *RequirementSet) Total() int {
	return len(s.Functional) + len(s.NonFunctional) + len(s.Risks)
}

// IsEmpty returns true when the set has neither items nor a summary.
func (s *RequirementSet) IsEmpty() bool {
	return s.Total() == 0 && s.Summary == ""
}

// Merge appends the items of other to s in order, skipping exact duplicates.
// Summaries are joined with a blank line.
func (s *RequirementSet) Merge(other RequirementSet) {
	if other.Summary != "" {
		if s.Summary == "" {
			s.Summary = other.Summary
		} else if s.Summary != other.Summary {
			s.Summary += "\n\n" + other.Summary
		}
	}
	for _, c := range AllCategories() {
		seen := make(map[string]struct{}, len(s.Items(c)))
		for _, item := range s.Items(c) {
			seen[item] = struct{}{}
		}
		for _, item := range other.Items(c) {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			s.Add(c, item)
		}
	}
}
