// Package requirements turns the model's free-text answer into a typed
// requirement set and renders a set back to Markdown.
package requirements

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/reqscan/internal/core/domain"
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
)

// section is the part of the response the parser is currently in.
type section int

const (
	sectionNone section = iota
	sectionOther
	sectionSummary
	sectionFunctional
	sectionNonFunctional
	sectionRisk
)

// category maps bucket sections to their domain category.
func (s section) category() (domain.Category, bool) {
	switch s {
	case sectionFunctional:
		return domain.CategoryFunctional, true
	case sectionNonFunctional:
		return domain.CategoryNonFunctional, true
	case sectionRisk:
		return domain.CategoryRisk, true
	default:
		return "", false
	}
}

// maxWeakHeading bounds the length of bold, numbered or colon headings.
const maxWeakHeading = 60

var (
	thinkBlock     = regexp.MustCompile(`(?is)<think>.*?</think>`)
	markdownHead   = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*$`)
	boldHead       = regexp.MustCompile(`^(?:\*\*|__)(.+?)(?:\*\*|__):?$`)
	numberedHead   = regexp.MustCompile(`^(?:\d{1,2}|[IVX]{1,4})[.)]\s+(.+)$`)
	colonHead      = regexp.MustCompile(`^(.+):$`)
	bullet         = regexp.MustCompile(`^(?:[-*+•]|\d{1,3}[.)])(?:\s+(.*))?$`)
	placeholder    = regexp.MustCompile(`^\[[^\]]*\]$`)
	rule           = regexp.MustCompile(`^(?:-{3,}|\*{3,}|_{3,})$`)
	headingNumbers = regexp.MustCompile(`^(?:\d{1,2}(?:\.\d{1,2})*|[ivx]{1,4})[.)]?\s+`)
)

// Keyword lists per section. Non-functional is checked before functional.
// Markdown headings match when they contain a keyword.
var (
	nonFunctionalKeys = []string{
		"non-functional", "nonfunctional", "non functional",
		"nicht-funktional", "nichtfunktional", "nicht funktional",
		"quality requirements", "qualitätsanforderungen",
	}
	functionalKeys = []string{"functional", "funktional"}
	riskKeys       = []string{"risk", "risiken", "risiko", "open question", "offene fragen"}
	summaryKeys    = []string{"summary", "zusammenfassung"}
)

// titles are the complete section titles accepted for bold, numbered and
// colon headings. Such a line is a heading only when all of its text is a
// title, so "1. Functional requirement for login" stays an item.
var titles = map[string]section{
	"summary":                         sectionSummary,
	"executive summary":               sectionSummary,
	"zusammenfassung":                 sectionSummary,
	"functional":                      sectionFunctional,
	"functional requirement":          sectionFunctional,
	"functional requirements":         sectionFunctional,
	"funktionale anforderung":         sectionFunctional,
	"funktionale anforderungen":       sectionFunctional,
	"non-functional":                  sectionNonFunctional,
	"non-functional requirement":      sectionNonFunctional,
	"non-functional requirements":     sectionNonFunctional,
	"nonfunctional requirements":      sectionNonFunctional,
	"non functional requirements":     sectionNonFunctional,
	"nicht-funktionale anforderungen": sectionNonFunctional,
	"nichtfunktionale anforderungen":  sectionNonFunctional,
	"nicht funktionale anforderungen": sectionNonFunctional,
	"quality requirements":            sectionNonFunctional,
	"qualitätsanforderungen":          sectionNonFunctional,
	"risk":                            sectionRisk,
	"risks":                           sectionRisk,
	"risiko":                          sectionRisk,
	"risiken":                         sectionRisk,
	"open question":                   sectionRisk,
	"open questions":                  sectionRisk,
	"open issues":                     sectionRisk,
	"offene fragen":                   sectionRisk,
}

var (
	titleJoiners = regexp.MustCompile(`\s*(?:/|&|,|\band\b|\bund\b)\s*`)
	titleSuffix  = regexp.MustCompile(`\s*\([^)]*\)$`)
)

// emptyMarkers are item texts that mean "nothing here".
var emptyMarkers = map[string]bool{
	"none":             true,
	"none.":            true,
	"none identified":  true,
	"none identified.": true,
	"n/a":              true,
	"keine":            true,
	"keine.":           true,
	"-":                true,
}

// refusalPhrases appear when the model declines the task.
var refusalPhrases = []string{
	"i am unable to",
	"i'm unable to",
	"i cannot fulfill",
	"i can't fulfill",
	"i cannot help with",
	"i can't help with",
	"i cannot assist",
	"i can't assist",
	"as a large language model",
	"as an ai language model",
	"ich kann diese anfrage nicht",
	"als ki-sprachmodell",
}

// parser holds the state of one Parse call.
type parser struct {
	set     domain.RequirementSet
	current section
	level   int
	found   bool
	seen    map[string]bool
	summary []string

	// last item that may receive continuation lines
	lastCat domain.Category
	lastIdx int
}

// Parse splits a model response into summary, functional requirements,
// non-functional requirements and risks.
//
// A blank response fails with domain.ErrEmptyResponse. A response without
// any recognised section fails with domain.ErrModelRefusal when it reads
// like a refusal, and with domain.ErrMalformedResponse otherwise.
// Sections that are missing produce empty slices.
func Parse(resp string) (domain.RequirementSet, error) {
	text := strings.ReplaceAll(resp, "\r\n", "\n")
	text = thinkBlock.ReplaceAllString(text, "")
	if strings.TrimSpace(text) == "" {
		return domain.NewRequirementSet(), domain.ErrEmptyResponse
	}

	p := &parser{
		set:     domain.NewRequirementSet(),
		seen:    make(map[string]bool),
		lastIdx: -1,
	}
	for _, line := range strings.Split(text, "\n") {
		p.line(line)
	}

	if !p.found {
		lower := strings.ToLower(text)
		for _, phrase := range refusalPhrases {
			if strings.Contains(lower, phrase) {
				return domain.NewRequirementSet(), fmt.Errorf("%w: %s", domain.ErrModelRefusal, excerpt(text))
			}
		}
		return domain.NewRequirementSet(), fmt.Errorf("%w: no known section headings in response", domain.ErrMalformedResponse)
	}

	p.set.Summary = strings.TrimSpace(strings.Join(p.summary, "\n"))
	return p.set, nil
}

func (p *parser) line(raw string) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		p.lastIdx = -1
		if p.current == sectionSummary && len(p.summary) > 0 && p.summary[len(p.summary)-1] != "" {
			p.summary = append(p.summary, "")
		}
		return
	}
	if strings.HasPrefix(trimmed, "```") || rule.MatchString(trimmed) {
		return
	}

	if sec, level, ok := heading(trimmed); ok {
		p.lastIdx = -1
		if sec == sectionOther && p.level > 0 && level > p.level {
			// An unknown subsection such as "### Performance" belongs to
			// the enclosing section. Same-level or higher headings close it.
			return
		}
		p.current = sec
		p.level = level
		if sec != sectionOther {
			p.found = true
		}
		return
	}

	if m := bullet.FindStringSubmatch(trimmed); m != nil {
		p.item(strings.TrimSpace(m[1]))
		return
	}

	indented := raw != strings.TrimLeft(raw, " \t")
	if indented && p.lastIdx >= 0 {
		items := p.set.Items(p.lastCat)
		delete(p.seen, items[p.lastIdx])
		items[p.lastIdx] += " " + trimmed
		p.seen[items[p.lastIdx]] = true
		return
	}

	p.lastIdx = -1
	if p.current == sectionSummary {
		p.summary = append(p.summary, trimmed)
	}
}

func (p *parser) item(text string) {
	if p.current == sectionSummary {
		if text != "" {
			p.summary = append(p.summary, text)
		}
		return
	}

	cat, ok := p.current.category()
	if !ok {
		p.lastIdx = -1
		return
	}
	if isPlaceholder(text) || p.seen[text] {
		p.lastIdx = -1
		return
	}
	p.seen[text] = true
	p.set.Add(cat, text)
	p.lastCat = cat
	p.lastIdx = len(p.set.Items(cat)) - 1
}

// heading recognises section headings and returns the Markdown level,
// or zero for other heading styles. Markdown headings are always headings;
// bold, numbered and colon lines only when their whole text is a section
// title.
func heading(line string) (section, int, bool) {
	if m := markdownHead.FindStringSubmatch(line); m != nil {
		if sec := classify(m[2], false); sec != sectionNone {
			return sec, len(m[1]), true
		}
		return sectionOther, len(m[1]), true
	}

	for _, re := range []*regexp.Regexp{boldHead, numberedHead, colonHead} {
		m := re.FindStringSubmatch(line)
		if m == nil || len(m[1]) > maxWeakHeading || strings.HasSuffix(m[1], ".") {
			continue
		}
		if sec := classify(m[1], true); sec != sectionNone {
			return sec, 0, true
		}
	}
	return sectionNone, 0, false
}

// classify maps heading text to a section.
func classify(text string, strict bool) section {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.Trim(t, "*_:# ")
	t = headingNumbers.ReplaceAllString(t, "")

	if strict {
		return title(t)
	}

	switch {
	case containsAny(t, nonFunctionalKeys):
		return sectionNonFunctional
	case containsAny(t, functionalKeys):
		return sectionFunctional
	case containsAny(t, riskKeys):
		return sectionRisk
	case containsAny(t, summaryKeys):
		return sectionSummary
	default:
		return sectionNone
	}
}

// title matches normalised heading text against the complete titles.
// Joined titles such as "open questions / risks" match when every part
// is a title; the first part decides the section.
func title(t string) section {
	t = titleSuffix.ReplaceAllString(t, "")
	t = strings.Join(strings.Fields(t), " ")

	sec := sectionNone
	for _, part := range titleJoiners.Split(t, -1) {
		s, ok := titles[part]
		if !ok {
			return sectionNone
		}
		if sec == sectionNone {
			sec = s
		}
	}
	return sec
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// isPlaceholder reports items that carry no content, such as the
// template's "[requirement text]" or a lone "None".
func isPlaceholder(text string) bool {
	if text == "" || placeholder.MatchString(text) {
		return true
	}
	return emptyMarkers[strings.ToLower(strings.Trim(text, "*_ "))]
}

// excerpt shortens text for error messages.
func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	const limit = 80
	if r := []rune(text); len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return text
}

// Ensure Parser implements the interface.
var _ driven.ResponseParser = Parser{}

// Parser implements driven.ResponseParser with Parse.
type Parser struct{}

// Parse calls the package-level Parse.
func (Parser) Parse(response string) (domain.RequirementSet, error) {
	return Parse(response)
}
