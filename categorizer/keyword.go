package categorizer

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultCategory is returned for empty input and when nothing scores.
const DefaultCategory = "Institute"

type categoryKeywords struct {
	name     string
	keywords []string
}

// Order matters: on equal scores the earlier category wins.
var defaultKeywords = []categoryKeywords{
	{"Academics", []string{
		"academic", "curriculum", "syllabus", "course", "subject", "lecture", "teaching",
		"faculty", "professor", "student", "enrollment", "registration", "grades",
		"examination", "exam", "assessment", "evaluation", "semester", "trimester",
		"academic calendar", "class schedule", "program", "degree", "bachelor", "master",
		"doctorate", "thesis", "dissertation", "research paper", "academic paper",
	}},
	{"Research and Extension", []string{
		"research", "study", "investigation", "survey", "experiment", "analysis",
		"extension", "outreach", "community", "project", "grant", "funding",
		"publication", "journal", "conference", "presentation", "workshop",
		"seminar", "training", "development", "innovation", "methodology",
		"data collection", "field work", "laboratory", "findings", "results",
	}},
	{"Student Services", []string{
		"student", "services", "welfare", "assistance", "scholarship", "financial aid",
		"counseling", "guidance", "admission", "enrollment", "registration",
		"dormitory", "housing", "cafeteria", "dining", "health", "medical",
		"insurance", "activities", "organization", "club", "sports", "event",
		"orientation", "freshman", "alumni", "career", "placement", "job",
	}},
	{"Planning and Development", []string{
		"planning", "development", "strategic", "plan", "budget", "allocation",
		"infrastructure", "facility", "building", "construction", "renovation",
		"expansion", "improvement", "upgrade", "maintenance", "project",
		"timeline", "milestone", "resource", "capacity", "growth", "expansion",
		"master plan", "long-term", "short-term", "objective", "goal",
	}},
	{"Administration and Finance", []string{
		"administration", "finance", "financial", "budget", "expense", "revenue",
		"accounting", "audit", "payroll", "salary", "wage", "payment", "invoice",
		"purchase", "procurement", "purchase order", "po", "vendor", "supplier",
		"contract", "agreement", "policy", "procedure", "regulation", "compliance",
		"human resources", "hr", "personnel", "employee", "staff", "management",
	}},
	{"Institute", []string{
		"institute", "institution", "organization", "governance", "board", "committee",
		"director", "president", "executive", "leadership", "official", "memorandum",
		"circular", "announcement", "notice", "directive", "order", "decree",
		"institutional", "corporate", "organizational", "structure", "hierarchy",
	}},
}

type keyword struct {
	text string
	word *regexp.Regexp
}

type category struct {
	name     string
	keywords []keyword
}

// KeywordCategorizer scores text against fixed keyword lists. It needs no
// network and never fails.
type KeywordCategorizer struct {
	categories []category
}

func NewKeywordCategorizer() *KeywordCategorizer {
	k := &KeywordCategorizer{}
	for _, c := range defaultKeywords {
		cat := category{name: c.name}
		for _, kw := range c.keywords {
			lower := strings.ToLower(kw)
			cat.keywords = append(cat.keywords, keyword{
				text: lower,
				word: regexp.MustCompile(`\b` + regexp.QuoteMeta(lower) + `\b`),
			})
		}
		k.categories = append(k.categories, cat)
	}
	return k
}

func (k *KeywordCategorizer) Categorize(_ context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Title+" "+req.Description) == "" {
		return Result{Category: DefaultCategory, Confidence: 0, Method: MethodKeyword}, nil
	}

	scores := make([]Score, len(k.categories))
	best, bestScore, total := DefaultCategory, 0.0, 0.0
	for i, c := range k.categories {
		s := 0.6*similarity(req.Title, c.keywords) + 0.4*similarity(req.Description, c.keywords)
		scores[i] = Score{Category: c.name, Score: s}
		total += s
		if s > bestScore {
			best, bestScore = c.name, s
		}
	}

	confidence := 0.0
	if total > 0 {
		confidence = math.Min(bestScore/(total/float64(len(scores))), 1)
	}

	// Reported scores are rounded and ordered highest first.
	for i := range scores {
		scores[i].Score = round2(scores[i].Score)
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return Result{
		Category:   best,
		Confidence: round2(confidence),
		Method:     MethodKeyword,
		Scores:     scores,
	}, nil
}

// similarity counts 2 per whole-word hit and 1 for a substring-only hit,
// normalised by twice the keyword count and capped at 1.
func similarity(text string, keywords []keyword) float64 {
	if text == "" || len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)

	matches := 0
	for _, kw := range keywords {
		if n := len(kw.word.FindAllStringIndex(lower, -1)); n > 0 {
			matches += 2 * n
		} else if strings.Contains(lower, kw.text) {
			matches++
		}
	}
	return math.Min(float64(matches)/float64(2*len(keywords)), 1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
