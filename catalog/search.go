package catalog

import (
	"strings"
)

// barcodeMinDigits separates short numeric fragments, which are likely part of
// a product name, from scanned barcodes.
const barcodeMinDigits = 4

// Query is what the clerk typed or scanned.
type Query struct {
	Text  string `json:"text"`
	Exact bool   `json:"exact"`
}

// PlanKind is the classification branch a query falls into.
type PlanKind int

const (
	// PlanAll lists the first entries in name order.
	PlanAll PlanKind = iota
	// PlanExactCode matches on code equality.
	PlanExactCode
	// PlanCodePrefix matches codes starting with a numeric probe.
	PlanCodePrefix
	// PlanWords requires every word in the name or the code.
	PlanWords
)

func (k PlanKind) String() string {
	switch k {
	case PlanAll:
		return "all"
	case PlanExactCode:
		return "exact"
	case PlanCodePrefix:
		return "code_prefix"
	case PlanWords:
		return "words"
	default:
		return "unknown"
	}
}

// Plan is a classified query. It is shared by the in-memory matcher and the
// remote gateway so both sources answer the same question.
type Plan struct {
	Kind  PlanKind
	Term  string   // exact code or lowercased numeric prefix
	Words []string // lowercased words for PlanWords
}

// Classify decides how a query is matched.
func Classify(q Query) Plan {
	trimmed := strings.TrimSpace(q.Text)
	if trimmed == "" {
		return Plan{Kind: PlanAll}
	}
	if q.Exact {
		return Plan{Kind: PlanExactCode, Term: trimmed}
	}

	term := strings.ToLower(trimmed)
	if len(term) >= barcodeMinDigits && isDigits(term) {
		return Plan{Kind: PlanCodePrefix, Term: term}
	}
	return Plan{Kind: PlanWords, Words: strings.Fields(term)}
}

// Matches reports whether p satisfies the plan.
func (pl Plan) Matches(p Product) bool {
	switch pl.Kind {
	case PlanAll:
		return true
	case PlanExactCode:
		return p.Code == pl.Term
	case PlanCodePrefix:
		return strings.HasPrefix(strings.ToLower(p.Code), pl.Term)
	case PlanWords:
		name := strings.ToLower(p.Name)
		code := strings.ToLower(p.Code)
		for _, w := range pl.Words {
			if !strings.Contains(name, w) && !strings.Contains(code, w) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Search runs q against the snapshot, keeping name order and the result cap.
func Search(s *Snapshot, q Query) []Product {
	return SearchPlan(s, Classify(q))
}

// SearchPlan runs an already classified query against the snapshot.
func SearchPlan(s *Snapshot, plan Plan) []Product {
	if plan.Kind == PlanAll {
		return s.First(MaxResults)
	}

	out := make([]Product, 0)
	s.Ascend(func(p Product) bool {
		if plan.Matches(p) {
			out = append(out, p)
		}
		return len(out) < MaxResults
	})
	return out
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
