package retention

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Candidate is an index whose name carried a valid date fragment.
type Candidate struct {
	Name      string
	Year      int
	Part      int
	AgeMonths int
}

// Plan is the ordered list of indices selected for deletion.
type Plan []Candidate

// Names returns the index names in plan order.
func (p Plan) Names() []string {
	names := make([]string, len(p))
	for i, c := range p {
		names[i] = c.Name
	}
	return names
}

// Evaluate matches names against m and computes the age of every match
// relative to reference. Names that do not match are logged at debug level,
// names whose date fragment is out of range are logged as warnings. Both are
// left out of the result. Duplicate names are evaluated once.
func Evaluate(m *Matcher, names []string, reference time.Time, logger *slog.Logger) []Candidate {
	seen := sets.New[string]()
	candidates := make([]Candidate, 0, len(names))

	for _, name := range names {
		if seen.Has(name) {
			continue
		}
		seen.Insert(name)

		year, part, ok := m.Match(name)
		if !ok {
			logger.Debug("index name did not match pattern, skipping",
				"index", name,
				"date_pattern", m.Convention())
			continue
		}

		age, err := AgeInMonths(m.Convention(), year, part, reference)
		if err != nil {
			logger.Warn("skipping index",
				"index", name,
				"error", err)
			continue
		}

		logger.Debug("index age", "index", name, "age_months", age)
		candidates = append(candidates, Candidate{
			Name:      name,
			Year:      year,
			Part:      part,
			AgeMonths: age,
		})
	}

	return candidates
}

// SelectForDeletion returns the candidates whose age is at least threshold
// months, sorted by ascending age and then by name. The input is not modified.
func SelectForDeletion(candidates []Candidate, threshold int) Plan {
	plan := Plan{}
	for _, c := range candidates {
		if c.AgeMonths >= threshold {
			plan = append(plan, c)
		}
	}

	slices.SortStableFunc(plan, func(a, b Candidate) int {
		if c := cmp.Compare(a.AgeMonths, b.AgeMonths); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return plan
}

// SortByDateFragment sorts names in place by the part following prefix, with
// "." treated as "-" so "2024.03" and "2024-03" order together. Names without
// the prefix are compared whole.
func SortByDateFragment(names []string, prefix string) {
	key := func(name string) string {
		n := strings.ReplaceAll(name, ".", "-")
		p := strings.ReplaceAll(prefix, ".", "-")
		if rest, ok := strings.CutPrefix(n, p); ok {
			return rest
		}
		return n
	}

	slices.SortStableFunc(names, func(a, b string) int {
		return strings.Compare(key(a), key(b))
	})
}
