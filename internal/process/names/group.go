package names

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var embeddedYear = regexp.MustCompile(`(?:^|\D)(?:19|20)\d{2}(?:\D|$)`)

// NameGroup is a set of raw names judged to refer to one project.
type NameGroup struct {
	Canonical  string
	Key        string
	Variations []string
}

// Has reports whether raw is one of the group's variations.
func (g NameGroup) Has(raw string) bool {
	raw = strings.TrimSpace(raw)
	for _, v := range g.Variations {
		if v == raw {
			return true
		}
	}

	return false
}

type keyedName struct {
	raw string
	key string
}

// GroupBySimilarity groups names by single linkage: each name joins the first
// group holding a similar member, otherwise it opens a new group. Names are
// deduplicated and sorted by (normalised, raw) first so the result does not
// depend on the caller's ordering. Names that normalise to "" are dropped.
func (n *Normalizer) GroupBySimilarity(rawNames []string) []NameGroup {
	seen := make(map[string]bool, len(rawNames))
	items := make([]keyedName, 0, len(rawNames))

	for _, raw := range rawNames {
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] {
			continue
		}

		seen[raw] = true

		if key := n.Normalize(raw); key != "" {
			items = append(items, keyedName{raw: raw, key: key})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].key != items[j].key {
			return items[i].key < items[j].key
		}

		return items[i].raw < items[j].raw
	})

	var groups [][]keyedName

	for _, item := range items {
		placed := false

		for gi := range groups {
			if n.joins(groups[gi], item) {
				groups[gi] = append(groups[gi], item)
				placed = true

				break
			}
		}

		if !placed {
			groups = append(groups, []keyedName{item})
		}
	}

	out := make([]NameGroup, 0, len(groups))
	for _, members := range groups {
		out = append(out, buildGroup(members))
	}

	return out
}

func (n *Normalizer) joins(group []keyedName, item keyedName) bool {
	for _, m := range group {
		if similarKeys(m.key, item.key, n.threshold) {
			return true
		}
	}

	return false
}

func buildGroup(members []keyedName) NameGroup {
	best := members[0]
	for _, m := range members[1:] {
		if preferLabel(m, best) {
			best = m
		}
	}

	variations := make([]string, 0, len(members))
	for _, m := range members {
		variations = append(variations, m.raw)
	}

	return NameGroup{Canonical: best.raw, Key: best.key, Variations: variations}
}

// preferLabel orders canonical label candidates: no embedded year, then
// shorter normalised form, then more upper case, then lexical.
func preferLabel(a, b keyedName) bool {
	ay, by := embeddedYear.MatchString(a.raw), embeddedYear.MatchString(b.raw)
	if ay != by {
		return !ay
	}

	if len(a.key) != len(b.key) {
		return len(a.key) < len(b.key)
	}

	ua, ub := upperRatio(a.raw), upperRatio(b.raw)
	if ua != ub {
		return ua > ub
	}

	return a.raw < b.raw
}

func upperRatio(s string) float64 {
	var letters, upper int

	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}

		letters++

		if unicode.IsUpper(r) {
			upper++
		}
	}

	if letters == 0 {
		return 0
	}

	return float64(upper) / float64(letters)
}
