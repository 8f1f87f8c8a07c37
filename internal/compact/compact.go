// Package compact collapses sets of structurally similar hierarchical
// codes into a minimal brace-set notation:
//
//	026/2021/58/064/573, 026/2021/58/068/573 -> 026/2021/58/{064,068}/573
//
// A compacted string implies the full cross product of its brace sets, so
// a set of codes is only ever collapsed when that product matches the
// input exactly; otherwise the set splits into several compacted strings.
package compact

import (
	"sort"
	"strconv"
	"strings"
)

// Result holds the compacted representation of one code set.
type Result struct {
	Compacted []string // one entry per family, deterministic order
	Malformed []string // codes passed through literal (segment-count mismatch)
}

// Strings returns everything a renderer should print: the compacted
// families followed by the malformed codes, literal.
func (r Result) Strings() []string {
	out := make([]string, 0, len(r.Compacted)+len(r.Malformed))
	out = append(out, r.Compacted...)
	return append(out, r.Malformed...)
}

// Codes compacts a set of codes sharing the given segment delimiter.
// Duplicates and empty strings are ignored. Codes whose segment count
// differs from the set's dominant count are reported malformed and kept
// literal instead of aborting the whole set.
func Codes(codes []string, delimiter string) Result {
	seen := make(map[string]struct{}, len(codes))
	var uniq []string
	for _, c := range codes {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}
	if len(uniq) == 0 {
		return Result{}
	}

	split := make([][]string, len(uniq))
	counts := make(map[int]int)
	for i, c := range uniq {
		split[i] = strings.Split(c, delimiter)
		counts[len(split[i])]++
	}

	// The dominant segment count defines the family shape; ties go to the
	// smaller count so the rule stays deterministic.
	dominant := 0
	for n, c := range counts {
		if c > counts[dominant] || (c == counts[dominant] && n < dominant) {
			dominant = n
		}
	}

	var family [][]string
	var malformed []string
	for i, segs := range split {
		if len(segs) == dominant {
			family = append(family, segs)
		} else {
			malformed = append(malformed, uniq[i])
		}
	}
	sort.Strings(malformed)

	return Result{
		Compacted: compactFamily(family, delimiter),
		Malformed: malformed,
	}
}

// compactFamily compacts segment lists that all share one length.
func compactFamily(family [][]string, delimiter string) []string {
	if len(family) == 0 {
		return nil
	}
	if len(family) == 1 {
		return []string{strings.Join(family[0], delimiter)}
	}

	width := len(family[0])
	distinct := make([][]string, width)
	for i := 0; i < width; i++ {
		distinct[i] = distinctAt(family, i)
	}

	// Exact Cartesian match: |input| equals the product of the per-position
	// alternative counts, so one string describes the set without inventing
	// combinations.
	product := 1
	for i := 0; i < width && product <= len(family); i++ {
		product *= len(distinct[i])
	}
	if product == len(family) {
		parts := make([]string, width)
		for i, vals := range distinct {
			if len(vals) == 1 {
				parts[i] = vals[0]
			} else {
				parts[i] = "{" + strings.Join(vals, ",") + "}"
			}
		}
		return []string{strings.Join(parts, delimiter)}
	}

	// Positions vary non-orthogonally: split on the first varying position
	// and compact each sub-family, in segment sort order.
	pivot := 0
	for i, vals := range distinct {
		if len(vals) > 1 {
			pivot = i
			break
		}
	}
	var out []string
	for _, val := range distinct[pivot] {
		var sub [][]string
		for _, segs := range family {
			if segs[pivot] == val {
				sub = append(sub, segs)
			}
		}
		out = append(out, compactFamily(sub, delimiter)...)
	}
	return out
}

// distinctAt returns the sorted distinct values at one segment position.
func distinctAt(family [][]string, pos int) []string {
	seen := make(map[string]struct{})
	var vals []string
	for _, segs := range family {
		if _, ok := seen[segs[pos]]; ok {
			continue
		}
		seen[segs[pos]] = struct{}{}
		vals = append(vals, segs[pos])
	}
	sortSegments(vals)
	return vals
}

// sortSegments orders segment values numerically when every value is an
// integer, lexically otherwise. Numeric ties ("64" vs "064") fall back to
// the string form.
func sortSegments(vals []string) {
	nums := make(map[string]int, len(vals))
	allNumeric := true
	for _, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil {
			allNumeric = false
			break
		}
		nums[v] = n
	}
	sort.Slice(vals, func(i, j int) bool {
		if allNumeric && nums[vals[i]] != nums[vals[j]] {
			return nums[vals[i]] < nums[vals[j]]
		}
		return vals[i] < vals[j]
	})
}

// Expand reverses Codes for a single compacted string: every combination
// of its brace groups is substituted back into the template. A string
// without brace groups expands to itself.
func Expand(compacted, delimiter string) []string {
	if compacted == "" {
		return nil
	}
	segs := strings.Split(compacted, delimiter)
	options := make([][]string, len(segs))
	for i, s := range segs {
		if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
			options[i] = strings.Split(s[1:len(s)-1], ",")
		} else {
			options[i] = []string{s}
		}
	}
	combos := []string{""}
	for i, opts := range options {
		next := make([]string, 0, len(combos)*len(opts))
		for _, prefix := range combos {
			for _, opt := range opts {
				if i == 0 {
					next = append(next, opt)
				} else {
					next = append(next, prefix+delimiter+opt)
				}
			}
		}
		combos = next
	}
	return combos
}
