package respond

import (
	"strconv"
	"strings"
)

// mediaRange is one entry of an Accept header.
type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. Types are lowercased,
// a bare type becomes type/*, and a missing, malformed or out-of-range q
// leaves the weight at its previous value (1.0 by default).
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		params := strings.Split(part, ";")
		media := strings.ToLower(strings.TrimSpace(params[0]))
		if media == "" {
			continue
		}
		mr := mediaRange{q: 1.0}
		if typ, sub, ok := strings.Cut(media, "/"); ok {
			mr.typ, mr.subtype = strings.TrimSpace(typ), strings.TrimSpace(sub)
		} else {
			mr.typ, mr.subtype = media, "*"
		}
		for _, p := range params[1:] {
			key, val, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "q") {
				continue
			}
			q, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil || q < 0 || q > 1 {
				continue
			}
			mr.q = q
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// specificity ranks how precisely r names an application/<suffix> response:
// -1 no match, 0 */*, 1 application/*, 2 application/*+suffix,
// 3 application/suffix, 4 application/problem+suffix.
func specificity(r mediaRange, suffix string) int {
	switch {
	case r.typ == "*" && r.subtype == "*":
		return 0
	case r.typ != "application":
		return -1
	case r.subtype == "*":
		return 1
	case r.subtype == "*+"+suffix:
		return 2
	case r.subtype == suffix:
		return 3
	case r.subtype == "problem+"+suffix:
		return 4
	}
	return -1
}

// preference returns the q-value and specificity of the most specific range
// matching suffix. q is -1 when nothing matches.
func preference(ranges []mediaRange, suffix string) (float64, int) {
	q, best := -1.0, -1
	for _, r := range ranges {
		if s := specificity(r, suffix); s > best {
			q, best = r.q, s
		}
	}
	return q, best
}

// PrefersCBOR reports whether CBOR should be used for the given Accept header.
// The q-value ranks first and specificity breaks ties; JSON wins anything else.
func PrefersCBOR(accept string) bool {
	ranges := parseAccept(accept)
	if len(ranges) == 0 {
		return false
	}
	cborQ, cborSpec := preference(ranges, "cbor")
	if cborQ <= 0 {
		return false
	}
	jsonQ, jsonSpec := preference(ranges, "json")
	if cborQ != jsonQ {
		return cborQ > jsonQ
	}
	return cborSpec > jsonSpec
}
