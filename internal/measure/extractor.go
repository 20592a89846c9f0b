package measure

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fitseek/fitseek/internal/types"
)

// Pattern fragments shared by the labelled and fallback passes. Labels cover
// the spellings sellers actually use; the numeric fragment accepts decimals
// and trailing single-digit fractions ("27 1/2").
const (
	numPattern    = `(?P<val>\d+(?:\.\d+)?(?:\s+\d/\d)?)`
	unitPattern   = `(?P<unit>\s*(?:cm|mm|in|inch|inches|["″”]))?`
	p2pLabels     = `(?:p2p|pit\s*[- ]?to\s*[- ]?pit|chest|width|across\s*chest|armpit\s*[- ]?to\s*[- ]?armpit)`
	lengthLabels  = `(?:length|top\s*to\s*bottom|back\s*length|hps\s*to\s*hem|shoulder\s*[- ]?to\s*[- ]?hem)`
	labelGapLimit = `[^0-9]{0,10}`
)

var (
	reP2P    = regexp.MustCompile(`(?i)\b` + p2pLabels + `\b` + labelGapLimit + numPattern + unitPattern)
	reLength = regexp.MustCompile(`(?i)\b` + lengthLabels + `\b` + labelGapLimit + numPattern + unitPattern)

	// "22 x 29" style dimension pairs; the smaller value is taken as width.
	rePairX = regexp.MustCompile(`(?i)\b` +
		`(?P<w>\d+(?:\.\d+)?)(?P<u1>\s*(?:cm|mm|in|inch|inches|["″”]))?` +
		`\s*[x×]\s*` +
		`(?P<l>\d+(?:\.\d+)?)(?P<u2>\s*(?:cm|mm|in|inch|inches|["″”]))?\b`)

	// Fallback variants without the gap limit, applied per line when the
	// near-label pass finds nothing for a field.
	reP2PLine    = regexp.MustCompile(`(?i)\b` + p2pLabels + `\b.*?` + numPattern + unitPattern)
	reLengthLine = regexp.MustCompile(`(?i)\b` + lengthLabels + `\b.*?` + numPattern + unitPattern)

	reFraction = regexp.MustCompile(`^(\d+)/(\d+)$`)
)

// Extract parses a free-text listing description and returns the pit-to-pit
// and length measurements it can confidently recognize, in inches. A field it
// cannot find stays nil; extraction never fails.
//
// When a field is mentioned more than once, the first labelled occurrence
// wins. That tie-break is deterministic, not necessarily best.
func Extract(text string) types.Measurement {
	t := normalize(text)

	p2pVals := labelledValues(reP2P, t)
	lenVals := labelledValues(reLength, t)

	for _, m := range rePairX.FindAllStringSubmatch(t, -1) {
		w, okW := toInches(group(rePairX, m, "w"), group(rePairX, m, "u1"))
		l, okL := toInches(group(rePairX, m, "l"), group(rePairX, m, "u2"))
		if !okW || !okL {
			continue
		}
		if l < w {
			w, l = l, w
		}
		p2pVals = append(p2pVals, w)
		lenVals = append(lenVals, l)
	}

	var result types.Measurement
	if len(p2pVals) > 0 {
		result.P2P = &p2pVals[0]
	}
	if len(lenVals) > 0 {
		result.Length = &lenVals[0]
	}

	// Line-by-line fallback for whichever field is still missing.
	if result.P2P == nil || result.Length == nil {
		for _, line := range strings.Split(t, "\n") {
			if result.P2P == nil {
				if v, ok := firstValue(reP2PLine, line); ok {
					result.P2P = &v
				}
			}
			if result.Length == nil {
				if v, ok := firstValue(reLengthLine, line); ok {
					result.Length = &v
				}
			}
			if result.P2P != nil && result.Length != nil {
				break
			}
		}
	}

	return result
}

func normalize(text string) string {
	t := strings.ToLower(text)
	t = strings.ReplaceAll(t, "”", `"`)
	t = strings.ReplaceAll(t, "″", `"`)
	return t
}

func labelledValues(re *regexp.Regexp, text string) []float64 {
	var vals []float64
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if v, ok := toInches(group(re, m, "val"), group(re, m, "unit")); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

func firstValue(re *regexp.Regexp, line string) (float64, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	return toInches(group(re, m, "val"), group(re, m, "unit"))
}

func group(re *regexp.Regexp, match []string, name string) string {
	idx := re.SubexpIndex(name)
	if idx < 0 || idx >= len(match) {
		return ""
	}
	return match[idx]
}

// toInches converts a numeric string plus optional unit marker into inches.
// Centimeter values are divided by 2.54; anything else is assumed inches.
func toInches(num, unit string) (float64, bool) {
	s := strings.TrimSpace(num)
	if s == "" {
		return 0, false
	}

	var value float64
	switch {
	case strings.Contains(s, " ") && strings.Contains(s, "/"):
		parts := strings.Fields(s)
		if len(parts) != 2 {
			return 0, false
		}
		whole, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, false
		}
		frac, ok := parseFraction(parts[1])
		if !ok {
			return 0, false
		}
		value = whole + frac
	case strings.Contains(s, "/"):
		frac, ok := parseFraction(s)
		if !ok {
			return 0, false
		}
		value = frac
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		value = v
	}

	if strings.HasPrefix(strings.TrimSpace(strings.ToLower(unit)), "cm") {
		value /= 2.54
	}
	return value, true
}

func parseFraction(s string) (float64, bool) {
	m := reFraction.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	den, err := strconv.ParseFloat(m[2], 64)
	if err != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}
