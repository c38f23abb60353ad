package market

import (
	"regexp"
	"strings"
)

// tickerToken matches a plausible ticker: a letter followed by 1-10
// letters or digits.
var tickerToken = regexp.MustCompile(`[A-Za-z][A-Za-z0-9]{1,10}`)

// ResolveSymbols extracts exchange symbols mentioned in free-form text.
//
// Tokens that are known symbols win, in the order they first appear. Only
// when no token matches does it fall back to company names contained in the
// text (case-insensitive), ordered by company name. The result has no
// duplicates and is empty when nothing matched.
//
// This is best effort: any ordinary word of 2-11 characters that happens to
// be a listed symbol will resolve.
func ResolveSymbols(text string, dir *Directory) []string {
	text = strings.TrimSpace(text)
	if text == "" || dir.Len() == 0 {
		return []string{}
	}

	var found []string
	for _, tok := range tickerToken.FindAllString(text, -1) {
		sym := strings.ToUpper(tok)
		if dir.Has(sym) {
			found = append(found, sym)
		}
	}

	if len(found) == 0 {
		lower := strings.ToLower(text)
		for _, name := range dir.names {
			if strings.Contains(lower, name) {
				found = append(found, dir.nameToSymbol[name])
			}
		}
	}

	return dedupe(found)
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
