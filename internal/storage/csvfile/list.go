package csvfile

import (
	"strings"

	"review_scraper/internal/domain"
)

// List cells hold items joined by listSep. A literal separator or backslash
// inside an item is escaped with a backslash.
var listEscaper = strings.NewReplacer(`\`, `\\`, listSep, `\`+listSep)

func joinList(items []string) string {
	esc := make([]string, len(items))
	for i, it := range items {
		esc[i] = listEscaper.Replace(it)
	}
	return strings.Join(esc, listSep)
}

func splitList(v string) []string {
	if v == "" {
		return []string{domain.Unknown}
	}
	var (
		out []string
		cur strings.Builder
	)
	for i := 0; i < len(v); i++ {
		switch {
		case v[i] == '\\' && i+1 < len(v):
			i++
			cur.WriteByte(v[i])
		case v[i] == listSep[0]:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(v[i])
		}
	}
	return append(out, cur.String())
}
