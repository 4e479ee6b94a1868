package expr

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/canonical/sqlmagic/internal/scan"
)

// MaxMarkers is the largest count accepted by the "?*N" shorthand. Larger
// counts are left in the text unexpanded.
const MaxMarkers = 32767

// ExpandMarkers replaces every "?*N" outside of quotes, where N is a positive
// integer, with N comma separated "?" parameter markers. "?*3" becomes
// "?,?,?". The result contains no shorthand, so expanding it again returns it
// unchanged.
func ExpandMarkers(sql string) string {
	if !strings.Contains(sql, "?*") {
		return sql
	}
	var b strings.Builder
	s := scan.New(sql, "?")
	for {
		t := s.Next()
		switch t.Kind {
		case scan.EOF:
			return b.String()
		case scan.Delim:
			if !s.HasPrefix("*") {
				b.WriteString(t.Text)
				continue
			}
			s.Skip(1)
			digits := s.TakeWhile(unicode.IsDigit)
			n, err := strconv.Atoi(digits)
			if err != nil || n <= 0 || n > MaxMarkers {
				b.WriteString("?*" + digits)
				continue
			}
			b.WriteString(markers(n))
		default:
			b.WriteString(t.Text)
		}
	}
}

// markers returns n comma separated parameter markers.
func markers(n int) string {
	return strings.Repeat("?,", n-1) + "?"
}
