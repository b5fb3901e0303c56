package reconcile

import (
	"fmt"
	"regexp"
	"time"
)

var (
	isoDateRegex  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	brDateRegex   = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	dayMonthRegex = regexp.MustCompile(`^\d{2}/\d{2}$`)
)

// NormalizeDate converte a data para DD/MM/YYYY.
//   - YYYY-MM-DD (com ou sem horário) -> DD/MM/YYYY
//   - DD/MM/YYYY permanece igual
//   - DD/MM recebe o ano de now
//
// Qualquer outro formato é devolvido sem alteração.
func NormalizeDate(s string, now time.Time) string {
	if m := isoDateRegex.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s/%s/%s", m[3], m[2], m[1])
	}
	if brDateRegex.MatchString(s) {
		return s
	}
	if dayMonthRegex.MatchString(s) {
		return fmt.Sprintf("%s/%d", s, now.Year())
	}
	return s
}
