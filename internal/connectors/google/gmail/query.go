package gmail

import (
	"strings"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

// dateFormat is the Gmail search date format. Gmail interprets after:/before:
// dates in the user's local timezone, at day granularity.
const dateFormat = "2006/01/02"

// BuildQuery translates a MailFilter's date range and free-form query into
// a Gmail search query string. Labels are not part of the query; they are
// passed as LabelIds on the list call.
func BuildQuery(filter domain.MailFilter) string {
	var terms []string

	if !filter.After.IsZero() {
		terms = append(terms, "after:"+filter.After.Format(dateFormat))
	}
	if !filter.Before.IsZero() {
		terms = append(terms, "before:"+filter.Before.Format(dateFormat))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		terms = append(terms, q)
	}

	return strings.Join(terms, " ")
}
