package risk

import (
	"strings"
	"time"
	"unicode"

	"loan-risk-workers/internal/models"
)

const dateLayout = "2006-01-02"

var honorifics = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "miss": true, "dr": true, "prof": true,
}

// nameTokens lower-cases a personal name, drops punctuation and honorifics, and
// returns the remaining words as a set.
func nameTokens(name string) map[string]bool {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, name)

	tokens := make(map[string]bool)
	for _, f := range strings.Fields(cleaned) {
		if honorifics[f] {
			continue
		}
		tokens[f] = true
	}
	return tokens
}

func subset(a, b map[string]bool) bool {
	for t := range a {
		if !b[t] {
			return false
		}
	}
	return true
}

// namesInconsistent compares every pair of non-empty names on the documents. Two names
// agree when the words of one are all contained in the other, which tolerates omitted
// middle names.
func namesInconsistent(docs models.ExtractedDocuments) bool {
	var names []map[string]bool
	add := func(n string) {
		if t := nameTokens(n); len(t) > 0 {
			names = append(names, t)
		}
	}
	if docs.Identity != nil {
		add(docs.Identity.FullName)
	}
	if docs.Bank != nil {
		add(docs.Bank.AccountHolderName)
	}
	if docs.University != nil {
		add(docs.University.StudentName)
	}
	if docs.Scholarship != nil {
		add(docs.Scholarship.RecipientName)
	}

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if !subset(names[i], names[j]) && !subset(names[j], names[i]) {
				return true
			}
		}
	}
	return false
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// after reports whether first is strictly later than second. Unparseable dates never
// trigger.
func after(first, second string) bool {
	a, okA := parseDate(first)
	b, okB := parseDate(second)
	return okA && okB && a.After(b)
}

// illogicalDates returns one factor per impossible ordering between extracted dates.
func illogicalDates(docs models.ExtractedDocuments) []string {
	var issues []string

	if id := docs.Identity; id != nil {
		if after(id.IssueDate, id.ExpiryDate) {
			issues = append(issues, "identity document issued after its expiry date")
		}
		if after(id.DateOfBirth, id.IssueDate) {
			issues = append(issues, "identity document issued before the holder's date of birth")
		}
		if u := docs.University; u != nil && after(id.DateOfBirth, u.AcceptanceDate) {
			issues = append(issues, "university acceptance dated before the applicant's date of birth")
		}
	}

	if u := docs.University; u != nil && after(u.AcceptanceDate, u.ProgramStartDate) {
		issues = append(issues, "university acceptance dated after the program start date")
	}

	if s := docs.Scholarship; s != nil {
		if after(s.CoverageStartDate, s.CoverageEndDate) {
			issues = append(issues, "scholarship coverage starts after it ends")
		}
		if after(s.AwardDate, s.CoverageEndDate) {
			issues = append(issues, "scholarship awarded after its coverage ended")
		}
	}

	if b := docs.Bank; b != nil && after(b.StatementPeriod.StartDate, b.StatementPeriod.EndDate) {
		issues = append(issues, "bank statement period starts after it ends")
	}

	return issues
}
