// Package parse extracts Jira issue keys and @due-date tags from free text.
package parse

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/nakachan-ing/jmt-cli/internal/model"
)

var (
	issueKeyRe = regexp.MustCompile(`\b([A-Z]+-\d+)\b`)
	dueTagRe   = regexp.MustCompile(`(?i)@([a-zа-яё]+)`)
)

// keywords maps every accepted tag (lower-cased) to its canonical type.
var keywords = map[string]model.DueDateType{
	"today":     model.DueToday,
	"tomorrow":  model.DueTomorrow,
	"thisweek":  model.DueThisWeek,
	"nextweek":  model.DueNextWeek,
	"later":     model.DueLater,
	"forgotten": model.DueForgotten,

	"сегодня":    model.DueToday,
	"завтра":     model.DueTomorrow,
	"этанеделя":  model.DueThisWeek,
	"следнеделя": model.DueNextWeek,
	"позже":      model.DueLater,
	"позднее":    model.DueLater,
	"забыто":     model.DueForgotten,
}

var labels = map[model.DueDateType]string{
	model.DueToday:     "Today",
	model.DueTomorrow:  "Tomorrow",
	model.DueThisWeek:  "This week",
	model.DueNextWeek:  "Next week",
	model.DueLater:     "Later",
	model.DueForgotten: "Forgotten",
}

// ExtractIssueKey returns the first upper-case LETTERS-DIGITS token, or "".
func ExtractIssueKey(text string) string {
	m := issueKeyRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// StripIssueKey removes the first issue key occurrence and trims the result.
func StripIssueKey(text string) string {
	loc := issueKeyRe.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
}

// ExtractDueDate resolves the first @tag in text relative to the current time.
func ExtractDueDate(text string) *model.Due {
	return ExtractDueDateAt(text, time.Now())
}

// ExtractDueDateAt is ExtractDueDate with an explicit "now". Only the first
// @word is consulted; an unknown word yields nil.
func ExtractDueDateAt(text string, now time.Time) *model.Due {
	m := dueTagRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	kind, ok := keywords[strings.ToLower(m[1])]
	if !ok {
		return nil
	}
	due, err := ResolveDateKeywordAt(kind, now)
	if err != nil {
		return nil
	}
	return due
}

// StripDueTag removes the first @word (case-insensitive) and trims the result.
func StripDueTag(text string) string {
	loc := dueTagRe.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
}

// LookupKeyword maps a tag word (without '@') to its type.
func LookupKeyword(word string) (model.DueDateType, bool) {
	kind, ok := keywords[strings.ToLower(word)]
	return kind, ok
}

func ResolveDateKeyword(kind model.DueDateType) (*model.Due, error) {
	return ResolveDateKeywordAt(kind, time.Now())
}

// ResolveDateKeywordAt turns a due-date type into calendar dates. Weekdays
// follow time.Weekday: Sunday is 0, so on a Sunday "thisweek" ends a full
// week later.
func ResolveDateKeywordAt(kind model.DueDateType, now time.Time) (*model.Due, error) {
	today := Today(now)
	wd := int(now.Weekday())

	due := &model.Due{DueDateType: kind}
	switch kind {
	case model.DueToday:
		due.DueDate = today
	case model.DueTomorrow:
		due.DueDate = AddDays(today, 1)
	case model.DueThisWeek:
		start := today
		due.DueDateStart = &start
		due.DueDate = AddDays(today, 7-wd)
	case model.DueNextWeek:
		start := AddDays(today, 7-wd+1)
		due.DueDateStart = &start
		due.DueDate = AddDays(today, 14-wd)
	case model.DueLater:
		due.DueDate = AddDays(today, 30)
	case model.DueForgotten:
		due.DueDate = AddDays(today, -365)
	default:
		return nil, fmt.Errorf("unknown due date keyword %q", kind)
	}
	due.DueDateLabel = labels[kind]
	return due, nil
}

// Today truncates now to its local calendar day.
func Today(now time.Time) strfmt.Date {
	y, m, d := now.Date()
	return strfmt.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func AddDays(d strfmt.Date, n int) strfmt.Date {
	return strfmt.Date(time.Time(d).AddDate(0, 0, n))
}

func IsOverdue(d strfmt.Date) bool {
	return IsOverdueAt(d, time.Now())
}

// IsOverdueAt reports whether d is strictly before the calendar day of now.
func IsOverdueAt(d strfmt.Date, now time.Time) bool {
	y, m, day := time.Time(d).Date()
	due := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return due.Before(time.Time(Today(now)))
}
