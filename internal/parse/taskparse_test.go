package parse

import (
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday 16 October 2026, mid-afternoon local time.
var friday = time.Date(2026, time.October, 16, 15, 30, 0, 0, time.Local)

func date(t *testing.T, s string) strfmt.Date {
	t.Helper()
	d, err := parseDate(s)
	require.NoError(t, err)
	return d
}

func TestExtractIssueKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fix ABC-123 now", "ABC-123"},
		{"no key here", ""},
		{"lowercase-123", ""},
		{"Abc-123 mixed case", ""},
		{"first AB-1 then CD-2", "AB-1"},
		{"glued xAB-1", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractIssueKey(tt.in))
		})
	}
}

func TestStripIssueKey(t *testing.T) {
	assert.Equal(t, "Fix  now", StripIssueKey("Fix ABC-123 now"))
	assert.Equal(t, "review", StripIssueKey("ABC-1 review"))
	assert.Equal(t, "a abc-1 b  AB-2", StripIssueKey("a abc-1 b AB-1 AB-2"))
	assert.Equal(t, "plain", StripIssueKey("  plain "))
}

func TestExtractDueDateKeywords(t *testing.T) {
	tests := []struct {
		text  string
		kind  model.DueDateType
		date  string
		start string
	}{
		{"call mom @today", model.DueToday, "2026-10-16", ""},
		{"ship it @Tomorrow please", model.DueTomorrow, "2026-10-17", ""},
		{"@thisweek review", model.DueThisWeek, "2026-10-18", "2026-10-16"},
		{"plan @nextweek", model.DueNextWeek, "2026-10-25", "2026-10-19"},
		{"read book @later", model.DueLater, "2026-11-15", ""},
		{"old idea @forgotten", model.DueForgotten, "2025-10-16", ""},
		{"позвонить @завтра", model.DueTomorrow, "2026-10-17", ""},
		{"отчёт @СЛЕДНЕДЕЛЯ", model.DueNextWeek, "2026-10-25", "2026-10-19"},
		{"книга @позднее", model.DueLater, "2026-11-15", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			due := ExtractDueDateAt(tt.text, friday)
			require.NotNil(t, due)
			assert.Equal(t, tt.kind, due.DueDateType)
			assert.Equal(t, tt.date, due.DueDate.String())
			assert.NotEmpty(t, due.DueDateLabel)
			if tt.start == "" {
				assert.Nil(t, due.DueDateStart)
			} else {
				require.NotNil(t, due.DueDateStart)
				assert.Equal(t, tt.start, due.DueDateStart.String())
			}
		})
	}
}

func TestExtractDueDateRejects(t *testing.T) {
	for _, text := range []string{
		"... @bogus ...",
		"no tag at all",
		"email me@",
		"@todayish",
		"",
	} {
		assert.Nil(t, ExtractDueDateAt(text, friday), text)
	}
}

func TestExtractDueDateOnlyFirstTagCounts(t *testing.T) {
	assert.Nil(t, ExtractDueDateAt("@bogus then @today", friday))

	due := ExtractDueDateAt("@later then @today", friday)
	require.NotNil(t, due)
	assert.Equal(t, model.DueLater, due.DueDateType)
}

func TestExtractDueDateUsesCurrentTime(t *testing.T) {
	due := ExtractDueDate("... @tomorrow ...")
	require.NotNil(t, due)
	assert.Equal(t, model.DueTomorrow, due.DueDateType)
	assert.Equal(t, AddDays(Today(time.Now()), 1).String(), due.DueDate.String())
}

func TestResolveThisWeekOnSunday(t *testing.T) {
	sunday := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.Local)

	due, err := ResolveDateKeywordAt(model.DueThisWeek, sunday)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", due.DueDateStart.String())
	assert.Equal(t, "2026-10-25", due.DueDate.String())

	due, err = ResolveDateKeywordAt(model.DueNextWeek, sunday)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-26", due.DueDateStart.String())
	assert.Equal(t, "2026-11-01", due.DueDate.String())
}

func TestResolveUnknownKeyword(t *testing.T) {
	_, err := ResolveDateKeywordAt("someday", friday)
	assert.Error(t, err)
}

func TestStripDueTag(t *testing.T) {
	assert.Equal(t, "call mom", StripDueTag("call mom @Today"))
	assert.Equal(t, "a  b @later", StripDueTag("a @today b @later"))
	assert.Equal(t, "untouched", StripDueTag("untouched"))
}

func TestIsOverdue(t *testing.T) {
	assert.True(t, IsOverdueAt(date(t, "2026-10-15"), friday))
	assert.True(t, IsOverdueAt(date(t, "2025-10-16"), friday))
	assert.False(t, IsOverdueAt(date(t, "2026-10-16"), friday), "today is not overdue")
	assert.False(t, IsOverdueAt(date(t, "2026-10-17"), friday))

	lateNight := time.Date(2026, time.October, 16, 23, 59, 0, 0, time.Local)
	assert.False(t, IsOverdueAt(date(t, "2026-10-16"), lateNight))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "16 October", FormatDay(date(t, "2026-10-16")))
	assert.Equal(t, "19 - 25 Oct", FormatRange(date(t, "2026-10-19"), date(t, "2026-10-25")))
	assert.Equal(t, "28 Sep - 4 Oct", FormatRange(date(t, "2026-09-28"), date(t, "2026-10-04")))
}

// parseDate reads a YYYY-MM-DD calendar date.
func parseDate(s string) (strfmt.Date, error) {
	var d strfmt.Date
	err := d.UnmarshalText([]byte(s))
	return d, err
}
