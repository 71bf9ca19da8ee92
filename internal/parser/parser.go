// Package parser converts the flattened text of a portal attendance page
// into a structured snapshot. Parsing never fails: whatever cannot be
// located is simply left absent, and callers decide what absence means.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/campusview/attendance-api/internal/models"
)

// The aggregate row of every section carries this marker instead of a
// subject name and must never appear in a per-subject list.
const totalMarker = "TOTAL"

var (
	identityRe  = regexp.MustCompile(`([A-Z\s]+)'s Attendance Data \(([A-Z0-9]+)\)`)
	updatedRe   = regexp.MustCompile(`Updated on:[ \t]*([^\n]+)`)
	todayRe     = regexp.MustCompile(`Today's Attendance \(([^)]+)\)`)
	yesterdayRe = regexp.MustCompile(`Yesterday's Attendance \(([^)]+)\)`)
	dayBeforeRe = regexp.MustCompile(`Day before Yesterday's Attendance \(([^)]+)\)`)

	totalRowRe   = regexp.MustCompile(`TOTAL\s+(\d+)\s+(\d+)\s+([\d.]+)`)
	subjectRowRe = regexp.MustCompile(`(\d+)\s+([A-Za-z][A-Za-z0-9\s-]*?)\s+(\d+)\s+(\d+)\s+([\d.]+)`)
)

const totalHeading = "Total Attendance"

// Section boundaries. A window's span ends at the first occurrence of any
// of its possible successor headings, or at end of text. "Day before" alone
// is enough to bound a span because it prefixes the full day-before heading.
var (
	todayBounds     = []string{"Yesterday's Attendance", "Day before", totalHeading}
	yesterdayBounds = []string{"Day before", totalHeading}
	dayBeforeBounds = []string{totalHeading}
	totalBounds     = []string{"Yesterday's Attendance", "Day before"}
)

// Parse extracts an attendance snapshot from flattened page text. Headings
// are located by first match; sections reordered or duplicated at the
// source are not defended against.
func Parse(text string) models.AttendanceSnapshot {
	var snap models.AttendanceSnapshot

	if m := identityRe.FindStringSubmatch(text); m != nil {
		snap.StudentName = strings.TrimSpace(m[1])
		snap.RollNumber = m[2]
	}

	if m := updatedRe.FindStringSubmatch(text); m != nil {
		snap.UpdatedOn = strings.TrimSpace(m[1])
	}

	snap.Today = parseWindow(text, todayRe, todayBounds)
	snap.Yesterday = parseWindow(text, yesterdayRe, yesterdayBounds)
	snap.DayBefore = parseWindow(text, dayBeforeRe, dayBeforeBounds)

	if span, ok := totalSpan(text); ok {
		if m := totalRowRe.FindStringSubmatch(span); m != nil {
			if pct, err := strconv.ParseFloat(m[3], 64); err == nil {
				snap.OverallPercent = &pct
			}
		}
		snap.OverallBreakdown = parseSubjectRows(span)
	}

	return snap
}

// parseWindow extracts one recency window. A missing heading yields nil;
// a heading without an aggregate row yields "0/0".
func parseWindow(text string, headingRe *regexp.Regexp, bounds []string) *models.WindowReport {
	loc := headingRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}

	w := &models.WindowReport{
		Date:             text[loc[2]:loc[3]],
		AttendedOverHeld: "0/0",
	}

	span := text[loc[1]:sectionEnd(text, loc[1], bounds)]
	if m := totalRowRe.FindStringSubmatch(span); m != nil {
		w.AttendedOverHeld = m[2] + "/" + m[1]
	}
	w.Subjects = parseSubjectRows(span)

	return w
}

// totalSpan returns the cumulative "Total Attendance" section.
func totalSpan(text string) (string, bool) {
	start := strings.Index(text, totalHeading)
	if start < 0 {
		return "", false
	}
	from := start + len(totalHeading)
	return text[from:sectionEnd(text, from, totalBounds)], true
}

// sectionEnd computes the exclusive end offset of a section starting at
// from: the minimum offset of any boundary heading, else end of text.
func sectionEnd(text string, from int, bounds []string) int {
	end := len(text)
	for _, b := range bounds {
		if idx := strings.Index(text[from:], b); idx >= 0 && from+idx < end {
			end = from + idx
		}
	}
	return end
}

// parseSubjectRows extracts every subject row within a section span in
// order of appearance. Rows carrying the aggregate marker or unparseable
// numbers are skipped, never reported as errors.
func parseSubjectRows(span string) []models.SubjectRecord {
	matches := subjectRowRe.FindAllStringSubmatch(span, -1)
	if matches == nil {
		return nil
	}

	records := make([]models.SubjectRecord, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(m[2])
		if name == totalMarker {
			continue
		}
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		held, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		attended, err := strconv.Atoi(m[4])
		if err != nil {
			continue
		}
		pct, err := strconv.ParseFloat(m[5], 64)
		if err != nil {
			continue
		}
		records = append(records, models.SubjectRecord{
			SeqNo:    seq,
			Subject:  name,
			Held:     held,
			Attended: attended,
			Percent:  pct,
		})
	}
	if len(records) == 0 {
		return nil
	}
	return records
}
