package models

// SubjectRecord is a single per-subject attendance row as reported by the
// portal. Percent is the portal's own figure and is not recomputed.
type SubjectRecord struct {
	SeqNo    int     `json:"sNo"`
	Subject  string  `json:"subject"`
	Held     int     `json:"held"`
	Attended int     `json:"attended"`
	Percent  float64 `json:"percent"`
}

// WindowReport captures one recency window (today, yesterday, day before
// yesterday). AttendedOverHeld is the aggregate "attended/held" string for
// the window; Subjects preserves the portal's row order.
type WindowReport struct {
	Date             string          `json:"date"`
	AttendedOverHeld string          `json:"attendedOverHeld"`
	Subjects         []SubjectRecord `json:"subjects"`
}

// AttendanceSnapshot is the fully parsed attendance state for one student
// at fetch time. Absent fields stay at their zero value; absent windows are
// nil pointers.
type AttendanceSnapshot struct {
	StudentName      string          `json:"name,omitempty"`
	RollNumber       string          `json:"roll,omitempty"`
	UpdatedOn        string          `json:"updatedOn,omitempty"`
	Today            *WindowReport   `json:"today,omitempty"`
	Yesterday        *WindowReport   `json:"yesterday,omitempty"`
	DayBefore        *WindowReport   `json:"dayBefore,omitempty"`
	OverallBreakdown []SubjectRecord `json:"totalBreakdown,omitempty"`
	OverallPercent   *float64        `json:"totalPercent,omitempty"`
}

// HasIdentity reports whether the snapshot carries at least one identity
// field. A page that parses to no identity is treated as invalid upstream.
func (s AttendanceSnapshot) HasIdentity() bool {
	return s.StudentName != "" || s.RollNumber != ""
}

// Clone returns a deep copy so cached snapshots are never shared by
// reference with callers.
func (s AttendanceSnapshot) Clone() AttendanceSnapshot {
	out := s
	out.Today = cloneWindow(s.Today)
	out.Yesterday = cloneWindow(s.Yesterday)
	out.DayBefore = cloneWindow(s.DayBefore)
	if s.OverallBreakdown != nil {
		out.OverallBreakdown = append([]SubjectRecord(nil), s.OverallBreakdown...)
	}
	if s.OverallPercent != nil {
		pct := *s.OverallPercent
		out.OverallPercent = &pct
	}
	return out
}

func cloneWindow(w *WindowReport) *WindowReport {
	if w == nil {
		return nil
	}
	out := *w
	if w.Subjects != nil {
		out.Subjects = append([]SubjectRecord(nil), w.Subjects...)
	}
	return &out
}

// FetchResult is the per-roll-number outcome of a group fetch. Exactly one
// of Snapshot and Error is set, gated by Success.
type FetchResult struct {
	RollNumber string              `json:"roll"`
	Success    bool                `json:"success"`
	Snapshot   *AttendanceSnapshot `json:"data,omitempty"`
	Error      string              `json:"error,omitempty"`
}
