package domain

import "time"

// PhaseRecord is one immutable entry in a day's log.
type PhaseRecord struct {
	Kind      RecordKind
	Timestamp time.Time
}

// Counts are the aggregate counters of one day.
type Counts struct {
	Completed int
	Breaks    int
	Cancelled int
}

// DailyStats is the record log of one local calendar date. Legacy holds the
// bare numeric counters of entries written before the log existed. Logged is
// set when the stored log has any records at all, including ones of a kind
// this version cannot read and that are absent from Records.
type DailyStats struct {
	Date    Date
	Records []PhaseRecord
	Legacy  Counts
	Logged  bool
}

// Counts derives the day's counters. A non-empty record log is always the
// source of truth, even when none of its records are readable; the legacy
// counters are used only when there is no log.
func (d DailyStats) Counts() Counts {
	if d.Logged || len(d.Records) > 0 {
		return CountRecords(d.Records)
	}
	return d.Legacy
}

// CountRecords tallies a record log.
func CountRecords(records []PhaseRecord) Counts {
	var c Counts
	for _, r := range records {
		switch r.Kind {
		case RecordWork:
			c.Completed++
		case RecordShortBreak, RecordLongBreak:
			c.Breaks++
		case RecordCancelled:
			c.Cancelled++
		}
	}
	return c
}

// DayCount is one bar of the weekly chart.
type DayCount struct {
	Date      Date
	Completed int
}
