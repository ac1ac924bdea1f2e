package stats

import (
	"encoding/json"
	"time"

	"github.com/hammamikhairi/pomotech/internal/domain"
)

// timestampLayout matches the ISO-8601 form browsers produce
// (UTC, millisecond precision), so files written by either build mix.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// entry is the persisted JSON layout of one day. Every field is optional;
// old entries carry only the numeric counters.
type entry struct {
	Completed *int          `json:"completed,omitempty"`
	Breaks    *int          `json:"breaks,omitempty"`
	Cancelled *int          `json:"cancelled,omitempty"`
	Records   []recordEntry `json:"records,omitempty"`
}

type recordEntry struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// decodeEntry parses a stored value. Any parse error means the caller
// should treat the day as empty.
func decodeEntry(raw string) (entry, error) {
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return entry{}, err
	}
	return e, nil
}

// toDaily converts the persisted form. Records of a type this version does
// not know are dropped; a bad timestamp keeps the record with a zero time.
func (e entry) toDaily(date domain.Date) (domain.DailyStats, int) {
	day := domain.DailyStats{
		Date:   date,
		Logged: len(e.Records) > 0,
		Legacy: domain.Counts{
			Completed: deref(e.Completed),
			Breaks:    deref(e.Breaks),
			Cancelled: deref(e.Cancelled),
		},
	}

	skipped := 0
	for _, r := range e.Records {
		kind, ok := domain.RecordKindFromString(r.Type)
		if !ok {
			skipped++
			continue
		}
		day.Records = append(day.Records, domain.PhaseRecord{Kind: kind, Timestamp: parseTimestamp(r.Timestamp)})
	}
	return day, skipped
}

// appendRecord adds one record to the raw log and rewrites the numeric
// counters as the counts of the log, for readers that only know those
// fields. Records of unknown types are carried over untouched.
func (e *entry) appendRecord(kind domain.RecordKind, at time.Time, date domain.Date) {
	e.Records = append(e.Records, recordEntry{
		Type:      kind.String(),
		Timestamp: stampCeil(at).Format(timestampLayout),
	})
	day, _ := e.toDaily(date)
	c := day.Counts()
	e.Completed, e.Breaks, e.Cancelled = &c.Completed, &c.Breaks, &c.Cancelled
}

// stampCeil rounds t up to the millisecond in UTC, so the stored stamp is
// never earlier than t.
func stampCeil(t time.Time) time.Time {
	t = t.UTC()
	floor := t.Truncate(time.Millisecond)
	if t.Sub(floor) > 0 {
		return floor.Add(time.Millisecond)
	}
	return floor
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
