package index

import (
	"sort"
	"time"

	"github.com/poiesic/recollect/core"
)

type timestampedRange struct {
	timestamp time.Time
	textRange core.TextRange
}

// TimestampIndex is the in-memory TimestampToTextRangeIndex
// implementation: a timestamp-ordered list of message text ranges.
type TimestampIndex struct {
	entries []timestampedRange
}

var _ TimestampToTextRangeIndex = (*TimestampIndex)(nil)

// NewTimestampIndex creates an empty timestamp index.
func NewTimestampIndex() *TimestampIndex {
	return &TimestampIndex{}
}

// AddTimestamp registers the message at the ordinal with its timestamp,
// keeping entries sorted. Zero timestamps are not indexed.
func (x *TimestampIndex) AddTimestamp(messageOrdinal int, timestamp time.Time) bool {
	if timestamp.IsZero() {
		return false
	}

	end := core.TextLocation{MessageOrdinal: messageOrdinal + 1}
	entry := timestampedRange{
		timestamp: timestamp,
		textRange: core.TextRange{
			Start: core.TextLocation{MessageOrdinal: messageOrdinal},
			End:   &end,
		},
	}

	at := sort.Search(len(x.entries), func(i int) bool {
		return x.entries[i].timestamp.After(timestamp)
	})
	x.entries = append(x.entries, timestampedRange{})
	copy(x.entries[at+1:], x.entries[at:])
	x.entries[at] = entry
	return true
}

// LookupRange returns the text ranges of messages inside the date
// range, in timestamp order. The range is half-open: a zero End leaves
// it open on the right.
func (x *TimestampIndex) LookupRange(dateRange core.DateRange) []core.TextRange {
	first := sort.Search(len(x.entries), func(i int) bool {
		return !x.entries[i].timestamp.Before(dateRange.Start)
	})

	var ranges []core.TextRange
	for i := first; i < len(x.entries); i++ {
		if !dateRange.End.IsZero() && !x.entries[i].timestamp.Before(dateRange.End) {
			break
		}
		ranges = append(ranges, x.entries[i].textRange)
	}
	return ranges
}
