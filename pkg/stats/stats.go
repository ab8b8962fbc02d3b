package stats

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hako/durafmt"
)

type (

	// Stats collects pipeline counters over one command execution. The
	// counters are atomics because file workers submit concurrently.
	Stats struct {
		ExecutionStartTime time.Time
		ExecutionEndTime   time.Time

		FilesFetchedCount  int64
		CandidatesCount    int64
		RejectedCount      int64
		DuplicatesCount    int64
		SecretsStoredCount int64

		QueryDurations   DurationStats
		FileDurations    DurationStats
		KeyTypeDurations DurationStats
	}
	DurationStats struct {
		stats []*DurationStat
		mu    sync.Mutex
	}
	DurationStat struct {
		Item string
		Dur  time.Duration
	}
)

func New() *Stats {
	return &Stats{
		QueryDurations:   NewAggregatedDurationStats(),
		FileDurations:    NewUniqueDurationStats(),
		KeyTypeDurations: NewAggregatedDurationStats(),
	}
}

func (s *Stats) IncrFilesFetched()  { atomic.AddInt64(&s.FilesFetchedCount, 1) }
func (s *Stats) IncrDuplicates()    { atomic.AddInt64(&s.DuplicatesCount, 1) }
func (s *Stats) IncrSecretsStored() { atomic.AddInt64(&s.SecretsStoredCount, 1) }
func (s *Stats) IncrRejected()      { atomic.AddInt64(&s.RejectedCount, 1) }

func (s *Stats) AddCandidates(n int) { atomic.AddInt64(&s.CandidatesCount, int64(n)) }

// ExecutionDurationHuman renders the wall time the way the done message
// prints it
func (s *Stats) ExecutionDurationHuman() string {
	return durafmt.ParseShort(s.ExecutionEndTime.Sub(s.ExecutionStartTime)).String()
}

//
// DurationStats

const limit = 10

func NewUniqueDurationStats() DurationStats {
	return DurationStats{stats: make([]*DurationStat, limit)}
}

func NewAggregatedDurationStats() DurationStats {
	return DurationStats{}
}

func (ss *DurationStats) Stats() (result []*DurationStat) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.stats == nil {
		return nil
	}

	stats := ss.stats

	// Unique durations will already be sorted
	sort.Slice(stats, func(i, j int) bool {
		return stats[i] != nil && stats[j] != nil && stats[i].Dur > stats[j].Dur
	})

	for i, stat := range stats {
		if stat == nil || i == limit {
			break
		}
		result = append(result, stat)
	}

	return
}

func (ss *DurationStats) SubmitUniqueDuration(dur time.Duration, item string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	for i, stat := range ss.stats {
		if stat == nil {
			ss.stats[i] = &DurationStat{Item: item, Dur: dur}
			return
		}
		if stat.Dur < dur {
			copy(ss.stats[i+1:], ss.stats[i:])
			ss.stats[i] = &DurationStat{Item: item, Dur: dur}
			return
		}
	}
}

func (ss *DurationStats) SubmitAggregatedDuration(dur time.Duration, item string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	for i, stat := range ss.stats {
		if stat.Item == item {
			ss.stats[i].Dur = stat.Dur + dur
			return
		}
	}

	ss.stats = append(ss.stats, &DurationStat{Item: item, Dur: dur})
}
