// Package aggregate collapses per-file benchmark records into one row
// per configuration, merging the samples of all parties that ran the
// same scenario.
package aggregate

import (
	"math"
	"sort"

	"github.com/mpclab/benchmerge/benchlog"
)

// Key identifies a benchmark scenario independently of which party
// produced the sample. Two files differing only in party share a Key.
type Key struct {
	Delay      string `json:"delay"`
	BW         string `json:"bw"`
	N          int    `json:"n"`
	K          int    `json:"k"`
	M          int    `json:"m"`
	B          int    `json:"b"`
	CtxtPerJob int    `json:"ctxt_per_job"`
}

// KeyOf extracts the grouping key from a file record.
func KeyOf(rec benchlog.FileRecord) Key {
	return Key{
		Delay:      rec.Delay,
		BW:         rec.BW,
		N:          rec.N,
		K:          rec.K,
		M:          rec.M,
		B:          rec.B,
		CtxtPerJob: rec.CtxtPerJob,
	}
}

// Record is the cross-party summary for one configuration.
type Record struct {
	Key
	OverallAverageMilliseconds float64 `json:"overall_average_milliseconds"`
	NumParties                 int     `json:"num_parties"`
	AvgJobsPerParty            int     `json:"avg_jobs_per_party"`
	TotalContextsPerParty      int     `json:"total_contexts_per_party"`
	TasksPerSecond             float64 `json:"tasks_per_second"`
}

type accumulator struct {
	sumAvgMs  float64
	numFiles  int
	totalJobs int
}

// Aggregate groups records by Key and derives the cross-party
// statistics for each group. Output rows are sorted by Key so repeated
// runs over the same input produce identical tables.
//
// A group whose overall average is zero gets a tasks_per_second of
// +Inf; such rows are kept rather than dropped.
func Aggregate(records []benchlog.FileRecord) []Record {
	groups := make(map[Key]*accumulator)

	for _, rec := range records {
		key := KeyOf(rec)

		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{}
			groups[key] = acc
		}

		acc.sumAvgMs += rec.AverageMilliseconds
		acc.numFiles++
		acc.totalJobs += rec.NumJobs
	}

	out := make([]Record, 0, len(groups))

	for key, acc := range groups {
		overallMs := acc.sumAvgMs / float64(acc.numFiles)
		avgJobs := int(math.Round(
			float64(acc.totalJobs) / float64(acc.numFiles),
		))
		totalCtxts := key.CtxtPerJob * avgJobs
		tasksPerSec := round2(
			float64(totalCtxts) / (overallMs / 1000),
		)

		out = append(out, Record{
			Key:                        key,
			OverallAverageMilliseconds: overallMs,
			NumParties:                 acc.numFiles,
			AvgJobsPerParty:            avgJobs,
			TotalContextsPerParty:      totalCtxts,
			TasksPerSecond:             tasksPerSec,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return lessKey(out[i].Key, out[j].Key)
	})

	return out
}

// SortRecords orders per-file records by configuration key, then
// party, for stable report output.
func SortRecords(records []benchlog.FileRecord) {
	sort.Slice(records, func(i, j int) bool {
		ki, kj := KeyOf(records[i]), KeyOf(records[j])
		if ki != kj {
			return lessKey(ki, kj)
		}

		return records[i].Party < records[j].Party
	})
}

func lessKey(a, b Key) bool {
	switch {
	case a.Delay != b.Delay:
		return a.Delay < b.Delay
	case a.BW != b.BW:
		return a.BW < b.BW
	case a.N != b.N:
		return a.N < b.N
	case a.K != b.K:
		return a.K < b.K
	case a.M != b.M:
		return a.M < b.M
	case a.B != b.B:
		return a.B < b.B
	default:
		return a.CtxtPerJob < b.CtxtPerJob
	}
}

func round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}

	return math.Round(v*100) / 100
}
