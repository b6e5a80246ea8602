// Package report serializes benchmark tables to CSV files and renders
// them for console inspection.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mpclab/benchmerge/aggregate"
	"github.com/mpclab/benchmerge/benchlog"
)

var fileHeader = []string{
	"delay", "bw", "n", "k", "m", "b", "party",
	"average_milliseconds", "ctxt_per_job", "num_jobs",
}

var aggregatedHeader = []string{
	"delay", "bw", "n", "k", "m", "b", "ctxt_per_job",
	"overall_average_milliseconds", "num_parties",
	"avg_jobs_per_party", "total_contexts_per_party",
	"tasks_per_second",
}

// WriteFilesCSV writes the per-file table to w as CSV with a header
// row and no index column. An empty record set still gets the header.
func WriteFilesCSV(w io.Writer, records []benchlog.FileRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(fileHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Delay,
			rec.BW,
			strconv.Itoa(rec.N),
			strconv.Itoa(rec.K),
			strconv.Itoa(rec.M),
			strconv.Itoa(rec.B),
			strconv.Itoa(rec.Party),
			formatFloat(rec.AverageMilliseconds),
			strconv.Itoa(rec.CtxtPerJob),
			strconv.Itoa(rec.NumJobs),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteAggregatedCSV writes the cross-party table to w as CSV with a
// header row and no index column.
func WriteAggregatedCSV(w io.Writer, records []aggregate.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(aggregatedHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Delay,
			rec.BW,
			strconv.Itoa(rec.N),
			strconv.Itoa(rec.K),
			strconv.Itoa(rec.M),
			strconv.Itoa(rec.B),
			strconv.Itoa(rec.CtxtPerJob),
			formatFloat(rec.OverallAverageMilliseconds),
			strconv.Itoa(rec.NumParties),
			strconv.Itoa(rec.AvgJobsPerParty),
			strconv.Itoa(rec.TotalContextsPerParty),
			formatFloat(rec.TasksPerSecond),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Generate renders both tables to w as aligned text for interactive
// inspection.
func Generate(
	w io.Writer,
	files []benchlog.FileRecord,
	aggregated []aggregate.Record,
) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "--- Individual File Averages (%d files) ---\n\n",
		len(files))
	writeHeader(tw, fileHeader)

	for _, rec := range files {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\t%d\t%d\n",
			rec.Delay, rec.BW, rec.N, rec.K, rec.M, rec.B, rec.Party,
			formatFloat(rec.AverageMilliseconds),
			rec.CtxtPerJob, rec.NumJobs,
		)
	}

	fmt.Fprintf(tw, "\n--- Aggregated Averages (%d configurations) ---\n\n",
		len(aggregated))
	writeHeader(tw, aggregatedHeader)

	for _, rec := range aggregated {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\t%d\t%d\t%d\t%s\n",
			rec.Delay, rec.BW, rec.N, rec.K, rec.M, rec.B,
			rec.CtxtPerJob,
			formatFloat(rec.OverallAverageMilliseconds),
			rec.NumParties, rec.AvgJobsPerParty,
			rec.TotalContextsPerParty,
			formatFloat(rec.TasksPerSecond),
		)
	}

	fmt.Fprintln(tw)

	return tw.Flush()
}

// Envelope is the machine-readable report: both tables plus run
// metadata.
type Envelope struct {
	RunID       string                `json:"run_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Files       []benchlog.FileRecord `json:"files"`
	Aggregated  []aggregate.Record    `json:"aggregated"`
}

// GenerateJSON writes the envelope as indented JSON to w.
func GenerateJSON(w io.Writer, env Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(env)
}

func writeHeader(tw *tabwriter.Writer, header []string) {
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}

	fmt.Fprintln(tw, strings.Join(sep, "\t"))
}

// formatFloat uses the shortest round-trip decimal representation, so
// 2.0 prints as "2" and 3333.33 keeps its decimals. Non-finite rates
// from zero-average groups render as "+Inf" or "NaN".
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
