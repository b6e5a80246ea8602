// Package benchlog parses benchmark log files produced by MPC protocol
// runs. Each file encodes its run parameters in the filename and one
// timing sample per line in the body.
package benchlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// filenamePattern matches the fixed benchmark log naming scheme, e.g.
// delay_10ms_bw_1gbps_n_4_k_2_m_3_b_1_party1.txt. The delay and
// bandwidth labels are opaque tokens; everything else is a decimal
// integer.
var filenamePattern = regexp.MustCompile(
	`^delay_(\S+)_bw_(\S+)_n_(\d+)_k_(\d+)_m_(\d+)_b_(\d+)_party(\d+)\.txt$`,
)

const (
	ctxtMarker  = "ctxt_per_job: "
	microMarker = "microseconds: "
)

// Params holds the run parameters embedded in a log filename.
type Params struct {
	Delay string `json:"delay"`
	BW    string `json:"bw"`
	N     int    `json:"n"`
	K     int    `json:"k"`
	M     int    `json:"m"`
	B     int    `json:"b"`
	Party int    `json:"party"`
}

// Summary holds the timing statistics extracted from a log body.
type Summary struct {
	AverageMilliseconds float64 `json:"average_milliseconds"`
	CtxtPerJob          int     `json:"ctxt_per_job"`
	NumJobs             int     `json:"num_jobs"`
}

// FileRecord is one fully parsed benchmark log: filename parameters
// plus body statistics. Records are immutable once built.
type FileRecord struct {
	Params
	Summary
}

// ParseFilename extracts run parameters from a bare log filename.
// It reports ok=false for any name that does not match the full
// naming scheme; such files are excluded from all reports.
func ParseFilename(name string) (Params, bool) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return Params{}, false
	}

	// The integer groups only admit digits, so Atoi cannot fail here.
	n, _ := strconv.Atoi(m[3])
	k, _ := strconv.Atoi(m[4])
	mm, _ := strconv.Atoi(m[5])
	b, _ := strconv.Atoi(m[6])
	party, _ := strconv.Atoi(m[7])

	return Params{
		Delay: m[1],
		BW:    m[2],
		N:     n,
		K:     k,
		M:     mm,
		B:     b,
		Party: party,
	}, true
}

// Summarize reads a log file and computes its timing summary.
//
// The first line must carry the ctxt_per_job count, terminated by a
// comma; every line (the first included) must end with a
// "microseconds: <int>" field, and each contributes one sample to the
// average. An empty file yields a zero Summary.
func Summarize(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	var (
		summary  Summary
		totalMic int64
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		summary.NumJobs++

		if summary.NumJobs == 1 {
			ctxt, err := parseCtxtPerJob(line)
			if err != nil {
				return Summary{}, fmt.Errorf("%s: %w", path, err)
			}

			summary.CtxtPerJob = ctxt
		}

		mic, err := parseMicroseconds(line)
		if err != nil {
			return Summary{}, fmt.Errorf(
				"%s line %d: %w", path, summary.NumJobs, err,
			)
		}

		totalMic += mic
	}

	if err := scanner.Err(); err != nil {
		return Summary{}, fmt.Errorf("read log %s: %w", path, err)
	}

	if summary.NumJobs > 0 {
		summary.AverageMilliseconds =
			float64(totalMic) / float64(summary.NumJobs*1000)
	}

	return summary, nil
}

// ScanDir walks every *.txt file in dir, keeps those whose names match
// the benchmark naming scheme, and returns one FileRecord per match.
// A malformed body in any matched file fails the whole scan; files
// with non-matching names are skipped without diagnostics.
func ScanDir(dir string) ([]FileRecord, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}

	if len(paths) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("scan dir: %w", err)
		}
	}

	records := make([]FileRecord, 0, len(paths))

	for _, path := range paths {
		params, ok := ParseFilename(filepath.Base(path))
		if !ok {
			continue
		}

		summary, err := Summarize(path)
		if err != nil {
			return nil, err
		}

		records = append(records, FileRecord{
			Params:  params,
			Summary: summary,
		})
	}

	return records, nil
}

func parseCtxtPerJob(line string) (int, error) {
	_, rest, found := strings.Cut(line, ctxtMarker)
	if !found {
		return 0, fmt.Errorf("first line missing %q marker", ctxtMarker)
	}

	value, _, _ := strings.Cut(rest, ",")

	ctxt, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse ctxt_per_job %q: %w", value, err)
	}

	return ctxt, nil
}

func parseMicroseconds(line string) (int64, error) {
	_, rest, found := strings.Cut(line, microMarker)
	if !found {
		return 0, fmt.Errorf("missing %q marker", microMarker)
	}

	mic, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse microseconds %q: %w", rest, err)
	}

	return mic, nil
}
