package benchlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFilename(t *testing.T) {
	params, ok := ParseFilename(
		"delay_10ms_bw_1gbps_n_4_k_2_m_3_b_1_party7.txt",
	)
	if !ok {
		t.Fatal("expected filename to match")
	}

	want := Params{
		Delay: "10ms",
		BW:    "1gbps",
		N:     4,
		K:     2,
		M:     3,
		B:     1,
		Party: 7,
	}
	if params != want {
		t.Errorf("params = %+v, want %+v", params, want)
	}
}

func TestParseFilenameRejects(t *testing.T) {
	names := []string{
		"",
		"results.txt",
		"delay_10ms_bw_1gbps_n_4_k_2_m_3_b_1.txt",
		"delay_10ms_bw_1gbps_n_4_k_2_m_3_b_1_party1.log",
		"delay_10ms_bw_1gbps_n_4_k_2_m_3_b_1_party1.txt.bak",
		"delay_10ms_bw_1gbps_n_x_k_2_m_3_b_1_party1.txt",
		"delay_10 ms_bw_1gbps_n_4_k_2_m_3_b_1_party1.txt",
		"xdelay_10ms_bw_1gbps_n_4_k_2_m_3_b_1_party1.txt",
	}

	for _, name := range names {
		if _, ok := ParseFilename(name); ok {
			t.Errorf("ParseFilename(%q) matched, want reject", name)
		}
	}
}

func TestSummarize(t *testing.T) {
	path := writeLog(t, "run.txt", []string{
		"Completed all iterations. job: 0 ctxt_per_job: 5, n: 4, microseconds: 1000",
		"Completed all iterations. job: 1 ctxt_per_job: 5, n: 4, microseconds: 2000",
		"Completed all iterations. job: 2 ctxt_per_job: 5, n: 4, microseconds: 3000",
	})

	summary, err := Summarize(path)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.CtxtPerJob != 5 {
		t.Errorf("CtxtPerJob = %d, want 5", summary.CtxtPerJob)
	}
	if summary.NumJobs != 3 {
		t.Errorf("NumJobs = %d, want 3", summary.NumJobs)
	}
	if summary.AverageMilliseconds != 2.0 {
		t.Errorf(
			"AverageMilliseconds = %v, want 2.0",
			summary.AverageMilliseconds,
		)
	}
}

func TestSummarizeEmptyFile(t *testing.T) {
	path := writeLog(t, "empty.txt", nil)

	summary, err := Summarize(path)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary != (Summary{}) {
		t.Errorf("summary = %+v, want zero value", summary)
	}
}

func TestSummarizeFirstLineCounts(t *testing.T) {
	// The ctxt_per_job line is also a timing sample.
	path := writeLog(t, "run.txt", []string{
		"job: 0 ctxt_per_job: 3, microseconds: 4000",
	})

	summary, err := Summarize(path)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.NumJobs != 1 {
		t.Errorf("NumJobs = %d, want 1", summary.NumJobs)
	}
	if summary.AverageMilliseconds != 4.0 {
		t.Errorf(
			"AverageMilliseconds = %v, want 4.0",
			summary.AverageMilliseconds,
		)
	}
}

func TestSummarizeMissingMarkers(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		wantErr string
	}{
		{
			name:    "no ctxt_per_job on first line",
			lines:   []string{"job: 0, microseconds: 1000"},
			wantErr: "ctxt_per_job",
		},
		{
			name: "no microseconds on later line",
			lines: []string{
				"ctxt_per_job: 5, microseconds: 1000",
				"job finished",
			},
			wantErr: "microseconds",
		},
		{
			name:    "non-numeric microseconds",
			lines:   []string{"ctxt_per_job: 5, microseconds: fast"},
			wantErr: "microseconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLog(t, "bad.txt", tt.lines)

			_, err := Summarize(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()

	writeLogIn(t, dir, "delay_10ms_bw_1gbps_n_4_k_2_m_3_b_1_party1.txt",
		[]string{"ctxt_per_job: 5, microseconds: 1000"})
	writeLogIn(t, dir, "delay_10ms_bw_1gbps_n_4_k_2_m_3_b_1_party2.txt",
		[]string{"ctxt_per_job: 5, microseconds: 3000"})

	// Non-matching names are silently skipped, whatever their content.
	writeLogIn(t, dir, "notes.txt", []string{"not a benchmark log"})
	writeLogIn(t, dir, "summary.csv", []string{"a,b"})

	records, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	parties := map[int]bool{}
	for _, rec := range records {
		parties[rec.Party] = true

		if rec.CtxtPerJob != 5 {
			t.Errorf("party %d CtxtPerJob = %d, want 5",
				rec.Party, rec.CtxtPerJob)
		}
	}

	if !parties[1] || !parties[2] {
		t.Errorf("parties = %v, want 1 and 2", parties)
	}
}

func TestScanDirEmpty(t *testing.T) {
	records, err := ScanDir(t.TempDir())
	if err != nil {
		t.Fatalf("ScanDir failed: %v", err)
	}

	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestScanDirMissing(t *testing.T) {
	if _, err := ScanDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestScanDirBadBodyFailsScan(t *testing.T) {
	dir := t.TempDir()

	writeLogIn(t, dir, "delay_10ms_bw_1gbps_n_4_k_2_m_3_b_1_party1.txt",
		[]string{"ctxt_per_job: 5, microseconds: 1000"})
	writeLogIn(t, dir, "delay_10ms_bw_1gbps_n_4_k_2_m_3_b_1_party2.txt",
		[]string{"garbage"})

	if _, err := ScanDir(dir); err == nil {
		t.Error("expected scan to fail on malformed body")
	}
}

func writeLog(t *testing.T, name string, lines []string) string {
	t.Helper()

	return writeLogIn(t, t.TempDir(), name, lines)
}

func writeLogIn(t *testing.T, dir, name string, lines []string) string {
	t.Helper()

	var body string
	if len(lines) > 0 {
		body = strings.Join(lines, "\n") + "\n"
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func ExampleParseFilename() {
	params, ok := ParseFilename(
		"delay_50ms_bw_100mbps_n_8_k_4_m_2_b_1_party3.txt",
	)

	fmt.Println(ok, params.Delay, params.BW, params.N, params.Party)
	// Output: true 50ms 100mbps 8 3
}
