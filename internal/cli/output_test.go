package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/invoker/internal/domain"
)

func TestOutput_Report(t *testing.T) {
	run := domain.NewRun("smoke.json", 3)
	run.MarkRunning()
	now := time.Now()
	run.Executions = append(run.Executions,
		domain.Execution{Index: 0, ObjectType: "S3", Method: "CreateBucket", ResultsID: "bucket", Status: domain.ExecutionStatusSucceeded, StartedAt: now, FinishedAt: now.Add(15 * time.Millisecond)},
		domain.Execution{Index: 1, ObjectType: "S3", Method: "PutObject", Status: domain.ExecutionStatusFailed, Stage: "resolve", StartedAt: now, FinishedAt: now},
	)
	run.MarkFailed("command 1 (S3.PutObject) resolve: result not published")

	var stdout, stderr bytes.Buffer
	NewOutputTo(false, &stdout, &stderr).Report(run)

	out := stdout.String()
	for _, want := range []string{
		"FAILED (2/3 commands",
		"Error: command 1",
		"S3.CreateBucket",
		"bucket",
		"15ms",
		"resolve",
		"(1 skipped)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in report:\n%s", want, out)
		}
	}
	if stderr.Len() != 0 {
		t.Errorf("report should not write to stderr: %q", stderr.String())
	}
}

func TestOutput_JSON(t *testing.T) {
	var stdout bytes.Buffer
	NewOutputTo(true, &stdout, &bytes.Buffer{}).Print([]string{"A"}, [][]string{{"1"}}, map[string]int{"a": 1})

	if strings.TrimSpace(stdout.String()) != "{\n  \"a\": 1\n}" {
		t.Errorf("unexpected JSON: %q", stdout.String())
	}
}

func TestOutput_Table(t *testing.T) {
	var stdout bytes.Buffer
	NewOutputTo(false, &stdout, &bytes.Buffer{}).Table([]string{"NAME", "VALUE"}, [][]string{{"a", "1"}})

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), stdout.String())
	}
	if !strings.HasPrefix(lines[1], "----") {
		t.Errorf("expected separator line, got %q", lines[1])
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "-"},
		{500 * time.Microsecond, "500µs"},
		{1234567 * time.Microsecond, "1.235s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
