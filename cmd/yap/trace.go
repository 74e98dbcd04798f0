package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/thomasrohde/yap/pkg/evaluator"
)

// TraceSummary aggregates an NDJSON trace file written by `yap run --trace`.
type TraceSummary struct {
	RunID       string         `json:"runId"`
	TotalEvents int            `json:"totalEvents"`
	Calls       int            `json:"calls"`
	CallsByName map[string]int `json:"callsByName"`
	NativeCalls int            `json:"nativeCalls"`
	Loops       int            `json:"loops"`
	Iterations  int            `json:"iterations"`
	Errors      int            `json:"errors"`
	ErrorCodes  []string       `json:"errorCodes,omitempty"`
	StartTime   string         `json:"startTime,omitempty"`
	EndTime     string         `json:"endTime,omitempty"`
	DurationMs  float64        `json:"durationMs"`
}

// ndjsonTrace returns a trace callback writing one JSON object per line.
func ndjsonTrace(w io.Writer) func(evaluator.TraceEvent) {
	enc := json.NewEncoder(w)
	return func(ev evaluator.TraceEvent) {
		_ = enc.Encode(ev)
	}
}

func computeTraceSummary(r io.Reader) *TraceSummary {
	summary := &TraceSummary{
		CallsByName: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event evaluator.TraceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip invalid lines
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch event.Event {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.Timestamp
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = event.Timestamp
		case evaluator.TraceCallStart:
			summary.Calls++
			if name := event.Data["fn"]; name != "" {
				summary.CallsByName[name]++
			}
		case evaluator.TraceNativeCall:
			summary.NativeCalls++
			if name := event.Data["fn"]; name != "" {
				summary.CallsByName[name]++
			}
		case evaluator.TraceLoopStart:
			summary.Loops++
		case evaluator.TraceLoopEnd:
			if n, err := strconv.Atoi(event.Data["iterations"]); err == nil {
				summary.Iterations += n
			}
		case evaluator.TraceError:
			summary.Errors++
			if code := event.Data["code"]; code != "" {
				summary.ErrorCodes = append(summary.ErrorCodes, code)
			}
		}
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := parseTime(summary.StartTime)
		end, err2 := parseTime(summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}

	return summary
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Calls: %d (%d native)\n", s.Calls+s.NativeCalls, s.NativeCalls)
	names := make([]string, 0, len(s.CallsByName))
	for name := range s.CallsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, s.CallsByName[name])
	}
	fmt.Fprintf(w, "Loops: %d (%d iterations)\n", s.Loops, s.Iterations)
	if s.Errors > 0 {
		fmt.Fprintf(w, "Errors: %d (%s)\n", s.Errors, strings.Join(s.ErrorCodes, ", "))
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
