package telemetry

import (
	"sync"
	"testing"
)

// Report is a single call made against a RecordingAPI.
type Report struct {
	Kind   string
	ID     string
	Params []any
	Count  int64
}

// RecordingAPI keeps every report in memory and mirrors it to the test log,
// it is meant to be handed to components under test.
type RecordingAPI struct {
	t       testing.TB
	mu      sync.Mutex
	reports []Report
}

func NewRecordingAPI(t testing.TB) *RecordingAPI {
	return &RecordingAPI{t: t}
}

func (r *RecordingAPI) push(report Report) {
	r.t.Helper()
	r.mu.Lock()
	r.reports = append(r.reports, report)
	r.mu.Unlock()
	r.t.Logf("%s %s %v %d", report.Kind, report.ID, report.Params, report.Count)
}

func (r *RecordingAPI) ReportBroken(id string, params ...any) {
	r.push(Report{Kind: "broken", ID: id, Params: params})
}

func (r *RecordingAPI) ReportWarning(id string, params ...any) {
	r.push(Report{Kind: "warning", ID: id, Params: params})
}

func (r *RecordingAPI) ReportDebug(msg string, params ...any) {
	r.push(Report{Kind: "debug", ID: msg, Params: params})
}

func (r *RecordingAPI) ReportCount(id string, count int64) {
	r.push(Report{Kind: "count", ID: id, Count: count})
}

// Reports returns the reports of the given kind ("broken", "warning", "debug", "count").
func (r *RecordingAPI) Reports(kind string) []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Report
	for _, report := range r.reports {
		if report.Kind == kind {
			out = append(out, report)
		}
	}
	return out
}
