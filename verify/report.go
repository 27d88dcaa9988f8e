package verify

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// Status is the outcome of one check against one target.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// Finding is one check outcome. Detail is empty on pass.
type Finding struct {
	Check  string `json:"check"`
	Target string `json:"target"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report collects the findings of one verification run in execution order.
type Report struct {
	RunID      string    `json:"run_id"`
	App        string    `json:"app"`
	Stage      string    `json:"stage"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	Findings   []Finding `json:"findings"`
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	return r.Failed == 0
}

// JSON renders the report for CI logs and artifacts.
func (r Report) JSON() ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return b, nil
}

func (r *Report) pass(check, target string) {
	r.Passed++
	r.Findings = append(r.Findings, Finding{
		Check:  check,
		Target: target,
		Status: StatusPass,
	})
}

func (r *Report) fail(check, target, detail string) {
	r.Failed++
	r.Findings = append(r.Findings, Finding{
		Check:  check,
		Target: target,
		Status: StatusFail,
		Detail: detail,
	})
}

func (r *Report) failf(check, target, format string, args ...any) {
	r.fail(check, target, fmt.Sprintf(format, args...))
}
