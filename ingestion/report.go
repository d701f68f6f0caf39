package ingestion

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/newsvec/core"
)

// Failure describes one item that could not be stored.
type Failure struct {
	ID     string
	Class  string
	Reason string
}

// Report summarises an ingestion run.
type Report struct {
	Start int64
	Count int

	Attempted       int
	Stored          int
	SkippedNotFound int
	Failed          []Failure

	// Keys maps each stored article id to its generated document key.
	Keys map[string]string

	// Articles stored without a title or body vector.
	MissingTitleVectors int
	MissingBodyVectors  int

	Elapsed time.Duration
}

func newReport(start int64, count int) *Report {
	return &Report{
		Start:  start,
		Count:  count,
		Failed: []Failure{},
		Keys:   make(map[string]string),
	}
}

func (r *Report) stored(id, key string) {
	r.Stored++
	r.Keys[id] = key
}

func (r *Report) skipped() {
	r.SkippedNotFound++
}

func (r *Report) failed(id string, err error) Failure {
	f := Failure{ID: id, Class: core.ErrorClass(err), Reason: err.Error()}
	r.Failed = append(r.Failed, f)
	return f
}

// Complete reports whether every requested id was attempted.
func (r *Report) Complete() bool {
	return r.Attempted == r.Count
}

// Summary returns a one-line description of the run followed by one line
// per failed item.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "attempted=%d stored=%d skipped_not_found=%d failed=%d",
		r.Attempted, r.Stored, r.SkippedNotFound, len(r.Failed))
	if r.MissingTitleVectors > 0 || r.MissingBodyVectors > 0 {
		fmt.Fprintf(&b, " missing_title_vectors=%d missing_body_vectors=%d",
			r.MissingTitleVectors, r.MissingBodyVectors)
	}
	if !r.Complete() {
		fmt.Fprintf(&b, " (stopped after %d of %d)", r.Attempted, r.Count)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(&b, "\n  %s %s: %s", f.ID, f.Class, f.Reason)
	}
	return b.String()
}
