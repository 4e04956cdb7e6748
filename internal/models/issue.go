package models

import "time"

// IssueStatus is the request lifecycle of an issue
type IssueStatus string

const (
	StatusIdle    IssueStatus = "idle"
	StatusLoading IssueStatus = "loading"
	StatusReady   IssueStatus = "ready"
	StatusFailed  IssueStatus = "failed"
)

// IssueState is everything the magazine page needs to render itself
type IssueState struct {
	Theme        string      `json:"theme"`
	Results      []Song      `json:"results"`
	Sources      []Source    `json:"sources"`
	Status       IssueStatus `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	HasStarted   bool        `json:"has_started"`
	IssuedAt     time.Time   `json:"issued_at,omitempty"`
}

// NewIssueState returns the state of a page that has never been queried
func NewIssueState() *IssueState {
	return &IssueState{
		Results: make([]Song, 0),
		Sources: make([]Source, 0),
		Status:  StatusIdle,
	}
}

// Clone returns a deep copy that can be read without holding the owner's lock
func (s *IssueState) Clone() *IssueState {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Results = append(make([]Song, 0, len(s.Results)), s.Results...)
	clone.Sources = append(make([]Source, 0, len(s.Sources)), s.Sources...)
	return &clone
}

// IsLoading reports whether a fetch is in flight
func (s *IssueState) IsLoading() bool {
	return s.Status == StatusLoading
}

// ShowResults reports whether the ready view should be rendered.
// Previous results are kept on failure but never shown alongside the error.
func (s *IssueState) ShowResults() bool {
	return s.HasStarted && s.Status == StatusReady
}

// Featured returns the cover story of the current results
func (s *IssueState) Featured() (Song, bool) {
	if len(s.Results) == 0 {
		return Song{}, false
	}
	return s.Results[0], true
}

// Playlist returns the current results after the cover story
func (s *IssueState) Playlist() []Song {
	if len(s.Results) < 2 {
		return nil
	}
	return s.Results[1:]
}
