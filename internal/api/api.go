// Package api holds the wire contract of the campaign generation service
// and an HTTP client for it.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/smileynet/campaignmgr/internal/campaign"
)

// Service endpoints.
const (
	HelloPath       = "/api/hello"
	RunCampaignPath = "/api/run-campaign"
)

// RequestIDHeader carries a per-call identifier for log correlation.
const RequestIDHeader = "X-Request-Id"

// HelloResponse is the body of GET /api/hello.
type HelloResponse struct {
	Message string `json:"message"`
}

// RunCampaignRequest is the body of POST /api/run-campaign.
type RunCampaignRequest struct {
	IntentBrief string `json:"intent_brief"`
}

// RunCampaignResponse is the 2xx body of POST /api/run-campaign.
// Missing fields decode to zero values.
type RunCampaignResponse struct {
	AudienceSegments Segments      `json:"audience_segments"`
	Content          []ContentItem `json:"content"`
	ReviewTask       *ReviewTask   `json:"review_task"`
}

// UnmarshalJSON decodes the body. A review_task that is not a JSON object
// (false, "", 0) means no task.
func (r *RunCampaignResponse) UnmarshalJSON(data []byte) error {
	type wire RunCampaignResponse
	var w struct {
		wire
		ReviewTask json.RawMessage `json:"review_task"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = RunCampaignResponse(w.wire)
	r.ReviewTask = nil
	if raw := bytes.TrimSpace(w.ReviewTask); len(raw) > 0 && raw[0] == '{' {
		var task ReviewTask
		if err := json.Unmarshal(raw, &task); err != nil {
			return fmt.Errorf("review_task: %w", err)
		}
		r.ReviewTask = &task
	}
	return nil
}

// ContentItem is one generated copy entry.
type ContentItem struct {
	Segment string `json:"segment"`
	Copy    string `json:"copy"`
}

// ReviewTask is the optional review task of a response.
type ReviewTask struct {
	ID      TaskID `json:"id"`
	Title   string `json:"title"`
	Details string `json:"details"`
	Status  string `json:"status"`
}

// ErrorResponse is the body the service sends with 4xx/5xx statuses.
// The client never parses it.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Segments is the audience segment text. Services send either a string or
// an array of strings; arrays are joined with ", ".
type Segments string

// UnmarshalJSON accepts a string, an array of strings or null.
// Any other JSON value is kept as its raw text.
func (s *Segments) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Segments(v)
	case len(data) > 0 && data[0] == '[':
		var v []string
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("audience_segments: %w", err)
		}
		*s = Segments(strings.Join(v, ", "))
	default:
		*s = Segments(data)
	}
	return nil
}

// TaskID is a review task identifier. Services send strings or numbers;
// both are kept as text.
type TaskID string

// UnmarshalJSON accepts a string, a number or null.
func (id *TaskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*id = TaskID(v)
	default:
		*id = TaskID(data)
	}
	return nil
}

// ToResult converts the wire body into the domain result.
func (r RunCampaignResponse) ToResult() campaign.Result {
	res := campaign.Result{AudienceSegments: string(r.AudienceSegments)}
	if len(r.Content) > 0 {
		res.Content = make([]campaign.ContentItem, len(r.Content))
		for i, item := range r.Content {
			res.Content[i] = campaign.ContentItem{Segment: item.Segment, Copy: item.Copy}
		}
	}
	if r.ReviewTask != nil {
		res.ReviewTask = &campaign.ReviewTask{
			ID:      string(r.ReviewTask.ID),
			Title:   r.ReviewTask.Title,
			Details: r.ReviewTask.Details,
			Status:  campaign.TaskStatus(r.ReviewTask.Status),
		}
	}
	return res
}

// RequestError wraps a transport failure talking to an endpoint.
type RequestError struct {
	Endpoint string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("api: %s: %s", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %s: unexpected status %d", e.Endpoint, e.Code)
}

// DecodeError reports a 2xx response whose body could not be parsed.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("api: %s: decoding response: %s", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates a call exceeded its time limit.
type TimeoutError struct {
	Endpoint string
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("api: %s: timed out after %s", e.Endpoint, e.Duration)
}
