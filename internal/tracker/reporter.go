// internal/tracker/reporter.go

package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"huddle/internal/domain/location"
)

// Reporter submits a report to the ingestion endpoint
type Reporter interface {
	Report(ctx context.Context, report location.Report) (*location.Sample, error)
}

// SubmitError is returned when the server answers with a non-2xx status
type SubmitError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *SubmitError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// HTTPReporter posts reports to the API over an authenticated channel
type HTTPReporter struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
}

type reportPayload struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	SampledAt  time.Time `json:"sampled_at"`
	DeviceInfo string    `json:"device_info,omitempty"`
}

// NewHTTPReporter creates a new reporter. Per-call deadlines come from the
// context; the client timeout is an upper bound.
func NewHTTPReporter(baseURL, token string) *HTTPReporter {
	return &HTTPReporter{
		HTTPClient: &http.Client{
			Timeout: time.Second * 30,
		},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
	}
}

// Report submits one report and returns the persisted sample
func (c *HTTPReporter) Report(ctx context.Context, report location.Report) (*location.Sample, error) {
	payload, err := json.Marshal(reportPayload{
		Latitude:   report.Latitude,
		Longitude:  report.Longitude,
		Accuracy:   report.Accuracy,
		SampledAt:  report.SampledAt,
		DeviceInfo: report.DeviceInfo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/users/%s/location", c.BaseURL, url.PathEscape(report.TargetUserID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		submitErr := &SubmitError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(body, &errBody) == nil {
			submitErr.Code = errBody.Code
			submitErr.Message = errBody.Error
		}
		return nil, submitErr
	}

	var sample location.Sample
	if err := json.Unmarshal(body, &sample); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &sample, nil
}
