package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/Belphemur/jellyplay/internal/apperrors"
	"github.com/Belphemur/jellyplay/internal/metrics"
)

// maxErrorBody bounds how much of an error response is kept in the error.
const maxErrorBody = 512

// do sends one request through the circuit breaker. body is encoded as JSON
// when non-nil; a JSON answer is decoded into out when out is non-nil.
// endpoint names the call in metrics and errors.
func (c *client) do(ctx context.Context, endpoint, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.send(ctx, endpoint, method, target, payload)
	})
	if err != nil {
		if isRejected(err) {
			metrics.JellyfinRequestsTotal.WithLabelValues(endpoint, "rejected").Inc()
			return fmt.Errorf("%s request rejected: %w", endpoint, err)
		}
		return err
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *client) send(ctx context.Context, endpoint, method, target string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.JellyfinRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.JellyfinRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &apperrors.ErrUnexpectedStatus{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(data)),
		}
	}
	return data, nil
}

// asNotFound turns a 404 into the typed not found error of resource.
func asNotFound(err error, resource, id string) error {
	var status *apperrors.ErrUnexpectedStatus
	if errors.As(err, &status) && status.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFoundError(resource, id)
	}
	return err
}

func (c *client) userQuery() url.Values {
	q := url.Values{}
	if c.userID != "" {
		q.Set("userId", c.userID)
	}
	return q
}
