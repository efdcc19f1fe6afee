package wink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// Response is a JSON response from the Wink API.
type Response struct {
	StatusCode int
	// Body is the complete, syntactically valid JSON response body.
	Body json.RawMessage
	// RequestID is the X-Request-Id sent with the request.
	RequestID string
}

// Envelope parses the response body into its data and errors members.
func (r *Response) Envelope() *Envelope {
	return ParseEnvelope(r.Body)
}

// InvokeFunc receives the outcome of an asynchronous Invoke.
type InvokeFunc func(resp *Response, err error)

// RoundtripFunc receives the outcome of an asynchronous Roundtrip.
type RoundtripFunc func(data json.RawMessage, err error)

// Invoke sends one request and validates the response.
//
// The payload, if non-nil, is sent as JSON. The bearer token is attached when
// the session holds one, unless the payload is itself an OAuth grant (carries
// a grant_type member).
//
// On success the response is returned with a nil error. When the status code
// is not expected for the method, both the parsed response and an
// *HTTPStatusError are returned. A body that is not JSON yields a *ParseError
// and a failed connection a *TransportError, both without a response.
func (c *Client) Invoke(ctx context.Context, method, path string, payload any) (*Response, error) {
	if _, ok := expectedStatus[method]; !ok {
		err := fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
		c.rejectRequest(method, path, err)
		return nil, err
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			err = fmt.Errorf("wink: failed to marshal request body: %w", err)
			c.rejectRequest(method, path, err)
			return nil, err
		}
		// Typed nils and other falsy payloads send no body.
		if isFalsy(body) {
			body = nil
		}
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		err = fmt.Errorf("wink: failed to create request: %w", err)
		c.rejectRequest(method, path, err)
		return nil, err
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if token := c.session.AccessToken(); token != "" && !hasGrantType(body) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = int64(len(body))
	}

	c.logger.Debug(path, Fields{"event": "request", "method": method, "request_id": requestID})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, outcomeTransport, time.Since(start))
		c.logger.Error(path, Fields{"event": "transport", "request_id": requestID, "exception": err.Error()})
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("%w: %v", ErrPrematureEOF, err)
		}
		c.metrics.observe(method, outcomeTransport, time.Since(start))
		c.logger.Error(path, Fields{"event": "transport", "request_id": requestID, "exception": err.Error()})
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	var parsed json.RawMessage
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		c.metrics.observe(method, outcomeParse, time.Since(start))
		c.logger.Error(path, Fields{
			"event":      "json",
			"request_id": requestID,
			"diagnostic": err.Error(),
			"body":       string(respBody),
		})
		return nil, &ParseError{Path: path, StatusCode: resp.StatusCode, Body: string(respBody), Err: err}
	}

	result := &Response{StatusCode: resp.StatusCode, Body: parsed, RequestID: requestID}

	if !ExpectedStatus(method, resp.StatusCode) {
		c.metrics.observe(method, outcomeHTTPStatus, time.Since(start))
		c.logger.Error(path, Fields{
			"event":      "https",
			"request_id": requestID,
			"code":       resp.StatusCode,
			"body":       string(respBody),
		})
		return result, &HTTPStatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: parsed}
	}

	c.metrics.observe(method, outcomeOK, time.Since(start))
	return result, nil
}

// rejectRequest records a request that failed before it was sent.
func (c *Client) rejectRequest(method, path string, err error) {
	c.metrics.observe(method, outcomeRejected, 0)
	c.logger.Error(path, Fields{"event": "request", "method": method, "exception": err.Error()})
}

// InvokeAsync starts Invoke on its own goroutine and returns immediately.
// done is called exactly once with the outcome; a nil done selects the
// fire-and-forget continuation, which only logs. The returned channel is
// closed after done returns.
func (c *Client) InvokeAsync(ctx context.Context, method, path string, payload any, done InvokeFunc) <-chan struct{} {
	if done == nil {
		done = c.logCompletion(path)
	}
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		done(c.Invoke(ctx, method, path, payload))
	}()
	return finished
}

// Fire sends a request whose outcome is only logged.
func (c *Client) Fire(ctx context.Context, method, path string, payload any) <-chan struct{} {
	return c.InvokeAsync(ctx, method, path, payload, nil)
}

// logCompletion is the default continuation for fire-and-forget requests.
func (c *Client) logCompletion(path string) InvokeFunc {
	return func(resp *Response, err error) {
		if err != nil {
			c.logger.Error("invoke", Fields{"exception": err.Error()})
			return
		}
		c.logger.Info(path, Fields{"results": string(resp.Body)})
	}
}

// Roundtrip sends one request and unwraps the data member of the response
// envelope. See Unwrap for the envelope rules.
func (c *Client) Roundtrip(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	resp, err := c.Invoke(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	return Unwrap(resp)
}

// RoundtripAsync starts Roundtrip on its own goroutine. done is called
// exactly once; a nil done only logs the outcome. The returned channel is
// closed after done returns.
func (c *Client) RoundtripAsync(ctx context.Context, method, path string, payload any, done RoundtripFunc) <-chan struct{} {
	if done == nil {
		logDone := c.logCompletion(path)
		done = func(data json.RawMessage, err error) {
			logDone(&Response{Body: data}, err)
		}
	}
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		done(c.Roundtrip(ctx, method, path, payload))
	}()
	return finished
}

// Unwrap extracts the data member of a response envelope.
//
// A response fails when its errors member is a non-empty array, or when its
// data member is missing, null, false, zero or the empty string. The status
// code plays no part. Failures are reported as an *EnvelopeError whose
// message carries the errors array, or the whole body when there is none.
func Unwrap(resp *Response) (json.RawMessage, error) {
	if resp == nil {
		return nil, &EnvelopeError{Kind: ErrInvalidResponse, Detail: "null"}
	}
	return unwrapAs(resp.Body, ErrInvalidResponse)
}

func unwrapAs(body []byte, kind error) (json.RawMessage, error) {
	env := ParseEnvelope(body)
	if err := env.Err(kind); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// hasGrantType reports whether a serialized payload carries a truthy
// top-level grant_type member.
func hasGrantType(body []byte) bool {
	if len(body) == 0 {
		return false
	}
	var obj RawObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return false
	}
	raw, ok := obj.Get("grant_type")
	return ok && !isFalsy(raw)
}
