package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPLogger provides request/response logging for the API client
type HTTPLogger struct {
	logger      *Logger
	maxBodySize int
}

// NewHTTPLogger creates a new HTTP logger
func NewHTTPLogger(logger *Logger) *HTTPLogger {
	return &HTTPLogger{
		logger:      logger,
		maxBodySize: 10000,
	}
}

// LogRequest logs an HTTP request. Proxmox VE takes form-encoded bodies for
// PUT and POST, those are decoded so individual parameters can be redacted.
func (h *HTTPLogger) LogRequest(req *http.Request, body []byte) {
	fields := Fields{
		"method": req.Method,
		"url":    redactURL(req.URL),
	}

	headers := make(map[string]string)
	for k, v := range req.Header {
		if isSensitiveHeader(k) {
			headers[k] = "[REDACTED]"
		} else if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	fields["headers"] = headers

	if len(body) > 0 {
		if strings.HasPrefix(req.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if form, err := url.ParseQuery(string(body)); err == nil {
				fields["body"] = redactValues(form).Encode()
			}
		} else {
			fields["body"] = decodeBody(body, h.maxBodySize)
		}
		fields["body_size"] = len(body)
	}

	h.logger.Debug("HTTP Request", fields)
}

// LogResponse logs an HTTP response
func (h *HTTPLogger) LogResponse(resp *http.Response, body []byte, duration time.Duration) {
	fields := Fields{
		"status":      resp.StatusCode,
		"status_text": resp.Status,
		"duration_ms": duration.Milliseconds(),
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		fields["content_type"] = ct
	}

	// PNG charts and the apidoc.js script are not worth dumping
	if len(body) > 0 && isTextual(resp) {
		fields["body"] = decodeBody(body, h.maxBodySize)
	}
	if len(body) > 0 {
		fields["body_size"] = len(body)
	}

	h.logger.Debug("HTTP Response", fields)
}

// LogError logs an HTTP error
func (h *HTTPLogger) LogError(err error, req *http.Request) {
	fields := Fields{
		"method": req.Method,
		"url":    redactURL(req.URL),
	}

	h.logger.Error("HTTP Error", err, fields)
}

// RoundTripperWrapper wraps an http.RoundTripper with logging
type RoundTripperWrapper struct {
	wrapped http.RoundTripper
	logger  *HTTPLogger
	logBody bool
}

// NewLoggingRoundTripper creates a new logging round tripper
func NewLoggingRoundTripper(wrapped http.RoundTripper, logger *HTTPLogger, logBody bool) *RoundTripperWrapper {
	if wrapped == nil {
		wrapped = http.DefaultTransport
	}
	return &RoundTripperWrapper{
		wrapped: wrapped,
		logger:  logger,
		logBody: logBody,
	}
}

// RoundTrip implements http.RoundTripper
func (rt *RoundTripperWrapper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	var reqBody []byte
	if rt.logBody && req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(reqBody))
	}
	rt.logger.LogRequest(req, reqBody)

	resp, err := rt.wrapped.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		rt.logger.LogError(err, req)
		return nil, err
	}

	if rt.logBody {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewBuffer(respBody))
		rt.logger.LogResponse(resp, respBody, duration)
	} else {
		rt.logger.LogResponse(resp, nil, duration)
	}

	return resp, nil
}

// Helper functions

// isSensitiveHeader checks if a header should be redacted
func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "cookie", "set-cookie", "csrfpreventiontoken":
		return true
	}
	return false
}

// isSensitiveKey matches parameter and JSON keys holding credentials
func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range []string{"password", "secret", "token", "ticket", "key"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func redactValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		if isSensitiveKey(k) {
			out[k] = []string{"[REDACTED]"}
		} else {
			out[k] = vals
		}
	}
	return out
}

func redactURL(u *url.URL) string {
	if u.RawQuery == "" {
		return u.String()
	}
	c := *u
	c.RawQuery = redactValues(u.Query()).Encode()
	return c.String()
}

func decodeBody(body []byte, maxSize int) interface{} {
	if json.Valid(body) {
		var parsed interface{}
		if err := json.Unmarshal(body, &parsed); err == nil {
			return redactSensitiveFields(parsed)
		}
	}
	return truncateBody(body, maxSize)
}

// truncateBody truncates body if too large
func truncateBody(body []byte, maxSize int) string {
	if len(body) <= maxSize {
		return string(body)
	}
	return string(body[:maxSize]) + "...[truncated]"
}

func isTextual(resp *http.Response) bool {
	ct := resp.Header.Get("Content-Type")
	return ct == "" || strings.Contains(ct, "json") || strings.HasPrefix(ct, "text/plain")
}

// redactSensitiveFields redacts sensitive fields in parsed JSON
func redactSensitiveFields(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for k, val := range v {
			if isSensitiveKey(k) {
				result[k] = "[REDACTED]"
			} else {
				result[k] = redactSensitiveFields(val)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = redactSensitiveFields(item)
		}
		return result
	default:
		return data
	}
}
