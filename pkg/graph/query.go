package graph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// load performs one HTTP exchange and parses the body. It returns the
// parsed result together with the next page cursor, or "" when the
// response carries none. Transport failures surface as *TransportError,
// never as a raw net/http error.
func (c *Client) load(ctx context.Context, method, rawURL string, params Params) (Result, string, error) {
	start := time.Now()
	endpoint := endpointLabel(rawURL)
	defer func() {
		graphRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := c.buildRequest(ctx, method, rawURL, params)
	if err != nil {
		return nil, "", err
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", method).
		Msg("Dispatching request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		graphErrorsTotal.WithLabelValues("transport").Inc()
		graphRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, "", &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		graphErrorsTotal.WithLabelValues("transport").Inc()
		return nil, "", &TransportError{URL: rawURL, Err: err}
	}

	graphRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	result := parse(body)
	if fault, ok := result.(Fault); ok {
		graphErrorsTotal.WithLabelValues(errorClass(fault.Err)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Err(fault.Err).
			Msg("Service reported an error")
	}

	return result, nextPage(result), nil
}

// buildRequest shapes one HTTP request from the normalized options. GET
// and DELETE transmit options as query parameters and follow redirects;
// POST and PUT partition Upload values into multipart file parts and
// send the remaining entries as the request body.
func (c *Client) buildRequest(ctx context.Context, method, rawURL string, params Params) (*http.Request, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	switch method {
	case http.MethodGet, http.MethodDelete:
		query := target.Query()
		for key, value := range params {
			addValue(query, key, value)
		}
		target.RawQuery = query.Encode()
		return http.NewRequestWithContext(ctx, method, target.String(), nil)

	case http.MethodPost, http.MethodPut:
		fields := url.Values{}
		uploads := map[string]*Upload{}
		for key, value := range params {
			if up, ok := value.(*Upload); ok {
				uploads[key] = up
				continue
			}
			addValue(fields, key, value)
		}

		if len(uploads) == 0 {
			req, err := http.NewRequestWithContext(ctx, method, target.String(), strings.NewReader(fields.Encode()))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return req, nil
		}

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for key, values := range fields {
			for _, v := range values {
				if err := writer.WriteField(key, v); err != nil {
					return nil, err
				}
			}
		}
		for key, up := range uploads {
			part, err := writer.CreateFormFile(key, up.Name)
			if err != nil {
				return nil, err
			}
			if _, err := io.Copy(part, up.Reader); err != nil {
				return nil, fmt.Errorf("read upload %q: %w", key, err)
			}
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, target.String(), &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req, nil

	default:
		return nil, fmt.Errorf("unsupported method %q", method)
	}
}

// addValue folds one normalized option into the wire values. Collection
// values that survived normalization are transmitted as repeated
// parameters.
func addValue(values url.Values, key string, value any) {
	switch v := value.(type) {
	case string:
		values.Set(key, v)
	case []any:
		values.Del(key)
		for _, item := range v {
			values.Add(key, fmt.Sprint(item))
		}
	default:
		values.Set(key, fmt.Sprint(v))
	}
}

// endpointLabel reduces a URL to its path for metric labels.
func endpointLabel(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return u.Path
	}
	return rawURL
}
