package valuta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// contains http utils shared by the rate sources

// StatusError is returned by GetJSON for a non 200 response.
type StatusError struct {
	Code   int
	Status string
	Body   string // first bytes of the response body
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "http status " + e.Status
	}
	return fmt.Sprintf("http status %s: %s", e.Status, e.Body)
}

// maxErrorBody bounds the part of an error response kept in a StatusError.
const maxErrorBody = 256

// GetJSON performs an HTTP GET request and unmarshals the JSON response into data.
func GetJSON(ctx context.Context, client *http.Client, addr string, data any) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(body))}
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cannot read response of %v/%v: %w", req.URL.Host, req.URL.Path, err)
	}
	if err := json.Unmarshal(content, data); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

// JSONPathFloat evaluates path against a decoded JSON document and returns its
// numeric value.
func JSONPathFloat(path string, doc any) (float64, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return 0, fmt.Errorf("cannot find %s: %w", path, err)
	}
	// jsonpath returns a list for filters and slices; keep the first answer.
	if list, ok := v.([]any); ok && len(list) > 0 {
		v = list[0]
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s is not a number: %v", path, v)
	}
	return f, nil
}

// JSONPathObject evaluates path against a decoded JSON document and returns the
// object found there.
func JSONPathObject(path string, doc any) (map[string]any, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("cannot find %s: %w", path, err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s is not an object: %v", path, v)
	}
	return m, nil
}
