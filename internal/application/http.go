package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openkraft/prodcheck/internal/domain"
)

// maxBodyBytes caps how much of a response body any checker reads.
const maxBodyBytes = 1 << 20

// fetch sends one request bounded by timeout and returns the response with
// its body read and closed.
func fetch(ctx context.Context, client domain.HTTPDoer, method, url string, body []byte, header http.Header, timeout time.Duration) (*http.Response, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, nil, fmt.Errorf("building request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp, data, nil
}

// defaultClient is used by services constructed with a nil client.
func defaultClient() *http.Client {
	return &http.Client{}
}
