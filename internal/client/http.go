package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// predictRequest and predictResponse mirror the model service's JSON
// contract.
type predictRequest struct {
	Instances [][]float32 `json:"instances"`
}

type predictResponse struct {
	// Pointer so an absent field is distinguishable from an empty one.
	Predictions *[][]float32 `json:"predictions"`
}

// HTTPClient speaks the textual protocol: one POST per request with an
// "instances" JSON body, class scores read from "predictions".
type HTTPClient struct {
	url string
	hc  *http.Client
}

// NewHTTP returns a client posting to the given URL.
func NewHTTP(url string) *HTTPClient {
	return &HTTPClient{url: url, hc: http.DefaultClient}
}

// Predict implements Client.
func (c *HTTPClient) Predict(instances [][]float32) ([][]float32, error) {
	body, err := json.Marshal(predictRequest{Instances: instances})
	if err != nil {
		return nil, fmt.Errorf("encode instances: %w", err)
	}

	resp, err := c.hc.Post(c.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("post %s: unexpected status %s", c.url, resp.Status)
	}

	var pr predictResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if pr.Predictions == nil {
		return nil, fmt.Errorf("response from %s is missing the predictions field", c.url)
	}
	return *pr.Predictions, nil
}

// Close implements Client; the HTTP client holds no connection state of
// its own.
func (c *HTTPClient) Close() error { return nil }
