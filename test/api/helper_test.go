package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"
)

// TestResponse is the decoded envelope plus the HTTP status.
type TestResponse struct {
	Code    int
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (r TestResponse) IsSuccess() bool {
	return r.Status == "success"
}

// Object decodes Data as a JSON object; it is empty for lists and errors.
func (r TestResponse) Object() map[string]interface{} {
	var m map[string]interface{}
	_ = json.Unmarshal(r.Data, &m)
	return m
}

func (r TestResponse) List() []map[string]interface{} {
	var l []map[string]interface{}
	_ = json.Unmarshal(r.Data, &l)
	return l
}

func (r TestResponse) GetString(key string) string {
	if v, ok := r.Object()[key].(string); ok {
		return v
	}
	return ""
}

func makeRequest(method, path string, body interface{}, token string) TestResponse {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return TestResponse{Status: "error", Message: fmt.Sprintf("failed to marshal body: %v", err)}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return TestResponse{Status: "error", Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	if err != nil {
		return TestResponse{Status: "error", Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	out := TestResponse{Code: resp.StatusCode}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			out.Status = "error"
			out.Message = string(raw)
		}
	}
	return out
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@example.com", prefix, time.Now().UnixNano())
}

// createTestClinic creates a clinic owned by ownerToken.
func createTestClinic(t *testing.T) string {
	t.Helper()
	resp := makeRequest(http.MethodPost, "/clinics", map[string]interface{}{
		"name": uniqueName("Test Clinic"),
	}, ownerToken)
	if !resp.IsSuccess() {
		t.Fatalf("failed to create test clinic: %d %s", resp.Code, resp.Message)
	}
	return resp.GetString("id")
}
