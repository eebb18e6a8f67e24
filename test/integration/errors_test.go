package integration

import (
	"net/http"
	"testing"
)

func TestErrorEndpointsNoAuth(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/unauthorized", http.StatusUnauthorized},
		{"/api/v1/forbidden", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := getURL(t, testEnv.BaseURL()+tt.path)
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestErrorResponseFormat(t *testing.T) {
	// Any error response should follow the ErrorResponse schema.
	for _, prepare := range []func(*http.Request){nil, withBasic(bobEmail, "wrong")} {
		resp := getWith(t, testEnv.BaseURL()+"/api/v1/users", prepare)

		var raw map[string]any
		decodeJSON(t, resp, &raw)

		errObj, ok := raw["error"]
		if !ok {
			t.Fatal("response missing 'error' key")
		}
		errMap, ok := errObj.(map[string]any)
		if !ok {
			t.Fatal("'error' is not an object")
		}
		if _, ok := errMap["type"]; !ok {
			t.Error("error object missing 'type'")
		}
		if _, ok := errMap["message"]; !ok {
			t.Error("error object missing 'message'")
		}
	}
}

func TestFailureStagesAreIndistinguishable(t *testing.T) {
	// Unknown user, wrong password, bad encoding and missing separator
	// must all produce the same response.
	headers := []func(*http.Request){
		withBasic("nobody@x.com", bobPassword),
		withBasic(bobEmail, "wrong"),
		withAuthorization("Basic !!!not-base64!!!"),
		withAuthorization("Basic d3Jvbmc="), // "wrong"
	}

	var first string
	for i, h := range headers {
		resp := getWith(t, testEnv.BaseURL()+"/api/v1/users", h)
		body := readBody(t, resp)

		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("case %d: status = %d, want 403", i, resp.StatusCode)
		}
		if i == 0 {
			first = body
			continue
		}
		if body != first {
			t.Errorf("case %d: body %q differs from %q", i, body, first)
		}
	}
}
