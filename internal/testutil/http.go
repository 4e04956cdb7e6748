package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// HTTPTestHelper provides utilities for HTTP testing. Cookies set by the
// router are replayed on later requests, like a browser would.
type HTTPTestHelper struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

// NewHTTPTestHelper creates a new HTTP test helper
func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	gin.SetMode(gin.TestMode)
	return &HTTPTestHelper{
		t:       t,
		router:  gin.New(),
		cookies: make(map[string]*http.Cookie),
	}
}

// SetRouter sets the gin router to use for testing
func (h *HTTPTestHelper) SetRouter(router *gin.Engine) {
	h.router = router
}

// ClearCookies forgets every stored cookie
func (h *HTTPTestHelper) ClearCookies() {
	h.cookies = make(map[string]*http.Cookie)
}

// Cookie returns a stored cookie by name
func (h *HTTPTestHelper) Cookie(name string) *http.Cookie {
	return h.cookies[name]
}

// SetCookie stores a cookie to send with later requests
func (h *HTTPTestHelper) SetCookie(cookie *http.Cookie) {
	h.cookies[cookie.Name] = cookie
}

// Do sends a request through the router with stored cookies attached
func (h *HTTPTestHelper) Do(method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, target, body)
	require.NoError(h.t, err, "Failed to create HTTP request")

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	for _, cookie := range h.cookies {
		req.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, req)

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(h.cookies, cookie.Name)
			continue
		}
		h.cookies[cookie.Name] = cookie
	}
	return recorder
}

// PostJSON performs a POST request with JSON payload
func (h *HTTPTestHelper) PostJSON(target string, payload interface{}) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	require.NoError(h.t, err, "Failed to marshal JSON payload")

	return h.Do(http.MethodPost, target, bytes.NewBuffer(body), map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
}

// PostForm performs a form POST the way an HTMX request would
func (h *HTTPTestHelper) PostForm(target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"Accept":       "text/html",
	}
	if htmx {
		headers["HX-Request"] = "true"
	}
	return h.Do(http.MethodPost, target, strings.NewReader(form.Encode()), headers)
}

// GetJSON performs a GET request expecting JSON response
func (h *HTTPTestHelper) GetJSON(target string) *httptest.ResponseRecorder {
	return h.Do(http.MethodGet, target, nil, map[string]string{"Accept": "application/json"})
}

// GetHTML performs a GET request expecting HTML response
func (h *HTTPTestHelper) GetHTML(target string) *httptest.ResponseRecorder {
	return h.Do(http.MethodGet, target, nil, map[string]string{"Accept": "text/html"})
}

// GetWithHeaders performs a GET request with custom headers
func (h *HTTPTestHelper) GetWithHeaders(target string, headers map[string]string) *httptest.ResponseRecorder {
	return h.Do(http.MethodGet, target, nil, headers)
}

// AssertJSONResponse asserts that the response is valid JSON and unmarshals it
func (h *HTTPTestHelper) AssertJSONResponse(recorder *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	require.Equal(h.t, expectedStatus, recorder.Code, "Unexpected status code")
	require.Equal(h.t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"), "Expected JSON content type")

	err := json.Unmarshal(recorder.Body.Bytes(), target)
	require.NoError(h.t, err, "Failed to unmarshal JSON response")
}

// AssertHTMLResponse asserts that the response is HTML
func (h *HTTPTestHelper) AssertHTMLResponse(recorder *httptest.ResponseRecorder, expectedStatus int) string {
	require.Equal(h.t, expectedStatus, recorder.Code, "Unexpected status code")
	require.Equal(h.t, "text/html; charset=utf-8", recorder.Header().Get("Content-Type"), "Expected HTML content type")

	return recorder.Body.String()
}

// AssertErrorResponse asserts that the response contains an error
func (h *HTTPTestHelper) AssertErrorResponse(recorder *httptest.ResponseRecorder, expectedStatus int, expectedErrorSubstring string) {
	require.Equal(h.t, expectedStatus, recorder.Code, "Unexpected status code")

	var errorResponse map[string]interface{}
	err := json.Unmarshal(recorder.Body.Bytes(), &errorResponse)
	require.NoError(h.t, err, "Failed to unmarshal error response")

	errorMessage, exists := errorResponse["error"]
	require.True(h.t, exists, "Expected error field in response")
	require.Contains(h.t, errorMessage, expectedErrorSubstring, "Error message should contain expected substring")
}

// MockHTTPServer provides a mock HTTP server for testing external API calls
type MockHTTPServer struct {
	server   *httptest.Server
	handlers map[string]http.HandlerFunc
}

// NewMockHTTPServer creates a new mock HTTP server
func NewMockHTTPServer() *MockHTTPServer {
	mock := &MockHTTPServer{
		handlers: make(map[string]http.HandlerFunc),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", mock.routeRequest)

	mock.server = httptest.NewServer(mux)
	return mock
}

// URL returns the mock server URL
func (m *MockHTTPServer) URL() string {
	return m.server.URL
}

// Close closes the mock server
func (m *MockHTTPServer) Close() {
	m.server.Close()
}

// On registers a handler for a specific path
func (m *MockHTTPServer) On(path string, handler http.HandlerFunc) {
	m.handlers[path] = handler
}

// routeRequest routes requests to registered handlers
func (m *MockHTTPServer) routeRequest(w http.ResponseWriter, r *http.Request) {
	if handler, exists := m.handlers[r.URL.Path]; exists {
		handler(w, r)
		return
	}

	// Default handler returns 404
	http.NotFound(w, r)
}

// GenerateContentResponse creates a mock generateContent body whose single
// candidate answers with text
func GenerateContentResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]interface{}{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
}

// WriteJSON writes payload with the given status
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
