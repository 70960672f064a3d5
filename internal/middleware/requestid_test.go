package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureID(t *testing.T, headerID string) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if headerID != "" {
		req.Header.Set(RequestIDHeader, headerID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return captured, rec
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	id, rec := captureID(t, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, id)
	assert.Len(t, id, 36)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_Validation(t *testing.T) {
	tests := []struct {
		name     string
		headerID string
		wantNew  bool
	}{
		{"alphanumeric with hyphens", "abc-123_DEF", false},
		{"newline injection", "fake-id\nINJECTED: x", true},
		{"spaces", "id with spaces", true},
		{"markup", "id<script>", true},
		{"max length", strings.Repeat("a", 128), false},
		{"too long", strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, rec := captureID(t, tt.headerID)
			require.NotEmpty(t, id)
			assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
			if tt.wantNew {
				assert.NotEqual(t, tt.headerID, id, "invalid ID should be replaced")
			} else {
				assert.Equal(t, tt.headerID, id, "valid ID should be preserved")
			}
		})
	}
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestIDFromContext(req.Context()))
}
