package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTTPMiddleware(t *testing.T) {
	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = Subject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := HTTPMiddleware(next, validSecret)

	tests := []struct {
		name        string
		method      string
		path        string
		header      string
		wantStatus  int
		wantSubject string
	}{
		{
			name:       "public read",
			method:     http.MethodGet,
			path:       "/v1/directory",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "reload without token",
			method:     http.MethodPost,
			path:       ReloadPath,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "reload with malformed header",
			method:     http.MethodPost,
			path:       ReloadPath,
			header:     "Token abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "reload with bad signature",
			method:     http.MethodPost,
			path:       ReloadPath,
			header:     "Bearer " + generateToken("other", time.Now().Add(time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:        "reload with valid token",
			method:      http.MethodPost,
			path:        ReloadPath,
			header:      "Bearer " + generateToken(validSecret, time.Now().Add(time.Hour)),
			wantStatus:  http.StatusNoContent,
			wantSubject: userID,
		},
		{
			name:       "get on the reload path is not protected",
			method:     http.MethodGet,
			path:       ReloadPath,
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSubject = ""
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantSubject, gotSubject)
		})
	}
}
