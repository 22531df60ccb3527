package envelope

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vedzeb_server/pkg/errorx"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   ErrorBody
	}{
		{"conflict", errorx.New(errorx.CodeConflict, "Contact request already sent"), http.StatusConflict, ErrorBody{Error: "Contact request already sent"}},
		{"expired", errorx.ErrTokenExpired, http.StatusUnauthorized, ErrorBody{Error: "Token expired", Code: errorx.ReasonTokenExpired}},
		{"db error hidden", errorx.Wrap(errors.New("dial tcp: refused"), errorx.CodeDBError, "List users"), http.StatusInternalServerError, ErrorBody{Error: InternalMessage}},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, ErrorBody{Error: InternalMessage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := FromError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestAbortWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { Abort(c, errorx.ErrInvalidToken) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid token", body["error"])
	assert.Equal(t, errorx.ReasonInvalidToken, body["code"])
	_, hasDetails := body["details"]
	assert.False(t, hasDetails)
}
