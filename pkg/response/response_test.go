package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/yatube/pkg/apperror"
)

func TestError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		code    int
		message string
	}{
		{"not found", apperror.NotFound("user", "ghost"), http.StatusNotFound, CodeNotFound, "user ghost not found"},
		{"validation", apperror.ValidationFailed("text", "required"), http.StatusBadRequest, CodeBadRequest, "required"},
		{"conflict", apperror.Conflict("group", "cats"), http.StatusConflict, CodeConflict, "group cats already exists"},
		{"forbidden", apperror.Forbidden("nope"), http.StatusForbidden, CodeForbidden, "nope"},
		{"unknown", errors.New("db down"), http.StatusInternalServerError, CodeInternal, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api", nil)

			Error(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, gin.H{"n": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"ok","data":{"n":1}}`, w.Body.String())
}
