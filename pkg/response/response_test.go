package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"go-sysadmin/internal/util/retcode"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	fn(c)
	return w
}

func TestSuccess(t *testing.T) {
	w := record(func(c *gin.Context) { Success(c, gin.H{"id": 1}) })
	assert.Equal(t, 200, w.Code)

	var b Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, retcode.SUCCESS, b.Code)
	assert.Equal(t, "success", b.Msg)
}

func TestErrorKeepsBusinessCode(t *testing.T) {
	w := record(func(c *gin.Context) { Error(c, retcode.AUTH_ERROR, "forbidden") })
	// HTTP 层恒为 200，业务码负值表达错误
	assert.Equal(t, 200, w.Code)

	var b Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, retcode.AUTH_ERROR, b.Code)
	assert.Equal(t, "forbidden", b.Msg)
	assert.Nil(t, b.Data)
}

func TestErrorRejectsNonNegativeCode(t *testing.T) {
	w := record(func(c *gin.Context) { Error(c, 404, "misuse") })
	var b Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, retcode.INVALID, b.Code)
}
