package operalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	raw := `{
		"trace_id": "abc123",
		"username": "admin",
		"method": "POST",
		"title": "post_api_v1_sys_users",
		"path": "/api/v1/sys/users",
		"ip": "10.0.0.1",
		"user_agent": "curl/8.0",
		"args": "{\"username\":\"x\",\"password\":\"***\"}",
		"status": 1,
		"code": 200,
		"cost_time": 12.5,
		"opera_time": "2026-08-25T10:00:00Z"
	}`
	row, err := decode([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "abc123", row.TraceID)
	require.NotNil(t, row.Username)
	assert.Equal(t, "admin", *row.Username)
	assert.Equal(t, "POST", row.Method)
	assert.Equal(t, "/api/v1/sys/users", row.Path)
	assert.Equal(t, 1, row.Status)
	assert.Equal(t, "200", row.Code)
	assert.Equal(t, 12.5, row.CostTime)
	assert.Equal(t, time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC), row.OperaTime)
	require.NotNil(t, row.Args)
	assert.Contains(t, *row.Args, "***")
}

func TestDecodeDefaults(t *testing.T) {
	row, err := decode([]byte(`{"method":"GET","path":"/healthz"}`))
	require.NoError(t, err)

	// code 缺省按 200 记
	assert.Equal(t, "200", row.Code)
	assert.Nil(t, row.Username)
	assert.Nil(t, row.Args)
	// opera_time 非法时落当前时间
	assert.WithinDuration(t, time.Now(), row.OperaTime, time.Minute)
}

func TestDecodeTruncatesArgs(t *testing.T) {
	long := strings.Repeat("a", 5000)
	row, err := decode([]byte(`{"args":"` + long + `"}`))
	require.NoError(t, err)
	require.NotNil(t, row.Args)
	assert.Len(t, *row.Args, 2000)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := decode([]byte("{nope"))
	assert.Error(t, err)
}

func TestItoa(t *testing.T) {
	assert.Equal(t, "200", itoa(0))
	assert.Equal(t, "200", itoa(200))
	assert.Equal(t, "404", itoa(404))
	assert.Equal(t, "500", itoa(500))
}
