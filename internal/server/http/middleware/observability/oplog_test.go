package observability

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeJSONMasksSensitiveKeys(t *testing.T) {
	in := `{"username":"admin","password":"123456","nested":{"old_password":"x","token":"y"},"list":[{"pwd":"z"}]}`
	out := sanitizeJSON([]byte(in))

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "admin", m["username"])
	assert.Equal(t, "***", m["password"])
	nested := m["nested"].(map[string]interface{})
	assert.Equal(t, "***", nested["old_password"])
	assert.Equal(t, "***", nested["token"])
	item := m["list"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "***", item["pwd"])
}

func TestSanitizeJSONCaseInsensitive(t *testing.T) {
	out := sanitizeJSON([]byte(`{"Password":"s","AUTHORIZATION":"Bearer x"}`))
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "***", m["Password"])
	assert.Equal(t, "***", m["AUTHORIZATION"])
}

func TestSanitizeJSONPassthrough(t *testing.T) {
	assert.Empty(t, sanitizeJSON(nil))
	// 非 JSON 原样返回
	assert.Equal(t, "plain text body", sanitizeJSON([]byte("plain text body")))
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "post_api_v1_auth_login", deriveTitle("/api/v1/auth/login", "POST"))
	assert.Equal(t, "put_api_v1_sys_users_id", deriveTitle("/api/v1/sys/users/:id", "PUT"))
	assert.Equal(t, "GET", deriveTitle("", "GET"))
	assert.Equal(t, "GET", deriveTitle("/", "GET"))
}
