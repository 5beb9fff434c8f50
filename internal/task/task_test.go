package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	h := func(ctx context.Context, p *Payload) (string, error) { return "ok", nil }

	require.NoError(t, r.Register("task_b", h))
	require.NoError(t, r.Register("task_a", h))

	assert.ErrorContains(t, r.Register("task_a", h), "registered twice")
	assert.ErrorContains(t, r.Register("", h), "empty")

	_, ok := r.Lookup("task_a")
	assert.True(t, ok)
	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"task_a", "task_b"}, r.Names())
}

func TestPayloadRoundtrip(t *testing.T) {
	p := &Payload{
		TaskID:     "uuid-1",
		Name:       "task_demo_params",
		Args:       []interface{}{"Hello,"},
		Kwargs:     map[string]interface{}{"world": "world"},
		EnqueuedAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}
	b, err := p.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalPayload(b)
	require.NoError(t, err)
	assert.Equal(t, p.TaskID, got.TaskID)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, "Hello,", got.Args[0])
	assert.Equal(t, "world", got.Kwargs["world"])

	_, err = UnmarshalPayload([]byte("{broken"))
	assert.ErrorContains(t, err, "unmarshal task payload")
}
