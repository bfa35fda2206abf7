package conv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigGet(t *testing.T) {
	cfg := map[string]any{
		"name":      "films",
		"k":         10,
		"weight":    0.5,
		"count":     float64(3),
		"timeout":   "1500ms",
		"seconds":   2,
		"bad":       "soon",
		"seeds":     []any{"Stalker", 1999},
		"typed":     []string{"a"},
		"dedup":     true,
		"not_float": "x",
	}

	assert.Equal(t, "films", ConfigGet(cfg, "name", ""))
	assert.Equal(t, "x", ConfigGet(cfg, "missing", "x"))
	assert.Equal(t, true, ConfigGet(cfg, "dedup", false))
	assert.Equal(t, int64(10), ConfigGetInt64(cfg, "k", 0))
	assert.Equal(t, int64(3), ConfigGetInt64(cfg, "count", 0))
	assert.Equal(t, int64(7), ConfigGetInt64(cfg, "name", 7))
	assert.Equal(t, 0.5, ConfigGetFloat64(cfg, "weight", 0))
	assert.Equal(t, 10.0, ConfigGetFloat64(cfg, "k", 0))
	assert.Equal(t, 1.0, ConfigGetFloat64(cfg, "not_float", 1))
	assert.Equal(t, 1500*time.Millisecond, ConfigGetDuration(cfg, "timeout", 0))
	assert.Equal(t, 2*time.Second, ConfigGetDuration(cfg, "seconds", 0))
	assert.Equal(t, time.Second, ConfigGetDuration(cfg, "bad", time.Second))
	assert.Equal(t, []string{"Stalker", "1999"}, SliceAnyToString(cfg["seeds"]))
	assert.Equal(t, []string{"a"}, SliceAnyToString(cfg["typed"]))
	assert.Nil(t, SliceAnyToString(cfg["name"]))
	assert.Equal(t, 0, len(ConfigGet[map[string]any](nil, "x", nil)))
}
