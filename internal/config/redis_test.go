package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisTLS(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("REDIS_TLS", "")
		t.Setenv("REDIS_TLS_SKIP_VERIFY", "")
		assert.Nil(t, redisTLS())
	})

	t.Run("enabled verifies certificates", func(t *testing.T) {
		t.Setenv("REDIS_TLS", "true")
		t.Setenv("REDIS_TLS_SKIP_VERIFY", "")
		conf := redisTLS()
		require.NotNil(t, conf)
		assert.False(t, conf.InsecureSkipVerify)
	})

	t.Run("skip-verify needs the explicit knob", func(t *testing.T) {
		t.Setenv("REDIS_TLS", "1")
		t.Setenv("REDIS_TLS_SKIP_VERIFY", "true")
		conf := redisTLS()
		require.NotNil(t, conf)
		assert.True(t, conf.InsecureSkipVerify)
	})

	t.Run("skip-verify alone does not enable tls", func(t *testing.T) {
		t.Setenv("REDIS_TLS", "")
		t.Setenv("REDIS_TLS_SKIP_VERIFY", "true")
		assert.Nil(t, redisTLS())
	})
}
