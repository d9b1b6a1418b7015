package config_test

import (
	"testing"

	"feeconsole-service/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("FEECONSOLE_TEST_STR", "from-env")

	assert.Equal(t, "from-env", config.GetEnv("FEECONSOLE_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", config.GetEnv("FEECONSOLE_TEST_STR_UNSET", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("FEECONSOLE_TEST_INT", "250")
	t.Setenv("FEECONSOLE_TEST_NOT_INT", "two hundred")

	assert.Equal(t, 250, config.GetEnvInt("FEECONSOLE_TEST_INT", 100))
	assert.Equal(t, 100, config.GetEnvInt("FEECONSOLE_TEST_NOT_INT", 100))
	assert.Equal(t, 100, config.GetEnvInt("FEECONSOLE_TEST_INT_UNSET", 100))
}
