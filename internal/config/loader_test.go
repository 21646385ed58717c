package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv_WithValue(t *testing.T) {
	t.Setenv("SCHOLAR_TEST_VAR", "actual")
	assert.Equal(t, "host: actual", expandEnv("host: ${SCHOLAR_TEST_VAR}"))
	assert.Equal(t, "host: actual", expandEnv("host: ${SCHOLAR_TEST_VAR:fallback}"))
}

func TestExpandEnv_Default(t *testing.T) {
	assert.Equal(t, "host: fallback", expandEnv("host: ${SCHOLAR_UNSET_VAR:fallback}"))
	assert.Equal(t, "host: ", expandEnv("host: ${SCHOLAR_UNSET_VAR:}"))
}

func TestExpandEnv_UndefinedWithoutDefault(t *testing.T) {
	// 无默认值且未定义时原样保留，便于发现缺失配置
	assert.Equal(t, "${SCHOLAR_UNSET_VAR}", expandEnv("${SCHOLAR_UNSET_VAR}"))
}

func TestExpandEnv_MultiplePlaceholders(t *testing.T) {
	t.Setenv("SCHOLAR_A", "1")
	got := expandEnv("${SCHOLAR_A}:${SCHOLAR_B:2}")
	assert.Equal(t, "1:2", got)
}
