package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Kind  string `json:"kind" validate:"required,oneof=a b"`
	Inner struct {
		Port int `yaml:"port" validate:"min=1"`
	} `yaml:"inner"`
}

func TestCheck(t *testing.T) {
	var ok sample
	ok.Kind = "a"
	ok.Inner.Port = 80
	require.NoError(t, Check(ok))

	var bad sample
	bad.Kind = "c"
	err := Check(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample.kind: oneof=a b")
	assert.Contains(t, err.Error(), "sample.inner.port: min=1")
}

func TestCheck_NonStruct(t *testing.T) {
	assert.Error(t, Check(42))
}
