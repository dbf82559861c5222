package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsString(t *testing.T) {
	assert.Nil(t, AsString(nil))
	assert.Equal(t, "abc", *AsString("abc"))
	assert.Equal(t, "", *AsString(""))
	assert.Equal(t, "xyz", *AsString([]byte("xyz")))
	assert.Nil(t, AsString(int64(3)))
}

func TestAsInt(t *testing.T) {
	assert.Nil(t, AsInt(nil))
	assert.Equal(t, 42, *AsInt(int64(42)))
	assert.Equal(t, 42, *AsInt("42"))
	assert.Nil(t, AsInt("garbled"))
}

func TestAsInt64(t *testing.T) {
	assert.Nil(t, AsInt64(nil))
	assert.Equal(t, int64(4294967296), *AsInt64(int64(4294967296)))
	assert.Equal(t, int64(7), *AsInt64(7.0))
	assert.Nil(t, AsInt64([]byte{0x01}))
}

func TestAsFloat64(t *testing.T) {
	assert.Nil(t, AsFloat64(nil))
	assert.Equal(t, 7.9, *AsFloat64(7.9))
	assert.Equal(t, 8.0, *AsFloat64(int64(8)))
	assert.Equal(t, 7.9, *AsFloat64("7.9"))
	assert.Nil(t, AsFloat64("garbled"))
}

func TestAsBool(t *testing.T) {
	assert.Nil(t, AsBool(nil))
	assert.True(t, *AsBool(int64(1)))
	assert.False(t, *AsBool(int64(0)))
	assert.True(t, *AsBool(true))
	assert.True(t, *AsBool("true"))
	assert.Nil(t, AsBool("garbled"))
}
