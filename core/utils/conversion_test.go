package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"int", 7, 7},
		{"int64", int64(8), 8},
		{"float", 9.9, 9},
		{"string", " 10 ", 10},
		{"bytes", []byte("11"), 11},
		{"garbage", "x", 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.in))
		})
	}
}

func TestToIntPtr(t *testing.T) {
	assert.Nil(t, ToIntPtr(nil))
	assert.Nil(t, ToIntPtr(""))
	assert.Nil(t, ToIntPtr("abc"))
	assert.Equal(t, 0, *ToIntPtr(0))
	assert.Equal(t, 0, *ToIntPtr("0"))
	assert.Equal(t, 18, *ToIntPtr(18))
	assert.Equal(t, 18, *ToIntPtr("18"))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "a", ToString("a"))
	assert.Equal(t, "b", ToString([]byte("b")))
	assert.Equal(t, "12", ToString(12))
	assert.Nil(t, ToStringPtr(nil))
	assert.Equal(t, "x", *ToStringPtr("x"))
}

func TestToStringSlice(t *testing.T) {
	assert.Equal(t, []string{}, ToStringSlice(nil))
	assert.Equal(t, []string{"a", "1"}, ToStringSlice([]any{"a", 1}))
	assert.Equal(t, []string{"solo"}, ToStringSlice("solo"))
	assert.Equal(t, []string{"x"}, ToStringSlice([]string{"x"}))
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool(1))
	assert.True(t, ToBool("TRUE"))
	assert.True(t, ToBool([]byte("1")))
	assert.False(t, ToBool("no"))
	assert.False(t, ToBool(nil))
}
