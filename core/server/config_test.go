package server_test

import (
	"testing"

	"auto-validator/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_IsValidSchema(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		want   bool
	}{
		{"Core", server.SchemaCore, true},
		{"Validator Manager", server.SchemaValidatorManager, true},
		{"Invalid", "invalid", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{DefaultSchema: tt.schema}
			assert.Equal(t, tt.want, c.IsValidSchema())
		})
	}
}
