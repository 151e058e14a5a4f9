package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleStruct struct {
	Name   string `validate:"required"`
	Format string `validate:"oneof=json console"`
	Count  int    `validate:"gte=1"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := ValidateStruct(sampleStruct{Name: "x", Format: "json", Count: 3})
		assert.NoError(t, err)
	})

	t.Run("collects field failures", func(t *testing.T) {
		err := ValidateStruct(sampleStruct{Format: "xml", Count: 0})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		verr := err.(*ValidationError)
		assert.Contains(t, verr.Fields["Name"], "required")
		assert.Contains(t, verr.Fields["Format"], "one of")
		assert.Contains(t, verr.Fields["Count"], "at least")
	})
}
