package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "", MaskPhone(""))
	assert.Equal(t, "138****5678", MaskPhone("13812345678"))
	assert.Equal(t, "010****4321", MaskPhone("01087654321"))
	// Too short to keep a prefix and suffix.
	assert.Equal(t, "****", MaskPhone("123456"))
	assert.Equal(t, "123****4567", MaskPhone("1234567"))
}
