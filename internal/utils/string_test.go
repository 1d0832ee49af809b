package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "TIERCE_COLLISION", NormalizeCode("Tierce Collision", 32))
	assert.Equal(t, "VOL_A_MAIN_ARMEE", NormalizeCode("vol-a-main-armee", 32))
	assert.Equal(t, "RC", NormalizeCode("  rc  ", 32))
	assert.Equal(t, "BRIS_DE_GLACES", NormalizeCode("Bris  de--Glaces", 32))
}

func TestNormalizeCode_StripsNonAlphanumerics(t *testing.T) {
	assert.Equal(t, "DFENSE_RECOURS", NormalizeCode("Défense & Recours!", 32))
	assert.Equal(t, "", NormalizeCode("???", 32))
}

func TestNormalizeCode_Truncates(t *testing.T) {
	code := NormalizeCode("a very long guarantee name that keeps going", 10)
	assert.Len(t, code, 10)
}

func TestGenerateRandomStringWithLength(t *testing.T) {
	value := GenerateRandomStringWithLength(6)
	assert.Len(t, value, 6)

	for _, r := range value {
		assert.Contains(t, string(letters), string(r))
	}
}
