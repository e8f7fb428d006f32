package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := EncryptPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
	assert.False(t, VerifyPassword("not-a-hash", "hunter22"))
}

func TestDecodeSignatureData(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	raw, err := DecodeSignatureData("data:image/png;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), raw)

	raw, err = DecodeSignatureData(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), raw)
}

func TestDecodeSignatureDataRejects(t *testing.T) {
	_, err := DecodeSignatureData("data:image/jpeg;base64,AAAA")
	assert.Error(t, err)

	_, err = DecodeSignatureData("%%%not-base64%%%")
	assert.Error(t, err)

	_, err = DecodeSignatureData("")
	assert.Error(t, err)
}
