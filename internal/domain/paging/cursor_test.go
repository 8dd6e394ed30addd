package paging

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-guardianship/internal/platform/apperr"
)

func TestCursor_RoundTrip(t *testing.T) {
	ids := []int64{0, 1, 42, 9_007_199_254_740_993}
	tags := []string{"", TagUser, TagPet, TagRegistration, "some tag with spaces", "ñandú"}

	for _, id := range ids {
		for _, tag := range tags {
			c := Encode(id, tag)
			got, err := Decode(c)
			require.NoError(t, err, "decode(%q)", c)
			assert.Equal(t, id, got)

			gotTag, gotID, err := Parse(c)
			require.NoError(t, err)
			assert.Equal(t, tag, gotTag)
			assert.Equal(t, id, gotID)
		}
	}
}

func TestCursor_Deterministic(t *testing.T) {
	assert.Equal(t, Encode(7, TagPet), Encode(7, TagPet))
	assert.NotEqual(t, Encode(7, TagPet), Encode(7, TagUser))
	assert.NotEqual(t, Encode(7, TagPet), Encode(8, TagPet))
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("Pet:7")), Encode(7, TagPet))
}

func TestCursor_DecodeRejectsMalformed(t *testing.T) {
	malformed := []string{
		"not-base64!!",
		"",
		base64.StdEncoding.EncodeToString([]byte("Pet7")),
		base64.StdEncoding.EncodeToString([]byte("Pet:")),
		base64.StdEncoding.EncodeToString([]byte("Pet:-3")),
		base64.StdEncoding.EncodeToString([]byte("Pet:+3")),
		base64.StdEncoding.EncodeToString([]byte("Pet:3a")),
		base64.StdEncoding.EncodeToString([]byte("Pet:99999999999999999999")),
	}
	for _, c := range malformed {
		_, err := Decode(c)
		require.Error(t, err, "cursor %q", c)
		assert.ErrorIs(t, err, apperr.ErrBadRequest)
		assert.ErrorIs(t, err, ErrInvalidCursor)
	}
}

func TestDecodeFor_ChecksTag(t *testing.T) {
	id, err := DecodeFor(Encode(5, TagUser), TagUser)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	_, err = DecodeFor(Encode(5, TagUser), TagRegistration)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}
