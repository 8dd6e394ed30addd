package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("register: %w", Conflict("pet %d already has an active guardian", 7))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "pet 7 already has an active guardian", Public(err))
}

func TestPublic_HidesStoreDetail(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.3:5432: connection refused")

	unavailable := Unavailable(cause)
	assert.Equal(t, "store unavailable", Public(unavailable))
	assert.ErrorIs(t, unavailable, cause)

	inconsistent := Inconsistency(cause, "release touched %d rows", 2)
	assert.Equal(t, "internal error", Public(inconsistent))
	assert.Equal(t, KindInternalInconsistency, KindOf(inconsistent))
}

func TestKindOf_UnclassifiedIsStoreUnavailable(t *testing.T) {
	assert.Equal(t, KindStoreUnavailable, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, "store unavailable", Public(errors.New("boom")))
}
