package movement

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Message(t *testing.T) {
	err := newError(KindNotAvailable, "DRL-001", "status is %q", "in_repair")

	assert.Contains(t, err.Error(), "not_available")
	assert.Contains(t, err.Error(), "DRL-001")
	assert.Contains(t, err.Error(), `"in_repair"`)
}

func TestIsValidation_Wrapped(t *testing.T) {
	base := NewNotFound("DRL-001")
	wrapped := fmt.Errorf("recording movement: %w", base)

	assert.True(t, IsValidation(wrapped))
	assert.Equal(t, KindEquipmentNotFound, KindOf(wrapped))

	var ve *ValidationError
	assert.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "DRL-001", ve.AssetCode)
}

func TestIsValidation_Infrastructure(t *testing.T) {
	err := errors.New("dial tcp: connection refused")

	assert.False(t, IsValidation(err))
	assert.Equal(t, ErrorKind(""), KindOf(err))
}
