package squire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	t.Run("OpenWrapsThreading", func(t *testing.T) {
		err := &OpenError{Err: ErrThreadingUnsupported}
		assert.ErrorIs(t, err, ErrThreadingUnsupported)
		assert.Contains(t, err.Error(), "failed to open connection")
	})

	t.Run("PrepareWrapsEngine", func(t *testing.T) {
		inner := &EngineError{Code: 1, Message: "near \"FRMO\": syntax error", Offset: 10}
		err := &PrepareError{Err: inner}

		var eerr *EngineError
		assert.ErrorAs(t, err, &eerr)
		assert.Equal(t, 1, eerr.Code)
		assert.Equal(t, 10, eerr.Offset)
	})

	t.Run("StepWrapsEngine", func(t *testing.T) {
		inner := &EngineError{Code: 19, Message: "UNIQUE constraint failed"}
		err := &StepError{Err: inner}

		var eerr *EngineError
		assert.ErrorAs(t, err, &eerr)
		assert.Equal(t, 19, eerr.Code)
	})

	t.Run("Messages", func(t *testing.T) {
		assert.Equal(t,
			"squire: cannot bind 3 values to a statement with 2 parameters",
			(&ArityError{Expected: 2, Got: 3}).Error(),
		)
		assert.Equal(t,
			`squire: column "username" holds TEXT, expected INTEGER`,
			(&TypeMismatchError{Column: "username", Expected: TypeInteger, Actual: TypeText}).Error(),
		)
		assert.Equal(t,
			`squire: column "bio" is NULL`,
			(&NullColumnError{Column: "bio"}).Error(),
		)
		assert.Equal(t,
			`squire: no result column for field "score"`,
			(&MissingColumnError{Field: "score"}).Error(),
		)
	})
}
