package fsm_test

import (
	"net/http"
	"testing"

	"masar-finance/internal/shared/apperror"
	"masar-finance/internal/shared/fsm"

	"github.com/stretchr/testify/assert"
)

type light string

const (
	red    light = "RED"
	green  light = "GREEN"
	yellow light = "YELLOW"
	off    light = "OFF"
)

var lights = fsm.Table[light]{
	red:    {green, off},
	green:  {yellow, off},
	yellow: {red, off},
}

var errBadMove = apperror.New(apperror.CodeInvalidState, "invalid light transition", http.StatusConflict)

func TestTable(t *testing.T) {
	assert.True(t, lights.Can(red, green))
	assert.False(t, lights.Can(red, yellow))
	assert.False(t, lights.Can(off, red))

	assert.True(t, lights.Terminal(off))
	assert.False(t, lights.Terminal(green))
}

func TestTable_Check(t *testing.T) {
	assert.NoError(t, lights.Check(green, yellow, errBadMove))

	err := lights.Check(off, green, errBadMove)
	assert.ErrorIs(t, err, errBadMove)
	assert.Contains(t, err.Error(), "OFF")
	assert.Contains(t, err.Error(), "GREEN")
	assert.Equal(t, http.StatusConflict, apperror.ToHTTP(err).Status)
}
