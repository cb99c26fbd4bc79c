package logic

import (
	"context"
	"errors"
	"testing"

	"cardscan/internal/ocr"
	"cardscan/internal/svc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkedEngine struct {
	ocr.EngineFunc
	err error
}

func (e checkedEngine) Name() string { return "checked" }

func (e checkedEngine) Check(context.Context) error { return e.err }

func TestSystemLogic_Test(t *testing.T) {
	setupStore(t)

	res := NewSystemLogic(context.Background()).Test()
	assert.True(t, res.OK)
	require.Len(t, res.Components, 4)
	names := make([]string, len(res.Components))
	for i, c := range res.Components {
		names[i] = c.Name
		assert.True(t, c.OK, c.Name)
	}
	assert.Equal(t, []string{ComponentOCR, ComponentDatabase, ComponentTempDir, ComponentCache}, names)
	assert.Equal(t, "sqlite connected", res.Components[1].Message)
	assert.Equal(t, "memory", res.Components[3].Message)
}

func TestSystemLogic_EngineFailure(t *testing.T) {
	setupStore(t)
	svc.Ctx.Engine = checkedEngine{err: errors.New("tessdata missing")}

	res := NewSystemLogic(context.Background()).Test()
	assert.False(t, res.OK)
	assert.False(t, res.Components[0].OK)
	assert.Equal(t, "tessdata missing", res.Components[0].Message)
	assert.True(t, res.Components[1].OK)

	svc.Ctx.Engine = nil
	res = NewSystemLogic(context.Background()).Test()
	assert.False(t, res.Components[0].OK)
}

func TestSystemLogic_Health(t *testing.T) {
	setupStore(t)
	status, err := NewSystemLogic(context.Background()).Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", status["status"])

	sqlDB, err := svc.Ctx.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	status, err = NewSystemLogic(context.Background()).Health()
	assert.Error(t, err)
	assert.Equal(t, "degraded", status["status"])
}
