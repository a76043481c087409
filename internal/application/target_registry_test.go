package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lf-go/pretsched/internal/ports"
)

func TestTargetRegistry_RegisterBuiltinTargets(t *testing.T) {
	r := NewTargetRegistry()
	r.RegisterBuiltinTargets()

	assert.ElementsMatch(t, []string{"c", "python", "typescript"}, r.GetSupportedTargets())
}

func TestTargetRegistry_CreateTarget(t *testing.T) {
	t.Run("known target", func(t *testing.T) {
		r := NewTargetRegistry()
		r.RegisterBuiltinTargets()

		target, err := r.CreateTarget("c", nil)
		require.NoError(t, err)
		assert.Equal(t, "c", target.Name())
	})

	t.Run("unknown target", func(t *testing.T) {
		r := NewTargetRegistry()
		_, err := r.CreateTarget("rust", nil)
		assert.Error(t, err)
	})
}

func TestTargetRegistry_RegisterDuplicatePanics(t *testing.T) {
	r := NewTargetRegistry()
	factory := func(map[string]any) (ports.TargetTypes, error) { return nil, nil }
	r.Register("c", factory)

	assert.Panics(t, func() { r.Register("c", factory) })
}

func TestApplyTargetMiddleware(t *testing.T) {
	var order []string
	mk := func(name string) ports.TargetMiddleware {
		return func(next ports.TargetTypes) ports.TargetTypes {
			order = append(order, name)
			return next
		}
	}

	r := NewTargetRegistry()
	r.RegisterBuiltinTargets()
	base, err := r.CreateTarget("c", nil)
	require.NoError(t, err)

	wrapped := ApplyTargetMiddleware(base, mk("outer"), mk("inner"))
	require.NotNil(t, wrapped)
	assert.Equal(t, []string{"inner", "outer"}, order)
}
