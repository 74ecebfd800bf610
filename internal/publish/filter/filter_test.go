package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuemby/ray-aggregator/internal/model"
)

func TestNew_AllowsOnlyConfiguredKinds(t *testing.T) {
	p := New([]model.Kind{model.KindTaskExecution})

	assert.True(t, p(model.KindTaskExecution))
	assert.False(t, p(model.KindTaskDefinition))
	assert.False(t, p(model.KindTaskProfile))
}

func TestDefaultExposableKinds_ExcludesTaskProfile(t *testing.T) {
	p := New(DefaultExposableKinds)

	assert.False(t, p(model.KindTaskProfile))
	assert.True(t, p(model.KindTaskExecution))
	assert.True(t, p(model.KindDriverJobExecution))
}

func TestAllow_PermitsEveryKind(t *testing.T) {
	assert.True(t, Allow(model.KindTaskProfile))
	assert.True(t, Allow(model.KindUnknown))
}
