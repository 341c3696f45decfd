package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAny(t *testing.T) {
	assert.True(t, HasAny("light rain shower", "snow", "rain"))
	assert.False(t, HasAny("partly cloudy", "rain", "storm"))
	assert.False(t, HasAny("anything"))
}
