package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		gesture Type
		want    string
	}{
		{Neutral, "neutral"},
		{Click, "click"},
		{Grab, "grab"},
		{GoBack, "go_back"},
		{GoForward, "go_forward"},
		{Type(42), "gesture(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gesture.String())
		})
	}
}

func TestType_LabelsMatchModelClasses(t *testing.T) {
	assert.Equal(t, 0, int(Neutral))
	assert.Equal(t, 1, int(Click))
	assert.Equal(t, 2, int(Grab))
	assert.Equal(t, 3, int(GoBack))
	assert.Equal(t, 4, int(GoForward))
	assert.False(t, Type(-1).Valid())
	assert.False(t, Type(5).Valid())
}

func TestParseType(t *testing.T) {
	got, err := ParseType(" Go-Back ")
	require.NoError(t, err)
	assert.Equal(t, GoBack, got)

	got, err = ParseType("grab")
	require.NoError(t, err)
	assert.Equal(t, Grab, got)

	_, err = ParseType("wave")
	assert.Error(t, err)
}
