package assets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticResolverStageImage(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		plant string
		stage int
		want  string
	}{
		{name: "first stage", plant: "fig", stage: 0, want: "/plants/fig/1.svg"},
		{name: "last stage", plant: "tomato", stage: 2, want: "/plants/tomato/3.svg"},
		{name: "with prefix", base: "https://cdn.example.com/static", plant: "salad", stage: 1, want: "https://cdn.example.com/static/plants/salad/2.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewStaticResolver(tt.base).StageImage(context.Background(), tt.plant, tt.stage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaticResolverSound(t *testing.T) {
	r := NewStaticResolver("")

	got, err := r.Sound(context.Background(), SoundCorrect)
	require.NoError(t, err)
	assert.Equal(t, "/sounds/correct.mp3", got)

	got, err = r.Sound(context.Background(), SoundLevelUp)
	require.NoError(t, err)
	assert.Equal(t, "/sounds/levelup.mp3", got)
}
