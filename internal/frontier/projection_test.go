package frontier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectAllPairs(t *testing.T) {
	front := scenarioFrontier()
	cloud := newTestSynth(1).Synthesize(front, lightDirs(), 20)

	proj := Project(front, cloud)
	require.Len(t, proj, 3)

	axes := [][2]string{{"f1", "f2"}, {"f1", "f3"}, {"f2", "f3"}}
	for i, p := range proj {
		assert.Equal(t, axes[i][0], p.X)
		assert.Equal(t, axes[i][1], p.Y)
		assert.Len(t, p.Frontier, 2)
		assert.Len(t, p.Cloud, 20)
		for _, m := range p.Cloud {
			assert.Empty(t, m.ID, "cloud markers must not be selectable")
		}
	}
	assert.Equal(t, "p1", proj[0].Frontier[0].ID)
	assert.Equal(t, 100.0, proj[0].Frontier[0].X)
	assert.Equal(t, 0.1, proj[1].Frontier[0].Y)
}

func TestProjectOmitsF3WhenMissing(t *testing.T) {
	front := []Point{{ID: "a", F1: 1, F2: 2}, {ID: "b", F1: 2, F2: 1}}
	cloud := newTestSynth(1).Synthesize(front, lightDirs(), 10)

	proj := Project(front, cloud)
	require.Len(t, proj, 1)
	assert.Equal(t, "f1", proj[0].X)
	assert.Equal(t, "f2", proj[0].Y)
}

func TestProjectEmptyCloud(t *testing.T) {
	proj := Project(scenarioFrontier(), Cloud{})
	require.Len(t, proj, 3)
	for _, p := range proj {
		assert.Empty(t, p.Cloud)
		assert.NotNil(t, p.Cloud)
	}
}
