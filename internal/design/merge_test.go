package design

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextPlacementFirstArtifactCentersOnOrigin(t *testing.T) {
	x, y := NextPlacement(nil, TypeWeb)
	require.Equal(t, float64(-512), x, "default web width 1024 centered on origin")
	require.Equal(t, float64(0), y)

	x, _ = NextPlacement(nil, TypeApp)
	require.Equal(t, float64(-190), x)
}

func TestNextPlacementAfterPrevious(t *testing.T) {
	prev := &Artifact{Title: "Home", Type: TypeWeb, X: -512}
	x, y := NextPlacement(prev, TypeApp)
	require.Equal(t, float64(-512+1024+120), x)
	require.Equal(t, float64(0), y)

	// explicit width on the previous artifact takes precedence over defaults
	prev = &Artifact{Title: "Wide", Type: TypeApp, X: 100, Width: 500}
	x, _ = NextPlacement(prev, TypeWeb)
	require.Equal(t, float64(100+500+120), x)
}

func TestMergeOntoEmptyCanvas(t *testing.T) {
	got := Merge(nil, []Artifact{{Title: "Home", Type: TypeWeb, Content: "<html>", IsComplete: true}})
	require.Len(t, got, 1)
	require.Equal(t, float64(-512), got[0].X)
	require.Equal(t, float64(0), got[0].Y)
}

func TestMergeAppendsAfterLast(t *testing.T) {
	existing := []Artifact{{Title: "Home", Type: TypeWeb, X: -512}}
	got := Merge(existing, []Artifact{{Title: "Settings", Type: TypeApp}})
	require.Len(t, got, 2)
	require.Equal(t, float64(632), got[1].X)
}

func TestMergeRevisionPreservesGeometryAndAnnotations(t *testing.T) {
	liked := true
	existing := []Artifact{{
		Title: "Home", Type: TypeWeb, Content: "old", IsComplete: true,
		X: 42, Y: -7, Width: 900, Height: 700, Liked: &liked,
	}}

	got := Merge(existing, []Artifact{{Title: "Home", Type: TypeWeb, Content: "new", IsComplete: false}})
	require.Len(t, got, 1)
	require.Equal(t, "new", got[0].Content)
	require.False(t, got[0].IsComplete)
	require.Equal(t, float64(42), got[0].X)
	require.Equal(t, float64(-7), got[0].Y)
	require.Equal(t, float64(900), got[0].Width)
	require.Equal(t, float64(700), got[0].Height)
	require.NotNil(t, got[0].Liked)
	require.True(t, *got[0].Liked)
}

func TestMergeMixedUpdateAndInsert(t *testing.T) {
	existing := []Artifact{
		{Title: "Home", Type: TypeWeb, X: -512},
		{Title: "About", Type: TypeWeb, X: 632},
	}
	incoming := []Artifact{
		{Title: "About", Type: TypeWeb, Content: "rev2", IsComplete: true},
		{Title: "Contact", Type: TypeApp, Content: "new", IsComplete: true},
	}

	got := Merge(existing, incoming)
	require.Len(t, got, 3)
	require.Equal(t, "rev2", got[1].Content)
	require.Equal(t, float64(632), got[1].X, "revision keeps position")
	// insertion is placed after the current last element
	require.Equal(t, float64(632+1024+120), got[2].X)
}

func TestMergeInsertsChainPlacement(t *testing.T) {
	// two fresh insertions in one merge: the second is placed against the first
	got := Merge(nil, []Artifact{
		{Title: "One", Type: TypeWeb},
		{Title: "Two", Type: TypeApp},
	})
	require.Len(t, got, 2)
	require.Equal(t, float64(-512), got[0].X)
	require.Equal(t, float64(-512+1024+120), got[1].X)
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	existing := []Artifact{{Title: "Home", Type: TypeWeb, Content: "old", X: -512}}
	_ = Merge(existing, []Artifact{{Title: "Home", Content: "new"}})
	require.Equal(t, "old", existing[0].Content)
}
