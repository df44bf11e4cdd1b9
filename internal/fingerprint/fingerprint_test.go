package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/jiralog/pkg/models"
)

func frames(line int) []*models.Frame {
	return []*models.Frame{
		{Unit: "github.com/acme/shop/orders", Operation: "(*Service).Place", Location: "service.go", Line: line},
		{Unit: "github.com/acme/shop/http", Operation: "handleOrder", Location: "handlers.go", Line: 88},
		{Unit: "net/http", Operation: "HandlerFunc.ServeHTTP", Location: "server.go", Line: 2166},
	}
}

func chain(msg string, causeMsg string, causeLine int) *models.FailureChain {
	return &models.FailureChain{
		Kind:    "*orders.Error",
		Message: msg,
		Frames:  frames(42),
		Cause: &models.FailureChain{
			Kind:    "*net.OpError",
			Message: causeMsg,
			Frames:  frames(causeLine),
		},
	}
}

func TestComputeKnownValue(t *testing.T) {
	f := &models.Frame{Unit: "a", Operation: "b", Line: 1}

	single := &models.FailureChain{Frames: []*models.Frame{f}}
	fp, err := Compute(single)
	require.NoError(t, err)
	// 31*(31*'a' + 'b') + 1
	assert.Equal(t, int32(96256), fp)

	linked := &models.FailureChain{
		Frames: []*models.Frame{f},
		Cause:  &models.FailureChain{Frames: []*models.Frame{f}},
	}
	fp, err = Compute(linked)
	require.NoError(t, err)
	assert.Equal(t, int32(96256*37+96256), fp)
}

func TestComputeIgnoresMessages(t *testing.T) {
	testCases := []struct {
		name string
		a, b *models.FailureChain
	}{
		{
			name: "Equal chains",
			a:    chain("throwable", "cause", 10),
			b:    chain("throwable", "cause", 10),
		},
		{
			name: "Different outer messages",
			a:    chain("order 1 failed", "cause", 10),
			b:    chain("order 2 failed", "cause", 10),
		},
		{
			name: "Different cause messages",
			a:    chain("throwable", "dial tcp 10.0.0.1:5432", 10),
			b:    chain("throwable", "dial tcp 10.0.0.2:5432", 10),
		},
		{
			name: "Different kinds",
			a:    &models.FailureChain{Kind: "A", Frames: frames(1)},
			b:    &models.FailureChain{Kind: "B", Frames: frames(1)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, MustCompute(tc.a), MustCompute(tc.b))
		})
	}
}

func TestComputeDistinguishesStructure(t *testing.T) {
	t.Run("Different cause frames", func(t *testing.T) {
		assert.NotEqual(t, MustCompute(chain("x", "y", 10)), MustCompute(chain("x", "y", 11)))
	})

	t.Run("Different own frames", func(t *testing.T) {
		a := &models.FailureChain{Frames: frames(42)}
		b := &models.FailureChain{Frames: frames(43)}
		assert.NotEqual(t, MustCompute(a), MustCompute(b))
	})

	t.Run("Cause present versus absent", func(t *testing.T) {
		a := &models.FailureChain{Frames: frames(42)}
		b := chain("x", "y", 10)
		assert.NotEqual(t, MustCompute(a), MustCompute(b))
	})

	t.Run("Frame order matters", func(t *testing.T) {
		fs := frames(42)
		reversed := []*models.Frame{fs[2], fs[1], fs[0]}
		assert.NotEqual(t,
			MustCompute(&models.FailureChain{Frames: fs}),
			MustCompute(&models.FailureChain{Frames: reversed}))
	})
}

func TestComputeIgnoresLocation(t *testing.T) {
	a := &models.FailureChain{Frames: []*models.Frame{{Unit: "u", Operation: "op", Location: "/build/a/x.go", Line: 3}}}
	b := &models.FailureChain{Frames: []*models.Frame{{Unit: "u", Operation: "op", Location: "/home/b/x.go", Line: 3}}}
	assert.Equal(t, MustCompute(a), MustCompute(b))
}

func TestComputeNilFrameContributesZero(t *testing.T) {
	f := &models.Frame{Unit: "a", Operation: "b", Line: 1}
	withNil := &models.FailureChain{Frames: []*models.Frame{nil, f}}
	fp, err := Compute(withNil)
	require.NoError(t, err)
	// 0*31 + 0, then *31 + frameHash(f)
	assert.Equal(t, int32(96256), fp)

	trailingNil := &models.FailureChain{Frames: []*models.Frame{f, nil}}
	assert.Equal(t, int32(96256*31), MustCompute(trailingNil))
}

func TestComputeEmptyChain(t *testing.T) {
	fp, err := Compute(&models.FailureChain{Message: "no frames"})
	require.NoError(t, err)
	assert.Equal(t, int32(0), fp)
}

func TestComputeNilChain(t *testing.T) {
	_, err := Compute(nil)
	assert.ErrorIs(t, err, ErrNoFailureChain)

	assert.Panics(t, func() { MustCompute(nil) })
}

func TestComputeCyclicChainTerminates(t *testing.T) {
	c := &models.FailureChain{Frames: frames(1)}
	c.Cause = c

	assert.NotPanics(t, func() { MustCompute(c) })
}
