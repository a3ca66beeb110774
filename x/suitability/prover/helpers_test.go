package prover

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zksuit/zksuit/x/suitability/artifacts"
	"github.com/zksuit/zksuit/x/suitability/commitment"
	"github.com/zksuit/zksuit/x/suitability/setup"
	"github.com/zksuit/zksuit/x/suitability/types"
)

var (
	fixtureOnce  sync.Once
	fixtureStore *artifacts.MemStore
	fixtureErr   error
)

// fixtureArtifacts runs the setup once per test binary.
func fixtureArtifacts(t *testing.T) *artifacts.MemStore {
	t.Helper()
	fixtureOnce.Do(func() {
		fixtureStore = artifacts.NewMemStore()
		_, fixtureErr = setup.NewKeyGenerator(fixtureStore).GenerateKeys(context.Background())
	})
	require.NoError(t, fixtureErr)
	return fixtureStore
}

// cloneArtifacts copies the fixture so a test can corrupt it.
func cloneArtifacts(t *testing.T) *artifacts.MemStore {
	t.Helper()
	ctx := context.Background()
	src := fixtureArtifacts(t)
	dst := artifacts.NewMemStore()
	names, err := src.List(ctx)
	require.NoError(t, err)
	for _, name := range names {
		data, err := src.Load(ctx, name)
		require.NoError(t, err)
		require.NoError(t, dst.Store(ctx, name, data))
	}
	return dst
}

func openTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(context.Background(), fixtureArtifacts(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func u64s(vs ...uint64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = new(big.Int).SetUint64(v)
	}
	return out
}

// scenarioWitness is password 123, salt 456 against [GE, GE, LE] / [0, 70, 670].
func scenarioWitness(t *testing.T, attrs ...uint64) Witness {
	t.Helper()
	password, salt := big.NewInt(123), big.NewInt(456)
	identity, err := commitment.DeriveIdentity(password, salt)
	require.NoError(t, err)
	cert, err := commitment.DeriveCertificate(identity, u64s(attrs...))
	require.NoError(t, err)

	return Witness{
		Password:    password,
		Salt:        salt,
		Attributes:  u64s(attrs...),
		Certificate: cert,
		Directions:  []types.Direction{types.GreaterOrEqual, types.GreaterOrEqual, types.LessOrEqual},
		Thresholds:  u64s(0, 70, 670),
	}
}
