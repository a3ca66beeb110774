package commitment

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zksuit/zksuit/x/suitability/types"
)

func ints(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestDeriveIdentityDeterministic(t *testing.T) {
	a, err := DeriveIdentity(big.NewInt(123), big.NewInt(456))
	require.NoError(t, err)
	b, err := DeriveIdentity(big.NewInt(123), big.NewInt(456))
	require.NoError(t, err)
	require.Equal(t, 0, a.Cmp(b))
	require.NoError(t, ValidateFieldElement(a))

	swapped, err := DeriveIdentity(big.NewInt(456), big.NewInt(123))
	require.NoError(t, err)
	require.NotEqual(t, 0, a.Cmp(swapped))
}

// Fixed values of the arity-prefixed MiMC construction for the worked example.
const (
	scenarioIdentity       = "1147508182105248088492920448322828385956998138736255741256538959142840298312"
	scenarioCertificate    = "4015778754641986584706640552953487158288587377322967167675269465859523739157"
	scenarioCertificate600 = "14940860939503789674206989958279097069444752158774785710019291910648255003677"
)

func TestCertificateScenario(t *testing.T) {
	identity, err := DeriveIdentity(big.NewInt(123), big.NewInt(456))
	require.NoError(t, err)
	require.Equal(t, scenarioIdentity, FormatFieldElement(identity))

	cert, err := DeriveCertificate(identity, ints(1, 73, 750))
	require.NoError(t, err)
	require.Equal(t, scenarioCertificate, FormatFieldElement(cert))

	other, err := DeriveCertificate(identity, ints(1, 73, 600))
	require.NoError(t, err)
	require.Equal(t, scenarioCertificate600, FormatFieldElement(other))
}

func TestHashUsesArityPrefix(t *testing.T) {
	// the raw MiMC chain without the leading arity differs from Hash
	h := mimc.NewMiMC()
	for _, v := range []int64{123, 456} {
		var e fr.Element
		e.SetInt64(v)
		b := e.Bytes()
		_, err := h.Write(b[:])
		require.NoError(t, err)
	}
	raw := new(big.Int).SetBytes(h.Sum(nil))
	require.NotEqual(t, scenarioIdentity, FormatFieldElement(raw))
}

func TestHashArityDomainSeparation(t *testing.T) {
	two, err := Hash(big.NewInt(5), big.NewInt(9))
	require.NoError(t, err)
	three, err := Hash(big.NewInt(5), big.NewInt(9), big.NewInt(0))
	require.NoError(t, err)
	require.NotEqual(t, 0, two.Cmp(three))
}

func TestHashRejectsInvalidInputs(t *testing.T) {
	_, err := Hash()
	require.ErrorIs(t, err, types.ErrInvalidFieldElement)

	_, err = Hash(big.NewInt(1), nil)
	require.ErrorIs(t, err, types.ErrInvalidFieldElement)

	_, err = Hash(big.NewInt(-1))
	require.ErrorIs(t, err, types.ErrInvalidFieldElement)

	_, err = Hash(Modulus())
	require.ErrorIs(t, err, types.ErrInvalidFieldElement)

	top := new(big.Int).Sub(Modulus(), big.NewInt(1))
	_, err = Hash(top)
	require.NoError(t, err)
}

func TestDeriveCertificateValidation(t *testing.T) {
	identity := big.NewInt(42)

	_, err := DeriveCertificate(identity, ints(1, 2))
	require.ErrorIs(t, err, types.ErrDimensionMismatch)

	overflow := new(big.Int).Lsh(big.NewInt(1), types.AttributeBits)
	_, err = DeriveCertificate(identity, []*big.Int{big.NewInt(1), overflow, big.NewInt(3)})
	require.ErrorIs(t, err, types.ErrRangeOverflow)

	maxAttr := new(big.Int).Sub(overflow, big.NewInt(1))
	_, err = DeriveCertificate(identity, []*big.Int{big.NewInt(1), maxAttr, big.NewInt(3)})
	require.NoError(t, err)

	_, err = DeriveCertificate(Modulus(), ints(1, 2, 3))
	require.ErrorIs(t, err, types.ErrInvalidFieldElement)
}

func TestParseFieldElement(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"123", "123", nil},
		{" 0x1f ", "31", nil},
		{"0XFF", "255", nil},
		{"0", "0", nil},
		{"", "", types.ErrInvalidFieldElement},
		{"12a", "", types.ErrInvalidFieldElement},
		{"-4", "", types.ErrInvalidFieldElement},
		{Modulus().String(), "", types.ErrInvalidFieldElement},
	}
	for _, tt := range tests {
		x, err := ParseFieldElement(tt.in)
		if tt.wantErr != nil {
			require.ErrorIs(t, err, tt.wantErr, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, FormatFieldElement(x))
	}
}

func TestParseAttribute(t *testing.T) {
	_, err := ParseAttribute("18446744073709551615")
	require.NoError(t, err)

	_, err = ParseAttribute("18446744073709551616")
	require.ErrorIs(t, err, types.ErrRangeOverflow)
}

func TestIdentityProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pw := new(big.Int).SetUint64(rapid.Uint64().Draw(t, "password"))
		salt := new(big.Int).SetUint64(rapid.Uint64().Draw(t, "salt"))

		id1, err := DeriveIdentity(pw, salt)
		if err != nil {
			t.Fatalf("DeriveIdentity: %v", err)
		}
		id2, _ := DeriveIdentity(pw, salt)
		if id1.Cmp(id2) != 0 {
			t.Fatalf("identity not deterministic for (%s, %s)", pw, salt)
		}
		if id1.Cmp(Modulus()) >= 0 {
			t.Fatalf("identity %s out of field", id1)
		}

		otherSalt := new(big.Int).Add(salt, big.NewInt(1))
		id3, _ := DeriveIdentity(pw, otherSalt)
		if id1.Cmp(id3) == 0 {
			t.Fatalf("distinct salts collided: %s", id1)
		}
	})
}

func TestCertificateAttributeSensitivity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		identity := new(big.Int).SetUint64(rapid.Uint64().Draw(t, "identity"))
		attrs := make([]*big.Int, types.AttributeCount)
		for i := range attrs {
			attrs[i] = new(big.Int).SetUint64(rapid.Uint64Range(0, 1<<62).Draw(t, "attr"))
		}
		axis := rapid.IntRange(0, types.AttributeCount-1).Draw(t, "axis")

		cert, err := DeriveCertificate(identity, attrs)
		if err != nil {
			t.Fatalf("DeriveCertificate: %v", err)
		}

		changed := make([]*big.Int, len(attrs))
		copy(changed, attrs)
		changed[axis] = new(big.Int).Add(attrs[axis], big.NewInt(1))
		other, err := DeriveCertificate(identity, changed)
		if err != nil {
			t.Fatalf("DeriveCertificate: %v", err)
		}
		if cert.Cmp(other) == 0 {
			t.Fatalf("changing attribute %d did not change the certificate", axis)
		}
	})
}

func TestDistinctIdentitiesOverCorpus(t *testing.T) {
	seen := make(map[string]int64)
	for pw := int64(0); pw < 64; pw++ {
		id, err := DeriveIdentity(big.NewInt(pw), big.NewInt(456))
		require.NoError(t, err)
		key := FormatFieldElement(id)
		prev, dup := seen[key]
		require.False(t, dup, "passwords %d and %d collide", prev, pw)
		seen[key] = pw
	}
}
