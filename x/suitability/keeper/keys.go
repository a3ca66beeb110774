package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

var (
	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x01}

	// VerifierKeyPrefix maps verifier index -> Verifier
	VerifierKeyPrefix = []byte{0x02}

	// VerifierByAddressPrefix maps verifier address -> index
	VerifierByAddressPrefix = []byte{0x03}

	// NextVerifierIndexKey is the key for the next verifier index counter
	NextVerifierIndexKey = []byte{0x04}

	// CertificateKeyPrefix maps (user, verifier index) -> CertificateRecord
	CertificateKeyPrefix = []byte{0x05}

	// ChallengeKeyPrefix maps challenge id -> Challenge (without responses)
	ChallengeKeyPrefix = []byte{0x06}

	// NextChallengeIDKey is the key for the next challenge id counter
	NextChallengeIDKey = []byte{0x07}

	// ResponseKeyPrefix maps (challenge id, sequence) -> responder address
	ResponseKeyPrefix = []byte{0x08}

	// ResponseIndexPrefix maps (challenge id, responder) -> sequence
	ResponseIndexPrefix = []byte{0x09}

	// ResponseCountPrefix maps challenge id -> number of responses
	ResponseCountPrefix = []byte{0x0A}
)

func VerifierKey(index uint64) []byte {
	return append(append([]byte{}, VerifierKeyPrefix...), sdk.Uint64ToBigEndian(index)...)
}

func VerifierByAddressKey(addr sdk.AccAddress) []byte {
	return append(append([]byte{}, VerifierByAddressPrefix...), addr.Bytes()...)
}

func CertificateKey(user sdk.AccAddress, verifierIndex uint64) []byte {
	key := append(append([]byte{}, CertificateKeyPrefix...), address.MustLengthPrefix(user.Bytes())...)
	return append(key, sdk.Uint64ToBigEndian(verifierIndex)...)
}

func ChallengeKey(id uint64) []byte {
	return append(append([]byte{}, ChallengeKeyPrefix...), sdk.Uint64ToBigEndian(id)...)
}

// ResponsePrefixForChallenge returns the prefix of all responses to id, in
// response order.
func ResponsePrefixForChallenge(id uint64) []byte {
	return append(append([]byte{}, ResponseKeyPrefix...), sdk.Uint64ToBigEndian(id)...)
}

func ResponseKey(id, seq uint64) []byte {
	return append(ResponsePrefixForChallenge(id), sdk.Uint64ToBigEndian(seq)...)
}

func ResponseIndexKey(id uint64, responder sdk.AccAddress) []byte {
	key := append(append([]byte{}, ResponseIndexPrefix...), sdk.Uint64ToBigEndian(id)...)
	return append(key, responder.Bytes()...)
}

func ResponseCountKey(id uint64) []byte {
	return append(append([]byte{}, ResponseCountPrefix...), sdk.Uint64ToBigEndian(id)...)
}
