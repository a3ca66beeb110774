package types

import (
	"github.com/cosmos/cosmos-sdk/codec"
)

// RegisterLegacyAminoCodec registers the suitability state types on the
// provided LegacyAmino codec.
func RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&Verifier{}, "zksuit/suitability/Verifier", nil)
	cdc.RegisterConcrete(&CertificateRecord{}, "zksuit/suitability/CertificateRecord", nil)
	cdc.RegisterConcrete(&Challenge{}, "zksuit/suitability/Challenge", nil)
	cdc.RegisterConcrete(&Params{}, "zksuit/suitability/Params", nil)
	cdc.RegisterConcrete(&GenesisState{}, "zksuit/suitability/GenesisState", nil)
}

var (
	amino = codec.NewLegacyAmino()

	// ModuleCdc encodes suitability state values in the KVStore.
	ModuleCdc = amino
)

func init() {
	RegisterLegacyAminoCodec(amino)
	amino.Seal()
}
