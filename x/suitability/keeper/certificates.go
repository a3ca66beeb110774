package keeper

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zksuit/zksuit/x/suitability/commitment"
	"github.com/zksuit/zksuit/x/suitability/types"
)

// AttestCertificate records certificate for user on behalf of verifier,
// replacing any certificate the same verifier attested before. certificate
// is a decimal or 0x-prefixed hex field element.
func (k Keeper) AttestCertificate(ctx context.Context, verifier, user sdk.AccAddress, certificate string) error {
	v, found := k.GetVerifierByAddress(ctx, verifier)
	if !found || !v.Active {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s is not an authorized verifier", verifier)
	}
	if err := sdk.VerifyAddressFormat(user); err != nil {
		return errorsmod.Wrapf(types.ErrInvalidAddress, "user: %s", err)
	}
	value, err := commitment.ParseFieldElement(certificate)
	if err != nil {
		return err
	}

	record := types.CertificateRecord{
		User:          user.String(),
		VerifierIndex: v.Index,
		Certificate:   commitment.FormatFieldElement(value),
	}
	if err := k.setCertificate(ctx, record); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeCertificateAttested,
			sdk.NewAttribute(types.AttributeKeyVerifier, v.Address),
			sdk.NewAttribute(types.AttributeKeyVerifierIndex, fmt.Sprintf("%d", v.Index)),
			sdk.NewAttribute(types.AttributeKeyUser, record.User),
			sdk.NewAttribute(types.AttributeKeyCertificate, record.Certificate),
		),
	)
	k.metrics.CertificatesAttested.Inc()
	k.Logger(ctx).Debug("certificate attested", "user", record.User, "verifier_index", v.Index)

	return nil
}

// GetCertificate returns the decimal certificate verifierIndex attested for
// user, if any.
func (k Keeper) GetCertificate(ctx context.Context, user sdk.AccAddress, verifierIndex uint64) (string, bool) {
	bz := k.getStore(ctx).Get(CertificateKey(user, verifierIndex))
	if bz == nil {
		return "", false
	}
	var record types.CertificateRecord
	k.cdc.MustUnmarshal(bz, &record)
	return record.Certificate, true
}

// GetAllCertificates returns every attested certificate.
func (k Keeper) GetAllCertificates(ctx context.Context) []types.CertificateRecord {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), CertificateKeyPrefix)
	defer iterator.Close()

	records := []types.CertificateRecord{}
	for ; iterator.Valid(); iterator.Next() {
		var record types.CertificateRecord
		k.cdc.MustUnmarshal(iterator.Value(), &record)
		records = append(records, record)
	}
	return records
}

func (k Keeper) setCertificate(ctx context.Context, record types.CertificateRecord) error {
	user, err := sdk.AccAddressFromBech32(record.User)
	if err != nil {
		return errorsmod.Wrapf(types.ErrInvalidAddress, "user: %s", err)
	}
	bz, err := k.cdc.Marshal(&record)
	if err != nil {
		return fmt.Errorf("failed to encode certificate: %w", err)
	}
	k.getStore(ctx).Set(CertificateKey(user, record.VerifierIndex), bz)
	return nil
}
