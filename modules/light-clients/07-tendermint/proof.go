package tendermint

import (
	ics23 "github.com/confio/ics23/go"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	commitmenttypes "github.com/hyperspace-relayer/ibc-core/modules/core/23-commitment/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// verifyMembership decodes the proof bytes for the given path and checks that
// value is committed under it in root. Malformed proofs never panic.
func verifyMembership(specs []*ics23.ProofSpec, root exported.Root, path commitmenttypes.MerklePath, proof, value []byte) (err error) {
	defer recoverProof(&err)

	merkleProof, err := commitmenttypes.DecodeProof(proof, path)
	if err != nil {
		return err
	}
	return merkleProof.VerifyMembership(specs, root, path, value)
}

// verifyNonMembership decodes the proof bytes for the given path and checks
// that nothing is committed under it in root.
func verifyNonMembership(specs []*ics23.ProofSpec, root exported.Root, path commitmenttypes.MerklePath, proof []byte) (err error) {
	defer recoverProof(&err)

	merkleProof, err := commitmenttypes.DecodeProof(proof, path)
	if err != nil {
		return err
	}
	return merkleProof.VerifyNonMembership(specs, root, path)
}

func recoverProof(err *error) {
	if r := recover(); r != nil {
		*err = sdkerrors.Wrapf(commitmenttypes.ErrInvalidProof, "proof verification failed: %v", r)
	}
}
