package types

import (
	"fmt"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	tmcrypto "github.com/tendermint/tendermint/proto/tendermint/crypto"
)

// Proof op types emitted by an SDK multistore query, ordered from leaf to root.
const (
	ProofOpIAVLCommitment         = "ics23:iavl"
	ProofOpSimpleMerkleCommitment = "ics23:simple"
)

var proofOpTypes = []string{ProofOpIAVLCommitment, ProofOpSimpleMerkleCommitment}

// DecodeProof decodes the wire format of a commitment proof, the encoded
// ProofOps returned by an abci query, into a MerkleProof. Every op must carry
// the type expected for its position in the chain and the key of the path
// segment it proves.
func DecodeProof(bz []byte, path MerklePath) (proof MerkleProof, err error) {
	if len(bz) == 0 {
		return MerkleProof{}, sdkerrors.Wrap(ErrInvalidProof, "proof cannot be empty")
	}

	// ics23 can panic on malformed compressed proofs
	defer func() {
		if r := recover(); r != nil {
			proof, err = MerkleProof{}, sdkerrors.Wrapf(ErrInvalidProof, "malformed proof: %v", r)
		}
	}()

	var ops tmcrypto.ProofOps
	if err := ops.Unmarshal(bz); err != nil {
		return MerkleProof{}, sdkerrors.Wrapf(ErrInvalidProof, "failed to unmarshal proof ops: %v", err)
	}
	if len(ops.Ops) != len(proofOpTypes) {
		return MerkleProof{}, sdkerrors.Wrapf(ErrInvalidProof, "expected %d proof ops, got %d", len(proofOpTypes), len(ops.Ops))
	}
	if len(path.KeyPath) != len(ops.Ops) {
		return MerkleProof{}, sdkerrors.Wrapf(ErrInvalidProof, "path length %d not same as proof %d", len(path.KeyPath), len(ops.Ops))
	}

	for i, op := range ops.Ops {
		if op.Type != proofOpTypes[i] {
			return MerkleProof{}, sdkerrors.Wrapf(ErrInvalidProof, "proof op %d has type %s, expected %s", i, op.Type, proofOpTypes[i])
		}
		// keys are root-to-leaf, ops are leaf-to-root
		key := path.KeyPath[len(path.KeyPath)-1-i]
		if string(op.Key) != string(key) {
			return MerkleProof{}, sdkerrors.Wrapf(ErrInvalidProof, "proof op %d proves key %X, expected %X", i, op.Key, key)
		}
	}

	return ConvertProofs(&ops)
}

// EncodeProof returns the wire format of the given proof ops.
func EncodeProof(ops *tmcrypto.ProofOps) ([]byte, error) {
	if ops == nil || len(ops.Ops) == 0 {
		return nil, sdkerrors.Wrap(ErrInvalidProof, "proof ops cannot be empty")
	}
	bz, err := ops.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal proof ops: %w", err)
	}
	return bz, nil
}
