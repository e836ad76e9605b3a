package exported

import ics23 "github.com/confio/ics23/go"

// Root is the ICS 23 CommitmentRoot.
// A root is constructed from a set of key-value pairs,
// and the inclusion or non-inclusion of an arbitrary key-value pair
// can be proven with the proof.
type Root interface {
	GetHash() []byte
	Empty() bool
}

// Prefix is the ICS 23 CommitmentPrefix.
// Prefix represents the common "prefix" that a set of keys shares.
type Prefix interface {
	Bytes() []byte
	Empty() bool
}

// Path is the ICS 23 CommitmentPath.
// A path is the additional information provided to the verification function.
type Path interface {
	String() string
	Empty() bool
}

// Proof is the ICS 23 CommitmentProof.
// Proof can prove whether the key-value pair is a part of the Root or not.
type Proof interface {
	GetCommitmentType() Type
	VerifyMembership([]*ics23.ProofSpec, Root, Path, []byte) error
	VerifyNonMembership([]*ics23.ProofSpec, Root, Path) error
	Empty() bool

	ValidateBasic() error
}

// Type defines the type of the commitment
type Type byte

// Registered commitment types
const (
	Merkle Type = iota + 1 // 1
)
