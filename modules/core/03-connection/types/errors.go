package types

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// IBC connection sentinel errors
var (
	ErrConnectionExists              = sdkerrors.Register(SubModuleName, 2, "connection already exists")
	ErrConnectionNotFound            = sdkerrors.Register(SubModuleName, 3, "connection not found")
	ErrClientConnectionPathsNotFound = sdkerrors.Register(SubModuleName, 4, "light client connection paths not found")
	ErrConnectionPath                = sdkerrors.Register(SubModuleName, 5, "connection path is not associated to the given light client")
	ErrInvalidConnectionState        = sdkerrors.Register(SubModuleName, 6, "invalid connection state")
	ErrInvalidCounterparty           = sdkerrors.Register(SubModuleName, 7, "invalid counterparty connection")
	ErrInvalidConnection             = sdkerrors.Register(SubModuleName, 8, "invalid connection")
	ErrInvalidVersion                = sdkerrors.Register(SubModuleName, 9, "invalid connection version")
	ErrVersionNegotiationFailed      = sdkerrors.Register(SubModuleName, 10, "connection version negotiation failed")
	ErrInvalidConnectionIdentifier   = sdkerrors.Register(SubModuleName, 11, "invalid connection identifier")
	ErrConnectionMismatch            = sdkerrors.Register(SubModuleName, 12, "connection end does not match the expected connection")
	ErrConnectionIDMismatch          = sdkerrors.Register(SubModuleName, 13, "counterparty chosen connection id is different than the stored one")
	ErrNoCommonVersion               = sdkerrors.Register(SubModuleName, 14, "no common version")
	ErrVersionNotSupported           = sdkerrors.Register(SubModuleName, 15, "version not supported")
	ErrEmptyVersions                 = sdkerrors.Register(SubModuleName, 16, "empty supported versions")
	ErrEmptyFeatures                 = sdkerrors.Register(SubModuleName, 17, "empty supported features")
	ErrMissingProofHeight            = sdkerrors.Register(SubModuleName, 18, "missing proof height")
	ErrMissingConsensusHeight        = sdkerrors.Register(SubModuleName, 19, "missing consensus height")
	ErrInvalidConsensusHeight        = sdkerrors.Register(SubModuleName, 20, "consensus height claimed by the counterparty client is too advanced")
	ErrStaleConsensusHeight          = sdkerrors.Register(SubModuleName, 21, "consensus height claimed by the counterparty client has been pruned")
)
