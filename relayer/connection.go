package relayer

import (
	"context"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
)

// connectionActions advances the connection handshake from the state of the
// source end. A source end in INIT with no destination end yields
// ConnOpenTry, TRYOPEN facing INIT yields ConnOpenAck and OPEN facing TRYOPEN
// yields ConnOpenConfirm.
func (r *Relayer) connectionActions(ctx context.Context, v *view) ([]action, error) {
	srcConn, err := r.discoverConnection(ctx, v.d.src, v.d.dst, v.at)
	if err != nil || srcConn == "" {
		return nil, err
	}
	dstConn, err := r.discoverConnection(ctx, v.d.dst, v.d.src, v.dstHeight)
	if err != nil {
		return nil, err
	}

	srcEnd, proofConn, err := v.src.QueryConnectionEnd(ctx, v.at, srcConn)
	if err != nil {
		return nil, err
	}

	var dstEnd connectiontypes.ConnectionEnd
	if dstConn != "" {
		if dstEnd, _, err = v.dst.QueryConnectionEnd(ctx, v.dstHeight, dstConn); err != nil {
			return nil, err
		}
	}

	key := connectionKey(v.dst.ChainID(), srcConn)
	signer := v.dst.Signer()

	switch {
	case srcEnd.State == connectiontypes.INIT && dstConn == "":
		clientState, proofClient, proofConsensus, consensusHeight, err := r.clientProofs(ctx, v)
		if err != nil {
			return nil, err
		}
		msg := connectiontypes.NewMsgConnectionOpenTry(
			"", v.dst.ClientID(), srcConn, v.src.ClientID(), clientState, v.src.ConnectionPrefix(),
			srcEnd.Versions, srcEnd.DelayPeriod, proofConn, proofClient, proofConsensus,
			v.at, consensusHeight, signer,
		)
		return []action{{key: key, msg: msg}}, nil

	case srcEnd.State == connectiontypes.TRYOPEN && dstEnd.State == connectiontypes.INIT:
		if len(srcEnd.Versions) == 0 {
			return nil, nil
		}
		clientState, proofClient, proofConsensus, consensusHeight, err := r.clientProofs(ctx, v)
		if err != nil {
			return nil, err
		}
		msg := connectiontypes.NewMsgConnectionOpenAck(
			dstConn, srcConn, clientState, proofConn, proofClient, proofConsensus,
			v.at, consensusHeight, srcEnd.Versions[0], signer,
		)
		return []action{{key: key, msg: msg}}, nil

	case srcEnd.State == connectiontypes.OPEN && dstEnd.State == connectiontypes.TRYOPEN:
		msg := connectiontypes.NewMsgConnectionOpenConfirm(dstConn, proofConn, v.at, signer)
		return []action{{key: key, msg: msg}}, nil
	}
	return nil, nil
}

// clientProofs returns the client of the destination chain stored on the
// source chain together with the proofs of it and of its latest consensus
// state at v.at.
func (r *Relayer) clientProofs(ctx context.Context, v *view) (exported.ClientState, []byte, []byte, clienttypes.Height, error) {
	clientState, proofClient, err := v.src.QueryClientState(ctx, v.at, v.src.ClientID())
	if err != nil {
		return nil, nil, nil, clienttypes.Height{}, err
	}
	consensusHeight, ok := clientState.GetLatestHeight().(clienttypes.Height)
	if !ok {
		return nil, nil, nil, clienttypes.Height{}, sdkerrors.Wrapf(clienttypes.ErrInvalidHeight, "unexpected height type %T", clientState.GetLatestHeight())
	}
	_, proofConsensus, err := v.src.QueryClientConsensusState(ctx, v.at, v.src.ClientID(), consensusHeight)
	if err != nil {
		return nil, nil, nil, clienttypes.Height{}, err
	}
	return clientState, proofClient, proofConsensus, consensusHeight, nil
}

// discoverConnection returns the id of the connection relayed on for chain,
// searching the connections of its client and recording the match on the
// provider when it is not known yet. A connection matches when its
// counterparty is the client of other and, once the connection on other is
// known, that connection.
func (r *Relayer) discoverConnection(ctx context.Context, chain, other int, at clienttypes.Height) (string, error) {
	if id := r.chains[chain].ConnectionID(); id != "" {
		return id, nil
	}

	connections, err := r.chains[chain].QueryConnectionsUsingClient(ctx, at, r.chains[chain].ClientID())
	if err != nil {
		return "", err
	}

	otherClient, otherConn := r.chains[other].ClientID(), r.chains[other].ConnectionID()
	for _, conn := range connections {
		if conn.Counterparty.ClientId != otherClient {
			continue
		}
		if otherConn != "" && conn.Counterparty.ConnectionId != otherConn {
			continue
		}

		r.chains[chain].SetConnectionID(conn.Id)
		r.logger.Info("discovered connection", "chain_id", r.chains[chain].ChainID(), "connection_id", conn.Id)
		return conn.Id, nil
	}
	return "", nil
}
