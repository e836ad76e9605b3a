package relayer

import (
	"context"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	ibctm "github.com/hyperspace-relayer/ibc-core/modules/light-clients/07-tendermint"
	"github.com/hyperspace-relayer/ibc-core/relayer/provider"
)

// view is the state one direction is evaluated against. Every proof from src
// is taken at `at`, the height the destination client trusts once the batch's
// update, if any, is applied.
type view struct {
	d        direction
	src, dst provider.ChainProvider

	dstHeight clienttypes.Height
	dstTime   uint64

	// client of src on dst and its latest consensus state
	clientState exported.ClientState
	trusted     clienttypes.Height
	trustedTime uint64

	// header advancing the client to `at`, nil when the client is up to date
	header exported.Header
	at     clienttypes.Height
	atTime uint64

	pairs       []channelPair
	dstConn     string
	pairsLoaded bool
}

type timedHeader interface {
	GetTime() time.Time
}

// newView reads the destination client and fetches a header of src above it.
func (r *Relayer) newView(ctx context.Context, d direction) (*view, error) {
	src, dst := r.chains[d.src], r.chains[d.dst]
	v := &view{d: d, src: src, dst: dst}

	var err error
	v.dstHeight, v.dstTime, err = dst.LatestHeightAndTimestamp(ctx)
	if err != nil {
		return nil, err
	}

	v.clientState, _, err = dst.QueryClientState(ctx, v.dstHeight, dst.ClientID())
	if err != nil {
		return nil, err
	}
	trusted, ok := v.clientState.GetLatestHeight().(clienttypes.Height)
	if !ok {
		return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidHeight, "unexpected height type %T", v.clientState.GetLatestHeight())
	}
	v.trusted = trusted

	consensusState, _, err := dst.QueryClientConsensusState(ctx, v.dstHeight, dst.ClientID(), trusted)
	if err != nil {
		return nil, err
	}
	v.trustedTime = consensusState.GetTimestamp()

	if isFrozen(v.clientState) {
		return v, nil
	}

	header, err := src.UpdateHeader(ctx, trusted)
	if err != nil {
		return nil, err
	}
	height, ok := header.GetHeight().(clienttypes.Height)
	if !ok || height.LTE(trusted) {
		// nothing newer to prove from, fall back to the trusted height
		v.at, v.atTime = trusted, v.trustedTime
		return v, nil
	}

	v.header, v.at = header, height
	if th, ok := header.(timedHeader); ok {
		v.atTime = uint64(th.GetTime().UnixNano())
	}
	return v, nil
}

func isFrozen(clientState exported.ClientState) bool {
	if cs, ok := clientState.(*ibctm.ClientState); ok {
		return !cs.FrozenHeight.IsZero()
	}
	return false
}

// updateRequired reports whether the client must be updated even without
// actions to relay: once two thirds of its trusting period has elapsed since
// its latest consensus state.
func (v *view) updateRequired() bool {
	cs, ok := v.clientState.(*ibctm.ClientState)
	if !ok || v.dstTime <= v.trustedTime {
		return false
	}
	elapsed := time.Duration(v.dstTime - v.trustedTime)
	return elapsed > cs.TrustingPeriod*2/3
}

// evaluate compares the state of d.src with d.dst and returns the batch that
// advances it, or nil when nothing needs submitting.
func (r *Relayer) evaluate(ctx context.Context, d direction) (*batch, error) {
	src, dst := r.chains[d.src], r.chains[d.dst]
	if dst.ClientID() == "" || src.ClientID() == "" {
		return nil, nil
	}

	ck := clientKey(dst.ChainID(), dst.ClientID())
	if r.inflight.blocked(ck) {
		return nil, nil
	}

	v, err := r.newView(ctx, d)
	if err != nil {
		return nil, err
	}
	if isFrozen(v.clientState) {
		r.inflight.halt(ck, d.dst)
		recordFailed(dst.ChainID(), clienttypes.TypeMsgUpdateClient, OutcomeHalt)
		r.logger.Error("client is frozen, halting relay in this direction", "chain_id", dst.ChainID(), "client_id", dst.ClientID())
		return nil, nil
	}

	var actions []action
	for _, build := range []func(context.Context, *view) ([]action, error){
		r.connectionActions,
		r.channelActions,
		r.packetActions,
		r.closeActions,
	} {
		built, err := build(ctx, v)
		if err != nil {
			return nil, err
		}
		for _, a := range built {
			if !r.inflight.blocked(a.key) {
				actions = append(actions, a)
			}
		}
	}

	b := &batch{dst: d.dst, actions: actions}
	if v.header != nil && (len(actions) > 0 || v.updateRequired()) {
		b.update = &action{
			key: ck,
			msg: clienttypes.NewMsgUpdateClient(dst.ClientID(), v.header, dst.Signer()),
		}
	}
	if b.size() == 0 {
		return nil, nil
	}

	r.logger.Debug("evaluated direction", "src", src.ChainID(), "dst", dst.ChainID(),
		"proof_height", v.at, "update", b.update != nil, "actions", len(b.actions))
	return b, nil
}
