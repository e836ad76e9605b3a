// Package relayer drives the connection, channel and packet protocols between
// two chains. It watches the finality events of both chains, compares their
// IBC state and submits the messages that advance it, each with the client
// update its proofs need.
package relayer

import (
	"context"
	"fmt"

	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	"github.com/hyperspace-relayer/ibc-core/relayer/provider"
)

// action is a message for the destination chain of a direction, together
// with the in-flight key that deduplicates it.
type action struct {
	key string
	msg exported.Msg
}

// batch is the outcome of evaluating one direction: an optional client update
// and the actions proven at the height the update installs.
type batch struct {
	dst     int
	update  *action
	actions []action
}

func (b batch) size() int {
	n := len(b.actions)
	if b.update != nil {
		n++
	}
	return n
}

type keyResult struct {
	key    string
	kind   string
	height int64
	err    error
}

type batchResult struct {
	dst     int
	results []keyResult
}

func (r batchResult) succeeded() int {
	n := 0
	for _, res := range r.results {
		if res.err == nil {
			n++
		}
	}
	return n
}

type finalityNotice struct {
	chain int
	event provider.FinalityEvent
}

// direction relays from the state of src to dst.
type direction struct {
	src, dst int
}

var directions = []direction{{src: 0, dst: 1}, {src: 1, dst: 0}}

// Relayer relays between chain A (index 0) and chain B (index 1). Run and Step
// must not be called concurrently.
type Relayer struct {
	chains [2]provider.ChainProvider
	logger log.Logger

	inflight *inflightSet
	finality [2]int64
	// batches handed to a submitter and not resolved yet, per destination
	pending [2]int
}

// New creates a relayer between chainA and chainB.
func New(chainA, chainB provider.ChainProvider, logger log.Logger) *Relayer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Relayer{
		chains:   [2]provider.ChainProvider{chainA, chainB},
		logger:   logger.With("module", "relayer"),
		inflight: newInflightSet(),
	}
}

// Run relays until ctx is cancelled. One task per chain watches its finality
// events and one task per chain submits the batches destined to it. A single
// coordinator evaluates both directions on every event and owns the in-flight
// set.
func (r *Relayer) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// subscribe to both chains before any task starts, the streams already
	// opened end with runCtx when a later subscription fails
	var streams [2]<-chan provider.FinalityEvent
	for i := range r.chains {
		stream, err := r.chains[i].FinalityNotifications(runCtx)
		if err != nil {
			return fmt.Errorf("failed to subscribe to finality of chain %s: %w", r.chains[i].ChainID(), err)
		}
		streams[i] = stream
	}

	g, gctx := errgroup.WithContext(runCtx)

	notices := make(chan finalityNotice, 16)
	results := make(chan batchResult, len(r.chains))
	var queues [2]chan batch

	for i := range r.chains {
		i := i
		queues[i] = make(chan batch, 1)

		g.Go(func() error { return r.watch(gctx, i, streams[i], notices) })
		g.Go(func() error { return r.submitter(gctx, queues[i], results) })
	}
	g.Go(func() error { return r.coordinate(gctx, notices, results, queues) })

	r.logger.Info("relayer started", "chain_a", r.chains[0].ChainID(), "chain_b", r.chains[1].ChainID())

	err := g.Wait()
	if ctx.Err() != nil {
		r.logger.Info("relayer stopped")
		return nil
	}
	return err
}

func (r *Relayer) watch(ctx context.Context, chain int, stream <-chan provider.FinalityEvent, notices chan<- finalityNotice) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-stream:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("finality stream of chain %s closed", r.chains[chain].ChainID())
			}
			select {
			case notices <- finalityNotice{chain: chain, event: ev}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// submitter submits the batches of one destination chain in the order they
// were queued.
func (r *Relayer) submitter(ctx context.Context, queue <-chan batch, results chan<- batchResult) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b := <-queue:
			res := r.submitBatch(ctx, b)
			select {
			case results <- res:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (r *Relayer) coordinate(ctx context.Context, notices <-chan finalityNotice, results <-chan batchResult, queues [2]chan batch) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case notice := <-notices:
			r.onFinality(notice.chain, int64(notice.event.Height.RevisionHeight))

			for _, d := range directions {
				// one batch per destination at a time keeps submissions ordered
				if r.pending[d.dst] > 0 {
					continue
				}
				b, ok := r.evaluateDirection(ctx, d)
				if !ok {
					continue
				}

				r.markSubmitting(b)
				r.pending[d.dst]++
				select {
				case queues[d.dst] <- b:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

		case res := <-results:
			r.pending[res.dst]--
			r.apply(res)
		}
	}
}

// Step evaluates both directions once against the latest state of the chains
// and submits the resulting batches synchronously. It returns the number of
// messages included.
func (r *Relayer) Step(ctx context.Context) (int, error) {
	for i, chain := range r.chains {
		height, _, err := chain.LatestHeightAndTimestamp(ctx)
		if err != nil {
			return 0, err
		}
		r.onFinality(i, int64(height.RevisionHeight))
	}

	included := 0
	for _, d := range directions {
		b, err := r.evaluate(ctx, d)
		if err != nil {
			return included, err
		}
		if b == nil {
			continue
		}

		r.markSubmitting(*b)
		res := r.submitBatch(ctx, *b)
		r.apply(res)
		included += res.succeeded()
	}
	return included, nil
}

// evaluateDirection evaluates d, logging failures. Query failures are left to
// the next finality event.
func (r *Relayer) evaluateDirection(ctx context.Context, d direction) (batch, bool) {
	b, err := r.evaluate(ctx, d)
	if err != nil {
		r.logger.Error("failed to evaluate direction", "src", r.chains[d.src].ChainID(), "dst", r.chains[d.dst].ChainID(),
			"outcome", Classify(err), "err", err)
		return batch{}, false
	}
	if b == nil {
		return batch{}, false
	}
	return *b, true
}

func (r *Relayer) onFinality(chain int, height int64) {
	if height <= r.finality[chain] {
		return
	}
	r.finality[chain] = height

	if released := r.inflight.finalized(chain, height); released > 0 {
		r.logger.Debug("released finalized keys", "chain_id", r.chains[chain].ChainID(), "height", height, "keys", released)
	}
}

func (r *Relayer) markSubmitting(b batch) {
	if b.update != nil {
		r.inflight.submitting(b.update.key, b.dst)
	}
	for _, a := range b.actions {
		r.inflight.submitting(a.key, b.dst)
	}
}

// apply moves every key of a resolved batch to its next state.
func (r *Relayer) apply(res batchResult) {
	chainID := r.chains[res.dst].ChainID()

	for _, kr := range res.results {
		if kr.err == nil {
			r.inflight.included(kr.key, res.dst, kr.height)
			recordSubmitted(chainID, kr.kind)
			r.logger.Info("message included", "chain_id", chainID, "key", kr.key, "height", kr.height)
			continue
		}

		outcome := Classify(kr.err)
		recordFailed(chainID, kr.kind, outcome)

		switch outcome {
		case OutcomeHalt:
			r.inflight.halt(kr.key, res.dst)
			r.logger.Error("halting key until resolved externally", "chain_id", chainID, "key", kr.key, "err", kr.err)
		case OutcomeDrop:
			r.inflight.release(kr.key)
			r.logger.Info("dropped action", "chain_id", chainID, "key", kr.key, "err", kr.err)
		default:
			r.inflight.release(kr.key)
			r.logger.Debug("action will be retried", "chain_id", chainID, "key", kr.key, "err", kr.err)
		}
	}
}

// submitBatch submits the client update of b on its own, then all actions in
// one transaction. When that transaction fails each action is resubmitted
// alone so every key gets its own outcome.
func (r *Relayer) submitBatch(ctx context.Context, b batch) batchResult {
	dst := r.chains[b.dst]
	res := batchResult{dst: b.dst}

	if b.update != nil {
		tx, err := dst.Submit(ctx, []exported.Msg{b.update.msg})
		if err != nil {
			res.results = append(res.results, keyResult{key: b.update.key, kind: b.update.msg.Type(), err: err})
			// the actions are proven at the height the update would have installed
			for _, a := range b.actions {
				res.results = append(res.results, keyResult{key: a.key, kind: a.msg.Type(), err: ctxOr(ctx, errUpdateFailed)})
			}
			return res
		}
		res.results = append(res.results, keyResult{key: b.update.key, kind: b.update.msg.Type(), height: tx.Height})
	}

	if len(b.actions) == 0 {
		return res
	}

	msgs := make([]exported.Msg, len(b.actions))
	for i, a := range b.actions {
		msgs[i] = a.msg
	}

	tx, err := dst.Submit(ctx, msgs)
	if err == nil {
		for _, a := range b.actions {
			res.results = append(res.results, keyResult{key: a.key, kind: a.msg.Type(), height: tx.Height})
		}
		return res
	}
	if len(b.actions) == 1 {
		res.results = append(res.results, keyResult{key: b.actions[0].key, kind: b.actions[0].msg.Type(), err: err})
		return res
	}

	r.logger.Debug("batch failed, submitting actions one by one", "chain_id", dst.ChainID(), "actions", len(b.actions), "err", err)
	for _, a := range b.actions {
		tx, err := dst.Submit(ctx, []exported.Msg{a.msg})
		if err != nil {
			res.results = append(res.results, keyResult{key: a.key, kind: a.msg.Type(), err: err})
			continue
		}
		res.results = append(res.results, keyResult{key: a.key, kind: a.msg.Type(), height: tx.Height})
	}
	return res
}

var errUpdateFailed = fmt.Errorf("client update of the batch failed")

// ctxOr returns the context error if ctx is done, err otherwise.
func ctxOr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
