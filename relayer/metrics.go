package relayer

import (
	metrics "github.com/armon/go-metrics"
	"github.com/cosmos/cosmos-sdk/telemetry"

	ibcmetrics "github.com/hyperspace-relayer/ibc-core/modules/core/metrics"
)

func recordSubmitted(chainID, msgType string) {
	telemetry.IncrCounterWithLabels(
		[]string{"relayer", "msg", "included"}, 1,
		[]metrics.Label{
			telemetry.NewLabel(ibcmetrics.LabelChainID, chainID),
			telemetry.NewLabel(ibcmetrics.LabelMsgType, msgType),
		},
	)
}

func recordFailed(chainID, msgType string, outcome Outcome) {
	telemetry.IncrCounterWithLabels(
		[]string{"relayer", "msg", "failed"}, 1,
		[]metrics.Label{
			telemetry.NewLabel(ibcmetrics.LabelChainID, chainID),
			telemetry.NewLabel(ibcmetrics.LabelMsgType, msgType),
			telemetry.NewLabel(ibcmetrics.LabelOutcome, outcome.String()),
		},
	)
}
