package relayer

import (
	"context"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/hyperspace-relayer/ibc-core/modules/core/02-client/types"
	connectiontypes "github.com/hyperspace-relayer/ibc-core/modules/core/03-connection/types"
	channeltypes "github.com/hyperspace-relayer/ibc-core/modules/core/04-channel/types"
	"github.com/hyperspace-relayer/ibc-core/modules/core/exported"
	"github.com/hyperspace-relayer/ibc-core/relayer/provider"
)

// CreateClients creates a client of chainB on chainA and a client of chainA on
// chainB, and sets them on the providers.
func CreateClients(ctx context.Context, chainA, chainB provider.ChainProvider) (string, string, error) {
	clientA, err := createClient(ctx, chainA, chainB)
	if err != nil {
		return "", "", err
	}
	clientB, err := createClient(ctx, chainB, chainA)
	if err != nil {
		return "", "", err
	}
	return clientA, clientB, nil
}

// createClient creates on host a client of counterparty.
func createClient(ctx context.Context, host, counterparty provider.ChainProvider) (string, error) {
	clientState, consensusState, err := counterparty.InitializeClientState(ctx)
	if err != nil {
		return "", err
	}

	res, err := host.Submit(ctx, []exported.Msg{clienttypes.NewMsgCreateClient(clientState, consensusState, host.Signer())})
	if err != nil {
		return "", sdkerrors.Wrapf(err, "failed to create client of %s on %s", counterparty.ChainID(), host.ChainID())
	}

	clientID, err := ParseClientIDFromEvents(res.Events)
	if err != nil {
		return "", err
	}
	host.SetClientID(clientID)
	return clientID, nil
}

// CreateConnection starts the connection handshake on chainA with ConnOpenInit
// over the clients of both providers. The relayer completes it.
func CreateConnection(ctx context.Context, chainA, chainB provider.ChainProvider, delayPeriod uint64) (string, error) {
	if chainA.ClientID() == "" || chainB.ClientID() == "" {
		return "", sdkerrors.Wrap(clienttypes.ErrClientNotFound, "both chains need a client before opening a connection")
	}

	msg := connectiontypes.NewMsgConnectionOpenInit(
		chainA.ClientID(), chainB.ClientID(), chainB.ConnectionPrefix(),
		connectiontypes.DefaultIBCVersion, delayPeriod, chainA.Signer(),
	)
	res, err := chainA.Submit(ctx, []exported.Msg{msg})
	if err != nil {
		return "", err
	}

	connectionID, err := ParseConnectionIDFromEvents(res.Events)
	if err != nil {
		return "", err
	}
	chainA.SetConnectionID(connectionID)
	return connectionID, nil
}

// CreateChannel starts the handshake of a channel from portID on chain to
// counterpartyPortID with ChanOpenInit over the connection of chain. The
// relayer completes it.
func CreateChannel(
	ctx context.Context, chain provider.ChainProvider,
	portID, counterpartyPortID, version string, order channeltypes.Order,
) (string, error) {
	if chain.ConnectionID() == "" {
		return "", sdkerrors.Wrapf(connectiontypes.ErrConnectionNotFound, "no connection known on %s", chain.ChainID())
	}

	msg := channeltypes.NewMsgChannelOpenInit(portID, version, order, []string{chain.ConnectionID()}, counterpartyPortID, chain.Signer())
	res, err := chain.Submit(ctx, []exported.Msg{msg})
	if err != nil {
		return "", err
	}
	return ParseChannelIDFromEvents(res.Events)
}
