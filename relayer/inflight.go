package relayer

import (
	"fmt"
)

type keyState int

const (
	// submitted to a chain, no outcome yet
	stateSubmitting keyState = iota
	// included in a block whose effects are not provable yet
	stateAwaiting
	stateHalted
)

type inflightEntry struct {
	state keyState
	// chain the key was submitted to
	chain int
	// height of the block the submission was included in
	height int64
}

// inflightSet tracks the keys of submitted actions so that an action is never
// submitted twice while an earlier submission is unresolved. It is owned by a
// single goroutine and is not safe for concurrent use.
type inflightSet struct {
	entries map[string]*inflightEntry
}

func newInflightSet() *inflightSet {
	return &inflightSet{entries: make(map[string]*inflightEntry)}
}

// blocked reports whether a new action for key must be suppressed.
func (s *inflightSet) blocked(key string) bool {
	_, ok := s.entries[key]
	return ok
}

func (s *inflightSet) halted(key string) bool {
	entry, ok := s.entries[key]
	return ok && entry.state == stateHalted
}

func (s *inflightSet) submitting(key string, chain int) {
	s.entries[key] = &inflightEntry{state: stateSubmitting, chain: chain}
}

// included marks key as landed in the block at height. It stays blocked until
// the chain finalizes the block after it, where its effects become provable.
func (s *inflightSet) included(key string, chain int, height int64) {
	s.entries[key] = &inflightEntry{state: stateAwaiting, chain: chain, height: height}
}

func (s *inflightSet) halt(key string, chain int) {
	s.entries[key] = &inflightEntry{state: stateHalted, chain: chain}
}

func (s *inflightSet) release(key string) {
	delete(s.entries, key)
}

// finalized releases the keys of chain whose inclusion is provable at height
// and returns how many were released.
func (s *inflightSet) finalized(chain int, height int64) int {
	released := 0
	for key, entry := range s.entries {
		if entry.state == stateAwaiting && entry.chain == chain && entry.height+1 <= height {
			delete(s.entries, key)
			released++
		}
	}
	return released
}

func (s *inflightSet) len() int {
	return len(s.entries)
}

// Keys of the in-flight set. They are prefixed with the id of the chain the
// action is submitted to.

func clientKey(chainID, clientID string) string {
	return fmt.Sprintf("%s/client/%s", chainID, clientID)
}

func connectionKey(chainID, connectionID string) string {
	return fmt.Sprintf("%s/connection/%s", chainID, connectionID)
}

func channelKey(chainID, portID, channelID string) string {
	return fmt.Sprintf("%s/channel/%s/%s", chainID, portID, channelID)
}

func packetKey(chainID, kind, portID, channelID string, sequence uint64) string {
	return fmt.Sprintf("%s/%s/%s/%s/%d", chainID, kind, portID, channelID, sequence)
}
