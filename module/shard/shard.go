// Package shard splits submission responsibility between uncoordinated relay instances.
//
// Every instance falls into one of two groups based on a hash of its address, and each round
// is eligible for exactly one group based on its parity. The split is probabilistic: instances
// that share a group may both submit the same round, the contract accepts duplicates.
package shard

import (
	"crypto/sha256"
)

// Shard is one of the two submission groups.
type Shard string

const (
	A Shard = "A"
	B Shard = "B"
)

// Group returns the shard of the given submitter identity.
func Group(identity string) Shard {
	sum := sha256.Sum256([]byte(identity))
	if sum[0]%2 == 0 {
		return A
	}
	return B
}

// EligibleGroup returns the shard that is responsible for round.
func EligibleGroup(round uint64) Shard {
	if round%2 == 0 {
		return A
	}
	return B
}

// IsMyGroup returns true if identity is responsible for round.
func IsMyGroup(identity string, round uint64) bool {
	return EligibleGroup(round) == Group(identity)
}

// Assigner answers eligibility for a fixed identity without rehashing on every round.
type Assigner struct {
	identity string
	group    Shard
}

func NewAssigner(identity string) *Assigner {
	return &Assigner{
		identity: identity,
		group:    Group(identity),
	}
}

// Group returns the shard of the assigner's identity.
func (a *Assigner) Group() Shard {
	return a.group
}

// Identity returns the identity the assigner was built for.
func (a *Assigner) Identity() string {
	return a.identity
}

// IsMyRound returns true if round should be submitted by this identity.
func (a *Assigner) IsMyRound(round uint64) bool {
	return EligibleGroup(round) == a.group
}
