package domain

import (
	"slices"
	"strings"
)

// Address identifies a principal or an account on the asset service.
type Address string

func (a Address) String() string { return string(a) }

// IsZero reports whether the address is empty or blank.
func (a Address) IsZero() bool { return strings.TrimSpace(string(a)) == "" }

const escrowPrefix = "escrow:"

// EscrowAddress returns the asset account that holds a campaign's funds.
func EscrowAddress(campaignID string) Address {
	return Address(escrowPrefix + campaignID)
}

// IsEscrow reports whether a is the escrow account of some campaign.
func (a Address) IsEscrow() bool { return strings.HasPrefix(string(a), escrowPrefix) }

// checkParty rejects addresses that cannot be the other side of an escrow
// transfer: blank ones and escrow accounts themselves.
func checkParty(a Address, role string) error {
	if a.IsZero() {
		return Newf(CodeInvalidArgument, "%s is required", role)
	}
	if a.IsEscrow() {
		return Newf(CodeInvalidArgument, "%s must not be an escrow account", role).WithMetadata(role, a.String())
	}
	return nil
}

// AddressSet is an insertion-ordered set of addresses with constant-time
// membership checks. The zero value is an empty set ready to use.
type AddressSet struct {
	items []Address
	index map[Address]int
}

// NewAddressSet builds a set from items, keeping the first occurrence of
// each address.
func NewAddressSet(items ...Address) AddressSet {
	var s AddressSet
	for _, a := range items {
		s.Add(a)
	}
	return s
}

// Add inserts a and reports whether it was not already present.
func (s *AddressSet) Add(a Address) bool {
	if s.index == nil {
		s.index = make(map[Address]int)
	}
	if _, ok := s.index[a]; ok {
		return false
	}
	s.index[a] = len(s.items)
	s.items = append(s.items, a)
	return true
}

// Remove deletes a, preserving the order of the remaining members.
func (s *AddressSet) Remove(a Address) bool {
	i, ok := s.index[a]
	if !ok {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	delete(s.index, a)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

// Contains reports membership.
func (s *AddressSet) Contains(a Address) bool {
	_, ok := s.index[a]
	return ok
}

// Position returns the insertion rank of a, or -1.
func (s *AddressSet) Position(a Address) int {
	i, ok := s.index[a]
	if !ok {
		return -1
	}
	return i
}

func (s *AddressSet) Len() int { return len(s.items) }

// Items returns a copy of the members in insertion order.
func (s *AddressSet) Items() []Address {
	return slices.Clone(s.items)
}
