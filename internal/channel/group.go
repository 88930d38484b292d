package channel

import (
	"fmt"
	"strings"
)

// groupKeySeparator joins member identifiers into a group key.
const groupKeySeparator = "|"

// Group bundles several channel handles into one logical channel.
//
// Membership is fixed at composition time. Reads return the member values
// in composition order; writes fan a single value out to every member, or
// take one value per member via PutEach.
type Group struct {
	members []Handle
	key     string
}

// NewGroup composes member handles into a group.
// Returns ErrEmptyGroup when called with no members.
func NewGroup(members ...Handle) (*Group, error) {
	if len(members) == 0 {
		return nil, ErrEmptyGroup
	}
	return &Group{
		members: members,
		key:     GroupKey(members...),
	}, nil
}

// GroupKey returns the cache key for a group of members: the ordered
// member identifiers joined together. Two groups whose members resolve to
// identical identifiers in the same order share a key.
func GroupKey(members ...Handle) string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID()
	}
	return strings.Join(ids, groupKeySeparator)
}

// Key returns the group's cache key.
func (g *Group) Key() string {
	return g.key
}

// Size returns the number of member channels.
func (g *Group) Size() int {
	return len(g.members)
}

// Members returns the member handles in composition order.
// The returned slice must not be modified.
func (g *Group) Members() []Handle {
	return g.members
}

// Connected reports whether every member channel is connected.
func (g *Group) Connected() bool {
	for _, m := range g.members {
		if !m.Connected() {
			return false
		}
	}
	return true
}

// Get reads every member and returns the values in composition order.
// Fails fast with ErrDisconnected naming the first disconnected member.
func (g *Group) Get() ([]any, error) {
	values := make([]any, len(g.members))
	for i, m := range g.members {
		v, err := m.Get()
		if err != nil {
			return nil, fmt.Errorf("group member %s: %w", m.ID(), err)
		}
		values[i] = v
	}
	return values, nil
}

// Put fans a single value out to every member channel.
// Returns one write handle per member, in composition order. The first
// member error aborts the fan-out; earlier writes are not revoked.
func (g *Group) Put(value any) ([]*WriteHandle, error) {
	handles := make([]*WriteHandle, 0, len(g.members))
	for _, m := range g.members {
		wh, err := m.Put(value)
		if err != nil {
			return handles, fmt.Errorf("group member %s: %w", m.ID(), err)
		}
		handles = append(handles, wh)
	}
	return handles, nil
}

// PutEach writes one value per member, matched by composition order.
// Returns ErrGroupArity when the value count differs from the group size.
func (g *Group) PutEach(values []any) ([]*WriteHandle, error) {
	if len(values) != len(g.members) {
		return nil, fmt.Errorf("%w: got %d values for %d members",
			ErrGroupArity, len(values), len(g.members))
	}

	handles := make([]*WriteHandle, 0, len(g.members))
	for i, m := range g.members {
		wh, err := m.Put(values[i])
		if err != nil {
			return handles, fmt.Errorf("group member %s: %w", m.ID(), err)
		}
		handles = append(handles, wh)
	}
	return handles, nil
}
