package client

import (
	"fmt"

	"github.com/strandex/strand-go/pkg/crypto"
	"github.com/strandex/strand-go/pkg/txtypes"
)

// LinkOrders assembles built order transactions into an atomically-linked
// group: a fresh group id, the grouping tag, and each member's position are
// stamped onto copies of the inputs. Member order is preserved: position 0
// is the primary leg where the grouping distinguishes legs. The inputs are
// not mutated; linkage is fixed at creation and immutable afterwards.
func LinkOrders(grouping txtypes.GroupingType, orders []txtypes.OrderTx) (*txtypes.OrderGroup, error) {
	if !grouping.Valid() {
		return nil, fmt.Errorf("%w: %d", txtypes.ErrUnknownGrouping, grouping)
	}
	arity := grouping.Arity()
	if arity == 0 {
		return nil, fmt.Errorf("%w: grouping %s forms no groups", txtypes.ErrInvalidGroupArity, grouping)
	}
	if len(orders) != arity {
		return nil, fmt.Errorf("%w: grouping %s requires exactly %d orders, got %d",
			txtypes.ErrInvalidGroupArity, grouping, arity, len(orders))
	}

	account := orders[0].AccountIndex
	seen := make(map[[2]int64]struct{}, len(orders))
	for i := range orders {
		if orders[i].AccountIndex != account {
			return nil, fmt.Errorf("%w: member %d belongs to account %d, group account is %d",
				txtypes.ErrCrossAccountGroup, i, orders[i].AccountIndex, account)
		}
		if orders[i].GroupID != 0 || orders[i].Grouping != txtypes.GroupingNone {
			return nil, fmt.Errorf("%w: member %d", txtypes.ErrAlreadyGrouped, i)
		}
		key := [2]int64{int64(orders[i].MarketIndex), orders[i].ClientOrderIndex}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: market %d index %d",
				txtypes.ErrDuplicateClientOrderIndex, orders[i].MarketIndex, orders[i].ClientOrderIndex)
		}
		seen[key] = struct{}{}
	}

	id, err := crypto.RandomID()
	if err != nil {
		return nil, err
	}

	members := make([]txtypes.OrderTx, len(orders))
	for i := range orders {
		m := orders[i]
		m.GroupID = id
		m.GroupPos = uint8(i)
		m.Grouping = grouping
		members[i] = m
	}

	return &txtypes.OrderGroup{
		ID:       id,
		Grouping: grouping,
		Members:  members,
	}, nil
}
