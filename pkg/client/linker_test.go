package client

import (
	"errors"
	"testing"

	"github.com/strandex/strand-go/pkg/txtypes"
)

func buildPair(t *testing.T) []txtypes.OrderTx {
	t.Helper()
	b := newTestBuilder()

	tp := validLimitReq()
	tp.Type = txtypes.OrderTypeTakeProfitLimit
	tp.TriggerPrice = 300000
	tp.IsAsk = true
	tp.ClientOrderIndex = 2001

	sl := validLimitReq()
	sl.Type = txtypes.OrderTypeStopLossLimit
	sl.Price = 500000
	sl.TriggerPrice = 500000
	sl.IsAsk = true
	sl.ClientOrderIndex = 2002

	out := make([]txtypes.OrderTx, 2)
	for i, req := range []txtypes.CreateOrderReq{tp, sl} {
		tx, err := b.Build(req, 7, 0)
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}
		out[i] = tx
	}
	return out
}

func TestLinkOrdersOCO(t *testing.T) {
	orders := buildPair(t)

	group, err := LinkOrders(txtypes.GroupingOneCancelsTheOther, orders)
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}

	if group.ID == 0 {
		t.Error("group id must be nonzero")
	}
	if len(group.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(group.Members))
	}
	for i, m := range group.Members {
		if m.GroupID != group.ID {
			t.Errorf("member %d carries group id %d, want %d", i, m.GroupID, group.ID)
		}
		if int(m.GroupPos) != i {
			t.Errorf("member %d at position %d", i, m.GroupPos)
		}
		if m.Grouping != txtypes.GroupingOneCancelsTheOther {
			t.Errorf("member %d grouping %d", i, m.Grouping)
		}
	}
	// position follows input order
	if group.Members[0].ClientOrderIndex != orders[0].ClientOrderIndex {
		t.Error("member order not preserved")
	}
	// inputs stay untouched
	if orders[0].GroupID != 0 || orders[1].GroupID != 0 {
		t.Error("inputs were mutated")
	}
}

func TestLinkOrdersFreshIDPerGroup(t *testing.T) {
	g1, err := LinkOrders(txtypes.GroupingOneCancelsTheOther, buildPair(t))
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}
	g2, err := LinkOrders(txtypes.GroupingOneCancelsTheOther, buildPair(t))
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if g1.ID == g2.ID {
		t.Error("two groups share one id")
	}
}

func TestLinkOrdersValidation(t *testing.T) {
	cases := []struct {
		name     string
		grouping txtypes.GroupingType
		mutate   func([]txtypes.OrderTx) []txtypes.OrderTx
		wantErr  error
	}{
		{"unknown grouping", 99, nil, txtypes.ErrUnknownGrouping},
		{"grouping none", txtypes.GroupingNone, nil, txtypes.ErrInvalidGroupArity},
		{"too few members", txtypes.GroupingOneCancelsTheOther,
			func(o []txtypes.OrderTx) []txtypes.OrderTx { return o[:1] }, txtypes.ErrInvalidGroupArity},
		{"too many members", txtypes.GroupingOneCancelsTheOther,
			func(o []txtypes.OrderTx) []txtypes.OrderTx { return append(o, o[0]) }, txtypes.ErrInvalidGroupArity},
		{"cross account", txtypes.GroupingOneCancelsTheOther,
			func(o []txtypes.OrderTx) []txtypes.OrderTx { o[1].AccountIndex = 8; return o }, txtypes.ErrCrossAccountGroup},
		{"already grouped", txtypes.GroupingOneCancelsTheOther,
			func(o []txtypes.OrderTx) []txtypes.OrderTx {
				o[0].GroupID = 5
				o[0].Grouping = txtypes.GroupingOneCancelsTheOther
				return o
			}, txtypes.ErrAlreadyGrouped},
		{"duplicate client index", txtypes.GroupingOneCancelsTheOther,
			func(o []txtypes.OrderTx) []txtypes.OrderTx {
				o[1].ClientOrderIndex = o[0].ClientOrderIndex
				return o
			}, txtypes.ErrDuplicateClientOrderIndex},
	}

	for _, tc := range cases {
		orders := buildPair(t)
		if tc.mutate != nil {
			orders = tc.mutate(orders)
		}
		if _, err := LinkOrders(tc.grouping, orders); !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

// One-triggers-the-other uses the same linkage rules; position 0 is the
// primary leg.
func TestLinkOrdersOTO(t *testing.T) {
	group, err := LinkOrders(txtypes.GroupingOneTriggersTheOther, buildPair(t))
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if group.Grouping != txtypes.GroupingOneTriggersTheOther {
		t.Errorf("wrong grouping: %d", group.Grouping)
	}
	if group.Members[0].GroupPos != 0 {
		t.Error("primary leg must sit at position 0")
	}
}
