package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/strandex/strand-go/pkg/txtypes"
)

func TestCancelOrder(t *testing.T) {
	env := newTestEnv(t, 7)

	res, err := env.client.CancelOrder(context.Background(), txtypes.CancelOrderReq{MarketIndex: 1, OrderIndex: 55}, nil)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if res.State != StateConfirmed || res.Nonce != 40 {
		t.Errorf("unexpected result: %+v", res)
	}

	sent := env.tr.sent[0]
	if sent.Type != txtypes.TxTypeCancelOrder {
		t.Errorf("wrong tx type: %d", sent.Type)
	}
	cancel, ok := sent.Payload.(*txtypes.CancelOrderTx)
	if !ok {
		t.Fatalf("payload is %T", sent.Payload)
	}
	if cancel.MarketIndex != 1 || cancel.OrderIndex != 55 {
		t.Errorf("payload mismatch: %+v", cancel)
	}

	if _, err := env.client.CancelOrder(context.Background(), txtypes.CancelOrderReq{OrderIndex: -1}, nil); !errors.Is(err, txtypes.ErrNegativeOrderIndex) {
		t.Errorf("expected ErrNegativeOrderIndex, got %v", err)
	}
}

func TestCancelAllOrders(t *testing.T) {
	env := newTestEnv(t, 7)

	// immediate
	if _, err := env.client.CancelAllOrders(context.Background(), txtypes.CancelAllOrdersReq{}, nil); err != nil {
		t.Fatalf("immediate cancel-all failed: %v", err)
	}
	// scheduled (dead-man's switch)
	at := testNow.Add(time.Hour).UnixMilli()
	if _, err := env.client.CancelAllOrders(context.Background(), txtypes.CancelAllOrdersReq{Time: at}, nil); err != nil {
		t.Fatalf("scheduled cancel-all failed: %v", err)
	}

	scheduled, ok := env.tr.sent[1].Payload.(*txtypes.CancelAllOrdersTx)
	if !ok {
		t.Fatalf("payload is %T", env.tr.sent[1].Payload)
	}
	if scheduled.Time != at {
		t.Errorf("scheduled time %d, want %d", scheduled.Time, at)
	}

	if _, err := env.client.CancelAllOrders(context.Background(), txtypes.CancelAllOrdersReq{Time: -5}, nil); err == nil {
		t.Error("negative schedule accepted")
	}
}

func TestModifyOrder(t *testing.T) {
	env := newTestEnv(t, 7)

	req := txtypes.ModifyOrderReq{MarketIndex: 1, OrderIndex: 55, BaseAmount: 2000, Price: 410000}
	res, err := env.client.ModifyOrder(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("modify failed: %v", err)
	}
	if res.State != StateConfirmed {
		t.Errorf("state %s", res.State)
	}

	mod, ok := env.tr.sent[0].Payload.(*txtypes.ModifyOrderTx)
	if !ok {
		t.Fatalf("payload is %T", env.tr.sent[0].Payload)
	}
	if mod.BaseAmount != 2000 || mod.Price != 410000 {
		t.Errorf("payload mismatch: %+v", mod)
	}

	bad := req
	bad.BaseAmount = 0
	if _, err := env.client.ModifyOrder(context.Background(), bad, nil); !errors.Is(err, txtypes.ErrNonPositiveAmount) {
		t.Errorf("expected ErrNonPositiveAmount, got %v", err)
	}
	bad = req
	bad.Price = 0
	if _, err := env.client.ModifyOrder(context.Background(), bad, nil); !errors.Is(err, txtypes.ErrNonPositivePrice) {
		t.Errorf("expected ErrNonPositivePrice, got %v", err)
	}
}

func TestTxStatusDelegates(t *testing.T) {
	env := newTestEnv(t, 7)
	env.tr.statuses = map[string]TxState{"0xabc": StateRejected}

	st, err := env.client.TxStatus(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if st != StateRejected {
		t.Errorf("state %s, want Rejected", st)
	}
}
