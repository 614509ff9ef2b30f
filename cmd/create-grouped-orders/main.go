// create-grouped-orders submits a take-profit / stop-loss pair linked
// one-cancels-the-other against a live venue. Configuration comes from the
// environment (see params.LoadFromEnv); STRAND_PRIVATE_KEY, STRAND_ACCOUNT_INDEX
// and STRAND_API_KEY_INDEX select the signing identity.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/strandex/strand-go/params"
	"github.com/strandex/strand-go/pkg/client"
	"github.com/strandex/strand-go/pkg/client/venuehttp"
	"github.com/strandex/strand-go/pkg/crypto"
	"github.com/strandex/strand-go/pkg/txtypes"
	"github.com/strandex/strand-go/pkg/util"
)

func main() {
	log, err := util.NewLogger(zapcore.InfoLevel)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := params.LoadFromEnv("")

	signer, err := crypto.FromPrivateKeyHex(os.Getenv("STRAND_PRIVATE_KEY"))
	if err != nil {
		log.Fatal("failed to load private key", zap.Error(err))
	}
	accountIndex := envInt64("STRAND_ACCOUNT_INDEX", 1)
	apiKeyIndex := uint8(envInt64("STRAND_API_KEY_INDEX", 0))

	cl, err := client.New(client.Options{
		Transport: venuehttp.New(cfg.Venue.BaseURL, cfg.Submission.RequestTimeout),
		Keystore:  crypto.NewKeystore(accountIndex, apiKeyIndex, signer),
		Config:    cfg,
		Logger:    log,
	})
	if err != nil {
		log.Fatal("failed to build client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := cl.CheckAPIKey(ctx); err != nil {
		log.Fatal("api key check failed", zap.Error(err))
	}

	// Take-profit above, stop-loss below, both reduce-only so the pair can
	// only close an existing position.
	takeProfit := txtypes.CreateOrderReq{
		MarketIndex:      0,
		ClientOrderIndex: time.Now().UnixMilli(),
		BaseAmount:       1000,
		Price:            300000,
		IsAsk:            true,
		Type:             txtypes.OrderTypeTakeProfitLimit,
		TimeInForce:      txtypes.TimeInForceGoodTillTime,
		ReduceOnly:       true,
		TriggerPrice:     300000,
		OrderExpiry:      txtypes.DefaultOrderExpiry,
	}
	stopLoss := txtypes.CreateOrderReq{
		MarketIndex:      0,
		ClientOrderIndex: time.Now().UnixMilli() + 1,
		BaseAmount:       1000,
		Price:            500000,
		IsAsk:            true,
		Type:             txtypes.OrderTypeStopLossLimit,
		TimeInForce:      txtypes.TimeInForceGoodTillTime,
		ReduceOnly:       true,
		TriggerPrice:     500000,
		OrderExpiry:      txtypes.DefaultOrderExpiry,
	}

	results, err := cl.CreateGroupedOrders(ctx,
		txtypes.GroupingOneCancelsTheOther,
		[]txtypes.CreateOrderReq{takeProfit, stopLoss}, nil)
	if err != nil {
		var pge *client.PartialGroupError
		if errors.As(err, &pge) {
			for _, res := range pge.Accepted {
				log.Warn("group member accepted before failure",
					zap.String("txHash", res.TxHash), zap.Uint8("pos", res.GroupPos))
			}
			log.Fatal("group partially submitted; resting members need manual cancel",
				zap.Uint64("groupId", pge.GroupID),
				zap.Int("failedPos", pge.FailedPos),
				zap.Error(pge.Err))
		}
		log.Fatal("group submission failed", zap.Error(err))
	}

	for _, res := range results {
		log.Info("order accepted",
			zap.String("txHash", res.TxHash),
			zap.Int64("nonce", res.Nonce),
			zap.Uint64("groupId", res.GroupID),
			zap.Uint8("pos", res.GroupPos))
	}
}

func envInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
