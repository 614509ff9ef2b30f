// sign-order builds and signs one order offline, prints the wire envelope,
// and verifies the signature locally. Nothing here touches the network; it is
// a smoke test for the signing path and a reference for integrators.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/strandex/strand-go/params"
	"github.com/strandex/strand-go/pkg/client"
	"github.com/strandex/strand-go/pkg/crypto"
	"github.com/strandex/strand-go/pkg/txtypes"
)

func main() {
	cfg := params.Default()

	// Step 1: generate or load a key
	var signer *crypto.Signer
	var err error
	if pk := os.Getenv("STRAND_PRIVATE_KEY"); pk != "" {
		signer, err = crypto.FromPrivateKeyHex(pk)
	} else {
		fmt.Println("Generating new keypair...")
		signer, err = crypto.GenerateKey()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Address: %s\n", signer.Address().Hex())
	fmt.Printf("Private Key: %s (KEEP SECRET!)\n\n", signer.PrivateKeyHex())

	// Step 2: build the order
	builder := client.NewOrderBuilder(cfg.Venue)
	req := txtypes.CreateOrderReq{
		MarketIndex:      0,
		ClientOrderIndex: 1,
		BaseAmount:       1000,
		Price:            405000,
		IsAsk:            false,
		Type:             txtypes.OrderTypeLimit,
		TimeInForce:      txtypes.TimeInForceGoodTillTime,
		OrderExpiry:      txtypes.DefaultOrderExpiry,
	}
	tx, err := builder.Build(req, 1, 0)
	if err != nil {
		fmt.Printf("Error building order: %v\n", err)
		os.Exit(1)
	}
	tx.Nonce = 1

	fmt.Println("Order Details:")
	fmt.Printf("  Market: %d\n", tx.MarketIndex)
	fmt.Printf("  Side: %s\n", side(tx.IsAsk))
	fmt.Printf("  Type: %s\n", tx.Type)
	fmt.Printf("  Price: %d\n", tx.Price)
	fmt.Printf("  Amount: %d lots\n", tx.BaseAmount)
	fmt.Printf("  Expiry: %d\n\n", tx.OrderExpiry)

	// Step 3: sign
	ks := crypto.NewKeystore(1, 0, signer)
	txSigner := client.NewTxSigner(ks)
	signed, err := txSigner.SignTx(&tx)
	if err != nil {
		fmt.Printf("Error signing: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Signature: 0x%x\n\n", signed.Signature)

	// Step 4: serialize the wire envelope
	txJSON, err := json.MarshalIndent(signed, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Signed Transaction (JSON):")
	fmt.Println(string(txJSON))
	fmt.Println()

	// Step 5: verify the signature against the digest
	fmt.Println("Verifying signature...")
	digest, err := tx.Digest()
	if err != nil {
		fmt.Printf("Error computing digest: %v\n", err)
		os.Exit(1)
	}
	recovered, err := crypto.RecoverAddress(digest[:], signed.Signature)
	if err != nil {
		fmt.Printf("Error recovering signer: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Recovered signer: %s\n", recovered.Hex())
	if recovered == signer.Address() {
		fmt.Println("Signature VALID")
	} else {
		fmt.Println("Signature INVALID")
		os.Exit(1)
	}
}

func side(isAsk bool) string {
	if isAsk {
		return "Sell"
	}
	return "Buy"
}
