// Dump saves storage snapshots of the on-chain marketplace contracts into
// local JSON files, one per contract. Snapshots are taken at a single state
// root, so the files are consistent with each other.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

type storageItem struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

type contractDump struct {
	Name  string        `json:"name"`
	Hash  string        `json:"hash"`
	Block uint32        `json:"block"`
	Items []storageItem `json:"items"`
}

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	outDir := flag.String("out", "testdata", "Directory to write dump files to")
	auctionHash := flag.String("auction", "", "Address of the Auction contract (LE hex)")
	payoutHash := flag.String("payout", "", "Address of the Payout contract (LE hex)")
	royaltyHash := flag.String("royalty", "", "Address of the Royalty contract (LE hex)")

	flag.Parse()

	if *neoRPCEndpoint == "" {
		log.Fatal("missing Neo RPC endpoint")
	}

	contracts := map[string]string{
		"auction": *auctionHash,
		"payout":  *payoutHash,
		"royalty": *royaltyHash,
	}

	err := os.MkdirAll(*outDir, 0700)
	if err != nil {
		log.Fatal(fmt.Errorf("create output dir: %w", err))
	}

	b, err := newRemoteBlockChain(*neoRPCEndpoint)
	if err != nil {
		log.Fatal(fmt.Errorf("init remote blockchain: %w", err))
	}
	defer b.close()

	dumped := 0
	for name, hashLE := range contracts {
		if hashLE == "" {
			continue
		}

		h, err := util.Uint160DecodeStringLE(hashLE)
		if err != nil {
			log.Fatal(fmt.Errorf("decode '%s' contract address: %w", name, err))
		}

		log.Printf("Processing contract '%s'...\n", name)

		err = dumpContract(b, *outDir, name, h)
		if err != nil {
			log.Fatal(fmt.Errorf("dump '%s' contract: %w", name, err))
		}
		dumped++
	}

	if dumped == 0 {
		log.Fatal("no contract addresses given")
	}

	log.Printf("marketplace contracts are successfully dumped to '%s/'\n", *outDir)
}

func dumpContract(b *remoteBlockchain, outDir, name string, h util.Uint160) error {
	_, err := b.rpc.GetContractStateByHash(h)
	if err != nil {
		return fmt.Errorf("get contract state: %w", err)
	}

	d := contractDump{
		Name:  name,
		Hash:  h.StringLE(),
		Block: b.currentBlock,
		Items: []storageItem{},
	}

	err = b.iterateContractStorage(h, func(key, value []byte) error {
		d.Items = append(d.Items, storageItem{Key: key, Value: value})
		return nil
	})
	if err != nil {
		return fmt.Errorf("iterate contract storage: %w", err)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}

	return os.WriteFile(filepath.Join(outDir, name+".json"), data, 0600)
}
