// Command indexer replays a finalized-event feed through the accounting
// engine and exports the derived entities. The feed is newline-delimited
// JSON envelopes on stdin or EVENTS_FILE; contract state is read from the
// archive node at RPC_URL.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/messari/subgraphs-sub011/pkg/config"
	"github.com/messari/subgraphs-sub011/pkg/engine"
	"github.com/messari/subgraphs-sub011/pkg/events"
	"github.com/messari/subgraphs-sub011/pkg/logging"
	"github.com/messari/subgraphs-sub011/pkg/onchain"
	"github.com/messari/subgraphs-sub011/pkg/store"
	"github.com/messari/subgraphs-sub011/pkg/utils"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log, err := logging.New()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.FromEnv()

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		log.Fatal("unable to dial rpc node", zap.String("url", cfg.RPCURL), zap.Error(err))
	}
	defer client.Close()

	db := store.NewMemory()
	reader := onchain.NewEthReader(log, client)
	oracle := onchain.NewEthOracle(log, client, cfg.PriceOracle, cfg.OracleDecimals)
	eng := engine.New(log, db, reader, oracle, cfg)

	var in io.Reader = os.Stdin
	if path := utils.Env("EVENTS_FILE", ""); path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatal("unable to open events file", zap.String("path", path), zap.Error(err))
		}
		defer f.Close()
		in = f
	}

	var processed, failed int
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var env events.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			log.Fatal("malformed event envelope", zap.Error(err))
		}
		ev, err := events.Decode(env)
		if err != nil {
			log.Fatal("undecodable event", zap.Error(err))
		}

		// Handler errors are terminal per event, never for the feed.
		if err := eng.HandleEvent(ctx, ev); err != nil {
			failed++
		}
		processed++
	}
	if err := scanner.Err(); err != nil {
		log.Fatal("event feed read failed", zap.Error(err))
	}

	log.Info("replay complete",
		zap.Int("events", processed),
		zap.Int("failed", failed),
		zap.Int("markets", db.Len(store.Markets)),
		zap.Int("positions", db.Len(store.Positions)),
		zap.Int("accounts", db.Len(store.Accounts)),
	)

	if path := utils.Env("EXPORT_FILE", ""); path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatal("unable to create export file", zap.String("path", path), zap.Error(err))
		}
		defer f.Close()
		if err := db.ExportJSON(f); err != nil {
			log.Fatal("export failed", zap.Error(err))
		}
		log.Info("entities exported", zap.String("path", path))
	}
}
