// Command payout records that the operator paid a winner out-of-band.
// The oracle's next sync pass notices the note and publishes the
// payout_confirmed amendment to the campaign's result.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ChadFarrow/5050-sub001/internal/config"
	"github.com/ChadFarrow/5050-sub001/internal/logger"
	"github.com/ChadFarrow/5050-sub001/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: payout <result-id> [preimage]")
		os.Exit(1)
	}

	resultID := os.Args[1]
	preimage := ""
	if len(os.Args) > 2 {
		preimage = os.Args[2]
	}

	cfg, err := config.Load(context.Background())
	if err != nil {
		panic(err)
	}

	logger.Initialize(logger.Configuration{
		Level:   cfg.Log.Level,
		Console: cfg.Log.Console,
	})

	sqliteStorage := storage.NewSqliteStorage(cfg.Storage.Path)
	if err := sqliteStorage.MarkPayoutSent(&storage.PayoutNote{
		ResultID: resultID,
		PaidAt:   time.Now().Unix(),
		Preimage: preimage,
	}); err != nil {
		panic(err)
	}

	fmt.Printf("payout recorded for result %s; the next sync pass publishes the confirmation\n", resultID)
}
