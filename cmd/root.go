package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"sourcing.GO/config"
	sourcingRepo "sourcing.GO/model/repository/sourcing"
)

var rootCmd = &cobra.Command{
	Use:   "sourcing",
	Short: "Sourcing record engine CLI",
}

// Execute runs the CLI.
func Execute() {
	fig := figure.NewFigure("Sourcing ->", "slant", true)
	fig.Print()
	fmt.Println()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStores wires the dual-tier record store for commands. The mirror
// is nil when redis is unavailable.
func openStores() (*gorm.DB, *sourcingRepo.RecordStore) {
	config.LoadAppConfig()
	config.InitRedis()

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	var mirror sourcingRepo.MirrorStore
	if config.RedisClient != nil {
		if err := config.RedisClient.Ping(config.RedisCtx()).Err(); err == nil {
			mirror = sourcingRepo.NewRedisMirrorStore(config.RedisClient, "")
		} else {
			fmt.Println("Redis not reachable, mirror tier disabled.")
		}
	}

	store := sourcingRepo.NewRecordStore(db, sourcingRepo.NewGormStructuredStore(db), mirror)
	if err := store.Init(config.RedisCtx()); err != nil {
		log.Fatalf("record store init failed: %v", err)
	}
	return db, store
}
