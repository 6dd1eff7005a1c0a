package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sourcing.GO/config"
	"sourcing.GO/core/errs"
	sourcingRepo "sourcing.GO/model/repository/sourcing"
)

var migrateDryRun bool

// sourcing:migrate sweeps the mirror snapshot and copies embedded records
// that predate the structured store into it. Migration is deliberately
// explicit — the load path only falls back to the mirror, it never
// re-saves on its own.
var migrateCmd = &cobra.Command{
	Use:   "sourcing:migrate",
	Short: "Copy mirror-embedded sourcing records into the structured store",
	Run: func(cmd *cobra.Command, args []string) {
		_, store := openStores()
		if store.Mirror() == nil {
			fmt.Println("No mirror tier configured; nothing to migrate.")
			return
		}
		ctx := config.RedisCtx()

		docs, err := store.Mirror().All(ctx)
		if err != nil {
			fmt.Printf("Failed to read mirror snapshot: %v\n", err)
			return
		}

		migrated, skipped, failed := 0, 0, 0
		for _, doc := range docs {
			if doc.Sourcing == nil {
				skipped++
				continue
			}
			_, err := store.Load(ctx, doc.WorkOrderKey)
			if err == nil {
				skipped++ // already in the structured store
				continue
			}
			if !errors.Is(err, errs.ErrNotFound) {
				fmt.Printf("  [fail] %s: %v\n", doc.WorkOrderKey, err)
				failed++
				continue
			}
			rec, err := sourcingRepo.DecodeEmbeddedRecord(doc.Sourcing)
			if err != nil {
				fmt.Printf("  [fail] %s: %v\n", doc.WorkOrderKey, err)
				failed++
				continue
			}
			if rec.WorkOrderKey == "" {
				rec.WorkOrderKey = doc.WorkOrderKey
			}
			if migrateDryRun {
				fmt.Printf("  [dry] would migrate %s (%d vendors)\n", doc.WorkOrderKey, len(rec.Vendors))
				migrated++
				continue
			}
			if err := store.Save(ctx, doc.WorkOrderKey, rec); err != nil {
				fmt.Printf("  [fail] %s: %v\n", doc.WorkOrderKey, err)
				failed++
				continue
			}
			migrated++
		}
		fmt.Printf("Migration done: %d migrated, %d skipped, %d failed (of %d documents)\n",
			migrated, skipped, failed, len(docs))
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Report without writing")
	rootCmd.AddCommand(migrateCmd)
}
