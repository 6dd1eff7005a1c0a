package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sourcing.GO/config"
)

var exportFile string

var exportCmd = &cobra.Command{
	Use:   "sourcing:export",
	Short: "Dump the mirror snapshot to a JSON file",
	Run: func(cmd *cobra.Command, args []string) {
		_, store := openStores()
		if store.Mirror() == nil {
			fmt.Println("No mirror tier configured; nothing to export.")
			return
		}
		docs, err := store.Mirror().All(config.RedisCtx())
		if err != nil {
			fmt.Printf("Failed to read mirror snapshot: %v\n", err)
			return
		}
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			fmt.Printf("Failed to encode snapshot: %v\n", err)
			return
		}
		if exportFile == "" {
			fmt.Println(string(data))
			return
		}
		if err := os.WriteFile(exportFile, data, 0644); err != nil {
			fmt.Printf("Failed to write %s: %v\n", exportFile, err)
			return
		}
		fmt.Printf("Exported %d documents to %s\n", len(docs), exportFile)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "out", "o", "", "Output file (stdout when empty)")
	rootCmd.AddCommand(exportCmd)
}
