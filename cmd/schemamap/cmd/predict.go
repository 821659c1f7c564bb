// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ontoforge/schemamap/gcn"
	"github.com/ontoforge/schemamap/infer"
	"github.com/ontoforge/schemamap/schema"
	"github.com/ontoforge/schemamap/schemagraph"
)

var (
	predictInput string
	predictK     int
	predictSave  bool
)

// schemaFile is the on-disk layout of a schema snapshot to predict on.
type schemaFile struct {
	Fields        []schema.FieldDescriptor  `json:"fields"`
	Relationships []schema.RelationshipPair `json:"relationships,omitempty"`
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Rank ontology properties for a schema snapshot",
	Long: `Run the frozen model over a schema JSON file and print ranked
property candidates per field. With --save the predictions are also
attached to the latest recorded training run in the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(predictInput)
		if err != nil {
			return fmt.Errorf("read schema file: %w", err)
		}
		var sf schemaFile
		if err := json.Unmarshal(data, &sf); err != nil {
			return fmt.Errorf("decode schema file: %w", err)
		}

		snap, err := gcn.LoadSnapshot(modelPath)
		if err != nil {
			return err
		}
		engine, err := infer.NewEngine(snap, schemagraph.DefaultOptions())
		if err != nil {
			return err
		}

		preds, err := engine.Predict(sf.Fields, sf.Relationships, predictK)
		if err != nil {
			return err
		}

		if predictSave {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			run, err := st.LatestRun(ctx)
			if err != nil {
				return err
			}
			if err := st.SavePredictions(ctx, run.ID, preds); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(preds)
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictInput, "input", "schema.json", "schema snapshot JSON file")
	predictCmd.Flags().IntVar(&predictK, "k", 3, "candidates per field")
	predictCmd.Flags().BoolVar(&predictSave, "save", false, "store predictions under the latest run")
	rootCmd.AddCommand(predictCmd)
}
