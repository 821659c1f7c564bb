// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ontoforge/schemamap/evaluate"
	"github.com/ontoforge/schemamap/gcn"
	"github.com/ontoforge/schemamap/schemagraph"
)

var evalK int

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score the trained model against stored ground truth",
	Long: `Rebuild the graph from the stored dataset, re-run the forward pass
with the frozen snapshot and print the full metrics report as JSON:
accuracy, top-k accuracy, per-class precision/recall/F1 and the
confusion matrix.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		fields, rels, err := st.LoadDataset(ctx)
		if err != nil {
			return err
		}
		vocab, err := loadVocabulary()
		if err != nil {
			return err
		}

		snap, err := gcn.LoadSnapshot(modelPath)
		if err != nil {
			return err
		}
		model, err := gcn.FromSnapshot(snap)
		if err != nil {
			return err
		}

		g, err := schemagraph.Build(fields, rels, schemagraph.DefaultOptions())
		if err != nil {
			return err
		}

		m, err := evaluate.Evaluate(model, g, nil, vocab, evalK)
		if err != nil {
			return err
		}

		if len(m.ZeroSupportClasses) > 0 {
			log.Printf("warning: zero-support classes: %v", m.ZeroSupportClasses)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	},
}

func init() {
	evaluateCmd.Flags().IntVar(&evalK, "k", 3, "top-k rank for top-k accuracy")
	rootCmd.AddCommand(evaluateCmd)
}
