// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/ontoforge/schemamap/schemagraph"
	"github.com/ontoforge/schemamap/store"
	"github.com/ontoforge/schemamap/train"
)

var (
	trainEpochs   int
	trainLR       float64
	trainLRDecay  float64
	trainPatience int
	trainValRatio float64
	trainSeed     int64
	trainHidden   []int
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a model on the stored dataset",
	Long: `Train a graph-convolutional model on the labeled dataset in the run
database. The winning parameter snapshot (best validation loss) is
written to --model and the run is recorded in the database.`,
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

		g, err := schemagraph.Build(fields, rels, schemagraph.DefaultOptions())
		if err != nil {
			return err
		}
		log.Printf("built graph: %d nodes, %d edges", g.NodeCount(), len(g.Edges))

		cfg := train.Config{
			Epochs:       trainEpochs,
			LearningRate: trainLR,
			LRDecay:      trainLRDecay,
			Patience:     trainPatience,
			ValRatio:     trainValRatio,
			Seed:         trainSeed,
			Hidden:       trainHidden,
		}

		res, err := train.Train(g, vocab, cfg)
		if err != nil {
			return err
		}

		last := res.Curve[len(res.Curve)-1]
		log.Printf("trained %d epochs (best epoch %d, val loss %.4f, train acc %.3f, early stop %v)",
			last.Epoch, res.BestEpoch, res.BestValLoss, last.TrainAccuracy, res.StoppedEarly)

		if err := res.Snapshot.Save(modelPath); err != nil {
			return err
		}
		log.Printf("snapshot written to %s", modelPath)

		run, err := st.RecordRun(ctx, store.Run{
			BestEpoch:    res.BestEpoch,
			BestValLoss:  res.BestValLoss,
			StoppedEarly: res.StoppedEarly,
			SnapshotPath: modelPath,
		})
		if err != nil {
			return err
		}
		log.Printf("run %s recorded", run.ID)

		return nil
	},
}

func init() {
	trainCmd.Flags().IntVar(&trainEpochs, "epochs", 200, "maximum training epochs")
	trainCmd.Flags().Float64Var(&trainLR, "lr", 0.01, "learning rate")
	trainCmd.Flags().Float64Var(&trainLRDecay, "lr-decay", 1.0, "per-epoch learning rate decay factor")
	trainCmd.Flags().IntVar(&trainPatience, "patience", 20, "early-stopping patience in epochs")
	trainCmd.Flags().Float64Var(&trainValRatio, "val-ratio", 0.2, "validation share of labeled nodes")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 42, "initialization and split seed")
	trainCmd.Flags().IntSliceVar(&trainHidden, "hidden", []int{64, 32}, "hidden layer widths")
	rootCmd.AddCommand(trainCmd)
}
