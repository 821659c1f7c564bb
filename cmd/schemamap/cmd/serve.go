// SPDX-License-Identifier: MIT

package cmd

import (
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ontoforge/schemamap/gcn"
	"github.com/ontoforge/schemamap/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions over HTTP",
	Long: `Load the frozen model snapshot and expose it over HTTP:

  POST /api/predict   rank properties for a posted schema snapshot
  GET  /api/model     snapshot metadata
  GET  /api/metrics   latest recorded training run
  GET  /health        health probe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := gcn.LoadSnapshot(modelPath)
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		srv, err := server.New(snap, st)
		if err != nil {
			return err
		}

		log.Printf("serving model %s on %s", snap.ID, serveAddr)
		return http.ListenAndServe(serveAddr, srv.Router())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}
