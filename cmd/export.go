package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/squawka-xg/internal/aggregator"
	"github.com/pable/squawka-xg/internal/logger"
	"github.com/pable/squawka-xg/internal/metrics"
	"github.com/pable/squawka-xg/internal/mongostore"
	"github.com/pable/squawka-xg/internal/report"
	"github.com/pable/squawka-xg/internal/storage"
)

var (
	exportSource      string
	exportOut         string
	exportMetricsFile string
	exportNoStore     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Extract xG rows from every stored document into a CSV file",
	Long: `Walk the document store, sequence and extract every match, and write one
CSV row per attempt. A document that fails to load or extract is logged and
skipped; the run is recorded in export_runs.

Examples:
  squawka export --out xGs.csv
  squawka export --source mongo --metrics-file /var/lib/node_exporter/squawka.prom`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSource, "source", "sqlite", "document store to read: sqlite or mongo")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "xGs.csv", "output CSV path (- for stdout)")
	exportCmd.Flags().StringVar(&exportMetricsFile, "metrics-file", "", "write Prometheus textfile counters here")
	exportCmd.Flags().BoolVar(&exportNoStore, "no-store", false, "do not write matches and attempts to the database")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.Named("export")

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var src documentSource = db
	switch exportSource {
	case "sqlite":
	case "mongo":
		if cfg.MongoURI == "" {
			return fmt.Errorf("--source mongo needs mongo_uri (SQUAWKA_MONGO_URI)")
		}
		ms, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return err
		}
		defer ms.Close(context.Background())
		src = ms
	default:
		return fmt.Errorf("unknown --source %q (want sqlite or mongo)", exportSource)
	}

	var w io.Writer = os.Stdout
	if exportOut != "-" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	run := storage.NewExportRun(exportOut)
	counters := metrics.NewExport()
	csvw := report.NewCSVWriter(w, aggregator.XGHeader)

	err = src.EachDocument(ctx, func(url string, data []byte) error {
		start := time.Now()
		n, goals, err := exportDocument(db, csvw, url, data)
		if err != nil {
			log.Warn(ctx, "document skipped", logger.String("url", url), logger.Error(err))
			skipf("%s: %v", url, err)
			counters.DocumentFailed()
			run.Failed++
			return nil
		}
		counters.DocumentOK(n, goals, time.Since(start))
		run.Documents++
		run.Attempts += n
		log.Debug(ctx, "document exported", logger.String("url", url), logger.Int("attempts", n))
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk documents: %w", err)
	}
	if err := csvw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	run.FinishedAt = time.Now().UTC()
	counters.Finish(run.FinishedAt)
	if err := db.InsertExportRun(run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	if path := firstNonEmpty(exportMetricsFile, cfg.MetricsFile); path != "" {
		if err := counters.WriteTextfile(path); err != nil {
			return err
		}
	}

	log.Info(ctx, "export finished",
		logger.String("run", run.ID),
		logger.Int("documents", run.Documents),
		logger.Int("failed", run.Failed),
		logger.Int("attempts", run.Attempts))
	fmt.Fprintf(os.Stderr, "\nDone: %d documents, %d skipped, %d rows → %s\n",
		run.Documents, run.Failed, run.Attempts, exportOut)
	return nil
}

// exportDocument extracts one document, appends its rows and, unless
// --no-store, saves the derived match. It returns the attempt and goal counts.
func exportDocument(db *storage.DB, w *report.CSVWriter, url string, data []byte) (int, int, error) {
	m, err := matchFromBytes(url, data)
	if err != nil {
		return 0, 0, err
	}
	res, err := aggregator.Aggregate(m, sequenceOptions())
	if err != nil {
		return 0, 0, err
	}
	rows, err := aggregator.Flatten(res)
	if err != nil {
		return 0, 0, err
	}
	// a failing document writes no rows
	for i, r := range rows {
		if err := report.CheckRow(aggregator.XGHeader, r); err != nil {
			return 0, 0, fmt.Errorf("row %d: %w", i, err)
		}
	}
	if !exportNoStore {
		home, away, err := teamNames(m)
		if err != nil {
			return 0, 0, err
		}
		if err := db.InsertMatchXG(res, home, away); err != nil {
			return 0, 0, fmt.Errorf("store match: %w", err)
		}
	}

	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return 0, 0, err
		}
	}

	goals := 0
	for _, a := range res.Attempts {
		if a.Features.IsGoal {
			goals++
		}
	}
	return len(rows), goals, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
