package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/squawka-xg/internal/feed"
	"github.com/pable/squawka-xg/internal/logger"
	"github.com/pable/squawka-xg/internal/mongostore"
)

var (
	ingestForce       bool
	ingestMongo       bool
	ingestCompetition string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path|url>...",
	Short: "Store raw match documents for later export",
	Long: `Download or read match feed documents and keep them in the document store,
keyed by their path or URL. Already stored documents are skipped unless
--force is given.

Examples:
  squawka ingest data/epl_*.xml
  squawka ingest http://s3-irl-epl.squawka.com/dp/ingame/4071
  squawka ingest --mongo http://s3-irl-laliga.squawka.com/dp/ingame/8812
  squawka ingest --competition epl 4071 4072 4073`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "re-fetch documents that are already stored")
	ingestCmd.Flags().StringVar(&ingestCompetition, "competition", "", "treat arguments as match ids of this competition's public feed")
	ingestCmd.Flags().BoolVar(&ingestMongo, "mongo", false, "store into MongoDB (mongo_uri) instead of SQLite")
}

// documentSink is where ingested documents go.
type documentSink interface {
	exists(ctx context.Context, url string) (bool, error)
	put(ctx context.Context, url string, data []byte) error
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.Named("ingest")

	sink, closeSink, err := openSink(ctx)
	if err != nil {
		return err
	}
	defer closeSink()

	loader := feed.NewLoader(cfg.HTTPTimeout)
	stored, failed := 0, 0
	for _, src := range args {
		if ingestCompetition != "" {
			src = feed.MatchURL(ingestCompetition, src)
		}
		if !ingestForce {
			ok, err := sink.exists(ctx, src)
			if err != nil {
				return fmt.Errorf("check document: %w", err)
			}
			if ok {
				skipf("%s: already stored", src)
				continue
			}
		}

		data, err := loader.Fetch(ctx, src)
		if err != nil {
			log.Warn(ctx, "fetch failed", logger.String("url", src), logger.Error(err))
			skipf("%s: %v", src, err)
			failed++
			continue
		}
		if err := sink.put(ctx, src, data); err != nil {
			return fmt.Errorf("store %s: %w", src, err)
		}
		cOK.Fprint(os.Stdout, "  stored ")
		fmt.Fprintf(os.Stdout, "%s (%d bytes)\n", src, len(data))
		stored++
	}

	fmt.Fprintf(os.Stdout, "\nDone: %d stored, %d failed, %d given\n", stored, failed, len(args))
	return nil
}

func openSink(ctx context.Context) (documentSink, func(), error) {
	if ingestMongo {
		if cfg.MongoURI == "" {
			return nil, nil, fmt.Errorf("--mongo needs mongo_uri (SQUAWKA_MONGO_URI)")
		}
		s, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, nil, err
		}
		return mongoSink{s}, func() { s.Close(context.Background()) }, nil
	}
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	return sqliteSink{db}, func() { db.Close() }, nil
}
