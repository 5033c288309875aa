package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/cognicore/kognate/pkg/kognate"
	"github.com/cognicore/kognate/pkg/kognate/config"
	"github.com/cognicore/kognate/pkg/kognate/evaluate"
	"github.com/cognicore/kognate/pkg/kognate/ingest"
	"github.com/cognicore/kognate/pkg/kognate/store"
	"github.com/cognicore/kognate/pkg/kognate/store/sqlite"
)

func main() {
	var (
		dataPath   = flag.String("data", "", "Wordlist file to read (required)")
		reader     = flag.String("reader", "ielex", "Data file format: ielex, cldf or lingpy")
		sep        = flag.String("sep", "\t", "Column separator for cldf/lingpy readers")
		configPath = flag.String("config", "", "Optional YAML config file")
		seed       = flag.Int64("seed", 0, "Random seed (overrides config if set)")
		maxIter    = flag.Int("max-iter", 0, "Maximum training epochs (overrides config if set)")
		alpha      = flag.Float64("alpha", 0, "Stepsize-decay exponent in (0.5, 1] (overrides config if set)")
		margin     = flag.Float64("margin", 0, "Pruning margin on alignment scores (overrides config if set)")
		batch      = flag.Int("batch", 0, "Mini-batch size (overrides config if set)")
		method     = flag.String("method", "", "Clustering method (overrides config if set)")
		threshold  = flag.Float64("threshold", 0, "Clustering similarity threshold (overrides config if set)")
		dbPath     = flag.String("db", "", "Optional SQLite database to persist the run")
		topN       = flag.Int("top", 20, "Number of top PMI entries to print")
		doEval     = flag.Bool("eval", false, "Print B-cubed scores against gold cognate classes")
	)
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("--data required")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	applyOverrides(&cfg, seed, maxIter, alpha, margin, batch, method, threshold)

	ds, err := readDataset(*dataPath, *reader, *sep)
	if err != nil {
		log.Fatalf("read %s: %v", *dataPath, err)
	}
	log.Printf("Read %d words, %d concepts, %d languages, %d symbols",
		ds.Words(), len(ds.ByConcept), len(ds.Languages), len(ds.Alphabet))

	ctx := context.Background()

	var st store.Store
	if *dbPath != "" {
		st, err = sqlite.Open(ctx, *dbPath)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
	}

	engine, err := kognate.New(kognate.Options{Config: cfg, Store: st})
	if err != nil {
		log.Fatalf("configure engine: %v", err)
	}
	defer engine.Close()

	res, err := engine.Run(ctx, ds)
	if err != nil {
		log.Fatalf("run: %v", err)
	}

	log.Printf("Initial working set: %d pairs", res.InitialPairs)
	for _, ep := range res.Epochs {
		log.Printf("Epoch %d: %d pairs remaining, %d pruned",
			ep.Epoch, ep.Remaining, ep.Pruned)
	}

	fmt.Printf("Top PMI entries:\n")
	for _, e := range res.Matrix.Top(*topN) {
		fmt.Printf("  %s / %s  %.4f\n", e.A, e.B, e.Score)
	}

	printClasses(res)

	if *doEval {
		scores := evaluate.BCubed(res.Classes, ds.Gold)
		fmt.Printf("B-cubed: precision %.4f, recall %.4f, F %.4f\n",
			scores.Precision, scores.Recall, scores.F)
	}

	if *dbPath != "" {
		log.Printf("Run %s persisted to %s", res.RunID, *dbPath)
	}
}

func applyOverrides(cfg *config.Config, seed *int64, maxIter *int, alpha, margin *float64, batch *int, method *string, threshold *float64) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["seed"] {
		cfg.Seed = *seed
	}
	if set["max-iter"] {
		cfg.MaxIter = *maxIter
	}
	if set["alpha"] {
		cfg.Alpha = *alpha
	}
	if set["margin"] {
		cfg.Margin = *margin
	}
	if set["batch"] {
		cfg.BatchSize = *batch
	}
	if set["method"] {
		cfg.Method = *method
	}
	if set["threshold"] {
		cfg.Threshold = *threshold
	}
}

func readDataset(path, format, sep string) (*ingest.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	opts := ingest.Options{CrossSemanticCogIDs: true}
	if len(sep) > 0 {
		opts.Separator = rune(sep[0])
	}

	switch format {
	case "ielex":
		return ingest.ReadIELex(f)
	case "cldf":
		return ingest.ReadCLDF(f, opts)
	case "lingpy":
		return ingest.ReadLingpy(f, opts)
	default:
		return nil, fmt.Errorf("unknown reader %q", format)
	}
}

func printClasses(res *kognate.Result) {
	concepts := make([]string, 0, len(res.Classes))
	for c := range res.Classes {
		concepts = append(concepts, c)
	}
	sort.Strings(concepts)

	total := 0
	for _, concept := range concepts {
		classes := res.Classes[concept]
		total += len(classes)
		fmt.Printf("%s: %d classes\n", concept, len(classes))
		for _, class := range classes {
			fmt.Printf("  ")
			for i, w := range class {
				if i > 0 {
					fmt.Printf(", ")
				}
				fmt.Printf("%s:%s", w.Language, w.String())
			}
			fmt.Printf("\n")
		}
	}
	fmt.Printf("%d cognate classes over %d concepts\n", total, len(concepts))
}
