// Command heapinspect opens a storecore data directory and prints the slot
// occupancy of every heap page, optionally with the stored tuples and an
// aggregate over one column.
package main

import (
	"flag"
	"fmt"
	"os"

	"storecore/pkg/config"
	"storecore/pkg/database"
	"storecore/pkg/execution/aggregation"
	"storecore/pkg/logging"
)

func main() {
	var (
		configPath string
		dataDir    string
		opts       options
	)

	flag.StringVar(&configPath, "config", "", "INI or TOML configuration file")
	flag.StringVar(&dataDir, "data", "", "Data directory (overrides the config file)")
	flag.StringVar(&opts.Table, "table", "", "Only inspect this table")
	flag.BoolVar(&opts.ShowTuples, "tuples", false, "Print the tuples of each table")
	flag.StringVar(&opts.AggOp, "agg", "", "Aggregate to compute: min, max, sum, avg or count")
	flag.IntVar(&opts.AggField, "agg-field", 0, "Column index the aggregate reads")
	flag.IntVar(&opts.GroupField, "group-by", aggregation.NoGrouping, "Column index to group by, -1 for none")
	flag.BoolVar(&opts.ColorBitmap, "color", true, "Colour the slot bitmap")
	flag.Parse()

	if err := run(configPath, dataDir, opts); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

func run(configPath, dataDir string, opts options) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := logging.Init(cfg.LoggingConfig()); err != nil {
		return err
	}
	defer logging.Close()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return report(os.Stdout, db, opts)
}
