// Command bench measures how long region mutations take when many regions
// share one store, and prints a latency histogram.
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/loov/hrtime"
	"gopkg.in/yaml.v3"

	"github.com/philpearl/regionbuf"
	"github.com/philpearl/regionbuf/offheap"
)

type vec2 struct {
	X, Y float32
}

type benchConfig struct {
	Regions   int              `yaml:"regions"`
	Count     int              `yaml:"count"`
	Memory    string           `yaml:"memory"`
	Regionbuf regionbuf.Config `yaml:"regionbuf"`
}

// parseArgs builds the benchmark settings from args and the optional config
// file they name. Flags given on the command line win over the file; flag
// defaults only fill what the file leaves out.
func parseArgs(app *kingpin.Application, args []string) (cfg benchConfig, verbose bool, err error) {
	var regionsSet, countSet, memorySet, maxBytesSet bool
	configFile := app.Flag("config.file", "YAML file with benchmark settings. Flags override it.").ExistingFile()
	regions := app.Flag("regions", "Number of regions sharing the store.").IsSetByUser(&regionsSet).Default("64").Int()
	count := app.Flag("count", "Number of timed operations.").IsSetByUser(&countSet).Default("1000000").Int()
	memory := app.Flag("memory", "Where the store lives.").IsSetByUser(&memorySet).Default("heap").Enum("heap", "offheap")
	maxBytes := app.Flag("max-bytes", "Cap on the store's memory, e.g. 512MB. 0 for none.").IsSetByUser(&maxBytesSet).Default("0").String()
	verboseFlag := app.Flag("verbose", "Log store growth.").Bool()
	if _, err := app.Parse(args); err != nil {
		return cfg, false, err
	}

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return cfg, false, errors.Wrap(err, "reading config")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, false, errors.Wrap(err, "parsing config")
		}
	}
	if regionsSet || cfg.Regions == 0 {
		cfg.Regions = *regions
	}
	if countSet || cfg.Count == 0 {
		cfg.Count = *count
	}
	if memorySet || cfg.Memory == "" {
		cfg.Memory = *memory
	}
	if maxBytesSet {
		if err := cfg.Regionbuf.MaxBytes.UnmarshalText([]byte(*maxBytes)); err != nil {
			return cfg, false, errors.Wrap(err, "parsing max-bytes")
		}
	}
	return cfg, *verboseFlag, nil
}

func main() {
	app := kingpin.New("bench", "Latency of region mutations in a shared store.")
	cfg, verbose, err := parseArgs(app, os.Args[1:])
	if err != nil {
		app.Fatalf("%v", err)
	}

	if verbose {
		regionbuf.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var mem regionbuf.Memory = regionbuf.HeapMemory{}
	if cfg.Memory == "offheap" {
		mem = offheap.Memory{}
	}

	t, err := regionbuf.NewFromConfig[vec2](cfg.Regionbuf, regionbuf.WithMemory(mem))
	if err != nil {
		app.Fatalf("%v", err)
	}
	defer t.Close()

	ids := make([]regionbuf.RegionID, cfg.Regions)
	for i := range ids {
		ids[i] = t.AllocateLabeled(fmt.Sprintf("region-%d", i))
	}

	rnd := rand.New(rand.NewSource(1))
	runtime.GC()

	b := hrtime.NewBenchmarkTSC(cfg.Count)
	for i := 0; b.Next(); i++ {
		id := ids[rnd.Intn(len(ids))]
		start := hrtime.TSC()
		// Mostly grow, sometimes shrink, so later regions keep moving
		var err error
		if rnd.Intn(4) == 0 && t.SizeOf(id) > 0 {
			err = t.EraseAt(id, rnd.Intn(t.SizeOf(id)), 1)
		} else {
			err = t.PushBack(id, vec2{X: float32(i), Y: float32(-i)})
		}
		dur := hrtime.TSC() - start
		if err != nil {
			app.Fatalf("operation %d: %v", i, err)
		}
		if dur.ApproxDuration() > time.Millisecond*100 {
			// Growing a large store copies the whole block
			fmt.Printf("slow operation at %d\n", i)
		}
	}

	fmt.Printf("store: %d elements, %s capacity, %d regions\n",
		t.Store().Len(), humanize.IBytes(uint64(t.Store().CapBytes())), t.Len())

	opts := hrtime.HistogramOptions{
		BinCount:        20,
		NiceRange:       true,
		ClampMaximum:    0,
		ClampPercentile: 0.999999,
	}
	fmt.Println(hrtime.NewDurationHistogram(b.Laps(), &opts))
}
