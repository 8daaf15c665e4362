// evcam decodes event-camera recordings (AEDAT, DAT, EVENT-STREAM, RAW) and
// optionally indexes them in SQLite, renders event-rate charts, and serves a
// debug UI over the index database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/eventcam/internal/evdb"
	"github.com/banshee-data/eventcam/internal/event/decode"
	"github.com/banshee-data/eventcam/internal/report"
)

var (
	input         = flag.String("input", "", "Recording file to decode (aedat, dat, es or raw)")
	dbFile        = flag.String("db", "recordings.db", "Path to the SQLite index database file")
	ingestRun     = flag.Bool("ingest", false, "Store the decode run in the index database")
	chartOut      = flag.String("chart", "", "Write an event-rate HTML chart to this path")
	plotOut       = flag.String("plot", "", "Write an event-rate PNG plot to this path")
	binWidth      = flag.Uint64("bin-width", 1_000_000, "Rate bin width in recording timestamp units")
	listen        = flag.String("listen", "", "HTTP listen address for the index debug server (disabled when empty)")
	logInterval   = flag.Int("log-interval", 2, "Statistics logging interval in seconds")
	migrationsDir = flag.String("migrations", "migrations", "Path to the migration files")
)

// formatWithCommas formats a number with thousands separators
func formatWithCommas(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	result := ""
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(char)
	}
	return result
}

// DecodeStats tracks decode progress for periodic logging.
type DecodeStats struct {
	mu          sync.Mutex
	packetCount int64
	recordCount int64
	lastReset   time.Time
}

func (ds *DecodeStats) AddPacket(records int) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.packetCount++
	ds.recordCount += int64(records)
}

func (ds *DecodeStats) GetAndReset() (packets, records int64, duration time.Duration) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	now := time.Now()
	duration = now.Sub(ds.lastReset)
	packets = ds.packetCount
	records = ds.recordCount

	ds.packetCount = 0
	ds.recordCount = 0
	ds.lastReset = now

	return
}

// summariseRecording decodes the recording once, logging progress on the way,
// and returns the collected per-packet observations.
func summariseRecording(ctx context.Context, path string) (*report.Collector, error) {
	decoder, err := decode.Open(path)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	log.Printf("Decoding %s (%s)", path, decoder.Format())
	for id, stream := range decoder.Streams() {
		if stream.Content.PixelAddressed() {
			log.Printf("  stream %d: %s %dx%d", id, stream.Content, stream.Width, stream.Height)
		} else {
			log.Printf("  stream %d: %s", id, stream.Content)
		}
	}

	stats := &DecodeStats{lastReset: time.Now()}
	ticker := time.NewTicker(time.Duration(*logInterval) * time.Second)
	defer ticker.Stop()
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				packets, records, duration := stats.GetAndReset()
				if packets == 0 {
					continue
				}
				recordsPerSec := float64(records) / duration.Seconds()
				log.Printf("Decode rate: %d packets, %s records/sec",
					packets, formatWithCommas(int64(recordsPerSec)))
			}
		}
	}()

	collector := report.NewCollector()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		packet, err := decoder.Next()
		if err != nil {
			return nil, err
		}
		if packet == nil {
			return collector, nil
		}
		collector.Observe(packet)
		stats.AddPacket(packet.Body.RecordCount())
	}
}

func printSummary(s report.Summary) {
	log.Printf("Decode complete: %s packets, %s records",
		formatWithCommas(int64(s.Packets)), formatWithCommas(s.Records))
	if s.Packets > 0 {
		log.Printf("Records per packet: mean=%.1f median=%.1f stddev=%.1f",
			s.MeanRecords, s.MedianRecords, s.StdDevRecords)
	}
	if s.LastT > s.FirstT {
		log.Printf("Timestamp span: %d..%d", s.FirstT, s.LastT)
	}
	for id, records := range s.PerStream {
		log.Printf("  stream %d: %s records", id, formatWithCommas(records))
	}
}

// runMigrateCommand handles the 'migrate' subcommand dispatching
func runMigrateCommand(args []string) {
	if len(args) < 1 {
		printMigrateHelp()
		os.Exit(1)
	}

	db, err := evdb.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	switch args[0] {
	case "up":
		if err := db.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		version, dirty, _ := db.MigrateVersion(*migrationsDir)
		log.Printf("Migrations applied. Current version: %d (dirty: %v)", version, dirty)

	case "down":
		if err := db.MigrateDown(*migrationsDir); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		version, dirty, _ := db.MigrateVersion(*migrationsDir)
		log.Printf("Migration rolled back. Current version: %d (dirty: %v)", version, dirty)

	case "status":
		version, dirty, err := db.MigrateVersion(*migrationsDir)
		if err != nil {
			log.Fatalf("Failed to get migration status: %v", err)
		}
		fmt.Printf("Current version: %d\n", version)
		fmt.Printf("Dirty: %v\n", dirty)

	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: evcam migrate force <version_number>")
		}
		var forceVersion int
		if _, err := fmt.Sscanf(args[1], "%d", &forceVersion); err != nil {
			log.Fatalf("Invalid version number: %s", args[1])
		}
		if err := db.MigrateForce(*migrationsDir, forceVersion); err != nil {
			log.Fatalf("Force migration failed: %v", err)
		}
		log.Printf("Migration version forced to %d", forceVersion)

	case "help":
		printMigrateHelp()

	default:
		fmt.Printf("Unknown migrate action: %s\n\n", args[0])
		printMigrateHelp()
		os.Exit(1)
	}
}

func printMigrateHelp() {
	fmt.Println("Index Database Migration Commands")
	fmt.Println()
	fmt.Println("Usage: evcam migrate <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up              Apply all pending migrations")
	fmt.Println("  down            Rollback one migration")
	fmt.Println("  status          Show current migration version")
	fmt.Println("  force <N>       Force migration version to N (recovery only)")
	fmt.Println("  help            Show this help message")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -db <path>      Path to the index database file (default: recordings.db)")
}

func main() {
	flag.Parse()

	if args := flag.Args(); len(args) > 0 && args[0] == "migrate" {
		runMigrateCommand(args[1:])
		return
	}

	if *input == "" && *listen == "" {
		flag.Usage()
		log.Fatal("no -input recording and no -listen address given")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *evdb.DB
	if *ingestRun || *listen != "" {
		var err error
		db, err = evdb.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("Failed to open database %s: %v", *dbFile, err)
		}
		defer db.Close()
	}

	if *input != "" {
		if *ingestRun {
			summary, err := evdb.Ingest(db, *input)
			if err != nil {
				log.Fatalf("Ingest failed: %v", err)
			}
			log.Printf("Indexed recording %s (run %s)", summary.RecordingID, summary.RunID)
		}

		collector, err := summariseRecording(ctx, *input)
		if err != nil {
			log.Fatalf("Decode failed: %v", err)
		}
		printSummary(collector.Summary())

		if *chartOut != "" || *plotOut != "" {
			bins := collector.RateSeries(*binWidth)
			if *chartOut != "" {
				f, err := os.Create(*chartOut)
				if err != nil {
					log.Fatalf("Failed to create chart file: %v", err)
				}
				if err := report.WriteRateChart(f, "Event rate: "+*input, bins); err != nil {
					f.Close()
					log.Fatalf("Failed to render chart: %v", err)
				}
				f.Close()
				log.Printf("Wrote event-rate chart to %s", *chartOut)
			}
			if *plotOut != "" {
				if err := report.SaveRatePlot(*plotOut, "Event rate: "+*input, bins); err != nil {
					log.Fatalf("Failed to render plot: %v", err)
				}
				log.Printf("Wrote event-rate plot to %s", *plotOut)
			}
		}
	}

	if *listen != "" {
		mux := http.NewServeMux()
		db.AttachAdminRoutes(mux)
		server := &http.Server{Addr: *listen, Handler: mux}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()

		log.Printf("Serving index debug UI on %s", *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}
}
