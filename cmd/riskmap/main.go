package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"gram-rakshak/backend/internal/riskmap"
	"gram-rakshak/backend/internal/store"
)

// Bulk-loads fraud report CSV exports (village,district,category,description)
// and prints per-village risk aggregates.
func main() {
	var (
		dbPath      = flag.String("db", filepath.FromSlash("backend/data/gram-rakshak.db"), "Path to SQLite database")
		csvPaths    multiFlag
		csvDirPaths multiFlag
		district    = flag.String("district", "", "District to aggregate (default: all districts with reports)")
		outputPath  = flag.String("output", "", "Optional path to write JSON aggregates")
		refreshOnly = flag.Bool("refresh", false, "Only aggregate without ingesting CSV files")
	)
	flag.Var(&csvPaths, "csv", "Fraud report CSV file (repeatable)")
	flag.Var(&csvDirPaths, "csv-dir", "Directory containing fraud report CSV files (repeatable)")
	flag.Parse()

	db, err := store.Open(*dbPath, true)
	if err != nil {
		logrus.Fatalf("open database: %v", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("close database")
		}
	}()

	files := make([]string, 0, len(csvPaths))
	seen := make(map[string]struct{})

	addFile := func(path string) {
		cleaned := filepath.Clean(path)
		if cleaned == "" {
			return
		}
		if _, ok := seen[cleaned]; ok {
			return
		}
		seen[cleaned] = struct{}{}
		files = append(files, cleaned)
	}

	for _, p := range csvPaths {
		addFile(p)
	}
	for _, dir := range csvDirPaths {
		dir = filepath.Clean(dir)
		if dir == "" {
			continue
		}
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logrus.WithError(err).WithField("path", path).Warn("walking csv dir")
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if strings.HasSuffix(strings.ToLower(d.Name()), ".csv") {
				addFile(path)
			}
			return nil
		})
	}

	if !*refreshOnly {
		for _, path := range files {
			start := time.Now()
			logrus.WithField("file", path).Info("ingesting fraud reports")
			ingested, skipped, err := ingestCSV(db, path)
			if err != nil {
				logrus.Fatalf("ingest %s: %v", path, err)
			}
			logrus.WithFields(logrus.Fields{
				"file":     path,
				"reports":  ingested,
				"skipped":  skipped,
				"duration": time.Since(start).Round(time.Millisecond),
			}).Info("ingest complete")
		}
	}

	districts := []string{strings.TrimSpace(*district)}
	if districts[0] == "" {
		districts, err = db.Districts()
		if err != nil {
			logrus.Fatalf("list districts: %v", err)
		}
		if len(districts) == 0 {
			logrus.Info("no fraud reports stored; nothing to aggregate")
			return
		}
	}

	aggregates := make(map[string][]riskmap.VillageRisk, len(districts))
	for _, name := range districts {
		counts, err := db.VillageReportCounts(name)
		if err != nil {
			logrus.Fatalf("aggregate %s: %v", name, err)
		}
		villages := riskmap.Build(counts)
		aggregates[name] = villages

		for _, v := range villages {
			fmt.Printf("%-20s %-20s %-8s score=%-3d reports=%d\n", name, v.Village, v.Risk, v.Score, v.Reports)
		}
	}

	if *outputPath != "" {
		if err := writeAggregates(*outputPath, aggregates); err != nil {
			logrus.Fatalf("write aggregates: %v", err)
		}
		logrus.WithField("path", *outputPath).Info("aggregates written to file")
	}
}

// ingestCSV loads one export. Rows missing village or district are skipped
// rather than failing the whole file.
func ingestCSV(db *store.Database, path string) (int, int, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	ingested, skipped := 0, 0
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ingested, skipped, err
		}
		if first {
			first = false
			if looksLikeHeader(record) {
				continue
			}
		}
		if len(record) < 2 {
			skipped++
			continue
		}
		report := store.FraudReport{
			Village:  strings.TrimSpace(record[0]),
			District: strings.TrimSpace(record[1]),
		}
		if len(record) > 2 {
			report.Category = strings.ToLower(strings.TrimSpace(record[2]))
		}
		if len(record) > 3 {
			report.Description = strings.TrimSpace(record[3])
		}
		if err := db.CreateFraudReport(&report); err != nil {
			skipped++
			continue
		}
		ingested++
	}
	return ingested, skipped, nil
}

func looksLikeHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(record[0]), "village")
}

func writeAggregates(path string, aggregates map[string][]riskmap.VillageRisk) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		if !os.IsExist(err) {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(aggregates)
}

type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}
