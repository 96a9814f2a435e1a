// Package dataset loads the reference tables consumed at bundle build
// time: the binary symptom-presence training/testing tables and the
// severity, description, and precaution master tables. Loading is
// fail-fast; a malformed row or a missing cross-reference aborts the
// whole load so a reload can never publish a partially valid bundle.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/healthcare-diagnosis-server/internal/domain"
)

const (
	TrainingFile    = "training.csv"
	TestingFile     = "testing.csv"
	SeverityFile    = "symptom_severity.csv"
	DescriptionFile = "symptom_Description.csv"
	PrecautionFile  = "symptom_precaution.csv"

	labelColumn    = "prognosis"
	maxPrecautions = 4
)

// Row is one labeled example: a binary presence vector over the feature
// columns plus the disease label.
type Row struct {
	Vector []int
	Label  string
}

// Table is a labeled binary feature table.
type Table struct {
	Features []string
	Rows     []Row
}

// RefData is the full immutable reference dataset for one bundle.
type RefData struct {
	Training     *Table
	Testing      *Table
	Severity     map[string]int
	Descriptions map[string]string
	Precautions  map[string][]string
}

// Load reads and cross-validates every reference table. Any failure
// returns an error without partial results.
func Load(dataPath, masterPath string, logger *logrus.Logger) (*RefData, error) {
	training, err := loadTable(filepath.Join(dataPath, TrainingFile))
	if err != nil {
		return nil, fmt.Errorf("loading training table: %w", err)
	}

	testing, err := loadTable(filepath.Join(dataPath, TestingFile))
	if err != nil {
		return nil, fmt.Errorf("loading testing table: %w", err)
	}
	if err := sameFeatures(training.Features, testing.Features); err != nil {
		return nil, fmt.Errorf("testing table: %w", err)
	}

	severity, err := loadSeverity(filepath.Join(masterPath, SeverityFile))
	if err != nil {
		return nil, fmt.Errorf("loading severity table: %w", err)
	}

	descriptions, err := loadDescriptions(filepath.Join(masterPath, DescriptionFile))
	if err != nil {
		return nil, fmt.Errorf("loading description table: %w", err)
	}

	precautions, err := loadPrecautions(filepath.Join(masterPath, PrecautionFile))
	if err != nil {
		return nil, fmt.Errorf("loading precaution table: %w", err)
	}

	ref := &RefData{
		Training:     training,
		Testing:      testing,
		Severity:     severity,
		Descriptions: descriptions,
		Precautions:  precautions,
	}

	if err := ref.crossValidate(logger); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"symptoms":    len(training.Features),
		"train_rows":  len(training.Rows),
		"test_rows":   len(testing.Rows),
		"severities":  len(severity),
		"diseases":    len(descriptions),
		"precautions": len(precautions),
	}).Info("Reference data loaded")

	return ref, nil
}

// crossValidate enforces referential integrity between the training
// labels and the master tables. A disease trained on but missing from
// the description or precaution tables would surface as a
// data-integrity fault at query time, so it aborts the load instead.
func (r *RefData) crossValidate(logger *logrus.Logger) error {
	for _, row := range r.Training.Rows {
		if _, ok := r.Descriptions[row.Label]; !ok {
			return fmt.Errorf("disease %q appears in training data but has no description entry", row.Label)
		}
		if _, ok := r.Precautions[row.Label]; !ok {
			return fmt.Errorf("disease %q appears in training data but has no precaution entry", row.Label)
		}
	}

	missing := 0
	for _, feature := range r.Training.Features {
		if _, ok := r.Severity[feature]; !ok {
			missing++
		}
	}
	if missing > 0 {
		// Tolerated: such symptoms score with weight zero.
		logger.WithField("count", missing).Warn("Symptoms without severity weight, defaulting to zero")
	}

	return nil
}

// Diseases returns the distinct training labels in first-seen order.
func (r *RefData) Diseases() []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range r.Training.Rows {
		if !seen[row.Label] {
			seen[row.Label] = true
			out = append(out, row.Label)
		}
	}
	return out
}

func loadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("table must have at least one feature column and a %s column", labelColumn)
	}
	if strings.TrimSpace(header[len(header)-1]) != labelColumn {
		return nil, fmt.Errorf("unknown terminal column %q, expected %q", header[len(header)-1], labelColumn)
	}

	features := make([]string, 0, len(header)-1)
	seen := make(map[string]bool)
	for _, col := range header[:len(header)-1] {
		name := domain.NormalizeSymptom(col)
		if name == "" {
			return nil, fmt.Errorf("empty feature column name in header")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate feature column %q", name)
		}
		seen[name] = true
		features = append(features, name)
	}

	table := &Table{Features: features}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, len(header), len(record))
		}

		vector := make([]int, len(features))
		for i, cell := range record[:len(record)-1] {
			v, err := strconv.Atoi(strings.TrimSpace(cell))
			if err != nil || (v != 0 && v != 1) {
				return nil, fmt.Errorf("line %d: column %q must be 0 or 1, got %q", line, features[i], cell)
			}
			vector[i] = v
		}

		label := strings.TrimSpace(record[len(record)-1])
		if label == "" {
			return nil, fmt.Errorf("line %d: empty %s label", line, labelColumn)
		}
		table.Rows = append(table.Rows, Row{Vector: vector, Label: label})
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("table contains no data rows")
	}
	return table, nil
}

func sameFeatures(a, b []string) error {
	if len(a) != len(b) {
		return fmt.Errorf("feature count %d does not match training feature count %d", len(b), len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			return fmt.Errorf("feature column %d is %q, training has %q", i, b[i], a[i])
		}
	}
	return nil
}

func loadSeverity(path string) (map[string]int, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}

	severity := make(map[string]int, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("line %d: expected symptom,weight", i+1)
		}
		name := domain.NormalizeSymptom(row[0])
		weight, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("line %d: weight for %q is not an integer: %q", i+1, name, row[1])
		}
		if weight < 0 {
			return nil, fmt.Errorf("line %d: weight for %q must be non-negative", i+1, name)
		}
		severity[name] = weight
	}
	return severity, nil
}

func loadDescriptions(path string) (map[string]string, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}

	descriptions := make(map[string]string, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("line %d: expected disease,description", i+1)
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "disease") {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			return nil, fmt.Errorf("line %d: empty disease name", i+1)
		}
		descriptions[name] = strings.TrimSpace(row[1])
	}
	return descriptions, nil
}

func loadPrecautions(path string) (map[string][]string, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, err
	}

	precautions := make(map[string][]string, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("line %d: expected disease plus precautions", i+1)
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "disease") {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			return nil, fmt.Errorf("line %d: empty disease name", i+1)
		}

		list := make([]string, 0, maxPrecautions)
		for _, p := range row[1:] {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if len(list) == maxPrecautions {
				return nil, fmt.Errorf("line %d: more than %d precautions for %q", i+1, maxPrecautions, name)
			}
			list = append(list, p)
		}
		precautions[name] = list
	}
	return precautions, nil
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}
