package pipeline

import (
	"errors"
	"sort"

	"go.uber.org/zap"

	"docclassifier/ml"
)

// ErrRejected is returned by a rule that drops a record.
var ErrRejected = errors.New("record rejected")

// CleaningRule 清洗规则
type CleaningRule interface {
	Apply(*Record) (*Record, error)
	Name() string
}

// CleaningStats 清洗统计
type CleaningStats struct {
	TotalProcessed int            `json:"total_processed"`
	Passed         int            `json:"passed"`
	Rejected       int            `json:"rejected"`
	Issues         map[string]int `json:"issues"`
	DroppedLabels  map[string]int `json:"dropped_labels"`
}

// DataCleaner runs rules over every record, then drops labels that are too
// rare to appear in both partitions of a stratified split.
type DataCleaner struct {
	rules         []CleaningRule
	minClassCount int
	logger        *zap.Logger
}

func NewDataCleaner(minClassCount int, logger *zap.Logger) *DataCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	cleaner := &DataCleaner{minClassCount: minClassCount, logger: logger}

	cleaner.AddRule(MissingLabelRule{})
	cleaner.AddRule(TextDerivationRule{})
	return cleaner
}

// AddRule 添加清洗规则
func (dc *DataCleaner) AddRule(rule CleaningRule) {
	dc.rules = append(dc.rules, rule)
	dc.logger.Debug("added cleaning rule", zap.String("rule", rule.Name()))
}

// Clean returns the records that survive every rule and the label threshold.
// Input order is preserved.
func (dc *DataCleaner) Clean(records []*Record) ([]*Record, CleaningStats) {
	stats := CleaningStats{
		Issues:        make(map[string]int),
		DroppedLabels: make(map[string]int),
	}

	cleaned := make([]*Record, 0, len(records))
	for _, rec := range records {
		stats.TotalProcessed++
		current := rec
		var rejectedBy string
		for _, rule := range dc.rules {
			out, err := rule.Apply(current)
			if err != nil {
				rejectedBy = rule.Name()
				break
			}
			current = out
		}
		if rejectedBy != "" {
			dc.logger.Debug("record rejected",
				zap.Int("line", rec.Line),
				zap.String("rule", rejectedBy))
			stats.Rejected++
			stats.Issues[rejectedBy]++
			continue
		}
		cleaned = append(cleaned, current)
	}

	kept, dropped := FilterRareLabels(cleaned, dc.minClassCount)
	for label, count := range dropped {
		stats.DroppedLabels[label] = count
		stats.Rejected += count
		stats.Issues["rare_label"] += count
	}
	stats.Passed = len(kept)

	if len(dropped) > 0 {
		labels := make([]string, 0, len(dropped))
		for label := range dropped {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		dc.logger.Info("dropped rare labels",
			zap.Int("min_count", dc.minClassCount),
			zap.Strings("labels", labels))
	}
	return kept, stats
}

// FilterRareLabels keeps records whose label occurs at least minCount times
// and reports the dropped labels with their counts.
func FilterRareLabels(records []*Record, minCount int) ([]*Record, map[string]int) {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.Subcategory]++
	}
	dropped := make(map[string]int)
	for label, count := range counts {
		if count < minCount {
			dropped[label] = count
		}
	}

	kept := make([]*Record, 0, len(records))
	for _, rec := range records {
		if _, ok := dropped[rec.Subcategory]; !ok {
			kept = append(kept, rec)
		}
	}
	return kept, dropped
}

// MissingLabelRule rejects records without a subcategory.
type MissingLabelRule struct{}

func (MissingLabelRule) Name() string { return "missing_label" }

func (MissingLabelRule) Apply(rec *Record) (*Record, error) {
	if rec.Subcategory == "" {
		return nil, ErrRejected
	}
	return rec, nil
}

// TextDerivationRule fills Text from title and description.
type TextDerivationRule struct{}

func (TextDerivationRule) Name() string { return "text_derivation" }

func (TextDerivationRule) Apply(rec *Record) (*Record, error) {
	out := *rec
	out.Text = ml.NormalizeText(rec.Title, rec.Description)
	return &out, nil
}

// Labels returns each record's subcategory in order.
func Labels(records []*Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.Subcategory
	}
	return out
}
