// Package trainer fits the document classifier from a labelled CSV and
// persists it.
package trainer

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"docclassifier/config"
	"docclassifier/db"
	"docclassifier/ml"
	"docclassifier/pipeline"
)

// Result describes a finished run.
type Result struct {
	ModelPath     string
	Report        *ml.ClassificationReport
	TrainSize     int
	TestSize      int
	Classes       []string
	DroppedLabels map[string]int
	Converged     bool
	Iterations    int
}

// StoreOpener opens the training log. It is called only after the artifact
// has been saved.
type StoreOpener func() (*db.TrainingStore, error)

// Trainer runs the offline job. The training log is optional.
type Trainer struct {
	cfg       *config.Config
	logger    *zap.Logger
	out       io.Writer
	openStore StoreOpener
}

func New(cfg *config.Config, logger *zap.Logger, out io.Writer) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trainer{cfg: cfg, logger: logger, out: out}
}

// WithStore records successful runs in the training log opened by open.
func (t *Trainer) WithStore(open StoreOpener) *Trainer {
	t.openStore = open
	return t
}

// Run loads, cleans, splits, fits, evaluates and saves. Nothing is written to
// the model path unless every earlier step succeeded.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	cfg := t.cfg
	tc := cfg.Training

	records, ingest, err := pipeline.LoadDocuments(cfg.Data.Path)
	if err != nil {
		return nil, err
	}
	t.logger.Info("dataset loaded",
		zap.String("path", cfg.Data.Path),
		zap.Int("rows", ingest.Rows),
		zap.Int("missing_label", ingest.MissingLabel))

	cleaned, stats := pipeline.NewDataCleaner(tc.MinClassCount, t.logger).Clean(records)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("no rows left after cleaning: %w", ml.ErrEmptyInput)
	}

	labels := pipeline.Labels(cleaned)
	trainIdx, testIdx, err := ml.StratifiedSplit(labels, tc.TestRatio, tc.Seed)
	if err != nil {
		return nil, fmt.Errorf("split dataset: %w", err)
	}
	trainX, trainY := project(cleaned, trainIdx)
	testX, testY := project(cleaned, testIdx)
	t.logger.Info("dataset split",
		zap.Int("train", len(trainX)),
		zap.Int("test", len(testX)),
		zap.Int64("seed", tc.Seed))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model := ml.NewPipeline(
		ml.NewTfidfVectorizer(tc.NgramMin, tc.NgramMax, tc.MinDF),
		ml.NewLogisticRegression(tc.C, tc.MaxIter, tc.Tol),
	)
	if err := model.Fit(trainX, trainY); err != nil {
		return nil, fmt.Errorf("fit pipeline: %w", err)
	}
	if !model.Classifier.Converged {
		t.logger.Warn("optimizer did not converge; consider raising max_iter",
			zap.Int("iterations", model.Classifier.NIter),
			zap.Int("max_iter", tc.MaxIter))
	}
	t.logger.Info("pipeline fitted",
		zap.Int("features", model.Vectorizer.NumFeatures()),
		zap.Int("classes", len(model.Classes())),
		zap.Int("iterations", model.Classifier.NIter))

	predicted, err := model.Predict(testX)
	if err != nil {
		return nil, fmt.Errorf("predict test set: %w", err)
	}
	report, err := ml.Evaluate(testY, predicted)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	if err := RenderReport(t.out, report); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	if err := model.Save(cfg.Model.Path); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	fmt.Fprintf(t.out, "Saved model to %s\n", cfg.Model.Path)

	result := &Result{
		ModelPath:     cfg.Model.Path,
		Report:        report,
		TrainSize:     len(trainX),
		TestSize:      len(testX),
		Classes:       model.Classes(),
		DroppedLabels: stats.DroppedLabels,
		Converged:     model.Classifier.Converged,
		Iterations:    model.Classifier.NIter,
	}
	t.record(ctx, result, len(cleaned))
	return result, nil
}

// record logs store failures instead of returning them.
func (t *Trainer) record(ctx context.Context, res *Result, dataPoints int) {
	if t.openStore == nil {
		return
	}
	store, err := t.openStore()
	if err != nil {
		t.logger.Warn("training log unavailable", zap.Error(err))
		return
	}
	defer store.Close()

	entry := &db.TrainingLog{
		ModelName:     t.cfg.Model.Type,
		ModelPath:     res.ModelPath,
		Accuracy:      res.Report.Accuracy,
		Precision:     res.Report.MacroAvg.Precision,
		Recall:        res.Report.MacroAvg.Recall,
		F1:            res.Report.MacroAvg.F1,
		TrainSize:     res.TrainSize,
		TestSize:      res.TestSize,
		ClassCount:    len(res.Classes),
		DroppedLabels: res.DroppedLabels,
		DataPoints:    dataPoints,
	}
	if err := store.SaveTrainingLog(ctx, entry); err != nil {
		t.logger.Warn("failed to record training run", zap.Error(err))
		return
	}
	t.logger.Info("training run recorded", zap.String("run_id", entry.RunID))
}

func project(records []*pipeline.Record, idx []int) (texts, labels []string) {
	texts = make([]string, len(idx))
	labels = make([]string, len(idx))
	for i, j := range idx {
		texts[i] = records[j].Text
		labels[i] = records[j].Subcategory
	}
	return texts, labels
}
