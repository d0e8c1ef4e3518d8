package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	aggregation "wattcompare/internal/aggregation/domain"
	metering "wattcompare/internal/metering/domain"
	"wattcompare/internal/observability/metrics"
	pricing "wattcompare/internal/pricing/domain"
	tariff "wattcompare/internal/tariff/domain"
	tempo "wattcompare/internal/tempo/domain"
)

// RunMode selects how a run treats malformed records.
type RunMode string

const (
	// ModeFailFast aborts the run on the first malformed record.
	ModeFailFast RunMode = "fail_fast"
	// ModeBestEffort skips malformed records and reports them alongside the
	// partial result.
	ModeBestEffort RunMode = "best_effort"
)

// Household is the per-run contract context.
type Household struct {
	SubscribedPowerKVA int
	CurrentOfferID     string
	Windows            tariff.HouseholdWindows
	Location           *time.Location
}

// Input is one comparison run's immutable snapshot set.
type Input struct {
	Readings   []metering.MeterReading
	Candidates []tariff.Offer
	Household  Household
	// Calendar may be nil when no color-calendar offers are candidates.
	Calendar *tempo.Calendar
	Window   aggregation.WindowKind
	Mode     RunMode
}

// SkippedRecord ties a skipped input record to the stage that rejected it.
type SkippedRecord struct {
	Stage string
	Err   error
}

// RunReport is the outcome of one comparison run.
type RunReport struct {
	RunID    string
	Window   aggregation.WindowKind
	Results  []pricing.CostResult
	Skipped  []SkippedRecord
	Duration time.Duration
}

// Service runs the normalization -> classification -> aggregation -> pricing
// pipeline. It holds no mutable state; concurrent runs need no locks.
type Service struct {
	logger *log.Logger
}

// NewService constructs the service. logger may be nil.
func NewService(logger *log.Logger) *Service {
	return &Service{logger: logger}
}

// Compare ranks every candidate offer against the household's consumption.
func (s *Service) Compare(ctx context.Context, in Input) (report *RunReport, err error) {
	start := time.Now()
	runID := uuid.NewString()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.ObserveComparisonRun(result, string(in.Window), time.Since(start))
		s.logf("comparison_run", runID, result, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !in.Window.IsValid() {
		return nil, fmt.Errorf("comparison: unknown window kind %q", in.Window)
	}
	if in.Household.SubscribedPowerKVA <= 0 {
		return nil, errors.New("comparison: subscribed power must be positive")
	}
	for _, offer := range in.Candidates {
		if err := offer.Validate(); err != nil {
			return nil, err
		}
	}

	var skipped []SkippedRecord

	intervals, normErrs, err := s.normalize(in.Readings, in.Mode)
	if err != nil {
		return nil, err
	}
	skipped = appendSkipped(skipped, "normalize", normErrs)

	classifier := tariff.NewClassifier(in.Household.Windows, in.Household.Location, in.Calendar)
	view, classifyErrs, err := s.buildView(classifier, intervals, in)
	if err != nil {
		return nil, err
	}
	skipped = appendSkipped(skipped, "classify", classifyErrs)

	results, err := pricing.Rank(view, in.Candidates, in.Household.CurrentOfferID, in.Household.SubscribedPowerKVA)
	if err != nil {
		metrics.CountOfferPricing(metrics.ResultError)
		return nil, err
	}
	metrics.CountOfferPricing(metrics.ResultSuccess)

	return &RunReport{
		RunID:    runID,
		Window:   in.Window,
		Results:  results,
		Skipped:  skipped,
		Duration: time.Since(start),
	}, nil
}

// Billing prices the household's own offer per calendar month, for billing
// display. In best-effort mode the skipped records are returned alongside
// the partial series.
func (s *Service) Billing(ctx context.Context, in Input, offer tariff.Offer) ([]pricing.CostResult, []SkippedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := offer.Validate(); err != nil {
		return nil, nil, err
	}

	var skipped []SkippedRecord
	intervals, normErrs, err := s.normalize(in.Readings, in.Mode)
	if err != nil {
		return nil, nil, err
	}
	skipped = appendSkipped(skipped, "normalize", normErrs)

	classifier := tariff.NewClassifier(in.Household.Windows, in.Household.Location, in.Calendar)
	classified, classifyErrs, err := s.classify(classifier, intervals, offer.Pricing, in.Mode)
	if err != nil {
		return nil, nil, err
	}
	skipped = appendSkipped(skipped, "classify", classifyErrs)

	buckets, err := aggregation.Fold(classified, aggregation.WindowCalendarMonth, in.Household.Location)
	if err != nil {
		return nil, nil, err
	}
	series, err := pricing.PriceSeries(buckets, offer, in.Household.SubscribedPowerKVA)
	if err != nil {
		return nil, nil, err
	}
	return series, skipped, nil
}

func (s *Service) normalize(readings []metering.MeterReading, mode RunMode) ([]metering.NormalizedInterval, []error, error) {
	if mode == ModeBestEffort {
		intervals, errs := metering.NormalizeTolerant(readings)
		metrics.CountSkippedRecords("normalize", len(errs))
		return intervals, errs, nil
	}
	intervals, err := metering.Normalize(readings)
	if err != nil {
		return nil, nil, err
	}
	return intervals, nil, nil
}

func (s *Service) classify(classifier *tariff.Classifier, intervals []metering.NormalizedInterval, p tariff.Pricing, mode RunMode) ([]tariff.ClassifiedInterval, []error, error) {
	if mode == ModeBestEffort {
		classified, errs := classifier.ClassifyAllTolerant(intervals, p)
		metrics.CountSkippedRecords("classify", len(errs))
		return classified, errs, nil
	}
	classified, err := classifier.ClassifyAll(intervals, p)
	if err != nil {
		return nil, nil, err
	}
	return classified, nil, nil
}

// schemeView resolves each offer to the bucket classified under its scheme.
type schemeView struct {
	buckets map[string]aggregation.Bucket
}

// BucketFor implements pricing.AggregationView.
func (v schemeView) BucketFor(offer tariff.Offer) (aggregation.Bucket, bool) {
	b, ok := v.buckets[schemeKey(offer.Pricing)]
	return b, ok
}

// buildView classifies and folds the profile once per distinct classification
// scheme. Offers of the same family share a scheme unless they carry their
// own peak-day list.
func (s *Service) buildView(classifier *tariff.Classifier, intervals []metering.NormalizedInterval, in Input) (pricing.AggregationView, []error, error) {
	view := schemeView{buckets: make(map[string]aggregation.Bucket)}
	var allErrs []error

	for _, offer := range in.Candidates {
		if offer.PowerKVA != in.Household.SubscribedPowerKVA {
			continue
		}
		key := schemeKey(offer.Pricing)
		if _, done := view.buckets[key]; done {
			continue
		}

		classified, errs, err := s.classify(classifier, intervals, offer.Pricing, in.Mode)
		if err != nil {
			return nil, nil, err
		}
		allErrs = append(allErrs, errs...)

		buckets, err := aggregation.Fold(classified, in.Window, in.Household.Location)
		if err != nil {
			return nil, nil, err
		}
		view.buckets[key] = rankingBucket(buckets, in.Window)
	}
	return view, allErrs, nil
}

// rankingBucket picks the bucket candidates are ranked on: the newest
// rolling-year window, or the newest calendar month.
func rankingBucket(buckets []aggregation.Bucket, kind aggregation.WindowKind) aggregation.Bucket {
	if len(buckets) == 0 {
		return aggregation.Bucket{Kind: kind, PerLabelKWh: map[tariff.RateLabel]float64{}}
	}
	if kind == aggregation.WindowRollingYear {
		return buckets[0]
	}
	return buckets[len(buckets)-1]
}

// schemeKey identifies a classification scheme: the family plus, for
// families carrying their own peak-day lists, the dates themselves.
func schemeKey(p tariff.Pricing) string {
	switch v := p.(type) {
	case tariff.SpecialPeakDaysPricing:
		return string(p.Family()) + "|" + dateSetKey(v.PeakDays)
	case tariff.SeasonalPricing:
		months := make([]string, 0, len(v.WinterMonths))
		for _, m := range v.WinterMonths {
			months = append(months, m.String())
		}
		return string(p.Family()) + "|" + dateSetKey(v.PeakDays) + "|" + strings.Join(months, ",")
	default:
		return string(p.Family())
	}
}

func dateSetKey(days tariff.DateSet) string {
	keys := make([]string, 0, len(days))
	for d := range days {
		keys = append(keys, d.String())
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func appendSkipped(skipped []SkippedRecord, stage string, errs []error) []SkippedRecord {
	for _, err := range errs {
		skipped = append(skipped, SkippedRecord{Stage: stage, Err: err})
	}
	return skipped
}

func (s *Service) logf(event, runID, result string, err error) {
	if s.logger == nil {
		return
	}
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	s.logger.Printf("event=%s run_id=%s result=%s error=%s", event, runID, result, errMsg)
}
