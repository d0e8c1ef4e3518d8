package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	aggregation "wattcompare/internal/aggregation/domain"
	application "wattcompare/internal/comparison/application"
	"wattcompare/internal/comparison/interfaces"
	metering "wattcompare/internal/metering/domain"
	tariff "wattcompare/internal/tariff/domain"
	tariffpg "wattcompare/internal/tariff/infrastructure/postgres"
	tempo "wattcompare/internal/tempo/domain"
	tempopg "wattcompare/internal/tempo/infrastructure/postgres"
)

type config struct {
	configPath   string
	readingsPath string
	offersPath   string
	dbURL        string
	seasonID     string
	outDir       string
	format       string
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	if cfg.configPath != "" {
		os.Setenv("WATTCOMPARE_CONFIG", cfg.configPath)
	}
	appCfg, err := application.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	loc, err := appCfg.Location()
	if err != nil {
		fmt.Fprintln(os.Stderr, "timezone:", err)
		os.Exit(2)
	}

	readings, err := loadReadings(cfg.readingsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "readings:", err)
		os.Exit(2)
	}

	ctx := context.Background()

	var db *sql.DB
	if cfg.dbURL != "" {
		db, err = sql.Open("pgx", cfg.dbURL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "db open:", err)
			os.Exit(2)
		}
		defer db.Close()
	}

	candidates, err := loadCandidates(ctx, db, cfg.offersPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "offers:", err)
		os.Exit(2)
	}

	calendar, err := buildCalendar(ctx, db, cfg.seasonID, appCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "calendar:", err)
		os.Exit(2)
	}

	service := application.NewService(log.New(os.Stderr, "", log.LstdFlags))
	report, err := service.Compare(ctx, application.Input{
		Readings:   readings,
		Candidates: candidates,
		Household: application.Household{
			SubscribedPowerKVA: appCfg.Household.SubscribedPowerKVA,
			CurrentOfferID:     appCfg.Household.CurrentOfferID,
			Windows:            appCfg.Household.Windows,
			Location:           loc,
		},
		Calendar: calendar,
		Window:   aggregation.WindowKind(appCfg.Window),
		Mode:     application.RunMode(appCfg.Mode),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "compare:", err)
		os.Exit(1)
	}

	printRanking(report)

	if cfg.outDir != "" {
		if err := writeReports(cfg.outDir, cfg.format, report); err != nil {
			fmt.Fprintln(os.Stderr, "write reports:", err)
			os.Exit(1)
		}
		fmt.Printf("Reports written to %s\n", cfg.outDir)
	}
}

func parseFlags() (config, error) {
	var cfg config
	flag.StringVar(&cfg.configPath, "config", getenvDefault("WATTCOMPARE_CONFIG", ""), "engine config yaml path")
	flag.StringVar(&cfg.readingsPath, "readings", "", "meter readings CSV path")
	flag.StringVar(&cfg.offersPath, "offers", "", "offer catalog yaml path (alternative to --db)")
	flag.StringVar(&cfg.dbURL, "db", getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")), "Postgres DSN for catalog and calendar (optional)")
	flag.StringVar(&cfg.seasonID, "season", "", "color-calendar season id (requires --db)")
	flag.StringVar(&cfg.outDir, "out", "", "report output directory (optional)")
	flag.StringVar(&cfg.format, "format", "both", "report format: pdf, xlsx or both")
	flag.Parse()

	if cfg.readingsPath == "" {
		return cfg, errors.New("missing --readings")
	}
	if cfg.offersPath == "" && cfg.dbURL == "" {
		return cfg, errors.New("missing --offers or --db")
	}
	if cfg.format != "pdf" && cfg.format != "xlsx" && cfg.format != "both" {
		return cfg, errors.New("--format must be pdf, xlsx or both")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

// loadReadings parses a CSV of raw meter records. Columns:
// end_time (RFC3339), value, unit (W or Wh), interval (ISO-8601, e.g. PT30M).
func loadReadings(path string) ([]metering.MeterReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4

	var readings []metering.MeterReading
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && record[0] == "end_time" {
			continue
		}
		endTime, err := time.Parse(time.RFC3339, record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: end_time: %w", line, err)
		}
		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: value: %w", line, err)
		}
		readings = append(readings, metering.MeterReading{
			EndTime:         endTime,
			RawValue:        value,
			Unit:            metering.Unit(record[2]),
			NominalInterval: record[3],
		})
	}
	if len(readings) == 0 {
		return nil, errors.New("no readings in " + path)
	}
	return readings, nil
}

type offerSpec struct {
	ID                  string             `yaml:"id"`
	Name                string             `yaml:"name"`
	Family              string             `yaml:"family"`
	PowerKVA            int                `yaml:"power_kva"`
	SubscriptionMonthly float64            `yaml:"subscription_monthly"`
	Prices              map[string]float64 `yaml:"prices"`
	PeakDays            []string           `yaml:"peak_days"`
	WinterMonths        []int              `yaml:"winter_months"`
}

type offerFile struct {
	Offers []offerSpec `yaml:"offers"`
}

func loadCandidates(ctx context.Context, db *sql.DB, offersPath string) ([]tariff.Offer, error) {
	if db != nil {
		return tariffpg.NewCatalogRepository(db).ListOffers(ctx)
	}

	data, err := os.ReadFile(offersPath)
	if err != nil {
		return nil, err
	}
	var file offerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	offers := make([]tariff.Offer, 0, len(file.Offers))
	for _, spec := range file.Offers {
		pricing, err := buildPricing(spec)
		if err != nil {
			return nil, fmt.Errorf("offer %s: %w", spec.ID, err)
		}
		offer := tariff.Offer{
			ID:                  spec.ID,
			Name:                spec.Name,
			PowerKVA:            spec.PowerKVA,
			SubscriptionMonthly: spec.SubscriptionMonthly,
			Pricing:             pricing,
		}
		if err := offer.Validate(); err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

func buildPricing(spec offerSpec) (tariff.Pricing, error) {
	prices := make(map[tariff.RateLabel]float64, len(spec.Prices))
	for label, price := range spec.Prices {
		prices[tariff.RateLabel(label)] = price
	}
	peakDays := tariff.NewDateSet()
	for _, day := range spec.PeakDays {
		peakDays[tempo.DayKey(day)] = struct{}{}
	}

	switch tariff.Family(spec.Family) {
	case tariff.FamilyBase:
		if err := requireExactly(prices, tariff.LabelBase); err != nil {
			return nil, err
		}
		return tariff.BasePricing{KWhPrice: prices[tariff.LabelBase]}, nil
	case tariff.FamilyPeakOffPeak:
		if err := requireExactly(prices, tariff.LabelPeak, tariff.LabelOffPeak); err != nil {
			return nil, err
		}
		return tariff.PeakOffPeakPricing{Peak: prices[tariff.LabelPeak], OffPeak: prices[tariff.LabelOffPeak]}, nil
	case tariff.FamilyColorCalendar:
		return tariff.ColorPricing{Prices: prices}, nil
	case tariff.FamilySpecialPeakDays:
		if err := requireExactly(prices, tariff.LabelNormal, tariff.LabelPeakDay); err != nil {
			return nil, err
		}
		return tariff.SpecialPeakDaysPricing{
			Normal:   prices[tariff.LabelNormal],
			PeakDay:  prices[tariff.LabelPeakDay],
			PeakDays: peakDays,
		}, nil
	case tariff.FamilySeasonal:
		months := make([]time.Month, 0, len(spec.WinterMonths))
		for _, m := range spec.WinterMonths {
			months = append(months, time.Month(m))
		}
		return tariff.SeasonalPricing{Prices: prices, PeakDays: peakDays, WinterMonths: months}, nil
	case tariff.FamilyWeekend:
		if err := requireExactly(prices, tariff.LabelPeak, tariff.LabelOffPeak); err != nil {
			return nil, err
		}
		return tariff.WeekendPricing{Peak: prices[tariff.LabelPeak], OffPeak: prices[tariff.LabelOffPeak]}, nil
	case tariff.FamilyWeekendNight:
		if err := requireExactly(prices, tariff.LabelPeak, tariff.LabelOffPeak); err != nil {
			return nil, err
		}
		return tariff.WeekendNightPricing{Peak: prices[tariff.LabelPeak], OffPeak: prices[tariff.LabelOffPeak]}, nil
	default:
		return nil, fmt.Errorf("%w: %q", tariff.ErrUnsupportedFamily, spec.Family)
	}
}

// requireExactly checks that the yaml prices map carries exactly the family's
// scalar label alphabet. A mistyped label must fail here: an absent map key
// would otherwise read as a 0 price.
func requireExactly(prices map[tariff.RateLabel]float64, labels ...tariff.RateLabel) error {
	if len(prices) != len(labels) {
		return fmt.Errorf("%w: got %d buckets, expected %d", tariff.ErrLabelMismatch, len(prices), len(labels))
	}
	for _, label := range labels {
		if _, ok := prices[label]; !ok {
			return fmt.Errorf("%w: missing bucket %s", tariff.ErrLabelMismatch, label)
		}
	}
	return nil
}

func buildCalendar(ctx context.Context, db *sql.DB, seasonID string, cfg application.Config) (*tempo.Calendar, error) {
	if db == nil || seasonID == "" {
		return nil, nil
	}
	ledger, err := tempopg.NewLedgerRepository(db).LoadSeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	seasonStart, err := cfg.SeasonStart(time.Now())
	if err != nil {
		return nil, err
	}
	forecaster := tempo.NewForecaster(ledger.Quota(), cfg.Tempo.Thresholds, tempo.SeasonEnd(seasonStart))
	return tempo.NewCalendar(ledger, forecaster, nil, nil), nil
}

func printRanking(report *application.RunReport) {
	fmt.Printf("Run %s  window=%s  ranked=%d  skipped=%d\n\n",
		report.RunID, report.Window, len(report.Results), len(report.Skipped))
	fmt.Printf("%-4s %-30s %12s %12s %12s %12s\n", "#", "Offer", "Total", "Subscr.", "Energy", "Savings")
	for i, r := range report.Results {
		savings := "-"
		if r.Savings != nil {
			savings = fmt.Sprintf("%.2f", *r.Savings)
		}
		fmt.Printf("%-4d %-30s %12.2f %12.2f %12.2f %12s\n",
			i+1, r.OfferName, r.TotalCost, r.SubscriptionCost, r.EnergyCost(), savings)
	}
	for _, rec := range report.Skipped {
		fmt.Fprintf(os.Stderr, "skipped [%s]: %v\n", rec.Stage, rec.Err)
	}
}

func writeReports(outDir, format string, report *application.RunReport) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	if format == "pdf" || format == "both" {
		data, err := interfaces.BuildComparisonPDF(report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(outDir, "comparison.pdf"), data, 0o644); err != nil {
			return err
		}
	}
	if format == "xlsx" || format == "both" {
		data, err := interfaces.BuildComparisonXLSX(report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(outDir, "comparison.xlsx"), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
