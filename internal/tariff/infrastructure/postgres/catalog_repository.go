package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	tariff "wattcompare/internal/tariff/domain"
	tempo "wattcompare/internal/tempo/domain"
)

const (
	defaultOffersTable   = "tariff_offers"
	defaultPricesTable   = "tariff_offer_prices"
	defaultPeakDaysTable = "tariff_offer_peak_days"
)

// CatalogRepository loads the tariff-offer catalog. Offers are validated on
// the way out so malformed catalog rows never reach the engine.
type CatalogRepository struct {
	db            *sql.DB
	offersTable   string
	pricesTable   string
	peakDaysTable string
}

// CatalogOption configures the repository.
type CatalogOption func(*CatalogRepository)

// WithOffersTable overrides the offers table name.
func WithOffersTable(table string) CatalogOption {
	return func(r *CatalogRepository) {
		if table != "" {
			r.offersTable = table
		}
	}
}

// WithPricesTable overrides the prices table name.
func WithPricesTable(table string) CatalogOption {
	return func(r *CatalogRepository) {
		if table != "" {
			r.pricesTable = table
		}
	}
}

// WithPeakDaysTable overrides the peak-days table name.
func WithPeakDaysTable(table string) CatalogOption {
	return func(r *CatalogRepository) {
		if table != "" {
			r.peakDaysTable = table
		}
	}
}

// NewCatalogRepository constructs a repository.
func NewCatalogRepository(db *sql.DB, opts ...CatalogOption) *CatalogRepository {
	r := &CatalogRepository{
		db:            db,
		offersTable:   defaultOffersTable,
		pricesTable:   defaultPricesTable,
		peakDaysTable: defaultPeakDaysTable,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type offerRow struct {
	id           string
	name         string
	family       string
	powerKVA     int
	subscription float64
}

// ListOffers returns the validated catalog, ordered by offer id.
func (r *CatalogRepository) ListOffers(ctx context.Context) ([]tariff.Offer, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("catalog repository: nil db")
	}

	rows, err := r.loadOfferRows(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := r.loadPrices(ctx)
	if err != nil {
		return nil, err
	}
	peakDays, err := r.loadPeakDays(ctx)
	if err != nil {
		return nil, err
	}

	offers := make([]tariff.Offer, 0, len(rows))
	for _, row := range rows {
		pricing, err := buildPricing(row.family, prices[row.id], peakDays[row.id])
		if err != nil {
			return nil, fmt.Errorf("offer %s: %w", row.id, err)
		}
		offer := tariff.Offer{
			ID:                  row.id,
			Name:                row.name,
			PowerKVA:            row.powerKVA,
			SubscriptionMonthly: row.subscription,
			Pricing:             pricing,
		}
		if err := offer.Validate(); err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	sort.Slice(offers, func(i, j int) bool { return offers[i].ID < offers[j].ID })
	return offers, nil
}

func (r *CatalogRepository) loadOfferRows(ctx context.Context) ([]offerRow, error) {
	query := fmt.Sprintf(`
SELECT id, name, family, power_kva, subscription_monthly
FROM %s`, r.offersTable)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []offerRow
	for rows.Next() {
		var row offerRow
		if err := rows.Scan(&row.id, &row.name, &row.family, &row.powerKVA, &row.subscription); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) loadPrices(ctx context.Context) (map[string]map[tariff.RateLabel]float64, error) {
	query := fmt.Sprintf(`
SELECT offer_id, label, price_per_kwh
FROM %s`, r.pricesTable)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[tariff.RateLabel]float64)
	for rows.Next() {
		var offerID, label string
		var price float64
		if err := rows.Scan(&offerID, &label, &price); err != nil {
			return nil, err
		}
		if out[offerID] == nil {
			out[offerID] = make(map[tariff.RateLabel]float64)
		}
		out[offerID][tariff.RateLabel(label)] = price
	}
	return out, rows.Err()
}

func (r *CatalogRepository) loadPeakDays(ctx context.Context) (map[string]tariff.DateSet, error) {
	query := fmt.Sprintf(`
SELECT offer_id, day
FROM %s`, r.peakDaysTable)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]tariff.DateSet)
	for rows.Next() {
		var offerID, day string
		if err := rows.Scan(&offerID, &day); err != nil {
			return nil, err
		}
		if out[offerID] == nil {
			out[offerID] = tariff.NewDateSet()
		}
		out[offerID][tempo.DayKey(day)] = struct{}{}
	}
	return out, rows.Err()
}

// buildPricing assembles the family's pricing variant from its price rows.
func buildPricing(family string, prices map[tariff.RateLabel]float64, peakDays tariff.DateSet) (tariff.Pricing, error) {
	switch tariff.Family(family) {
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
		return tariff.SeasonalPricing{Prices: prices, PeakDays: peakDays}, nil

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
		return nil, fmt.Errorf("%w: %q", tariff.ErrUnsupportedFamily, family)
	}
}

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
