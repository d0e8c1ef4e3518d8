package interfaces

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	application "wattcompare/internal/comparison/application"
	"wattcompare/internal/observability/metrics"
	tariff "wattcompare/internal/tariff/domain"
)

// BuildComparisonPDF renders a ranking report as a PDF document.
func BuildComparisonPDF(report *application.RunReport) (data []byte, err error) {
	start := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.ObserveReportExport("pdf", result, time.Since(start))
	}()

	if report == nil {
		return nil, errors.New("report export: nil report")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Offer comparison")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Run %s - window %s - %d offers ranked, %d records skipped",
		report.RunID, report.Window, len(report.Results), len(report.Skipped)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	widths := []float64{10, 55, 25, 30, 30, 30}
	headers := []string{"#", "Offer", "Total", "Subscription", "Energy", "Savings"}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i, r := range report.Results {
		savings := "-"
		if r.Savings != nil {
			savings = fmt.Sprintf("%.2f", *r.Savings)
		}
		cells := []string{
			fmt.Sprintf("%d", i+1),
			r.OfferName,
			fmt.Sprintf("%.2f", r.TotalCost),
			fmt.Sprintf("%.2f", r.SubscriptionCost),
			fmt.Sprintf("%.2f", r.EnergyCost()),
			savings,
		}
		for j, cell := range cells {
			align := "R"
			if j == 1 {
				align = "L"
			}
			pdf.CellFormat(widths[j], 6, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildComparisonXLSX renders a ranking report as a spreadsheet with one
// summary sheet and one per-bucket breakdown sheet.
func BuildComparisonXLSX(report *application.RunReport) (data []byte, err error) {
	start := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.ObserveReportExport("xlsx", result, time.Since(start))
	}()

	if report == nil {
		return nil, errors.New("report export: nil report")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const summary = "Ranking"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}

	headers := []any{"Rank", "Offer ID", "Offer", "Total", "Subscription", "Energy", "Savings"}
	if err := f.SetSheetRow(summary, "A1", &headers); err != nil {
		return nil, err
	}
	for i, r := range report.Results {
		row := []any{i + 1, r.OfferID, r.OfferName, r.TotalCost, r.SubscriptionCost, r.EnergyCost()}
		if r.Savings != nil {
			row = append(row, *r.Savings)
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, err
		}
	}

	const detail = "Buckets"
	if _, err := f.NewSheet(detail); err != nil {
		return nil, err
	}
	detailHeaders := []any{"Offer ID", "Bucket", "Cost"}
	if err := f.SetSheetRow(detail, "A1", &detailHeaders); err != nil {
		return nil, err
	}
	rowIdx := 2
	for _, r := range report.Results {
		for _, label := range sortedLabels(r.PerBucketCost) {
			row := []any{r.OfferID, string(label), r.PerBucketCost[label]}
			if err := f.SetSheetRow(detail, fmt.Sprintf("A%d", rowIdx), &row); err != nil {
				return nil, err
			}
			rowIdx++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortedLabels(costs map[tariff.RateLabel]float64) []tariff.RateLabel {
	labels := make([]tariff.RateLabel, 0, len(costs))
	for label := range costs {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}
