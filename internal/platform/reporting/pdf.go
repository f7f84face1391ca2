// Package reporting generates the PDF exports handed to lab managers: visit
// activity over a period and per-campaign coverage.
package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// VisitRow is one visit line in a visit activity report.
type VisitRow struct {
	Date         time.Time
	PharmacyName string
	City         string
	Objective    string
	AgentName    string
	Products     []string
}

// VisitReportData is the input for a visit activity report.
type VisitReportData struct {
	From                 time.Time
	To                   time.Time
	AvgQuality           float64
	TotalDurationMinutes int
	Visits               []VisitRow
}

// CampaignPharmacyRow is one pharmacy line in a campaign report.
type CampaignPharmacyRow struct {
	PharmacyName string
	City         string
	Status       string
	LastComment  string
}

// CampaignReportData is the input for a campaign coverage report.
type CampaignReportData struct {
	CampaignName string
	StartDate    time.Time
	EndDate      time.Time
	StatusCounts map[string]int
	Progress     float64
	Pharmacies   []CampaignPharmacyRow
}

const (
	pageMargin  = 15.0
	rowHeight   = 7.0
	headerColor = 230
)

func newDoc(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, fmt.Sprintf("Généré le %s", time.Now().Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
	return pdf
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, labels []string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(headerColor, headerColor, headerColor)
	for i, label := range labels {
		pdf.CellFormat(widths[i], rowHeight, label, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// BuildVisitReport renders a visit activity report covering the given period.
func BuildVisitReport(data VisitReportData) ([]byte, error) {
	pdf := newDoc("Rapport d'activité - Visites")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "", 10)
	period := fmt.Sprintf("Période : %s - %s", data.From.Format("02/01/2006"), data.To.Format("02/01/2006"))
	pdf.CellFormat(0, 6, tr(period), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Visites réalisées : %d", len(data.Visits))), "", 1, "L", false, 0, "")
	if len(data.Visits) > 0 {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Qualité moyenne : %.1f/10", data.AvgQuality)), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Durée cumulée : %d min", data.TotalDurationMinutes)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	widths := []float64{22, 45, 30, 45, 38}
	tableHeader(pdf, widths, []string{"Date", tr("Pharmacie"), "Ville", "Objectif", "Agent"})

	for _, v := range data.Visits {
		pdf.CellFormat(widths[0], rowHeight, v.Date.Format("02/01/2006"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], rowHeight, tr(truncate(v.PharmacyName, 28)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], rowHeight, tr(truncate(v.City, 18)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], rowHeight, tr(truncate(v.Objective, 28)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], rowHeight, tr(truncate(v.AgentName, 24)), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	if len(data.Visits) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, rowHeight, tr("Aucune visite sur la période."), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render visit report: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildCampaignReport renders a coverage report for a single campaign.
func BuildCampaignReport(data CampaignReportData) ([]byte, error) {
	pdf := newDoc("Rapport de campagne")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(data.CampaignName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	period := fmt.Sprintf("Du %s au %s", data.StartDate.Format("02/01/2006"), data.EndDate.Format("02/01/2006"))
	pdf.CellFormat(0, 6, tr(period), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Avancement : %.1f%%", data.Progress)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	statusWidths := []float64{60, 30}
	tableHeader(pdf, statusWidths, []string{"Statut", "Pharmacies"})
	for _, status := range []string{"pending", "scheduled", "done", "problem", "cancelled"} {
		count, ok := data.StatusCounts[status]
		if !ok {
			continue
		}
		pdf.CellFormat(statusWidths[0], rowHeight, statusLabel(status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(statusWidths[1], rowHeight, fmt.Sprintf("%d", count), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	widths := []float64{55, 30, 30, 65}
	tableHeader(pdf, widths, []string{tr("Pharmacie"), "Ville", "Statut", "Commentaire"})
	for _, p := range data.Pharmacies {
		pdf.CellFormat(widths[0], rowHeight, tr(truncate(p.PharmacyName, 34)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], rowHeight, tr(truncate(p.City, 18)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], rowHeight, statusLabel(p.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], rowHeight, tr(truncate(p.LastComment, 42)), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render campaign report: %w", err)
	}
	return buf.Bytes(), nil
}

func statusLabel(status string) string {
	switch status {
	case "pending":
		return "En attente"
	case "scheduled":
		return "Programmee"
	case "done":
		return "Realisee"
	case "problem":
		return "Probleme"
	case "cancelled":
		return "Annulee"
	default:
		return status
	}
}
