package pdf

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"chrona/internal/models"
)

// ReportGenerator renders aggregate reports. With an empty FontPath the core
// Helvetica font is used, which covers Latin-1 task names only.
type ReportGenerator struct {
	FontPath string
	fontName string
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	g := &ReportGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		g.fontName = "DejaVu"
	}
	return g
}

// FormatMinutes renders minutes as "1h 30m".
func FormatMinutes(minutes float64) string {
	total := int(minutes + 0.5)
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}

func (g *ReportGenerator) WriteWeekly(w io.Writer, stats *models.WeeklyStats, owner string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Weekly report %s - %s", stats.WeekStart, stats.WeekEnd), false)
	pdf.SetAuthor("Chrona", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	if g.FontPath != "" {
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	}
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "Weekly time report", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("%s - %s", stats.WeekStart, stats.WeekEnd), "", 1, "C", false, 0, "")
	if owner != "" {
		pdf.CellFormat(0, 7, owner, "", 1, "C", false, 0, "")
	}
	g.hr(pdf)

	g.sectionTitle(pdf, "By day")
	for _, d := range stats.DailyBreakdown {
		g.row(pdf, d.Date, FormatMinutes(d.Duration))
	}
	pdf.Ln(4)

	g.sectionTitle(pdf, "By task")
	if len(stats.TaskBreakdown) == 0 {
		pdf.CellFormat(0, 7, "No time tracked this week.", "", 1, "L", false, 0, "")
	}
	for _, t := range stats.TaskBreakdown {
		g.row(pdf, t.TaskName, FormatMinutes(t.Duration))
	}
	g.hr(pdf)

	pdf.SetFont(g.fontName, "B", 12)
	g.row(pdf, "Total", FormatMinutes(stats.TotalDuration))

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render weekly report: %w", err)
	}
	return pdf.Output(w)
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.CellFormat(120, 7, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, value, "", 1, "R", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	x, y := pdf.GetXY()
	w, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	pdf.Line(left, y+2, w-right, y+2)
	pdf.SetXY(x, y+5)
}
