package partner

import (
	"context"
	"fmt"
	"time"

	"farsha/internal/apiclient"
	"farsha/internal/models"

	"github.com/xuri/excelize/v2"
)

const defaultSheetName = "رزروها"

var exportHeaders = []string{"شناسه", "مشتری", "تلفن", "خدمت", "متخصص", "تاریخ", "ساعت", "وضعیت", "مبلغ نهایی", "یادداشت"}

// Export is a generated spreadsheet.
type Export struct {
	FileName string
	Data     []byte
}

// ExportBookings writes the filtered list of one tab as xlsx.
func (s *Service) ExportBookings(ctx context.Context, tab, query string, now time.Time) (*Export, error) {
	tab = NormalizeTab(tab)
	list, err := s.fetchBookings(ctx, tab)
	if err != nil {
		return nil, err
	}
	list = FilterBookings(list, query)

	data, err := s.writeWorkbook(list)
	if err != nil {
		s.logger.Error().Err(err).Int("rows", len(list)).Msg("booking export failed")
		return nil, apiclient.Fail(err, msgExportFailed)
	}
	name := fmt.Sprintf("bookings_%s_%s.xlsx", tab, now.Format("2006-01-02_1504"))
	s.logger.Info().Str("file", name).Int("rows", len(list)).Msg("booking export created")
	return &Export{FileName: name, Data: data}, nil
}

func (s *Service) writeWorkbook(list []models.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := s.sheet
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	rtl := true
	_ = f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl})

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, b := range list {
		row := []any{
			b.ID,
			b.CustomerDisplayName(),
			b.CustomerPhoneNumber(),
			b.ServiceName(),
			b.StaffName(),
			b.Date,
			b.Time,
			models.StatusLabel(b.Status),
			float64(b.FinalPrice),
			b.Notes,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "E", 22)
	_ = f.SetColWidth(sheet, "F", "I", 14)
	_ = f.SetColWidth(sheet, "J", "J", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
