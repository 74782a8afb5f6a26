package export

import (
	"fmt"

	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet    = "Orders"
	orderDateLayout = "2006-01-02 15:04:05"
)

// OrderHeaders is the fixed column order of the order sheet.
var OrderHeaders = []string{
	"Order ID",
	"Customer Name",
	"Customer Phone",
	"Customer Email",
	"Delivery Address",
	"Products Ordered",
	"Amount",
	"Order Date",
	"Status",
	"Payment Method",
	"Razorpay Order ID",
	"Razorpay Payment ID",
	"User",
}

// OrderExporter renders orders into a downloadable document.
type OrderExporter interface {
	Export(orders []model.Order) ([]byte, error)
}

// ExcelOrderExporter writes one xlsx sheet with a bold header row.
type ExcelOrderExporter struct {
	sheet string
}

func NewExcelOrderExporter() *ExcelOrderExporter {
	return &ExcelOrderExporter{sheet: defaultSheet}
}

// SheetName is the name of the sheet Export writes to.
func (e *ExcelOrderExporter) SheetName() string {
	return e.sheet
}

func (e *ExcelOrderExporter) Export(orders []model.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), e.sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(OrderHeaders))
	for i, h := range OrderHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(e.sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(OrderHeaders))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(e.sheet, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := orderRow(&orders[i])
		if err := f.SetSheetRow(e.sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write order %d: %w", orders[i].ID, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func orderRow(o *model.Order) []interface{} {
	return []interface{}{
		o.ID,
		o.CustomerName,
		o.CustomerPhone,
		o.CustomerEmail,
		o.DeliveryAddress,
		o.ProductsOrdered,
		o.Amount.InexactFloat64(),
		o.OrderDate.Format(orderDateLayout),
		string(o.Status),
		o.PaymentMethod,
		o.GatewayOrderID,
		o.GatewayPaymentID,
		o.CustomerLabel(),
	}
}
