package orders

import (
	"fmt"
	"io"
	"time"

	"github.com/tealeg/xlsx"
)

// ExportSheet is the sheet name ExportXLSX writes.
const ExportSheet = "Orders"

var exportHeaders = []string{
	"ID", "CreatedAt", "Status", "Items", "Quantity", "DeliveryMethod",
	"DeliveryPrice", "DeliveryDate", "PaymentMethod", "TotalPrice",
	"FullName", "Phone", "City", "Address", "PostalCode",
}

// ExportXLSX writes one header row and one row per order to w as an xlsx
// workbook.
func ExportXLSX(w io.Writer, orders []Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(ExportSheet)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, o := range orders {
		quantity := 0
		for _, l := range o.Items {
			quantity += l.Quantity
		}

		row := sheet.AddRow()
		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.CreatedAt.Format(time.RFC3339))
		row.AddCell().SetValue(string(o.Status))
		row.AddCell().SetValue(len(o.Items))
		row.AddCell().SetValue(quantity)
		row.AddCell().SetValue(o.DeliveryMethod)
		row.AddCell().SetValue(o.DeliveryPrice)
		row.AddCell().SetValue(o.DeliveryDate)
		row.AddCell().SetValue(o.PaymentMethod)
		row.AddCell().SetValue(o.TotalPrice)
		row.AddCell().SetValue(o.ShippingAddress.FullName)
		row.AddCell().SetValue(o.ShippingAddress.Phone)
		row.AddCell().SetValue(o.ShippingAddress.City)
		row.AddCell().SetValue(o.ShippingAddress.Address)
		row.AddCell().SetValue(o.ShippingAddress.PostalCode)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
