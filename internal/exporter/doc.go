// Package exporter writes dashboard data out as CSV and XLSX.
//
// CSVWriter and StreamWriter produce CSV with an optional UTF-8 BOM so Excel
// opens the files with the right encoding. WriteOrdersCSV streams the cleaned
// dataset in the raw column layout, which loads and cleans back to the same
// orders.
//
// WriteWorkbook builds an XLSX workbook with excelize from Sheet values.
// CompanySheets, CourierSheets and RestaurantSheets lay out each view;
// undefined metrics are left as empty cells.
//
// Example usage:
//
//	orders, _, err := svc.Cleaned(ctx)
//	if err != nil {
//	    return err
//	}
//	err = exporter.WriteOrdersCSV(w, orders)
package exporter
