// Package export defines the three kinds of export: Value, Table and Figure.
//
// An Export is a self-contained, publication-independent description of one
// artifact. Constructing an Export performs no I/O: the factories validate
// the name, snapshot the payload (textual value, CSV of a table, encoded
// image bytes) and stamp the creation time. Once built an Export never
// changes; transferring it to a publication only touches the publication's
// datastore.
//
// # Values
//
//	total, err := export.NewValue("TotalSales", 5876.84)
//
// # Tables
//
//	frame := export.NewFrame("Rep", "Units", "Revenue")
//	frame.AddRow("Jones", 12, 1340.5)
//	frame.AddRow("Kivell", 7, 620.0)
//	table, err := export.NewTable("SalesByRepTable", frame, "Sales by rep")
//
// # Figures
//
//	fig, err := export.NewFigure("SalesByRepFig", export.Raster{Image: img},
//	    frame, "Sales by rep", "png")
//
// Names must start with a letter and contain only letters and digits.
// Invalid names, data and images are reported at construction time with
// InvalidNameError, InvalidDataError and InvalidImageError.
package export
