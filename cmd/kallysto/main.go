// kallysto moves analysis results into LaTeX and Markdown documents.
//
// Each export (a value, a table or a figure) is written to a per-publication
// datastore, rendered as a named fragment in the source's definitions file,
// recorded in an append-only audit log and made reachable from the
// publication's master include file.
//
// Usage:
//
//	# Create the datastore and an empty include file
//	kallysto init --title Report --source sales
//
//	# Export results
//	kallysto export value TotalSales 5876.84 --title Report --source sales
//	kallysto export table SalesByRep --csv sales.csv --caption "Units by rep"
//	kallysto export figure SalesChart --image chart.pdf --data monthly.csv
//
//	# Expand {Name} references in a markdown document
//	kallysto md expand md/report.kmd --title Report --format markdown
//
//	# Inspect the audit log
//	kallysto log query --title Report --name TotalSales --output json
package main

func main() {
	Execute()
}
