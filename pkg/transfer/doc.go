// Package transfer moves exports into a publication.
//
// An Engine performs every piece of I/O involved in publishing one export:
// it writes the side files (CSV, text, image), renders the fragment with
// the publication's formatter, replaces or appends it in the source's
// definitions file, appends one line to the audit log and makes sure the
// master include file lists the source.
//
// The name check happens before anything is written, so a rejected
// transfer leaves the datastore untouched. Steps after the check are not
// transactional: a failure part way through can leave side files without a
// fragment, which prune removes later.
//
// # Usage
//
//	engine, err := transfer.New(transfer.WithLedger(store))
//	if err != nil {
//		return err
//	}
//	x, _ := export.NewValue("TotalSales", 5876.84)
//	if err := engine.Transfer(ctx, x, pub); err != nil {
//		return err
//	}
package transfer
