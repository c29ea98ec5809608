// Package clock provides export identity and timestamps.
//
// Every transfer is stamped with a UID that is unique for the lifetime of
// the process, and with timestamps normalised to a single reference zone.
// Display strings use a fixed strftime layout so that provenance headers in
// definitions files read the same regardless of where the analysis ran.
//
//	clk, err := clock.New(clock.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	uid := clk.NextUID()
//	fmt.Println(uid, clk.Format(clk.Now()))
package clock
