// Package mgmt is the management surface of one 802.15.4 interface: the
// requests the network stack issues (ACK mode, scans, association) and the
// events it receives back (one per discovered PAN).
//
// Each request is synchronous. Scan results are additionally published as
// events, in discovery order, to the handlers registered with OnEvent.
//
//	m := mgmt.NewManager(driver, mgmt.Config{Logger: slog.Default()})
//	m.OnEvent(func(e mgmt.Event) {
//	    fmt.Println(e.ScanResult)
//	})
//	summary, err := m.ActiveScan(ctx, channel.All, 50*time.Millisecond)
//
// Requests can also be issued by numeric code through Request, mirroring
// the network-management numbering used by embedded stacks.
package mgmt
