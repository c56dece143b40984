// Package mapsync mirrors the maps published on a FastDL server into a
// local game maps directory.
//
// A sync run fetches the server's directory listing, finds every
// "<name>.bsp.bz2" archive whose "<name>.bsp" is not already present
// (case-insensitively), then downloads and extracts the missing maps one
// at a time. A map that fails to download or extract is reported and
// skipped; it never aborts the run.
//
// # Basic Usage
//
//	s, err := mapsync.New(mapsync.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sum, err := s.Sync(ctx, "https://fastdl.example.com/maps/", "/path/to/cstrike/maps")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d of %d maps downloaded\n", sum.Processed, sum.Total)
//
// # Background Runs
//
// [Syncer.Start] returns at once. [Syncer.Stop] discards the queue; the map
// in flight still completes, after which the run ends with a [Summary]
// whose Stopped field is set. [Syncer.Wait] blocks for that summary.
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler] for no-op
// defaults) and pass it via [WithEventHandler]. [LogEvent] carries the
// human-readable progress log, [ProgressEvent] the attempted count out of
// a fixed total, and [ItemEvent] each map's outcome. Combine handlers with
// [Handlers].
//
// # Lifecycle States
//
// A Syncer is in one of four states: [StateIdle], [StateScanning],
// [StateDownloading] or [StateStopping]. Use [Syncer.Status] to query it.
package mapsync
