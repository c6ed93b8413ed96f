// Package log provides the discovery event journal.
//
// The journal records every event the catalog accepted, tagged with the
// scan session that was active when it was applied. It is separate from
// operational logging (slog): the journal is a machine-readable trace for
// replaying discovery races, such as a superseded scan's events arriving
// after a rescan.
//
// A session takes any Logger through catalog.SessionConfig.Journal:
//
//	file, err := log.NewFileLogger("/var/log/zeroconf/browse.zlog")
//	if err != nil {
//	    return err
//	}
//	journal := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), file)
//	defer journal.Close()
//
//	config := catalog.DefaultSessionConfig()
//	config.Journal = journal
//
// Journal files (.zlog) are a plain concatenation of CBOR records with
// integer map keys. Reader streams them back, optionally through a Filter;
// the zeroconf-log command views, filters, exports and summarizes them.
package log
