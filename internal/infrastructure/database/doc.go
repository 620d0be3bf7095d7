// Package database provides SQLite connectivity for the ICS-2000 core daemon.
//
// The database holds the last-known state of each device so a restart does
// not forget what the cloud last reported. The schema is a single table and
// is bootstrapped in-process on open; there is no migration machinery.
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{Path: "./data/ics2000.db", WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
// # Concurrency
//
// SQLite is configured with a single writer connection. WAL mode allows
// concurrent reads during writes and is recommended for all deployments.
package database
