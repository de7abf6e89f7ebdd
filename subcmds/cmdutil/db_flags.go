// Copyright (c) 2025 BVK Chaitanya

package cmdutil

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/bvk/coinmonitor/kvutil"
	"github.com/bvk/coinmonitor/store"
	"github.com/bvk/coinmonitor/store/kvstore"
	"github.com/bvk/coinmonitor/store/mongostore"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvhttp"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
)

// MongoURIEnv is the environment variable that holds the default mongodb
// connection string.
const MongoURIEnv = "COINMONITOR_MONGO_URI"

// DBFlags selects the database for a command. The database is a local
// badger directory, an in-memory copy of a backup file or the remote
// database of a running daemon, in that order of preference.
type DBFlags struct {
	ClientFlags

	dbURLPath string

	dataDir string

	fromBackup string

	mongoURI      string
	mongoDatabase string
}

func (f *DBFlags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&f.dataDir, "data-dir", "", "Path to the database directory")
	fset.StringVar(&f.fromBackup, "from-backup", "", "Path to a database backup file")

	f.ClientFlags.SetFlags(fset)
	fset.StringVar(&f.dbURLPath, "db-url-path", "/db", "path to db api handler")

	fset.StringVar(&f.mongoURI, "mongo-uri", "", "MongoDB connection string for pairs and orders (default from "+MongoURIEnv+")")
	fset.StringVar(&f.mongoDatabase, "mongo-database", "", "MongoDB database name")
}

// IsRemoteDatabase returns true if target database is a remote database over
// http.
func (f *DBFlags) IsRemoteDatabase() bool {
	return f.fromBackup == "" && f.dataDir == ""
}

// MongoURI returns the mongodb connection string from the flag or the
// environment.
func (f *DBFlags) MongoURI() string {
	if len(f.mongoURI) != 0 {
		return f.mongoURI
	}
	return os.Getenv(MongoURIEnv)
}

func (f *DBFlags) GetDatabase(ctx context.Context) (db kv.Database, closer func(), status error) {
	if len(f.fromBackup) != 0 {
		db := kvmemdb.New()
		if err := kvutil.RestoreDB(ctx, db, f.fromBackup); err != nil {
			return nil, nil, fmt.Errorf("could not restore in-memory db from backup: %w", err)
		}
		return db, func() {}, nil
	}

	if len(f.dataDir) != 0 {
		bopts := badger.DefaultOptions(f.dataDir)
		bopts.Logger = nil
		bdb, err := badger.Open(bopts)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open the database: %w", err)
		}
		closer := func() {
			if err := bdb.Close(); err != nil {
				slog.Warn("could not close the database (ignored)", "err", err)
			}
		}
		return kvbadger.New(bdb, IsGoodKey), closer, nil
	}

	addrURL := f.ClientFlags.AddressURL()
	addrURL.Path = path.Join(addrURL.Path, f.dbURLPath)
	return kvhttp.New(addrURL, f.ClientFlags.HttpClient()), func() {}, nil
}

// GetStore returns the pairs and orders store. MongoDB is used when a
// connection string is configured and the kv database otherwise.
func (f *DBFlags) GetStore(ctx context.Context) (_ store.Store, closer func(), status error) {
	if uri := f.MongoURI(); len(uri) != 0 {
		opts := &mongostore.Options{
			URI:      uri,
			Database: f.mongoDatabase,
		}
		st, err := mongostore.New(ctx, opts)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	}

	db, closer, err := f.GetDatabase(ctx)
	if err != nil {
		return nil, nil, err
	}
	return kvstore.New(db), closer, nil
}

// IsGoodKey returns true for the absolute and clean database keys.
func IsGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}
