package cmd

import (
	"github.com/nagelea/keysentry/pkg/interact"
	"github.com/nagelea/keysentry/pkg/store"
)

// openStore migrates and opens the credential store under the output dir.
// Callers close the returned DB.
func openStore() (*store.Store, *store.DB) {
	db, err := store.NewDB(dbPath())
	exitOnErr(err, "unable to open database")

	newInteract().SpinWhile("preparing database", func() {
		err = store.RunMigrations(db.Writer)
	})
	exitOnErr(err, "unable to run migrations")

	return store.New(db, log.AddPrefixPath("store")), db
}

func newInteract() *interact.Interact {
	return interact.New(cfg.Interactive, logWriter)
}
