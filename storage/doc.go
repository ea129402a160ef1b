// Package storage provides implementations of licensekit.Storage.
//
// Memory keeps license bytes in process. File keeps them in one file on an
// afero filesystem, written atomically with owner-only permissions. Dir
// locates the directory license files live in, "~/.licensekit" by default.
//
//	dir, err := storage.DefaultDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := licensekit.NewStore(dir.File(afero.NewOsFs(), "com.example.app"), validator)
package storage
