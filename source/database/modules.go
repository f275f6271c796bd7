package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"desmosc/source/ast"
	"desmosc/source/compiler"
	"desmosc/source/loader"
)

var _ compiler.Loader = (*SQLLoader)(nil)

// SQLLoader serves modules kept in the 'modules' table, so that a team can share a library of
// definitions without sharing a file system.
type SQLLoader struct {
	DB      *DB
	Sources *loader.Sources
}

func NewSQLLoader(db *DB, sources *loader.Sources) *SQLLoader {
	return &SQLLoader{DB: db, Sources: sources}
}

func (sl *SQLLoader) Load(path string) (ast.Statements, bool) {
	source, err := sl.GetModule(context.Background(), path)
	if err != nil {
		logrus.WithFields(logrus.Fields{"path": path, "error": err}).Warn("can't load module from database")
		return nil, false
	}
	return loader.Parse(sl.Sources, path, source)
}

func (sl *SQLLoader) ParseSource(source string) (ast.Statements, bool) {
	return loader.Parse(sl.Sources, "", source)
}

func (sl *SQLLoader) GetModule(ctx context.Context, path string) (string, error) {
	var source string
	err := sl.DB.queryRow(ctx, "SELECT source FROM modules WHERE path = $1", path).Scan(&source)
	if err == sql.ErrNoRows {
		return "", errors.Errorf("no module with path %q", path)
	}
	return source, errors.Wrapf(err, "reading module %q", path)
}

// PutModule stores a module, replacing any with the same path.
func (sl *SQLLoader) PutModule(ctx context.Context, path, source string) error {
	return sl.DB.replace(ctx, "modules", "path", path, []string{"path", "source"}, path, source)
}

func (sl *SQLLoader) DeleteModule(ctx context.Context, path string) error {
	_, err := sl.DB.exec(ctx, "DELETE FROM modules WHERE path = $1", path)
	return errors.Wrapf(err, "deleting module %q", path)
}

func (sl *SQLLoader) Modules(ctx context.Context) ([]string, error) {
	paths, err := sl.DB.column(ctx, "SELECT path FROM modules ORDER BY path")
	return paths, errors.Wrap(err, "listing modules")
}
