package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"desmosc/source/graph"
)

// A Published graph is a graph state stored under a name, with the time it was stored.
type Published struct {
	Name    string
	State   *graph.CalcState
	Created time.Time
}

// Publish stores a graph state under a name, replacing whatever was there.
func (db *DB) Publish(ctx context.Context, name string, state *graph.CalcState) error {
	data, err := state.Marshal()
	if err != nil {
		return errors.Wrapf(err, "serializing graph %q", name)
	}
	now := time.Now()
	if err := db.replace(ctx, "graphs", "name", name, []string{"name", "state", "created"}, name, string(data), now.Unix()); err != nil {
		return errors.Wrapf(err, "publishing graph %q", name)
	}
	logrus.WithFields(logrus.Fields{"name": name, "bytes": len(data)}).Info("published graph")
	return nil
}

func (db *DB) Fetch(ctx context.Context, name string) (*Published, error) {
	var (
		data    string
		created int64
	)
	err := db.queryRow(ctx, "SELECT state, created FROM graphs WHERE name = $1", name).Scan(&data, &created)
	if err == sql.ErrNoRows {
		return nil, errors.Errorf("no graph called %q", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "fetching graph %q", name)
	}
	state, err := graph.Unmarshal([]byte(data))
	if err != nil {
		return nil, errors.Wrapf(err, "reading graph %q", name)
	}
	return &Published{Name: name, State: state, Created: time.Unix(created, 0)}, nil
}

func (db *DB) Graphs(ctx context.Context) ([]string, error) {
	names, err := db.column(ctx, "SELECT name FROM graphs ORDER BY name")
	return names, errors.Wrap(err, "listing graphs")
}

func (db *DB) Unpublish(ctx context.Context, name string) error {
	_, err := db.exec(ctx, "DELETE FROM graphs WHERE name = $1", name)
	return errors.Wrapf(err, "deleting graph %q", name)
}
