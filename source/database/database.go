package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"desmosc/source/settings"

	// SQL drivers

	_ "github.com/go-sql-driver/mysql"  // MariaDB & MySQL
	_ "github.com/lib/pq"               // Postgres
	_ "github.com/microsoft/go-mssqldb" // SQL Server
	_ "github.com/nakagami/firebirdsql" // Firebird
	_ "github.com/sijms/go-ora"         // Oracle
	_ "modernc.org/sqlite"              // SQLite
)

var (
	drivers = map[string]string{"Firebird SQL": "firebirdsql", "MariaDB": "mysql", "MySQL": "mysql",
		"Oracle": "oracle", "Postgres": "postgres", "SQL Server": "sqlserver", "SQLite": "sqlite"}
)

// DB is a connection together with the name of the driver behind it, which decides how
// queries spell their parameters.
type DB struct {
	*sql.DB
	Driver string
}

// DriverName accepts either the human-readable name of a database or the name of its driver.
func DriverName(driver string) (string, bool) {
	if name, ok := drivers[driver]; ok {
		return name, true
	}
	for _, name := range drivers {
		if strings.EqualFold(name, driver) {
			return name, true
		}
	}
	return "", false
}

// ConnectionString says how to reach the database in the form its driver wants. For SQLite the
// name is the path of the database file.
func ConnectionString(driver string, cfg settings.Database) string {
	user := url.UserPassword(cfg.User, cfg.Password)
	switch driver {
	case "sqlite":
		return cfg.Name
	case "postgres":
		return fmt.Sprintf("host=%v port=%v dbname=%v user=%v password=%v sslmode=disable",
			cfg.Host, cfg.Port, cfg.Name, cfg.User, cfg.Password)
	case "mysql":
		return fmt.Sprintf("%v:%v@tcp(%v:%v)/%v", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	case "sqlserver":
		u := url.URL{Scheme: "sqlserver", User: user, Host: cfg.Host + ":" + cfg.Port}
		u.RawQuery = url.Values{"database": {cfg.Name}}.Encode()
		return u.String()
	case "firebirdsql":
		return fmt.Sprintf("%v:%v@%v:%v/%v", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	case "oracle":
		u := url.URL{Scheme: "oracle", User: user, Host: cfg.Host + ":" + cfg.Port, Path: "/" + cfg.Name}
		return u.String()
	}
	return ""
}

// GetdB opens the configured database and checks that it answers.
func GetdB(ctx context.Context, cfg settings.Database) (*DB, error) {
	driver, ok := DriverName(cfg.Driver)
	if !ok {
		return nil, errors.Errorf("unknown database driver %q", cfg.Driver)
	}
	sqlObj, err := sql.Open(driver, ConnectionString(driver, cfg))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s database", driver)
	}
	if err := sqlObj.PingContext(ctx); err != nil {
		sqlObj.Close()
		return nil, errors.Wrapf(err, "connecting to %s database", driver)
	}
	logrus.WithFields(logrus.Fields{"driver": driver, "host": cfg.Host, "name": cfg.Name}).Debug("connected to database")
	return &DB{DB: sqlObj, Driver: driver}, nil
}

func GetDriverOptions() string {
	result := "The following SQL drivers are available: \n\n"
	for k, v := range GetSortedDrivers() {
		result = result + fmt.Sprintf("  [%v] %v\n", k, v)
	}
	return result
}

func GetSortedDrivers() []string {
	dr := []string{}
	for k := range drivers {
		dr = append(dr, k)
	}
	sort.Strings(dr)
	return dr
}

// Queries in this package are written with Postgres-style parameters, $1, $2 ... ; rebind
// respells them for drivers that want something else.
func (db *DB) rebind(query string) string {
	var prefix string
	switch db.Driver {
	case "mysql", "firebirdsql":
		prefix = "?"
	case "sqlserver":
		prefix = "@p"
	case "oracle":
		prefix = ":"
	default:
		return query
	}
	var out strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] != '$' {
			out.WriteByte(query[i])
			continue
		}
		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		if j == i+1 {
			out.WriteByte('$')
			continue
		}
		out.WriteString(prefix)
		if prefix != "?" {
			out.WriteString(query[i+1 : j])
		}
		i = j - 1
	}
	return out.String()
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.QueryContext(ctx, db.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.QueryRowContext(ctx, db.rebind(query), args...)
}

// Migrate creates the tables the loader and the graph store need, if they aren't there already.
func (db *DB) Migrate(ctx context.Context) error {
	for _, query := range []string{
		`CREATE TABLE IF NOT EXISTS modules (
    path varchar(255),
    source text,
PRIMARY KEY (path))`,
		`CREATE TABLE IF NOT EXISTS graphs (
    name varchar(255),
    state text,
    created bigint,
PRIMARY KEY (name))`,
	} {
		if _, err := db.exec(ctx, query); err != nil {
			return errors.Wrap(err, "creating tables")
		}
	}
	return nil
}

// Upserts aren't spelt the same way by any two databases, so we delete and insert in one
// transaction instead.
func (db *DB) replace(ctx context.Context, table, key string, keyValue any, columns []string, values ...any) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	if _, err := tx.ExecContext(ctx, db.rebind("DELETE FROM "+table+" WHERE "+key+" = $1"), keyValue); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "deleting from %s", table)
	}
	params := make([]string, len(columns))
	for i := range columns {
		params[i] = "$" + strconv.Itoa(i+1)
	}
	query := "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(params, ", ") + ")"
	if _, err := tx.ExecContext(ctx, db.rebind(query), values...); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "inserting into %s", table)
	}
	return errors.Wrap(tx.Commit(), "committing")
}

// column runs a query returning a single column of strings.
func (db *DB) column(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
