/*
Package pgadapter provides an implementation of the Adapter interface
in the sqlstream package that works over a PostgreSQL database.
*/
package pgadapter

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pbanos/sapling/stream/sqlstream"

	// Import of PostgreSQL driver
	_ "github.com/lib/pq"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a PostgreSQL database connection URL and returns an Adapter
that works on the database or an error if it fails to connect to it.
*/
func New(url string) (sqlstream.Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) SelectStatement(table string, columns []string) (string, error) {
	var stmt bytes.Buffer
	stmt.WriteString("SELECT ")
	for i, c := range columns {
		quoted, err := quote(c)
		if err != nil {
			return "", err
		}
		if i > 0 {
			stmt.WriteString(", ")
		}
		stmt.WriteString(quoted)
	}
	quoted, err := quote(table)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&stmt, " FROM %s", quoted)
	return stmt.String(), nil
}

func quote(name string) (string, error) {
	if strings.ContainsAny(name, `"`) {
		return "", fmt.Errorf(`name '%s' contains invalid character '"'`, name)
	}
	return fmt.Sprintf(`"%s"`, name), nil
}
