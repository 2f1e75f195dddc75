package loader

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rurban/mysqldiff/internal/model"
)

// FromMySQL introspects a running MySQL server via dsn and builds a
// model.Schema from its tables (in CREATE_TIME/name order), views (by
// name) and routines (in CREATED/name order), so repeated runs against an
// unchanged server produce the same declaration order.
func FromMySQL(ctx context.Context, dsn string) (*model.Schema, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening connection: %v", ErrConnection, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: ping: %v", ErrConnection, err)
	}

	schema := model.NewSchema()

	if err := loadTables(ctx, db, schema); err != nil {
		return nil, err
	}
	if err := loadViews(ctx, db, schema); err != nil {
		return nil, err
	}
	if err := loadRoutines(ctx, db, schema); err != nil {
		return nil, err
	}

	return schema, nil
}

func loadTables(ctx context.Context, db *sql.DB, schema *model.Schema) error {
	rows, err := db.QueryContext(ctx, `
		SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY CREATE_TIME, TABLE_NAME`)
	if err != nil {
		return fmt.Errorf("%w: listing tables: %v", ErrConnection, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("%w: scanning table name: %v", ErrConnection, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	for _, name := range names {
		var tableName, createStmt string
		err := db.QueryRowContext(ctx, "SHOW CREATE TABLE `"+name+"`").Scan(&tableName, &createStmt)
		if err != nil {
			return fmt.Errorf("%w: SHOW CREATE TABLE %s: %v", ErrConnection, name, err)
		}
		t, err := parseCreateTable(createStmt+";", false)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
		schema.AddTable(t)
	}
	return nil
}

func loadViews(ctx context.Context, db *sql.DB, schema *model.Schema) error {
	rows, err := db.QueryContext(ctx, `
		SELECT TABLE_NAME FROM INFORMATION_SCHEMA.VIEWS
		WHERE TABLE_SCHEMA = DATABASE()
		ORDER BY TABLE_NAME`)
	if err != nil {
		return fmt.Errorf("%w: listing views: %v", ErrConnection, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("%w: scanning view name: %v", ErrConnection, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	for _, name := range names {
		var viewName, createStmt, charset, collation string
		err := db.QueryRowContext(ctx, "SHOW CREATE VIEW `"+name+"`").
			Scan(&viewName, &createStmt, &charset, &collation)
		if err != nil {
			return fmt.Errorf("%w: SHOW CREATE VIEW %s: %v", ErrConnection, name, err)
		}
		v, err := parseCreateView(createStmt + ";")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
		schema.AddView(v)
	}
	return nil
}

func loadRoutines(ctx context.Context, db *sql.DB, schema *model.Schema) error {
	for _, kind := range []string{"PROCEDURE", "FUNCTION"} {
		rows, err := db.QueryContext(ctx,
			`SELECT ROUTINE_NAME FROM INFORMATION_SCHEMA.ROUTINES
			 WHERE ROUTINE_SCHEMA = DATABASE() AND ROUTINE_TYPE = ?
			 ORDER BY CREATED, ROUTINE_NAME`, kind)
		if err != nil {
			return fmt.Errorf("%w: listing %ss: %v", ErrConnection, kind, err)
		}

		var names []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				rows.Close()
				return fmt.Errorf("%w: scanning routine name: %v", ErrConnection, err)
			}
			names = append(names, name)
		}
		rowsErr := rows.Err()
		rows.Close()
		if rowsErr != nil {
			return fmt.Errorf("%w: %v", ErrConnection, rowsErr)
		}

		for _, name := range names {
			var routineName, sqlMode, createStmt, charset, collConn, collDB string
			err := db.QueryRowContext(ctx, "SHOW CREATE "+kind+" `"+name+"`").
				Scan(&routineName, &sqlMode, &createStmt, &charset, &collConn, &collDB)
			if err != nil {
				return fmt.Errorf("%w: SHOW CREATE %s %s: %v", ErrConnection, kind, name, err)
			}
			r, err := parseCreateRoutine(createStmt)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrParse, err)
			}
			schema.AddRoutine(r)
		}
	}
	return nil
}
