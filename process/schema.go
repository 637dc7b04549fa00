package main

import (
	"database/sql"
	"fmt"
	"io"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// expectedFKs are the relations AutoMigrate should have created.
var expectedFKs = [][2]string{
	{"users", "roles"},
	{"uploads", "users"},
	{"receipts", "uploads"},
	{"receipt_items", "receipts"},
}

// checkSchema prints the foreign keys between the receipt tables and
// reports any expected relation that is missing.
func checkSchema(dsn string, out io.Writer) error {
	if dsn == "" {
		return fmt.Errorf("dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT
		  con.conname AS constraint_name,
		  rel.relname AS table_name,
		  array_to_string(array_agg(att.attname ORDER BY u.ord), ',') AS src_columns,
		  confrel.relname AS referenced_table,
		  pg_get_constraintdef(con.oid) AS definition
		FROM pg_constraint con
		JOIN pg_class rel ON rel.oid = con.conrelid
		JOIN pg_class confrel ON confrel.oid = con.confrelid
		JOIN unnest(con.conkey) WITH ORDINALITY AS u(attnum, ord) ON true
		JOIN pg_attribute att ON att.attrelid = con.conrelid AND att.attnum = u.attnum
		WHERE con.contype = 'f'
		  AND rel.relname IN ('users', 'uploads', 'receipts', 'receipt_items')
		GROUP BY con.oid, con.conname, rel.relname, confrel.relname
		ORDER BY rel.relname, constraint_name;
	`)
	if err != nil {
		return fmt.Errorf("query constraints: %w", err)
	}
	defer rows.Close()

	found := map[[2]string]bool{}
	fmt.Fprintln(out, "Foreign keys:")
	for rows.Next() {
		var cname, table, reftable, def string
		var srcCols sql.NullString
		if err := rows.Scan(&cname, &table, &srcCols, &reftable, &def); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		found[[2]string{table, reftable}] = true
		fmt.Fprintf(out, "- %s: %s(%s) -> %s\n    def: %s\n", cname, table, srcCols.String, reftable, def)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows err: %w", err)
	}
	for _, missing := range missingFKs(found) {
		fmt.Fprintf(out, "MISSING %s -> %s (run `strukscan migrate`)\n", missing[0], missing[1])
	}
	return nil
}

func missingFKs(found map[[2]string]bool) [][2]string {
	var out [][2]string
	for _, fk := range expectedFKs {
		if !found[fk] {
			out = append(out, fk)
		}
	}
	return out
}
