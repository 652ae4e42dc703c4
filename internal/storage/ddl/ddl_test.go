package ddl

import (
	"testing"
	"time"

	"cleanse/pkg/records"
)

func TestInfer(t *testing.T) {
	ds := records.New([]string{"ts", "rt", "level", "mixed", "empty"})
	ds.Append(
		records.Record{"ts": time.Now(), "rt": 120.5, "level": "Critical", "mixed": "x", "empty": nil},
		records.Record{"ts": nil, "rt": 98.0, "level": "High", "mixed": 3.5, "empty": nil},
	)

	def := Infer("logs", ds)
	want := map[string]Kind{
		"ts":    KindTimestamp,
		"rt":    KindFloat,
		"level": KindText,
		"mixed": KindText,
		"empty": KindText,
	}
	for _, c := range def.Columns {
		if c.Kind != want[c.Name] {
			t.Errorf("%s kind = %v, want %v", c.Name, c.Kind, want[c.Name])
		}
	}
}

func TestCreateTable(t *testing.T) {
	def := TableDef{
		FQN: "public.logs",
		Columns: []ColumnDef{
			{Name: "ts", Kind: KindTimestamp},
			{Name: "rt", Kind: KindFloat},
			{Name: "level", Kind: KindText},
		},
	}
	got, err := CreateTable(def, Postgres)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	want := `CREATE TABLE IF NOT EXISTS "public"."logs" ("ts" timestamptz, "rt" double precision, "level" text)`
	if got != want {
		t.Errorf("sql = %q, want %q", got, want)
	}

	if _, err := CreateTable(TableDef{}, Postgres); err == nil {
		t.Error("expected error for empty def")
	}
	if _, err := CreateTable(TableDef{FQN: "t"}, Postgres); err == nil {
		t.Error("expected error for no columns")
	}
}

func TestCreateTableSQLiteDialect(t *testing.T) {
	def := Infer("logs", func() *records.Dataset {
		ds := records.New([]string{"n"})
		ds.Append(records.Record{"n": int64(1)})
		return ds
	}())
	got, err := CreateTable(def, SQLite)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	want := `CREATE TABLE IF NOT EXISTS "logs" ("n" INTEGER)`
	if got != want {
		t.Errorf("sql = %q", got)
	}
}
