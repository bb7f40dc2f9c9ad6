package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Compile-time interface assertions.
// Both JSONB types implement sql.Scanner and driver.Valuer so that pgx can
// bind them directly as query arguments and scan targets.
// Scan is on pointer receivers; Value is on value receivers.
var (
	_ sql.Scanner   = (*Configuration)(nil)
	_ driver.Valuer = Configuration{}
	_ sql.Scanner   = (*DraftRequest)(nil)
	_ driver.Valuer = DraftRequest{}
)

// scanJSONB scans a JSONB database value into a Go pointer. It handles nil
// values and the []byte and string representations different drivers use.
// A NULL column leaves dest untouched.
func scanJSONB(dest any, value any) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, dest)
}

// valueJSONB converts a Go value into JSON bytes for a JSONB column. A nil
// interface becomes SQL NULL.
func valueJSONB(v any) (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Scan implements the sql.Scanner interface for reading JSONB from the database.
func (c *Configuration) Scan(value any) error {
	return scanJSONB(c, value)
}

// Value implements the driver.Valuer interface for writing JSONB to the database.
func (c Configuration) Value() (driver.Value, error) {
	return valueJSONB(c)
}

// ---------------------------------------------------------------------------
// DraftRequest
// ---------------------------------------------------------------------------

// Scan implements the sql.Scanner interface for reading JSONB from the database.
// site_drafts.configuration holds the flattened snapshot; its add_ons and
// monthly_total are also what checkout bills.
func (d *DraftRequest) Scan(value any) error {
	return scanJSONB(d, value)
}

// Value implements the driver.Valuer interface for writing JSONB to the database.
// MonthlyTotal is encoded by decimal as a JSON string, so no precision is
// lost on the way through Postgres.
func (d DraftRequest) Value() (driver.Value, error) {
	return valueJSONB(d)
}
