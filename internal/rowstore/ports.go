package rowstore

import "context"

// Table names match the sheet tabs of the backing spreadsheet.
const (
	TableUsers     = "사용자"
	TableMasters   = "사용내역"
	TableDetails   = "사용상세"
	TableMenus     = "메뉴"
	TableNotices   = "공지사항"
	TableCompanies = "회사"
)

// Store is the row-store port: a flat list of string-cell rows per table,
// addressed by zero-based data-row index (the header row is not counted).
// Clear blanks a row in place rather than compacting, so readers must skip
// empty rows.
type Store interface {
	// Get returns every data row of a table. An empty table yields an empty
	// slice, never an error.
	Get(ctx context.Context, table string) ([][]string, error)

	// Append adds rows after the last occupied row.
	Append(ctx context.Context, table string, rows [][]string) error

	// Update overwrites one row.
	Update(ctx context.Context, table string, rowIndex int, row []string) error

	// Clear blanks one row, leaving a tombstone in place.
	Clear(ctx context.Context, table string, rowIndex int) error
}
