package types

// Table is a projected result set: a fixed column header plus one row per
// record.  Row cells are pre-formatted strings; RecordID carries the row's
// originating record identifier so the caller can feed it back into a
// transition.
type Table struct {
	Header []string `json:"header"`
	Rows   []Row    `json:"records"`
}

type Row struct {
	RecordID int64    `json:"id"`
	Cells    []string `json:"data"`
}
