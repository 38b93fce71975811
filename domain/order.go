package domain

const (
	FieldInsertedAt = "inserted_at"
	FieldCreatedAt  = "created_at"
)

// Order describes a select-all query: the field to sort on, the direction and
// an optional cap. A Limit of zero means no cap.
type Order struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// Item is implemented by records kept in a remote collection.
type Item interface {
	Key() string
}
