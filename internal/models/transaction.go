package models

// Field names the service relies on. Everything else in a record is caller-defined.
const (
	FieldID    = "_id"
	FieldEmail = "email"
	FieldDate  = "date"
)

// Transaction is an opaque finance record as stored in the document collection.
type Transaction map[string]interface{}

// Owner returns the email of the record's owner, or "" when the field is missing.
func (t Transaction) Owner() string {
	email, _ := t[FieldEmail].(string)
	return email
}

// OwnedBy reports whether email owns the record.
func (t Transaction) OwnedBy(email string) bool {
	owner := t.Owner()
	return owner != "" && owner == email
}

// Without returns a shallow copy of t minus the given top-level fields.
func (t Transaction) Without(fields ...string) Transaction {
	out := make(Transaction, len(t))
	for k, v := range t {
		out[k] = v
	}
	for _, f := range fields {
		delete(out, f)
	}
	return out
}
