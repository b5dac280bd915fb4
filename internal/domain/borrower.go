// Package domain contains core domain types for the collectcall application.
package domain

// BorrowerRecord is one row of the borrower directory, keyed by phone number.
// Fields carries the disposition attributes that are added lazily the first
// time a call writes them (responded, took_loan, reason, ...).
type BorrowerRecord struct {
	PhoneNumber   string            `json:"phone_number"`
	Name          string            `json:"name"`
	LoanAmount    string            `json:"loan_amount"`
	PendingAmount string            `json:"pending_amount"`
	LastDueDate   string            `json:"last_due_date"`
	Fields        map[string]string `json:"fields,omitempty"`
}

// Field returns a disposition field value, or "" if it was never written.
func (b *BorrowerRecord) Field(name string) string {
	if b.Fields == nil {
		return ""
	}
	return b.Fields[name]
}

// Clone returns a deep copy. Sessions snapshot the record at call start so a
// later merge-update cannot mutate an in-flight dialogue.
func (b *BorrowerRecord) Clone() *BorrowerRecord {
	if b == nil {
		return nil
	}
	c := *b
	if b.Fields != nil {
		c.Fields = make(map[string]string, len(b.Fields))
		for k, v := range b.Fields {
			c.Fields[k] = v
		}
	}
	return &c
}
