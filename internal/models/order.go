package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Order statuses that count as a fulfilled sale
const (
	OrderStatusPaid      = "Paid"
	OrderStatusServed    = "Served"
	OrderStatusDelivered = "Delivered"
)

// CompletedOrderStatuses lists the statuses the analytics read
var CompletedOrderStatuses = []string{OrderStatusPaid, OrderStatusServed, OrderStatusDelivered}

// IsCompleted reports whether an order status is a terminal fulfilled state
func IsCompleted(status string) bool {
	switch status {
	case OrderStatusPaid, OrderStatusServed, OrderStatusDelivered:
		return true
	}
	return false
}

// OrderRecord is a read-only snapshot of an order document
type OrderRecord struct {
	Status string    `db:"status" json:"status"`
	Date   OrderDate `db:"date" json:"date"`
	Items  LineItems `db:"items" json:"items"`
}

// LineItem is a normalized order line
type LineItem struct {
	ItemID   string
	Quantity float64
}

// Lines returns the normalized line items of the order, dropping entries without an item id
func (o OrderRecord) Lines() []LineItem {
	lines := make([]LineItem, 0, len(o.Items))
	for _, raw := range o.Items {
		if line, ok := raw.Normalize(); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// RawLineItem mirrors an item entry inside an order document. Upstream writers
// disagree on the id field, so all known spellings are kept.
type RawLineItem struct {
	ID          DocID    `json:"_id"`
	FoodID      DocID    `json:"foodId"`
	FoodIDSnake DocID    `json:"food_id"`
	Quantity    *float64 `json:"quantity,omitempty"`
}

// ItemID resolves the item identifier with precedence _id, foodId, food_id.
func (r RawLineItem) ItemID() string {
	for _, id := range []DocID{r.ID, r.FoodID, r.FoodIDSnake} {
		if id != "" {
			return string(id)
		}
	}
	return ""
}

// Normalize converts the raw entry into a LineItem. Quantity defaults to 1 when
// absent and is clamped at zero.
func (r RawLineItem) Normalize() (LineItem, bool) {
	id := r.ItemID()
	if id == "" {
		return LineItem{}, false
	}

	qty := 1.0
	if r.Quantity != nil {
		qty = *r.Quantity
		if qty < 0 {
			qty = 0
		}
	}

	return LineItem{ItemID: id, Quantity: qty}, true
}

// LineItems is the jsonb items column of an order
type LineItems []RawLineItem

// Scan implements sql.Scanner
func (l *LineItems) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// DocID is a document identifier that may be encoded as a string, a number or
// an extended-JSON object ({"$oid": "..."}).
type DocID string

// UnmarshalJSON implements json.Unmarshaler
func (d *DocID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = DocID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*d = DocID(n.String())
		return nil
	}

	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(b, &oid); err != nil {
		return fmt.Errorf("unsupported document id %s: %w", string(b), err)
	}
	*d = DocID(oid.OID)
	return nil
}

// OrderDate holds an order timestamp. Documents written by older clients may
// carry a plain string instead, which is kept in Raw.
type OrderDate struct {
	Time time.Time
	Raw  string
}

// Scan implements sql.Scanner
func (d *OrderDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = OrderDate{}
	case time.Time:
		*d = OrderDate{Time: v}
	case []byte:
		d.setString(string(v))
	case string:
		d.setString(v)
	default:
		return fmt.Errorf("unsupported order date type %T", src)
	}
	return nil
}

func (d *OrderDate) setString(s string) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*d = OrderDate{Time: t}
		return
	}
	*d = OrderDate{Raw: s}
}

// DateKey returns the YYYY-MM-DD day of the order in loc. Unstructured dates
// fall back to the first ten characters of the raw value.
func (d OrderDate) DateKey(loc *time.Location) string {
	if !d.Time.IsZero() {
		return d.Time.In(loc).Format(DateKeyLayout)
	}
	if len(d.Raw) > 10 {
		return d.Raw[:10]
	}
	return d.Raw
}

// MarshalJSON implements json.Marshaler
func (d OrderDate) MarshalJSON() ([]byte, error) {
	if !d.Time.IsZero() {
		return json.Marshal(d.Time)
	}
	return json.Marshal(d.Raw)
}

// DateKeyLayout is the layout of daily sales keys
const DateKeyLayout = "2006-01-02"

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
}
