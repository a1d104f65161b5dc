package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SeatLayout is the per-class cabin configuration stored as JSONB
type SeatLayout []SeatClassConfig

// FareTable maps a service class to its fare in cents, stored as JSONB
type FareTable map[string]int64

// Preferences holds free-form seat/class hints, stored as JSONB
type Preferences map[string]string

// BaggageList is the checked baggage of a ticket, stored as JSONB
type BaggageList []Baggage

func (l SeatLayout) Value() (driver.Value, error)  { return marshalJSONB(l, "[]") }
func (l *SeatLayout) Scan(src interface{}) error   { return unmarshalJSONB(src, l) }
func (f FareTable) Value() (driver.Value, error)   { return marshalJSONB(f, "{}") }
func (f *FareTable) Scan(src interface{}) error    { return unmarshalJSONB(src, f) }
func (p Preferences) Value() (driver.Value, error) { return marshalJSONB(p, "{}") }
func (p *Preferences) Scan(src interface{}) error  { return unmarshalJSONB(src, p) }
func (b BaggageList) Value() (driver.Value, error) { return marshalJSONB(b, "[]") }
func (b *BaggageList) Scan(src interface{}) error  { return unmarshalJSONB(src, b) }

func marshalJSONB(v interface{}, empty string) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return []byte(empty), nil
	}
	return data, nil
}

func unmarshalJSONB(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", src)
	}
}
