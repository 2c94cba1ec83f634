package api

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The backend leaks MongoDB extended JSON into some payloads: ids can
// arrive as "abc123", {"$oid": "..."} or an entire populated document,
// and timestamps as RFC3339 strings or {"$date": ...}. The tolerant
// types below keep that mess confined to the wire layer.

// ID decodes a document id in any of the shapes the backend emits.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	// Extended JSON: {"$oid": "..."}
	var oid primitive.ObjectID
	if err := bson.UnmarshalExtJSON(data, false, &oid); err == nil {
		*id = ID(oid.Hex())
		return nil
	}

	// Populated reference: the full document in place of its id.
	var ref struct {
		ID ID `json:"_id"`
	}
	if err := json.Unmarshal(data, &ref); err == nil && ref.ID != "" {
		*id = ref.ID
		return nil
	}
	return fmt.Errorf("api: unrecognized id shape: %s", data)
}

// Time decodes an RFC3339 string or extended JSON {"$date": ...}.
type Time time.Time

func (t *Time) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var tt time.Time
		if err := json.Unmarshal(data, &tt); err != nil {
			return err
		}
		*t = Time(tt)
		return nil
	}
	var tt time.Time
	if err := bson.UnmarshalExtJSON(data, false, &tt); err != nil {
		return fmt.Errorf("api: unrecognized time shape: %s", data)
	}
	*t = Time(tt)
	return nil
}

func (t Time) Std() time.Time { return time.Time(t) }
