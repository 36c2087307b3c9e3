package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// AssistantRequest is the payload sent to the remote assistant service.
// SessionID carries the correlation id once one has been issued.
type AssistantRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Mode      string `json:"mode"`
}

// AssistantResponse is the assistant's reply. Type "build" marks Data as a
// build payload to be normalized; any other type is plain conversation.
type AssistantResponse struct {
	Content   string        `json:"content"`
	Type      string        `json:"type"`
	Data      *BuildPayload `json:"data,omitempty"`
	SessionID string        `json:"session_id"`
}

// ResponseTypeBuild is the sentinel response type that triggers build
// normalization.
const ResponseTypeBuild = "build"

// BuildPayload is the assistant-supplied build. The backend emits the
// component set in one of two shapes: an ordered array of component
// records, or an object keyed by component type. Components preserves
// both, tagged by shape.
type BuildPayload struct {
	Components      ComponentSet `json:"components"`
	TotalPrice      float64      `json:"total_price"`
	RequestedBudget float64      `json:"requested_budget,omitempty"`
}

// ComponentSet is the tagged union over the two admissible component
// shapes. Exactly one of List or Keyed is populated after a successful
// decode; an unrecognized shape leaves both empty rather than failing.
type ComponentSet struct {
	// List holds Shape A: an ordered sequence of component records.
	List []ComponentRecord
	// Keyed holds Shape B: type-keyed records in the object's own key
	// order, which is the only ordering signal the payload carries.
	Keyed []KeyedComponent
}

// KeyedComponent is one Shape B entry with its object key.
type KeyedComponent struct {
	Key    string
	Record ComponentRecord
}

// ComponentRecord is a single raw component as the assistant sends it,
// before normalization. Every field is optional.
type ComponentRecord struct {
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	Price Price    `json:"price"`
	Specs SpecList `json:"specs"`
	Icon  string   `json:"icon"`
}

// UnmarshalJSON decodes either admissible shape. Shape B key order is
// preserved by walking the object with a token decoder; unmarshalling into
// a map would destroy it.
func (cs *ComponentSet) UnmarshalJSON(data []byte) error {
	cs.List = nil
	cs.Keyed = nil

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '[':
		return json.Unmarshal(trimmed, &cs.List)
	case '{':
		return cs.decodeKeyed(trimmed)
	}
	// Neither shape. The caller degrades to an empty component list.
	return nil
}

func (cs *ComponentSet) decodeKeyed(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening brace
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}
		var rec ComponentRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("component %q: %w", key, err)
		}
		cs.Keyed = append(cs.Keyed, KeyedComponent{Key: key, Record: rec})
	}
	_, err := dec.Token() // closing brace
	return err
}

// MarshalJSON writes a ComponentSet back out in the shape it arrived in.
func (cs ComponentSet) MarshalJSON() ([]byte, error) {
	if cs.Keyed != nil {
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, kc := range cs.Keyed {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(kc.Key)
			if err != nil {
				return nil, err
			}
			v, err := json.Marshal(kc.Record)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	if cs.List == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(cs.List)
}

// Empty reports whether the set carries no components in either shape.
func (cs ComponentSet) Empty() bool {
	return len(cs.List) == 0 && len(cs.Keyed) == 0
}

var nonPriceChars = regexp.MustCompile(`[^0-9.\-]+`)

// Price is a component price as the assistant sends it: a plain number or
// a currency-decorated string such as "$1,299.99". A value that fails to
// parse to a finite number is kept but contributes zero to totals.
type Price struct {
	Amount float64
	Valid  bool
	Raw    string
}

// PriceOf wraps a plain amount.
func PriceOf(amount float64) Price {
	return Price{Amount: amount, Valid: true}
}

// PriceFromString parses a loosely formatted price string.
func PriceFromString(s string) Price {
	p := Price{Raw: s}
	cleaned := nonPriceChars.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		p.Amount = v
		p.Valid = true
	}
	return p
}

func (p *Price) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = Price{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*p = PriceFromString(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		// A malformed price never fails the build; it just counts as zero.
		*p = Price{Raw: string(trimmed)}
		return nil
	}
	*p = PriceOf(v)
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("0"), nil
	}
	return json.Marshal(p.Amount)
}

// SpecList is an ordered list of human-readable spec lines. The assistant
// backend sometimes sends specs as a string array and sometimes as an
// object of label->value; both decode to the list form, object entries in
// key order.
type SpecList []string

func (s *SpecList) UnmarshalJSON(data []byte) error {
	*s = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	switch trimmed[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*s = list
		return nil
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil {
			return err
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := tok.(string)
			if !ok {
				return fmt.Errorf("unexpected spec key %v", tok)
			}
			var val any
			if err := dec.Decode(&val); err != nil {
				return err
			}
			*s = append(*s, fmt.Sprintf("%s: %v", key, val))
		}
		_, err := dec.Token()
		return err
	}
	// A lone scalar becomes a single spec line.
	var one string
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil
	}
	*s = SpecList{one}
	return nil
}

func (s SpecList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}
