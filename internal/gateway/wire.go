package gateway

// wire.go encodes and decodes the remote endpoint's JSON.
//
// The deployed endpoint answers with a proxy envelope whose body is itself a
// JSON string:
//
//	{"statusCode":200,"body":"{\"Items\":[{\"id\":{\"S\":\"1\"},\"calories\":{\"N\":\"305\"}}]}"}
//
// Each attribute is wrapped as {"S": text} or {"N": number-as-text}. The
// decoder also accepts an unwrapped payload, a bare array instead of
// {"Items": [...]}, and plain JSON values instead of typed wrappers, so the
// same code reads both the deployed endpoint and a normalised one.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/JonMunkholm/nutrition/internal/schema"
)

// Format selects how rows are encoded.
type Format string

const (
	FormatTagged Format = "tagged" // {"S": ...} / {"N": ...} wrappers in a string-wrapped envelope
	FormatPlain  Format = "plain"  // plain JSON rows
)

// ParseFormat accepts "tagged" or "plain".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatTagged:
		return FormatTagged, nil
	case FormatPlain:
		return FormatPlain, nil
	default:
		return "", fmt.Errorf("unknown wire format: %q", s)
	}
}

// envelope is the proxy response wrapper.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// typedValue is one {"S"} or {"N"} wrapped attribute.
type typedValue struct {
	S *string `json:"S,omitempty"`
	N *string `json:"N,omitempty"`
}

type itemList struct {
	Items []json.RawMessage `json:"Items"`
	Count *int              `json:"Count,omitempty"`
}

// DecodeRows parses a fetch-all response.
func DecodeRows(data []byte) ([]schema.Row, error) {
	payload, err := unwrapEnvelope(data)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	switch firstByte(payload) {
	case '[':
		if err := json.Unmarshal(payload, &raws); err != nil {
			return nil, fmt.Errorf("decode item array: %w", err)
		}
	case '{':
		var list itemList
		if err := json.Unmarshal(payload, &list); err != nil {
			return nil, fmt.Errorf("decode item list: %w", err)
		}
		if list.Items == nil {
			return nil, errors.New("decode item list: missing Items")
		}
		raws = list.Items
	default:
		return nil, fmt.Errorf("unexpected payload starting with %q", firstByte(payload))
	}

	rows := make([]schema.Row, 0, len(raws))
	for i, raw := range raws {
		row, err := DecodeRow(raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DecodeRow parses one item, typed or plain, possibly inside an envelope.
// Numeric attributes may be JSON numbers or numeric strings, which is what a
// browser form submits.
func DecodeRow(data []byte) (schema.Row, error) {
	payload, err := unwrapEnvelope(data)
	if err != nil {
		return schema.Row{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return schema.Row{}, fmt.Errorf("decode item: %w", err)
	}

	var row schema.Row
	id, err := textField(fields, "id")
	if err != nil {
		return schema.Row{}, err
	}
	if strings.TrimSpace(id) == "" {
		return schema.Row{}, errors.New(`attribute "id": empty`)
	}
	row.ID = schema.ID(id)
	if row.Name, err = textField(fields, "name"); err != nil {
		return schema.Row{}, err
	}

	numbers := []struct {
		name string
		dst  *float64
	}{
		{"calories", &row.Calories},
		{"fat", &row.Fat},
		{"carbs", &row.Carbs},
		{"protein", &row.Protein},
	}
	for _, n := range numbers {
		if *n.dst, err = numberField(fields, n.name); err != nil {
			return schema.Row{}, err
		}
	}
	return row, nil
}

// EncodeRows renders a fetch-all response in format f.
func EncodeRows(rows []schema.Row, f Format) ([]byte, error) {
	if f == FormatPlain {
		if rows == nil {
			rows = []schema.Row{}
		}
		return json.Marshal(rows)
	}

	items := make([]map[string]typedValue, len(rows))
	for i, r := range rows {
		items[i] = taggedItem(r)
	}
	count := len(items)
	body, err := json.Marshal(struct {
		Items []map[string]typedValue `json:"Items"`
		Count int                    `json:"Count"`
	}{items, count})
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{StatusCode: 200, Body: string(body)})
}

// EncodeRow renders a single stored row in format f.
func EncodeRow(r schema.Row, f Format) ([]byte, error) {
	if f == FormatPlain {
		return json.Marshal(r)
	}
	body, err := json.Marshal(taggedItem(r))
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{StatusCode: 200, Body: string(body)})
}

func taggedItem(r schema.Row) map[string]typedValue {
	s := func(v string) typedValue { return typedValue{S: &v} }
	n := func(v float64) typedValue {
		str := schema.FormatNumber(v)
		return typedValue{N: &str}
	}
	return map[string]typedValue{
		"id":       s(string(r.ID)),
		"name":     s(r.Name),
		"calories": n(r.Calories),
		"fat":      n(r.Fat),
		"carbs":    n(r.Carbs),
		"protein":  n(r.Protein),
	}
}

// unwrapEnvelope returns the inner payload if data is a proxy envelope,
// otherwise data itself.
func unwrapEnvelope(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty response body")
	}
	if firstByte(data) != '{' {
		return data, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	rawBody, ok := probe["body"]
	if !ok {
		return data, nil
	}
	rawStatus, ok := probe["statusCode"]
	if !ok {
		return data, nil
	}

	var status int
	if err := json.Unmarshal(rawStatus, &status); err != nil {
		return nil, fmt.Errorf("decode envelope status: %w", err)
	}
	if firstByte(rawBody) != '"' {
		// Body already embedded as JSON rather than string-wrapped.
		if status >= 400 {
			return nil, fmt.Errorf("envelope status %d: %s", status, rawBody)
		}
		return bytes.TrimSpace(rawBody), nil
	}

	var body string
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return nil, fmt.Errorf("decode envelope body: %w", err)
	}
	if status >= 400 {
		return nil, fmt.Errorf("envelope status %d: %s", status, body)
	}
	inner := bytes.TrimSpace([]byte(body))
	if len(inner) == 0 {
		return nil, errors.New("empty envelope body")
	}
	return inner, nil
}

func textField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("missing attribute %q", name)
	}
	switch firstByte(raw) {
	case 'n':
		return "", fmt.Errorf("attribute %q: null", name)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("attribute %q: %w", name, err)
		}
		return s, nil
	case '{':
		var a typedValue
		if err := json.Unmarshal(raw, &a); err != nil {
			return "", fmt.Errorf("attribute %q: %w", name, err)
		}
		switch {
		case a.S != nil:
			return *a.S, nil
		case a.N != nil:
			return *a.N, nil
		}
		return "", fmt.Errorf("attribute %q: no S or N value", name)
	default:
		// Numeric identifiers are common in older data.
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", fmt.Errorf("attribute %q: expected text", name)
		}
		return n.String(), nil
	}
}

func numberField(fields map[string]json.RawMessage, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("missing attribute %q", name)
	}

	var text string
	switch firstByte(raw) {
	case 'n':
		return 0, fmt.Errorf("attribute %q: null", name)
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("attribute %q: %w", name, err)
		}
	case '{':
		var a typedValue
		if err := json.Unmarshal(raw, &a); err != nil {
			return 0, fmt.Errorf("attribute %q: %w", name, err)
		}
		switch {
		case a.N != nil:
			text = *a.N
		case a.S != nil:
			text = *a.S
		default:
			return 0, fmt.Errorf("attribute %q: no N or S value", name)
		}
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, fmt.Errorf("attribute %q: invalid number", name)
		}
		return f, nil
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("attribute %q: invalid number %q", name, text)
	}
	return f, nil
}

func firstByte(b []byte) byte {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
