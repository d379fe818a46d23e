package dbqueue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Parameter is one named, typed input value.
type Parameter struct {
	Name  string
	Type  string // "INTEGER", "STRING", "BOOLEAN", "FLOAT"
	Value any
}

// ParameterList is an ordered set of parameters, keyed by name for
// lookup during canonicalization.
type ParameterList []Parameter

func (p ParameterList) byName(name string) (Parameter, bool) {
	for _, param := range p {
		if param.Name == name {
			return param, true
		}
	}
	return Parameter{}, false
}

var typeBuckets = []string{"INTEGER", "STRING", "BOOLEAN", "FLOAT"}

// ParseTypedParameters parses the typed-bucket JSON shape:
// {"INTEGER": {name: value, ...}, "STRING": {...}, ...}. An unknown
// type bucket fails; {} parses to an empty, non-error parameter list.
func ParseTypedParameters(raw string) (ParameterList, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrParameterNotFound)
	}

	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("%w: typed parameters must be a JSON object", ErrParameterNotFound)
	}

	var out ParameterList
	var unknown []string

	parsed.ForEach(func(bucketKey, bucketValue gjson.Result) bool {
		bucket := strings.ToUpper(bucketKey.String())
		if !isKnownBucket(bucket) {
			unknown = append(unknown, bucketKey.String())
			return true
		}
		bucketValue.ForEach(func(name, value gjson.Result) bool {
			out = append(out, Parameter{
				Name:  name.String(),
				Type:  bucket,
				Value: coerceValue(bucket, value),
			})
			return true
		})
		return true
	})

	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown type bucket(s) %s", ErrParameterNotFound, strings.Join(unknown, ","))
	}

	return out, nil
}

func isKnownBucket(bucket string) bool {
	for _, b := range typeBuckets {
		if b == bucket {
			return true
		}
	}
	return false
}

func coerceValue(bucket string, v gjson.Result) any {
	switch bucket {
	case "INTEGER":
		return v.Int()
	case "FLOAT":
		return v.Float()
	case "BOOLEAN":
		return v.Bool()
	default: // STRING
		return v.String()
	}
}

// PositionalStyle describes how an engine renders positional parameter
// tokens.
type PositionalStyle int

const (
	StylePostgres PositionalStyle = iota // $1, $2, ...
	StyleQuestion                        // ?
)

// StyleForEngine maps an Engine to its positional token style.
func StyleForEngine(e Engine) PositionalStyle {
	if e == EnginePostgres {
		return StylePostgres
	}
	return StyleQuestion
}

// ConvertNamedToPositional rewrites :name placeholders in sql into the
// engine's positional form, preserving occurrence order, and returns the
// ordered parameter list that matches those positions. A :name
// referenced in sql but absent from params fails with
// ErrParameterNotFound and no query is dispatched.
func ConvertNamedToPositional(sql string, params ParameterList, style PositionalStyle) (string, ParameterList, error) {
	var out strings.Builder
	var ordered ParameterList

	runes := []rune(sql)
	n := len(runes)
	position := 0

	for i := 0; i < n; i++ {
		if runes[i] != ':' {
			out.WriteRune(runes[i])
			continue
		}
		// Skip "::" (Postgres type cast) — not a named parameter.
		if i+1 < n && runes[i+1] == ':' {
			out.WriteString("::")
			i++
			continue
		}
		j := i + 1
		for j < n && isIdentifierRune(runes[j]) {
			j++
		}
		if j == i+1 {
			// Lone colon, not a parameter reference.
			out.WriteRune(runes[i])
			continue
		}
		name := string(runes[i+1 : j])
		param, ok := params.byName(name)
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrParameterNotFound, name)
		}
		position++
		switch style {
		case StylePostgres:
			out.WriteString("$" + strconv.Itoa(position))
		default:
			out.WriteString("?")
		}
		ordered = append(ordered, param)
		i = j - 1
	}

	return out.String(), ordered, nil
}

func isIdentifierRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
