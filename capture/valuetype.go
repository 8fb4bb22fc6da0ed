package capture

import (
	"strconv"
	"strings"
)

// Kind is the base type of a mandatory field value
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindDecimal Kind = "decimal"
	KindBoolean Kind = "boolean"
	KindDate    Kind = "date"
	KindEnum    Kind = "enum"
	KindUnknown Kind = "unknown"
)

// ValueType describes a field value declaration such as "number,0,100" or
// "enum[red|green],multiple". It is meant for display; values are checked by
// the backend.
type ValueType struct {
	Raw      string
	Kind     Kind
	Pattern  string
	Min      *float64
	Max      *float64
	Options  []string
	Multiple bool
}

// ParseValueType decodes a declaration. Unrecognized declarations give
// KindUnknown and keep Raw.
func ParseValueType(decl string) ValueType {
	vt := ValueType{Raw: decl, Kind: KindUnknown}
	s := strings.TrimSpace(decl)

	if strings.HasPrefix(s, "enum[") {
		end := strings.Index(s, "]")
		if end < 0 {
			return vt
		}
		vt.Kind = KindEnum
		for _, opt := range strings.Split(s[len("enum["):end], "|") {
			if opt = strings.TrimSpace(opt); opt != "" {
				vt.Options = append(vt.Options, opt)
			}
		}
		for _, flag := range strings.Split(s[end+1:], ",") {
			if strings.TrimSpace(flag) == "multiple" {
				vt.Multiple = true
			}
		}
		return vt
	}

	head, rest, _ := strings.Cut(s, ",")
	switch Kind(head) {
	case KindString:
		vt.Kind = KindString
		// the pattern may itself hold commas
		vt.Pattern = rest
	case KindNumber, KindDecimal:
		vt.Kind = Kind(head)
		if rest != "" {
			lo, hi, _ := strings.Cut(rest, ",")
			vt.Min = parseBound(lo)
			vt.Max = parseBound(hi)
		}
	case KindBoolean, KindDate:
		vt.Kind = Kind(head)
	}
	return vt
}

func parseBound(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// String renders the declaration for humans, e.g. "number (0..100)"
func (v ValueType) String() string {
	switch v.Kind {
	case KindUnknown:
		return v.Raw
	case KindString:
		if v.Pattern != "" {
			return "string matching " + v.Pattern
		}
	case KindNumber, KindDecimal:
		if v.Min != nil || v.Max != nil {
			return string(v.Kind) + " (" + formatBound(v.Min) + ".." + formatBound(v.Max) + ")"
		}
	case KindEnum:
		out := "one of " + strings.Join(v.Options, "|")
		if v.Multiple {
			out = "any of " + strings.Join(v.Options, "|")
		}
		return out
	}
	return string(v.Kind)
}

func formatBound(b *float64) string {
	if b == nil {
		return ""
	}
	return strconv.FormatFloat(*b, 'f', -1, 64)
}

// Describe returns the descriptor of every mandatory field of p, keyed by
// field name
func (p Protocol) Describe() map[string]ValueType {
	out := make(map[string]ValueType, len(p.MandatoryFields))
	for _, f := range p.MandatoryFields {
		out[f.Name] = ParseValueType(f.ValueType)
	}
	return out
}
