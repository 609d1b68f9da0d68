package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AccountSelector identifies an account either by its human-readable name
// or by its numeric code. Exactly one of the two fields is set; lookup
// layers accept either form and always report the resolved name back.
type AccountSelector struct {
	Name string `json:"name,omitempty"`
	Code int64  `json:"code,omitempty"`
}

// AccountByName builds a selector from a textual account name.
func AccountByName(name string) AccountSelector {
	return AccountSelector{Name: strings.TrimSpace(name)}
}

// AccountByCode builds a selector from a numeric account code.
func AccountByCode(code int64) AccountSelector {
	return AccountSelector{Code: code}
}

// IsCode reports whether the selector carries a numeric code.
func (s AccountSelector) IsCode() bool { return s.Code != 0 }

// IsZero reports whether the selector is empty.
func (s AccountSelector) IsZero() bool { return s.Code == 0 && s.Name == "" }

func (s AccountSelector) String() string {
	if s.IsCode() {
		return strconv.FormatInt(s.Code, 10)
	}
	return s.Name
}

// ParseAccountSelector interprets a raw string: all-digit strings become
// code selectors, anything else a name selector.
func ParseAccountSelector(raw string) AccountSelector {
	raw = strings.TrimSpace(raw)
	if code, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return AccountByCode(code)
	}
	return AccountByName(raw)
}

// CoerceAccountSelector converts any accepted input shape (string, any
// integer or float type, or an AccountSelector) into a selector.
func CoerceAccountSelector(v any) (AccountSelector, error) {
	switch x := v.(type) {
	case AccountSelector:
		return x, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return AccountSelector{}, fmt.Errorf("empty account selector")
		}
		return ParseAccountSelector(x), nil
	case int:
		return AccountByCode(int64(x)), nil
	case int32:
		return AccountByCode(int64(x)), nil
	case int64:
		return AccountByCode(x), nil
	case float64:
		return AccountByCode(int64(x)), nil
	case float32:
		return AccountByCode(int64(x)), nil
	case json.Number:
		code, err := x.Int64()
		if err != nil {
			return AccountSelector{}, fmt.Errorf("non-integer account code %q", x.String())
		}
		return AccountByCode(code), nil
	default:
		return AccountSelector{}, fmt.Errorf("unsupported account selector type %T", v)
	}
}

// CoerceAccountSelectors normalizes a scalar or a mixed list of scalars
// into an ordered selector list. Downstream lookup logic never branches
// on input shape again.
func CoerceAccountSelectors(v any) ([]AccountSelector, error) {
	switch x := v.(type) {
	case []AccountSelector:
		return x, nil
	case []any:
		out := make([]AccountSelector, 0, len(x))
		for _, item := range x {
			sel, err := CoerceAccountSelector(item)
			if err != nil {
				return nil, err
			}
			out = append(out, sel)
		}
		return out, nil
	case []string:
		out := make([]AccountSelector, 0, len(x))
		for _, item := range x {
			sel, err := CoerceAccountSelector(item)
			if err != nil {
				return nil, err
			}
			out = append(out, sel)
		}
		return out, nil
	case []int:
		out := make([]AccountSelector, 0, len(x))
		for _, item := range x {
			out = append(out, AccountByCode(int64(item)))
		}
		return out, nil
	case []int64:
		out := make([]AccountSelector, 0, len(x))
		for _, item := range x {
			out = append(out, AccountByCode(item))
		}
		return out, nil
	default:
		sel, err := CoerceAccountSelector(v)
		if err != nil {
			return nil, err
		}
		return []AccountSelector{sel}, nil
	}
}

// UnmarshalJSON accepts a bare string, a bare number, or the object form
// {"name": ...} / {"code": ...}.
func (s *AccountSelector) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		type plain AccountSelector
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*s = AccountSelector(p)
		return nil
	}

	var raw any
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	sel, err := CoerceAccountSelector(raw)
	if err != nil {
		return err
	}
	*s = sel
	return nil
}

// UnmarshalYAML accepts a bare scalar (string or integer) or the mapping
// form with name/code keys.
func (s *AccountSelector) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		type plain AccountSelector
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*s = AccountSelector(p)
		return nil
	}

	var code int64
	if err := value.Decode(&code); err == nil {
		*s = AccountByCode(code)
		return nil
	}

	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	*s = ParseAccountSelector(name)
	return nil
}
