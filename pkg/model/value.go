package model

import (
	"encoding/json"
	"slices"
	"strings"
)

// Value is the current value of one field: a single string for text-like
// controls or a list of strings for checkbox groups and multi-selects.
type Value struct {
	text  string
	items []string
	list  bool
}

// Text builds a single-valued Value.
func Text(s string) Value {
	return Value{text: s}
}

// List builds a list Value. Passing no items yields an empty list.
func List(items ...string) Value {
	return Value{items: slices.Clone(items), list: true}
}

// IsList reports whether the value holds a list.
func (v Value) IsList() bool {
	return v.list
}

// String returns the single value, or the list joined with ", ".
func (v Value) String() string {
	if v.list {
		return strings.Join(v.items, ", ")
	}
	return v.text
}

// Items returns a copy of the list items. A non-empty single value is returned
// as a one element slice.
func (v Value) Items() []string {
	if v.list {
		return slices.Clone(v.items)
	}
	if v.text == "" {
		return nil
	}
	return []string{v.text}
}

// Empty reports whether the value is unset: "" for single values and zero
// items for lists.
func (v Value) Empty() bool {
	if v.list {
		return len(v.items) == 0
	}
	return v.text == ""
}

// Contains reports whether item is part of the value.
func (v Value) Contains(item string) bool {
	if v.list {
		return slices.Contains(v.items, item)
	}
	return v.text == item
}

// Toggle returns a list value with item added when absent or removed when
// present. Single values are converted to lists first.
func (v Value) Toggle(item string) Value {
	items := v.Items()
	if idx := slices.Index(items, item); idx >= 0 {
		items = slices.Delete(items, idx, idx+1)
	} else {
		items = append(items, item)
	}
	return List(items...)
}

// Equal reports whether both values have the same shape and content.
func (v Value) Equal(other Value) bool {
	if v.list != other.list {
		return false
	}
	if v.list {
		return slices.Equal(v.items, other.items)
	}
	return v.text == other.text
}

// Interface returns a string or []string, for serializers that work on any.
func (v Value) Interface() any {
	if v.list {
		if v.items == nil {
			return []string{}
		}
		return slices.Clone(v.items)
	}
	return v.text
}

// MarshalJSON encodes the value as a JSON string or array.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a JSON string or array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = Text(single)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*v = List(items...)
	return nil
}
