package units

import (
	"fmt"
	"strconv"
	"strings"
)

const setListDelimiter = ","

// MalformedListError reports the tokens of a delimited set list that could
// not be parsed as numbers. The rest of the list is still usable, the
// caller decides whether to reject the whole record or keep going.
type MalformedListError struct {
	Tokens []string
}

func (e *MalformedListError) Error() string {
	return fmt.Sprintf("set list contains %d malformed token(s): %s", len(e.Tokens), strings.Join(e.Tokens, ", "))
}

// SetList is an ordered sequence of optional per-set values, e.g. the
// weight used in each set of an exercise. A nil element is an absent or
// unparseable measurement. Serialization to the legacy comma-separated
// string form happens only at the persistence and display edges.
type SetList []*float64

// ParseSetList parses a delimited per-set value string like "60,65,70".
// Malformed tokens become nil elements so count and order are preserved,
// and are reported through a MalformedListError alongside the usable list.
func ParseSetList(s string) (SetList, error) {
	if strings.TrimSpace(s) == "" {
		return SetList{}, nil
	}

	tokens := strings.Split(s, setListDelimiter)
	list := make(SetList, 0, len(tokens))
	var malformed []string
	for _, token := range tokens {
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			list = append(list, nil)
			continue
		}
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			malformed = append(malformed, trimmed)
			list = append(list, nil)
			continue
		}
		value := v
		list = append(list, &value)
	}

	if len(malformed) > 0 {
		return list, &MalformedListError{Tokens: malformed}
	}
	return list, nil
}

// ConvertWeights converts each element independently, preserving order,
// count and absent elements.
func (sl SetList) ConvertWeights(from, to WeightUnit) SetList {
	if from == to {
		return sl.clone()
	}
	converted := make(SetList, 0, len(sl))
	for _, v := range sl {
		if v == nil {
			converted = append(converted, nil)
			continue
		}
		c := ConvertWeight(*v, from, to)
		converted = append(converted, &c)
	}
	return converted
}

// Format serializes the list back to the delimited string form. Absent
// elements serialize as empty tokens so positions survive a round trip.
func (sl SetList) Format(precision int) string {
	if len(sl) == 0 {
		return ""
	}
	tokens := make([]string, 0, len(sl))
	for _, v := range sl {
		if v == nil {
			tokens = append(tokens, "")
			continue
		}
		tokens = append(tokens, strconv.FormatFloat(*v, 'f', precision, 64))
	}
	return strings.Join(tokens, setListDelimiter)
}

// Values returns the present elements only, in order.
func (sl SetList) Values() []float64 {
	values := make([]float64, 0, len(sl))
	for _, v := range sl {
		if v != nil {
			values = append(values, *v)
		}
	}
	return values
}

func (sl SetList) clone() SetList {
	c := make(SetList, 0, len(sl))
	for _, v := range sl {
		if v == nil {
			c = append(c, nil)
			continue
		}
		value := *v
		c = append(c, &value)
	}
	return c
}

// ConvertSetListString converts a stored delimited weight string between
// units in one go. Unparseable tokens survive as empty positions and are
// reported, valid elements are never dropped because of them.
func ConvertSetListString(s string, from, to WeightUnit) (string, error) {
	if from == to {
		return s, nil
	}
	list, parseErr := ParseSetList(s)
	converted := list.ConvertWeights(from, to)
	return converted.Format(2), parseErr
}
