package deck

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Layer is a deck.gl layer description. It is immutable once built.
type Layer struct {
	layerType string
	id        string
	props     map[string]any
}

// NewLayer builds a layer of the given deck.gl class. Property names may be
// given in snake_case (get_fill_color, type_) and are stored in the camelCase
// form deck.gl expects. An empty id is replaced by a random one.
func NewLayer(layerType, id string, props map[string]any) Layer {
	if id == "" {
		id = uuid.NewString()
	}
	converted := make(map[string]any, len(props))
	for k, v := range props {
		converted[CamelCase(k)] = cloneValue(v)
	}
	return Layer{layerType: layerType, id: id, props: converted}
}

func (l Layer) Type() string { return l.layerType }

func (l Layer) ID() string { return l.id }

// Prop returns a copy of the named property.
func (l Layer) Prop(name string) (any, bool) {
	v, ok := l.props[CamelCase(name)]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

func (l Layer) Props() map[string]any {
	out := make(map[string]any, len(l.props))
	for k, v := range l.props {
		out[k] = cloneValue(v)
	}
	return out
}

func (l Layer) PropNames() []string {
	return slices.Sorted(maps.Keys(l.props))
}

func (l Layer) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(l.props)+2)
	for k, v := range l.props {
		out[k] = v
	}
	out["@@type"] = l.layerType
	out["id"] = l.id
	return json.Marshal(out)
}

// CamelCase converts a snake_case property name to camelCase. A trailing
// underscore, used to dodge reserved words, is dropped.
func CamelCase(name string) string {
	name = strings.TrimSuffix(name, "_")
	if !strings.Contains(name, "_") {
		return name
	}
	parts := strings.Split(name, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []int:
		return slices.Clone(t)
	case []float64:
		return slices.Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
