package runtime

type DictViewKind int

const (
	ViewKeys DictViewKind = iota
	ViewValues
	ViewItems
)

// DictViewValue is a live view over a dict; every operation reads the dict's
// current state.
type DictViewValue struct {
	Dict *DictValue
	View DictViewKind
}

func (v *DictViewValue) Kind() Kind { return KindDictView }

func (d *DictValue) Keys() *DictViewValue   { return &DictViewValue{Dict: d, View: ViewKeys} }
func (d *DictValue) Values() *DictViewValue { return &DictViewValue{Dict: d, View: ViewValues} }
func (d *DictValue) Items() *DictViewValue  { return &DictViewValue{Dict: d, View: ViewItems} }

func (v *DictViewValue) Len() int { return v.Dict.Len() }

func (v *DictViewValue) project(e *dictEntry) Value {
	switch v.View {
	case ViewKeys:
		return e.key
	case ViewValues:
		return e.value
	default:
		return NewTuple(e.key, e.value)
	}
}

// Iter iterates the view, failing if the dict changes size meanwhile.
func (v *DictViewValue) Iter() *IteratorValue {
	return v.Dict.entryIterator("dictionary", v.project)
}

func (v *DictViewValue) list() []Value {
	out := make([]Value, 0, v.Dict.used)
	for i := range v.Dict.entries {
		if e := &v.Dict.entries[i]; e.live {
			out = append(out, v.project(e))
		}
	}
	return out
}

// Contains tests membership: keys by lookup, items by key lookup then value
// equality, values by scan.
func (v *DictViewValue) Contains(x Value) (bool, error) {
	switch v.View {
	case ViewKeys:
		return v.Dict.Contains(x)
	case ViewItems:
		tup, ok := x.(*TupleValue)
		if !ok || len(tup.Elements) != 2 {
			return false, nil
		}
		val, found, err := v.Dict.Lookup(tup.Elements[0])
		if err != nil || !found {
			return false, err
		}
		return Equal(val, tup.Elements[1])
	default:
		for _, el := range v.list() {
			eq, err := Equal(el, x)
			if err != nil || eq {
				return eq, err
			}
		}
		return false, nil
	}
}
