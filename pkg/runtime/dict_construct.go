package runtime

// NewDictFromArgs implements dict(...): at most one positional source (a
// dict, a mapping-like object, or an iterable of pairs) followed by keyword
// entries.
func NewDictFromArgs(args []Value, kwargs *DictValue) (*DictValue, error) {
	d := NewDict()
	if err := d.updateFromArgs("dict", args, kwargs); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DictValue) updateFromArgs(name string, args []Value, kwargs *DictValue) error {
	if len(args) > 1 {
		return Errorf(TypeError, "%s expected at most 1 arguments, got %d", name, len(args))
	}
	if len(args) == 1 {
		if err := d.Update(args[0]); err != nil {
			return err
		}
	}
	if kwargs != nil {
		return d.mergeDict(kwargs)
	}
	return nil
}

// Update merges src into d. Dicts are copied entry by entry, objects with a
// keys() method are read as mappings, anything else as a sequence of pairs.
func (d *DictValue) Update(src Value) error {
	if other, ok := src.(*DictValue); ok {
		return d.mergeDict(other)
	}
	if inst, ok := src.(*Instance); ok {
		if other, ok := inst.Payload.(*DictValue); ok {
			if _, owner, _ := inst.Class.Lookup("keys"); owner == DictType {
				return d.mergeDict(other)
			}
		}
	}
	hasKeys, err := HasAttr(src, "keys")
	if err != nil {
		return err
	}
	if hasKeys {
		return d.mergeMappingLike(src)
	}
	return d.mergePairs(src)
}

func (d *DictValue) mergeDict(other *DictValue) error {
	if other == d {
		return nil
	}
	for _, e := range other.entries {
		if !e.live {
			continue
		}
		if err := d.insert(e.key, e.value, e.hash); err != nil {
			return err
		}
	}
	return nil
}

// mergeMappingLike reads keys() once into a fixed list and then fetches each
// value by subscription.
func (d *DictValue) mergeMappingLike(src Value) error {
	keysVal, err := CallMethod(src, "keys")
	if err != nil {
		return err
	}
	keys, err := ToSlice(keysVal)
	if err != nil {
		return err
	}
	for _, k := range keys {
		v, err := GetItem(src, k)
		if err != nil {
			return err
		}
		if err := d.SetItem(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (d *DictValue) mergePairs(src Value) error {
	it, err := Iter(src)
	if err != nil {
		return err
	}
	defer it.Close()
	for i := 0; ; i++ {
		item, done, err := it.Next()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		pit, err := Iter(item)
		if err != nil {
			if IsException(err, TypeError) {
				return Errorf(TypeError, "cannot convert dictionary update sequence element #%d to a sequence", i)
			}
			return err
		}
		pair, err := collect(pit)
		if err != nil {
			return err
		}
		if len(pair) != 2 {
			return Errorf(ValueError, "dictionary update sequence element #%d has length %d; 2 is required", i, len(pair))
		}
		if err := d.SetItem(pair[0], pair[1]); err != nil {
			return err
		}
	}
}

// DictFromPairs builds a dict from an iterable of two-element sequences.
func DictFromPairs(src Value) (*DictValue, error) {
	d := NewDict()
	if err := d.mergePairs(src); err != nil {
		return nil, err
	}
	return d, nil
}

// DictFromKeys maps every element of iterable to value.
func DictFromKeys(iterable Value, value Value) (*DictValue, error) {
	if value == nil {
		value = None
	}
	it, err := Iter(iterable)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	d := NewDict()
	for {
		k, done, err := it.Next()
		if err != nil {
			return nil, err
		}
		if done {
			return d, nil
		}
		if err := d.SetItem(k, value); err != nil {
			return nil, err
		}
	}
}

// DictFromMappingLike copies any object exposing keys() and subscription.
func DictFromMappingLike(src Value) (*DictValue, error) {
	d := NewDict()
	if err := d.mergeMappingLike(src); err != nil {
		return nil, err
	}
	return d, nil
}
