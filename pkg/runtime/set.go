package runtime

// SetValue is a set or frozenset. It shares the dict's table with every
// value slot left empty.
type SetValue struct {
	identity
	table  *DictValue
	frozen bool
}

func (s *SetValue) Kind() Kind {
	if s.frozen {
		return KindFrozenSet
	}
	return KindSet
}

// NewSet returns an empty mutable set.
func NewSet() *SetValue { return &SetValue{table: NewDict()} }

// NewFrozenSet builds a frozenset from an iterable (nil for empty).
func NewFrozenSet(iterable Value) (*SetValue, error) {
	s := &SetValue{table: NewDict()}
	if iterable != nil {
		if err := s.update(iterable); err != nil {
			return nil, err
		}
	}
	s.frozen = true
	return s, nil
}

// SetFromValues builds a mutable set from Go values.
func SetFromValues(vals ...Value) (*SetValue, error) {
	s := NewSet()
	for _, v := range vals {
		if err := s.Add(v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *SetValue) Frozen() bool { return s.frozen }

func (s *SetValue) Len() int { return s.table.Len() }

func (s *SetValue) checkMutable(op string) error {
	if s.frozen {
		return Errorf(AttributeError, "'frozenset' object has no attribute '%s'", op)
	}
	return nil
}

// Add inserts v; unhashable values are rejected before any change.
func (s *SetValue) Add(v Value) error {
	if err := s.checkMutable("add"); err != nil {
		return err
	}
	return s.table.SetItem(v, None)
}

func (s *SetValue) Contains(v Value) (bool, error) {
	if inner, ok := v.(*SetValue); ok && !inner.frozen {
		frozen := &SetValue{table: inner.table, frozen: true}
		return s.table.Contains(frozen)
	}
	return s.table.Contains(v)
}

// Discard removes v if present.
func (s *SetValue) Discard(v Value) error {
	if err := s.checkMutable("discard"); err != nil {
		return err
	}
	_, _, err := s.table.remove(v)
	return err
}

// Remove removes v, failing with KeyError when absent.
func (s *SetValue) Remove(v Value) error {
	if err := s.checkMutable("remove"); err != nil {
		return err
	}
	return s.table.DelItem(v)
}

// Pop removes an arbitrary element.
func (s *SetValue) Pop() (Value, error) {
	if err := s.checkMutable("pop"); err != nil {
		return nil, err
	}
	k, _, err := s.table.PopItem()
	if err != nil {
		return nil, Errorf(KeyError, "pop from an empty set")
	}
	return k, nil
}

func (s *SetValue) Clear() error {
	if err := s.checkMutable("clear"); err != nil {
		return err
	}
	s.table.Clear()
	return nil
}

// Update adds the elements of every iterable in others.
func (s *SetValue) Update(others ...Value) error {
	if err := s.checkMutable("update"); err != nil {
		return err
	}
	for _, o := range others {
		if err := s.update(o); err != nil {
			return err
		}
	}
	return nil
}

func (s *SetValue) update(o Value) error {
	switch src := Unwrap(o).(type) {
	case *SetValue:
		return s.table.mergeDict(src.table)
	case *DictValue:
		for _, e := range src.entries {
			if e.live {
				if err := s.table.insert(e.key, None, e.hash); err != nil {
					return err
				}
			}
		}
		return nil
	}
	it, err := Iter(o)
	if err != nil {
		return err
	}
	defer it.Close()
	for {
		v, done, err := it.Next()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := s.table.SetItem(v, None); err != nil {
			return err
		}
	}
}

// Copy returns an independent set of the same flavour.
func (s *SetValue) Copy() *SetValue {
	return &SetValue{table: s.table.Copy(), frozen: s.frozen}
}

// Elements snapshots the members in insertion order.
func (s *SetValue) Elements() []Value { return s.table.KeysList() }

// Iter iterates the members, failing if the set changes size meanwhile.
func (s *SetValue) Iter() *IteratorValue {
	return s.table.entryIterator("Set", func(e *dictEntry) Value { return e.key })
}

func (s *SetValue) derive() *SetValue {
	return &SetValue{table: NewDict(), frozen: s.frozen}
}

func toSet(o Value) (*SetValue, error) {
	if other, ok := Unwrap(o).(*SetValue); ok {
		return other, nil
	}
	tmp := NewSet()
	if err := tmp.update(o); err != nil {
		return nil, err
	}
	return tmp, nil
}

// Union returns the elements found in s or any of others.
func (s *SetValue) Union(others ...Value) (*SetValue, error) {
	out := s.Copy()
	for _, o := range others {
		if err := out.update(o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Intersection returns the elements of s found in every one of others.
func (s *SetValue) Intersection(others ...Value) (*SetValue, error) {
	cur := s
	for _, o := range others {
		other, err := toSet(o)
		if err != nil {
			return nil, err
		}
		next := s.derive()
		for _, e := range cur.table.entries {
			if !e.live {
				continue
			}
			ok, err := other.Contains(e.key)
			if err != nil {
				return nil, err
			}
			if ok {
				if err := next.table.insert(e.key, None, e.hash); err != nil {
					return nil, err
				}
			}
		}
		cur = next
	}
	if cur == s {
		return s.Copy(), nil
	}
	return cur, nil
}

// Difference returns the elements of s found in none of others.
func (s *SetValue) Difference(others ...Value) (*SetValue, error) {
	out := s.Copy()
	for _, o := range others {
		other, err := toSet(o)
		if err != nil {
			return nil, err
		}
		for _, k := range other.Elements() {
			if _, _, err := out.table.remove(k); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// IsSubset reports whether every element of s is in other.
func (s *SetValue) IsSubset(other Value) (bool, error) {
	o, err := toSet(other)
	if err != nil {
		return false, err
	}
	if s.Len() > o.Len() {
		return false, nil
	}
	for _, k := range s.Elements() {
		ok, err := o.Contains(k)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Equal compares membership; set and frozenset compare equal by content.
func (s *SetValue) Equal(other *SetValue) (bool, error) {
	if s.Len() != other.Len() {
		return false, nil
	}
	return s.IsSubset(other)
}

// frozenHash combines member hashes independently of order.
func (s *SetValue) frozenHash() (int64, error) {
	var acc uint64
	for _, e := range s.table.entries {
		if !e.live {
			continue
		}
		h := uint64(e.hash)
		acc ^= (h ^ (h << 16) ^ 89869747) * 3644798167
	}
	acc ^= uint64(s.Len()+1) * 1927868237
	acc = acc*69069 + 907133923
	return fixHash(int64(HashWithTag(tagFrozenSet, nil) ^ acc)), nil
}
