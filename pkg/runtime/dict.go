package runtime

const (
	slotEmpty    = -1
	slotDummy    = -2
	minIndexSize = 8
	perturbShift = 5
)

// dictEntry is one key/value pair. Removed entries stay in place as dead
// tombstones until the table is compacted, so iteration order is the order
// of first insertion.
type dictEntry struct {
	key   Value
	value Value
	hash  int64
	seq   uint64
	live  bool
}

// DictValue is an insertion-ordered hash table keyed by the runtime's hash
// and equality protocols. The index is open-addressed; each slot holds an
// entry position, slotEmpty, or slotDummy for a removed key.
type DictValue struct {
	identity
	entries []dictEntry
	index   []int
	used    int
	fill    int
	nextSeq uint64
	version uint64
}

func (d *DictValue) Kind() Kind { return KindDict }

// NewDict returns an empty dict.
func NewDict() *DictValue {
	return &DictValue{}
}

// NewDictSized preallocates room for n entries.
func NewDictSized(n int) *DictValue {
	d := &DictValue{}
	if n > 0 {
		d.entries = make([]dictEntry, 0, n)
		d.rebuild(indexSizeFor(n))
	}
	return d
}

func indexSizeFor(n int) int {
	size := minIndexSize
	for size*2 < n*3 {
		size <<= 1
	}
	return size
}

// Len returns the number of live entries.
func (d *DictValue) Len() int { return d.used }

// probe finds the slot for key. ix is the entry position when the key is
// present, otherwise -1 and slot is where it would be inserted. restart is
// set when a user __eq__ mutated the table during the probe.
func (d *DictValue) probe(key Value, hash int64) (slot, ix int, restart bool, err error) {
	mask := uint64(len(d.index) - 1)
	perturb := uint64(hash)
	i := perturb & mask
	free := -1
	for {
		pos := d.index[i]
		switch pos {
		case slotEmpty:
			if free >= 0 {
				return free, -1, false, nil
			}
			return int(i), -1, false, nil
		case slotDummy:
			if free < 0 {
				free = int(i)
			}
		default:
			e := &d.entries[pos]
			if Is(e.key, key) {
				return int(i), pos, false, nil
			}
			if e.hash == hash {
				version, size := d.version, len(d.index)
				eq, err := Equal(e.key, key)
				if err != nil {
					return -1, -1, false, err
				}
				if d.version != version || len(d.index) != size {
					return -1, -1, true, nil
				}
				if eq {
					return int(i), pos, false, nil
				}
			}
		}
		perturb >>= perturbShift
		i = (i*5 + perturb + 1) & mask
	}
}

func (d *DictValue) lookup(key Value, hash int64) (slot, ix int, err error) {
	if len(d.index) == 0 {
		d.rebuild(minIndexSize)
	}
	for {
		slot, ix, restart, err := d.probe(key, hash)
		if !restart {
			return slot, ix, err
		}
	}
}

// rebuild compacts the entries and reindexes them into a table of size slots.
func (d *DictValue) rebuild(size int) {
	if d.used != len(d.entries) {
		live := make([]dictEntry, 0, d.used)
		for _, e := range d.entries {
			if e.live {
				live = append(live, e)
			}
		}
		d.entries = live
	}
	d.index = make([]int, size)
	for i := range d.index {
		d.index[i] = slotEmpty
	}
	mask := uint64(size - 1)
	for pos, e := range d.entries {
		perturb := uint64(e.hash)
		i := perturb & mask
		for d.index[i] != slotEmpty {
			perturb >>= perturbShift
			i = (i*5 + perturb + 1) & mask
		}
		d.index[i] = pos
	}
	d.fill = len(d.entries)
}

func (d *DictValue) insert(key, value Value, hash int64) error {
	slot, ix, err := d.lookup(key, hash)
	if err != nil {
		return err
	}
	if ix >= 0 {
		d.entries[ix].value = value
		return nil
	}
	if d.index[slot] == slotEmpty {
		d.fill++
	}
	d.entries = append(d.entries, dictEntry{key: key, value: value, hash: hash, seq: d.nextSeq, live: true})
	d.nextSeq++
	d.index[slot] = len(d.entries) - 1
	d.used++
	d.version++
	if d.fill*3 >= len(d.index)*2 {
		d.rebuild(indexSizeFor(d.used * 2))
	}
	return nil
}

// SetItem inserts or overwrites key. The key is hashed before anything is
// touched, so an unhashable key leaves the dict unchanged.
func (d *DictValue) SetItem(key, value Value) error {
	hash, err := Hash(key)
	if err != nil {
		return err
	}
	return d.insert(key, value, hash)
}

// Lookup returns the value stored under key.
func (d *DictValue) Lookup(key Value) (Value, bool, error) {
	hash, err := Hash(key)
	if err != nil {
		return nil, false, err
	}
	if d.used == 0 {
		return nil, false, nil
	}
	_, ix, err := d.lookup(key, hash)
	if err != nil || ix < 0 {
		return nil, false, err
	}
	return d.entries[ix].value, true, nil
}

// GetItem is Lookup with KeyError for missing keys.
func (d *DictValue) GetItem(key Value) (Value, error) {
	v, ok, err := d.Lookup(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewException(KeyError, key)
	}
	return v, nil
}

// Get returns the value for key or def when absent.
func (d *DictValue) Get(key, def Value) (Value, error) {
	v, ok, err := d.Lookup(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Contains reports whether key is present.
func (d *DictValue) Contains(key Value) (bool, error) {
	_, ok, err := d.Lookup(key)
	return ok, err
}

func (d *DictValue) remove(key Value) (Value, bool, error) {
	hash, err := Hash(key)
	if err != nil {
		return nil, false, err
	}
	if d.used == 0 {
		return nil, false, nil
	}
	slot, ix, err := d.lookup(key, hash)
	if err != nil || ix < 0 {
		return nil, false, err
	}
	val := d.entries[ix].value
	d.index[slot] = slotDummy
	d.entries[ix] = dictEntry{}
	d.used--
	d.version++
	return val, true, nil
}

// DelItem removes key, failing with KeyError when it is absent.
func (d *DictValue) DelItem(key Value) error {
	_, ok, err := d.remove(key)
	if err != nil {
		return err
	}
	if !ok {
		return NewException(KeyError, key)
	}
	return nil
}

// Pop removes key and returns its value, or def when absent. A nil def makes
// a missing key a KeyError.
func (d *DictValue) Pop(key, def Value) (Value, error) {
	v, ok, err := d.remove(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		if def == nil {
			return nil, NewException(KeyError, key)
		}
		return def, nil
	}
	return v, nil
}

// PopItem removes and returns the most recently inserted pair.
func (d *DictValue) PopItem() (Value, Value, error) {
	for i := len(d.entries) - 1; i >= 0; i-- {
		if e := d.entries[i]; e.live {
			if _, _, err := d.remove(e.key); err != nil {
				return nil, nil, err
			}
			return e.key, e.value, nil
		}
	}
	return nil, nil, Errorf(KeyError, "popitem(): dictionary is empty")
}

// SetDefault returns the value for key, inserting def first when absent.
func (d *DictValue) SetDefault(key, def Value) (Value, error) {
	hash, err := Hash(key)
	if err != nil {
		return nil, err
	}
	_, ix, err := d.lookup(key, hash)
	if err != nil {
		return nil, err
	}
	if ix >= 0 {
		return d.entries[ix].value, nil
	}
	if err := d.insert(key, def, hash); err != nil {
		return nil, err
	}
	return def, nil
}

// Clear removes every entry.
func (d *DictValue) Clear() {
	if d.used == 0 && len(d.entries) == 0 {
		return
	}
	d.entries = nil
	d.index = nil
	d.used = 0
	d.fill = 0
	d.version++
}

// Copy returns an independent dict with the same entries; hashes are reused.
func (d *DictValue) Copy() *DictValue {
	out := &DictValue{nextSeq: d.nextSeq}
	out.entries = make([]dictEntry, 0, d.used)
	for _, e := range d.entries {
		if e.live {
			out.entries = append(out.entries, e)
		}
	}
	out.used = len(out.entries)
	if out.used > 0 {
		out.rebuild(indexSizeFor(out.used))
	}
	return out
}

// Range calls fn for each live entry in insertion order. It fails with
// RuntimeError if fn changes the dict's size.
func (d *DictValue) Range(fn func(key, value Value) error) error {
	version, size := d.version, d.used
	for i := 0; i < len(d.entries); i++ {
		e := d.entries[i]
		if !e.live {
			continue
		}
		if err := fn(e.key, e.value); err != nil {
			return err
		}
		if d.version != version {
			return mutatedError("dictionary", size != d.used)
		}
	}
	return nil
}

func mutatedError(what string, sizeChanged bool) error {
	if sizeChanged {
		return Errorf(RuntimeError, "%s changed size during iteration", what)
	}
	return Errorf(RuntimeError, "%s keys changed during iteration", what)
}

// entryIterator walks live entries and fails once the table is mutated.
func (d *DictValue) entryIterator(what string, project func(e *dictEntry) Value) *IteratorValue {
	version, size := d.version, d.used
	pos := 0
	broken := false
	return NewIteratorValue(func() (Value, bool, error) {
		if broken {
			return nil, true, nil
		}
		if d.version != version {
			broken = true
			return nil, false, mutatedError(what, size != d.used)
		}
		for pos < len(d.entries) {
			e := &d.entries[pos]
			pos++
			if e.live {
				return project(e), false, nil
			}
		}
		return nil, true, nil
	}, nil)
}

// Iter iterates over keys.
func (d *DictValue) Iter() *IteratorValue {
	return d.entryIterator("dictionary", func(e *dictEntry) Value { return e.key })
}

// KeysList snapshots the keys.
func (d *DictValue) KeysList() []Value {
	out := make([]Value, 0, d.used)
	for _, e := range d.entries {
		if e.live {
			out = append(out, e.key)
		}
	}
	return out
}

// Equal compares two dicts by content.
func (d *DictValue) Equal(other *DictValue) (bool, error) {
	if d == other {
		return true, nil
	}
	if d.used != other.used {
		return false, nil
	}
	for _, e := range d.KeysList() {
		a, _, err := d.Lookup(e)
		if err != nil {
			return false, err
		}
		b, ok, err := other.Lookup(e)
		if err != nil || !ok {
			return false, err
		}
		eq, err := Equal(a, b)
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

// getStr is a fast path for string keys used by attribute dicts.
func (d *DictValue) getStr(name string) (Value, bool) {
	if d == nil || d.used == 0 {
		return nil, false
	}
	key := Str(name)
	hash, _ := Hash(key)
	_, ix, err := d.lookup(key, hash)
	if err != nil || ix < 0 {
		return nil, false
	}
	return d.entries[ix].value, true
}

// setStr stores under a string key. It fails only when a colliding user key
// raises from __eq__.
func (d *DictValue) setStr(name string, value Value) error {
	key := Str(name)
	hash, _ := Hash(key)
	return d.insert(key, value, hash)
}

// defineStr is setStr for dicts that hold nothing but string keys.
func (d *DictValue) defineStr(name string, value Value) {
	if err := d.setStr(name, value); err != nil {
		panic(err)
	}
}

func (d *DictValue) delStr(name string) bool {
	_, ok, _ := d.remove(Str(name))
	return ok
}
