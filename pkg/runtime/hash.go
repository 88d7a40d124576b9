package runtime

import (
	"encoding/binary"
	"math"
)

const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211

	// hashModulus is the Mersenne prime used to reduce numeric hashes so that
	// equal ints and floats hash alike.
	hashModulus = (1 << 61) - 1
	hashInf     = 314159
)

const (
	tagStr byte = iota + 1
	tagBytes
	tagFloat
	tagTuple
	tagFrozenSet
	tagNone
)

// HashWithTag seeds a new FNV-1a stream tagged with the provided discriminator.
func HashWithTag(tag byte, data []byte) uint64 {
	hash := fnvOffset64
	hash = HashBytes(hash, []byte{tag})
	if len(data) > 0 {
		hash = HashBytes(hash, data)
	}
	return hash
}

// HashBytes feeds the FNV-1a state with additional data.
func HashBytes(hash uint64, data []byte) uint64 {
	for _, b := range data {
		hash ^= uint64(b)
		hash *= fnvPrime64
	}
	return hash
}

// Hasher accumulates an FNV-1a digest.
type Hasher struct {
	state uint64
}

// NewHasher constructs a hasher seeded with the FNV-1a offset basis.
func NewHasher(tag byte) *Hasher {
	return &Hasher{state: HashWithTag(tag, nil)}
}

// WriteBytes appends raw bytes to the hasher state.
func (h *Hasher) WriteBytes(data []byte) {
	h.state = HashBytes(h.state, data)
}

// WriteInt64 encodes the signed integer using two's complement big-endian form.
func (h *Hasher) WriteInt64(val int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(val))
	h.WriteBytes(buf[:])
}

// Finish returns the digest folded to a hash value that is never -1.
func (h *Hasher) Finish() int64 {
	return fixHash(int64(h.state))
}

func fixHash(h int64) int64 {
	if h == -1 {
		return -2
	}
	return h
}

func hashInt(n int64) int64 {
	var mag uint64
	if n < 0 {
		mag = uint64(-(n + 1)) + 1
	} else {
		mag = uint64(n)
	}
	h := int64(mag % hashModulus)
	if n < 0 {
		h = -h
	}
	return fixHash(h)
}

func hashFloat(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case math.IsInf(f, 1):
		return hashInf
	case math.IsInf(f, -1):
		return -hashInf
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return hashInt(int64(f))
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
	return fixHash(int64(HashWithTag(tagFloat, buf[:])))
}

// Hash computes the hash of a value, dispatching __hash__ through the MRO
// for user objects. Unhashable values fail with TypeError.
func Hash(v Value) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, Errorf(SystemError, "hash of nil value")
	case NoneValue:
		return fixHash(int64(HashWithTag(tagNone, nil))), nil
	case NotImplementedValue:
		return fixHash(int64(HashWithTag(tagNone, []byte{1}))), nil
	case BoolValue:
		if x.Val {
			return 1, nil
		}
		return 0, nil
	case IntValue:
		return hashInt(x.Val), nil
	case FloatValue:
		return hashFloat(x.Val), nil
	case StrValue:
		return fixHash(int64(HashWithTag(tagStr, []byte(x.Val)))), nil
	case BytesValue:
		return fixHash(int64(HashWithTag(tagBytes, x.Val))), nil
	case *TupleValue:
		h := NewHasher(tagTuple)
		for _, el := range x.Elements {
			eh, err := Hash(el)
			if err != nil {
				return 0, err
			}
			h.WriteInt64(eh)
		}
		return h.Finish(), nil
	case *SetValue:
		if !x.frozen {
			return 0, unhashable(x)
		}
		return x.frozenHash()
	case *DictValue, *ListValue, *DictViewValue:
		return 0, unhashable(v)
	case BoundMethodValue:
		rh, err := Hash(x.Receiver)
		if err != nil {
			return 0, err
		}
		return fixHash(rh ^ int64(ID(x.Method))), nil
	case ClassMethodValue:
		return fixHash(int64(ID(x.Func))), nil
	case StaticMethodValue:
		return fixHash(int64(ID(x.Func))), nil
	case *Instance, *ExceptionValue:
		return hashObject(v)
	}
	if id := ID(v); id != 0 {
		return fixHash(int64(id)), nil
	}
	return 0, unhashable(v)
}

func unhashable(v Value) error {
	return Errorf(TypeError, "unhashable type: '%s'", TypeOf(v).Name)
}

func hashObject(v Value) (int64, error) {
	t := TypeOf(v)
	fn, _, ok := t.Lookup("__hash__")
	if !ok {
		return fixHash(int64(ID(v))), nil
	}
	if _, isNone := fn.(NoneValue); isNone {
		return 0, unhashable(v)
	}
	bound, err := bindDescriptor(fn, v, t)
	if err != nil {
		return 0, err
	}
	res, err := Call(bound)
	if err != nil {
		return 0, err
	}
	switch r := Unwrap(res).(type) {
	case IntValue:
		return hashInt(r.Val), nil
	case BoolValue:
		if r.Val {
			return 1, nil
		}
		return 0, nil
	}
	return 0, Errorf(TypeError, "__hash__ method should return an integer")
}
