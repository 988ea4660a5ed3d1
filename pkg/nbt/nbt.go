// Package nbt decodes Minecraft's Named Binary Tag format from a
// ringbuf.RingBuffer into a tag tree.
//
// The traversal is recursive over Compound/List with an explicit depth
// cap, so adversarial nesting hits TooDeep long before the Go call stack
// is at risk.
package nbt

import (
	"fmt"

	"github.com/go-mclib/polymer/pkg/errs"
	"github.com/go-mclib/polymer/pkg/ringbuf"
)

// TagType is the NBT tag discriminant.
type TagType uint8

const (
	TagEnd TagType = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

// maxDepth bounds Compound/List nesting against adversarial input.
const maxDepth = 512

// Tag is a tagged union over the thirteen NBT payload kinds. Only the field
// matching Type is meaningful.
type Tag struct {
	Type TagType

	Byte    int8
	Short   int16
	Int     int32
	Long    int64
	Float   float32
	Double  float64

	ByteArray []byte
	Str       string
	IntArray  []int32
	LongArray []int64

	List     []Tag   // homogeneous; ListElem gives the element type
	ListElem TagType

	Compound map[string]Tag
}

// Find looks up a named child of a Compound tag.
func (t *Tag) Find(name string) (*Tag, bool) {
	if t.Type != TagCompound {
		return nil, false
	}
	v, ok := t.Compound[name]
	if !ok {
		return nil, false
	}
	return &v, true
}

type reader struct {
	rb    *ringbuf.RingBuffer
	depth int
}

// Decode reads a root tag from rb. Network NBT (protocol-embedded, since
// 1.20.2) omits the root tag's type byte and name - only the payload follows,
// and the caller already knows it is a Compound. Decode handles the
// classic (named root) form; DecodeNetworkRoot handles the nameless form
// used by ChunkData heightmaps and registry payloads.
func Decode(rb *ringbuf.RingBuffer) (Tag, error) {
	r := &reader{rb: rb}
	mark := rb.Mark()

	typ, err := r.readType()
	if err != nil {
		rb.Rewind(mark)
		return Tag{}, err
	}
	if typ == TagEnd {
		return Tag{Type: TagEnd}, nil
	}
	if typ != TagCompound {
		rb.Rewind(mark)
		return Tag{}, fmt.Errorf("root tag type %d is not End or Compound: %w", typ, errs.MalformedNbt)
	}
	if _, err := r.readModifiedUTF8(); err != nil { // root name, discarded
		rb.Rewind(mark)
		return Tag{}, err
	}
	tag, err := r.readCompoundPayload()
	if err != nil {
		rb.Rewind(mark)
		return Tag{}, err
	}
	return tag, nil
}

// DecodeNetworkRoot reads a root Compound payload with no leading type
// byte or name (protocol-embedded NBT carries no GZIP/ZLIB envelope).
func DecodeNetworkRoot(rb *ringbuf.RingBuffer) (Tag, error) {
	r := &reader{rb: rb}
	mark := rb.Mark()
	tag, err := r.readCompoundPayload()
	if err != nil {
		rb.Rewind(mark)
		return Tag{}, err
	}
	return tag, nil
}

func (r *reader) readType() (TagType, error) {
	b, err := ringbuf.ReadUint8(r.rb)
	if err != nil {
		return 0, err
	}
	if b > uint8(TagLongArray) {
		return 0, fmt.Errorf("unknown tag type %d: %w", b, errs.MalformedNbt)
	}
	return TagType(b), nil
}

func (r *reader) readModifiedUTF8() (string, error) {
	n, err := ringbuf.ReadUint16(r.rb)
	if err != nil {
		return "", err
	}
	return ringbuf.ReadRawString(r.rb, int(n))
}

func (r *reader) readCompoundPayload() (Tag, error) {
	r.depth++
	defer func() { r.depth-- }()
	if r.depth > maxDepth {
		return Tag{}, errs.TooDeep
	}

	out := Tag{Type: TagCompound, Compound: make(map[string]Tag)}
	for {
		typ, err := r.readType()
		if err != nil {
			return Tag{}, err
		}
		if typ == TagEnd {
			return out, nil
		}
		name, err := r.readModifiedUTF8()
		if err != nil {
			return Tag{}, err
		}
		child, err := r.readPayload(typ)
		if err != nil {
			return Tag{}, err
		}
		out.Compound[name] = child
	}
}

func (r *reader) readListPayload() (Tag, error) {
	r.depth++
	defer func() { r.depth-- }()
	if r.depth > maxDepth {
		return Tag{}, errs.TooDeep
	}

	elemType, err := r.readType()
	if err != nil {
		return Tag{}, err
	}
	length, err := ringbuf.ReadInt32(r.rb)
	if err != nil {
		return Tag{}, err
	}
	if length < 0 {
		length = 0
	}
	const maxListLen = 1 << 24
	if length > maxListLen {
		return Tag{}, fmt.Errorf("list length %d exceeds bound: %w", length, errs.MalformedNbt)
	}
	elems := make([]Tag, 0, length)
	for i := int32(0); i < length; i++ {
		elem, err := r.readPayload(elemType)
		if err != nil {
			return Tag{}, err
		}
		elems = append(elems, elem)
	}
	return Tag{Type: TagList, ListElem: elemType, List: elems}, nil
}

func (r *reader) readPayload(typ TagType) (Tag, error) {
	switch typ {
	case TagEnd:
		return Tag{Type: TagEnd}, nil
	case TagByte:
		v, err := ringbuf.ReadInt8(r.rb)
		return Tag{Type: TagByte, Byte: v}, err
	case TagShort:
		v, err := ringbuf.ReadInt16(r.rb)
		return Tag{Type: TagShort, Short: v}, err
	case TagInt:
		v, err := ringbuf.ReadInt32(r.rb)
		return Tag{Type: TagInt, Int: v}, err
	case TagLong:
		v, err := ringbuf.ReadInt64(r.rb)
		return Tag{Type: TagLong, Long: v}, err
	case TagFloat:
		v, err := ringbuf.ReadFloat32(r.rb)
		return Tag{Type: TagFloat, Float: v}, err
	case TagDouble:
		v, err := ringbuf.ReadFloat64(r.rb)
		return Tag{Type: TagDouble, Double: v}, err
	case TagByteArray:
		n, err := ringbuf.ReadInt32(r.rb)
		if err != nil {
			return Tag{}, err
		}
		if n < 0 {
			return Tag{}, fmt.Errorf("negative byte array length: %w", errs.MalformedNbt)
		}
		b, err := ringbuf.ReadBytes(r.rb, int(n))
		return Tag{Type: TagByteArray, ByteArray: b}, err
	case TagString:
		s, err := r.readModifiedUTF8()
		return Tag{Type: TagString, Str: s}, err
	case TagList:
		return r.readListPayload()
	case TagCompound:
		return r.readCompoundPayload()
	case TagIntArray:
		n, err := ringbuf.ReadInt32(r.rb)
		if err != nil {
			return Tag{}, err
		}
		if n < 0 {
			return Tag{}, fmt.Errorf("negative int array length: %w", errs.MalformedNbt)
		}
		out := make([]int32, n)
		for i := range out {
			v, err := ringbuf.ReadInt32(r.rb)
			if err != nil {
				return Tag{}, err
			}
			out[i] = v
		}
		return Tag{Type: TagIntArray, IntArray: out}, nil
	case TagLongArray:
		n, err := ringbuf.ReadInt32(r.rb)
		if err != nil {
			return Tag{}, err
		}
		if n < 0 {
			return Tag{}, fmt.Errorf("negative long array length: %w", errs.MalformedNbt)
		}
		out := make([]int64, n)
		for i := range out {
			v, err := ringbuf.ReadInt64(r.rb)
			if err != nil {
				return Tag{}, err
			}
			out[i] = v
		}
		return Tag{Type: TagLongArray, LongArray: out}, nil
	default:
		return Tag{}, fmt.Errorf("unknown tag type %d: %w", typ, errs.MalformedNbt)
	}
}
