// Package thrift implements a minimal, write-only Thrift compact protocol
// encoder, sufficient to serialize the format.* structures that make up a
// Parquet file footer and page headers. It uses reflection over struct
// tags of the form `thrift:"<field-id>,<required|optional>"`, the same
// convention as the encoding/thrift package referenced by the teacher
// corpus.
package thrift

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Protocol is implemented by wire protocols capable of marshaling a Go
// value into a byte stream. CompactProtocol is the only implementation
// used by this module (Parquet mandates Thrift's compact protocol).
type Protocol interface {
	Marshal(w io.Writer, v any) error
}

// CompactProtocol implements the Thrift compact protocol wire format.
type CompactProtocol struct{}

// Marshal writes v (which must be a struct or pointer to struct) to w
// using the Thrift compact protocol.
func (CompactProtocol) Marshal(w io.Writer, v any) error {
	e := &encoder{w: w}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("thrift: cannot marshal %s", rv.Kind())
	}
	if err := e.writeStruct(rv); err != nil {
		return err
	}
	return e.err
}

// Marshal is a convenience wrapper equivalent to
// CompactProtocol{}.Marshal(w, v).
func Marshal(w io.Writer, v any) error {
	return CompactProtocol{}.Marshal(w, v)
}

type encoder struct {
	w       io.Writer
	err     error
	lastID  []int16
}

const (
	ctStop         = 0x0
	ctBooleanTrue  = 0x1
	ctBooleanFalse = 0x2
	ctByte         = 0x3
	ctI16          = 0x4
	ctI32          = 0x5
	ctI64          = 0x6
	ctDouble       = 0x7
	ctBinary       = 0x8
	ctList         = 0x9
	ctSet          = 0xA
	ctMap          = 0xB
	ctStruct       = 0xC
)

func (e *encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *encoder) writeByte(b byte) { e.write([]byte{b}) }

func (e *encoder) writeVarint(u uint64) {
	var buf [10]byte
	n := 0
	for {
		if u < 0x80 {
			buf[n] = byte(u)
			n++
			break
		}
		buf[n] = byte(u) | 0x80
		n++
		u >>= 7
	}
	e.write(buf[:n])
}

func zigzag32(v int32) uint64 { return uint64(uint32((v << 1) ^ (v >> 31))) }
func zigzag64(v int64) uint64 { return uint64((v << 1) ^ (v >> 63)) }

func (e *encoder) writeI32(v int32) { e.writeVarint(zigzag32(v)) }
func (e *encoder) writeI64(v int64) { e.writeVarint(zigzag64(v)) }

func (e *encoder) writeBinary(b []byte) {
	e.writeVarint(uint64(len(b)))
	e.write(b)
}

func (e *encoder) pushStruct() { e.lastID = append(e.lastID, 0) }
func (e *encoder) popStruct()  { e.lastID = e.lastID[:len(e.lastID)-1] }

// writeFieldHeader emits the compact-protocol field header, using the
// short form (delta <= 15) when possible.
func (e *encoder) writeFieldHeader(id int16, typ byte) {
	top := len(e.lastID) - 1
	delta := id - e.lastID[top]
	if delta > 0 && delta <= 15 {
		e.writeByte(byte(delta)<<4 | typ)
	} else {
		e.writeByte(typ)
		e.writeI16Raw(id)
	}
	e.lastID[top] = id
}

func (e *encoder) writeI16Raw(v int16) { e.writeVarint(zigzag32(int32(v))) }

func (e *encoder) writeStop() { e.writeByte(ctStop) }

type tag struct {
	id       int16
	required bool
}

func parseTag(f reflect.StructField) (tag, bool) {
	raw := f.Tag.Get("thrift")
	if raw == "" {
		return tag{}, false
	}
	parts := strings.Split(raw, ",")
	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return tag{}, false
	}
	t := tag{id: int16(id)}
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "required" {
			t.required = true
		}
	}
	return t, true
}

func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return v.IsNil()
	case reflect.String:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}

func (e *encoder) writeStruct(rv reflect.Value) error {
	e.pushStruct()
	defer e.popStruct()

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue
		}
		t, ok := parseTag(f)
		if !ok {
			continue
		}
		fv, present := derefField(rv.Field(i))
		if !present || (!t.required && isZero(fv)) {
			continue
		}
		if err := e.writeField(t.id, fv); err != nil {
			return err
		}
	}
	e.writeStop()
	return e.err
}

// derefField follows pointer indirections, reporting false if a nil
// pointer was encountered (the field is absent on the wire).
func derefField(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, true
}

func (e *encoder) writeField(id int16, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		typ := byte(ctBooleanFalse)
		if v.Bool() {
			typ = ctBooleanTrue
		}
		e.writeFieldHeader(id, typ)
		return e.err
	case reflect.Int8:
		e.writeFieldHeader(id, ctByte)
		e.writeByte(byte(v.Int()))
		return e.err
	case reflect.Int16:
		e.writeFieldHeader(id, ctI16)
		e.writeI16Raw(int16(v.Int()))
		return e.err
	case reflect.Int32, reflect.Int:
		e.writeFieldHeader(id, ctI32)
		e.writeI32(int32(v.Int()))
		return e.err
	case reflect.Int64:
		e.writeFieldHeader(id, ctI64)
		e.writeI64(v.Int())
		return e.err
	case reflect.Float64, reflect.Float32:
		e.writeFieldHeader(id, ctDouble)
		e.writeFloat64(v.Float())
		return e.err
	case reflect.String:
		e.writeFieldHeader(id, ctBinary)
		e.writeBinary([]byte(v.String()))
		return e.err
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			e.writeFieldHeader(id, ctBinary)
			e.writeBinary(v.Bytes())
			return e.err
		}
		e.writeFieldHeader(id, ctList)
		e.writeListHeader(v.Len(), elemCompactType(v.Type().Elem()))
		for i := 0; i < v.Len(); i++ {
			e.writeListElem(v.Index(i))
		}
		return e.err
	case reflect.Struct:
		e.writeFieldHeader(id, ctStruct)
		return e.writeStruct(v)
	default:
		return fmt.Errorf("thrift: unsupported field kind %s", v.Kind())
	}
}

func (e *encoder) writeFloat64(f float64) {
	bits := math.Float64bits(f)
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(bits)
		bits >>= 8
	}
	e.write(buf[:])
}

func elemCompactType(t reflect.Type) byte {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return ctBooleanTrue
	case reflect.Int8:
		return ctByte
	case reflect.Int16:
		return ctI16
	case reflect.Int32, reflect.Int:
		return ctI32
	case reflect.Int64:
		return ctI64
	case reflect.Float64, reflect.Float32:
		return ctDouble
	case reflect.String:
		return ctBinary
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ctBinary
		}
		return ctList
	case reflect.Struct:
		return ctStruct
	default:
		return ctStruct
	}
}

func (e *encoder) writeListHeader(size int, elemType byte) {
	if size < 15 {
		e.writeByte(byte(size)<<4 | elemType)
	} else {
		e.writeByte(0xF0 | elemType)
		e.writeVarint(uint64(size))
	}
}

func (e *encoder) writeListElem(v reflect.Value) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			e.writeByte(1)
		} else {
			e.writeByte(0)
		}
	case reflect.Int8:
		e.writeByte(byte(v.Int()))
	case reflect.Int16:
		e.writeI16Raw(int16(v.Int()))
	case reflect.Int32, reflect.Int:
		e.writeI32(int32(v.Int()))
	case reflect.Int64:
		e.writeI64(v.Int())
	case reflect.Float64, reflect.Float32:
		e.writeFloat64(v.Float())
	case reflect.String:
		e.writeBinary([]byte(v.String()))
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			e.writeBinary(v.Bytes())
		}
	case reflect.Struct:
		e.pushStruct()
		rt := v.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			t, ok := parseTag(f)
			if !ok {
				continue
			}
			fv, present := derefField(v.Field(i))
			if !present || (!t.required && isZero(fv)) {
				continue
			}
			e.writeField(t.id, fv)
		}
		e.writeStop()
		e.popStruct()
	}
}
