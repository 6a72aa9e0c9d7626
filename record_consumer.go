package parquet

// RecordConsumer is the public ingestion surface described in §4's
// component overview: callers drive it with a matching
// startMessage/startField/add*/endField/startGroup/endGroup/endMessage
// sequence for each record, and the Shredder behind it translates that
// into per-column ⟨rep, def, value⟩ triples.
type RecordConsumer interface {
	StartMessage()
	StartField(name string, idx int) error
	AddBoolean(v bool) error
	AddInt32(v int32) error
	AddInt64(v int64) error
	AddInt96(v [12]byte) error
	AddFloat(v float32) error
	AddDouble(v float64) error
	AddBinary(v []byte) error
	StartGroup() error
	EndGroup() error
	EndField(name string, idx int) error
	EndMessage() error
}

// RecordEventKind tags the variant of a RecordEvent, the sum type the
// design notes (§9) mandate in place of the source's many-overload
// visitor callbacks.
type RecordEventKind int8

const (
	EventStartMessage RecordEventKind = iota
	EventStartField
	EventEndField
	EventStartGroup
	EventEndGroup
	EventAddValue
	EventEndMessage
)

// RecordEvent is a single event in the record-consumer stream. Field,
// Index and Value are meaningful only for the variants that use them
// (StartField/EndField carry Field+Index; AddValue carries Value).
type RecordEvent struct {
	Kind  RecordEventKind
	Field string
	Index int
	Value Value
}

// Emit feeds a single RecordEvent to a RecordConsumer, dispatching to the
// matching method. This lets a producer build a []RecordEvent (or stream
// one generator-style) and drive any RecordConsumer uniformly.
func Emit(c RecordConsumer, e RecordEvent) error {
	switch e.Kind {
	case EventStartMessage:
		c.StartMessage()
		return nil
	case EventStartField:
		return c.StartField(e.Field, e.Index)
	case EventEndField:
		return c.EndField(e.Field, e.Index)
	case EventStartGroup:
		return c.StartGroup()
	case EventEndGroup:
		return c.EndGroup()
	case EventAddValue:
		return addValue(c, e.Value)
	case EventEndMessage:
		return c.EndMessage()
	default:
		return &Internal{Message: "unknown RecordEvent kind"}
	}
}

func addValue(c RecordConsumer, v Value) error {
	if v.IsNull {
		return nil
	}
	switch v.Kind {
	case BooleanKind:
		return c.AddBoolean(v.Boolean)
	case Int32Kind:
		return c.AddInt32(v.Int32)
	case Int64Kind:
		return c.AddInt64(v.Int64)
	case Int96Kind:
		return c.AddInt96(v.Int96)
	case FloatKind:
		return c.AddFloat(v.Float)
	case DoubleKind:
		return c.AddDouble(v.Double)
	case ByteArrayKind, FixedLenByteArrayKind:
		return c.AddBinary(v.Bytes)
	default:
		return &Internal{Message: "unknown value kind"}
	}
}
