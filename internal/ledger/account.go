package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// ErrCorruptAccount is returned when an account payload matches neither
// supported schema size.
var ErrCorruptAccount = errors.New("corrupt prediction account")

// The wire format has no version marker; the two schema generations are told
// apart purely by total payload length.
type SchemaKind int

const (
	SchemaCompact SchemaKind = iota
	SchemaFull
)

func (k SchemaKind) String() string {
	if k == SchemaFull {
		return "full"
	}
	return "compact"
}

const (
	discriminatorSize = 8
	ownerSize         = 32

	compactAssetSize = 6
	fullAssetSize    = 32
)

// PredictionSlot is one stored pick. A zero Asset means the slot is unused.
// Prices are fixed-point with 9 implied decimals; 0 resolution price means
// unresolved.
type PredictionSlot struct {
	Asset           string
	EntryTimestamp  int64
	Duration        int64
	PredictedPct    int16
	EntryPrice      uint64
	ResolutionPrice uint64
}

type PredictionAccount struct {
	Owner           [ownerSize]byte
	Top             [SlotsPerCategory]PredictionSlot
	Worst           [SlotsPerCategory]PredictionSlot
	PredictionCount uint64
	TotalPoints     uint64
	LastUpdated     int64
	Schema          SchemaKind
}

// Slot returns the slot at (category, rank). Rank must be 0..4.
func (a *PredictionAccount) Slot(category Category, rank int) *PredictionSlot {
	if category == CategoryWorst {
		return &a.Worst[rank]
	}
	return &a.Top[rank]
}

// field is one fixed-width wire field; offsets are additive over the ordered
// schema list.
type field struct {
	name  string
	width int
	apply func(acc *PredictionAccount, raw []byte)
}

type schema struct {
	kind   SchemaKind
	fields []field
}

func (s schema) size() int {
	total := 0
	for _, f := range s.fields {
		total += f.width
	}
	return total
}

// offsetOf returns the byte offset of a named field. Used by fixture tests.
func (s schema) offsetOf(name string) (int, bool) {
	offset := 0
	for _, f := range s.fields {
		if f.name == name {
			return offset, true
		}
		offset += f.width
	}
	return 0, false
}

func headerFields() []field {
	return []field{
		{name: "discriminator", width: discriminatorSize, apply: func(*PredictionAccount, []byte) {}},
		{name: "owner", width: ownerSize, apply: func(acc *PredictionAccount, raw []byte) {
			copy(acc.Owner[:], raw)
		}},
	}
}

// slotFields emits one field per (category, rank) pair, top slots first.
func slotFields(name string, width int, apply func(slot *PredictionSlot, raw []byte)) []field {
	fields := make([]field, 0, 2*SlotsPerCategory)
	for _, category := range Categories() {
		category := category
		for rank := 0; rank < SlotsPerCategory; rank++ {
			rank := rank
			fields = append(fields, field{
				name:  fmt.Sprintf("%s_%s_%d", category, name, rank),
				width: width,
				apply: func(acc *PredictionAccount, raw []byte) {
					apply(acc.Slot(category, rank), raw)
				},
			})
		}
	}
	return fields
}

func trailerFields(withCount bool) []field {
	fields := []field{}
	if withCount {
		fields = append(fields, field{name: "prediction_count", width: 8, apply: func(acc *PredictionAccount, raw []byte) {
			acc.PredictionCount = binary.LittleEndian.Uint64(raw)
		}})
	}
	fields = append(fields,
		field{name: "total_points", width: 8, apply: func(acc *PredictionAccount, raw []byte) {
			acc.TotalPoints = binary.LittleEndian.Uint64(raw)
		}},
		field{name: "last_updated", width: 8, apply: func(acc *PredictionAccount, raw []byte) {
			acc.LastUpdated = int64(binary.LittleEndian.Uint64(raw))
		}},
	)
	return fields
}

func assetField(slot *PredictionSlot, raw []byte) {
	slot.Asset = trimFixed(raw)
}

func timestampField(slot *PredictionSlot, raw []byte) {
	slot.EntryTimestamp = int64(binary.LittleEndian.Uint64(raw))
}

func buildCompactSchema() schema {
	fields := headerFields()
	fields = append(fields, slotFields("asset", compactAssetSize, assetField)...)
	fields = append(fields, slotFields("entry_ts", 8, timestampField)...)
	fields = append(fields, trailerFields(false)...)
	return schema{kind: SchemaCompact, fields: fields}
}

func buildFullSchema() schema {
	fields := headerFields()
	fields = append(fields, slotFields("asset", fullAssetSize, assetField)...)
	fields = append(fields, slotFields("entry_ts", 8, timestampField)...)
	fields = append(fields, slotFields("predicted_pct", 2, func(slot *PredictionSlot, raw []byte) {
		slot.PredictedPct = int16(binary.LittleEndian.Uint16(raw))
	})...)
	fields = append(fields, slotFields("entry_price", 8, func(slot *PredictionSlot, raw []byte) {
		slot.EntryPrice = binary.LittleEndian.Uint64(raw)
	})...)
	fields = append(fields, slotFields("resolution_price", 8, func(slot *PredictionSlot, raw []byte) {
		slot.ResolutionPrice = binary.LittleEndian.Uint64(raw)
	})...)
	fields = append(fields, slotFields("duration", 8, func(slot *PredictionSlot, raw []byte) {
		slot.Duration = int64(binary.LittleEndian.Uint64(raw))
	})...)
	fields = append(fields, trailerFields(true)...)
	return schema{kind: SchemaFull, fields: fields}
}

var (
	compactSchema = buildCompactSchema()
	fullSchema    = buildFullSchema()
)

// CompactAccountSize and FullAccountSize are the only two valid payload
// lengths.
var (
	CompactAccountSize = compactSchema.size()
	FullAccountSize    = fullSchema.size()
)

// DecodeAccount decodes a raw ledger account payload. The schema variant is
// selected by payload length; any other length is corrupt.
func DecodeAccount(data []byte) (*PredictionAccount, error) {
	var s schema
	switch len(data) {
	case CompactAccountSize:
		s = compactSchema
	case FullAccountSize:
		s = fullSchema
	default:
		return nil, fmt.Errorf("%w: %d bytes, want %d or %d",
			ErrCorruptAccount, len(data), CompactAccountSize, FullAccountSize)
	}

	acc := &PredictionAccount{Schema: s.kind}
	offset := 0
	for _, f := range s.fields {
		f.apply(acc, data[offset:offset+f.width])
		offset += f.width
	}
	return acc, nil
}

func trimFixed(raw []byte) string {
	return strings.TrimRight(string(raw), "\x00 ")
}
