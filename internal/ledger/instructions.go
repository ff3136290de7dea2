package ledger

import (
	"encoding/binary"
	"fmt"
)

// Instruction is one opaque program call: an 8-byte discriminator followed by
// packed little-endian parameters. The program derives the actor account,
// global state, and authority from the transaction header.
type Instruction struct {
	Data []byte
}

// Instruction discriminators of the prediction program.
var (
	ixSetResolutionPrice = [8]byte{0x1b, 0x83, 0x1e, 0x52, 0xaa, 0x40, 0x9d, 0xc6}
	ixUpdateUserPoints   = [8]byte{0xa2, 0x0e, 0x1c, 0x7d, 0x2f, 0x6b, 0x55, 0x93}
	ixClearSingleSlot    = [8]byte{0x6f, 0x2d, 0xb8, 0x04, 0x91, 0xe3, 0x7a, 0x38}
	ixClearAllSlots      = [8]byte{0xc4, 0x57, 0x66, 0xf1, 0x08, 0x2c, 0xde, 0x15}
)

func checkRank(rank int) error {
	if rank < 0 || rank >= SlotsPerCategory {
		return fmt.Errorf("slot rank %d out of range [0,%d)", rank, SlotsPerCategory)
	}
	return nil
}

// SetResolutionPrice writes the observed resolution price (9-decimal fixed
// point) into one slot.
func SetResolutionPrice(category Category, rank int, price uint64) (Instruction, error) {
	if err := checkRank(rank); err != nil {
		return Instruction{}, err
	}
	data := make([]byte, 8+1+1+8)
	copy(data, ixSetResolutionPrice[:])
	data[8] = category.Flag()
	data[9] = byte(rank)
	binary.LittleEndian.PutUint64(data[10:], price)
	return Instruction{Data: data}, nil
}

// UpdateUserPoints sets the new cumulative point total. One per transaction,
// never per slot.
func UpdateUserPoints(newTotal uint64) Instruction {
	data := make([]byte, 8+8)
	copy(data, ixUpdateUserPoints[:])
	binary.LittleEndian.PutUint64(data[8:], newTotal)
	return Instruction{Data: data}
}

// ClearSingleSlot empties one slot so it can hold a new pick.
func ClearSingleSlot(category Category, rank int) (Instruction, error) {
	if err := checkRank(rank); err != nil {
		return Instruction{}, err
	}
	data := make([]byte, 8+1+1)
	copy(data, ixClearSingleSlot[:])
	data[8] = category.Flag()
	data[9] = byte(rank)
	return Instruction{Data: data}, nil
}

// ClearAllSlots empties the whole 10-slot account.
func ClearAllSlots() Instruction {
	data := make([]byte, 8)
	copy(data, ixClearAllSlots[:])
	return Instruction{Data: data}
}
