package ledger

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrAccountNotFound is returned by AccountReader implementations when no
// account exists at the requested address.
var ErrAccountNotFound = errors.New("account not found")

// AccountReader fetches raw account payloads from the ledger.
type AccountReader interface {
	GetAccountData(ctx context.Context, address string) ([]byte, error)
}

// TxSubmitter packs instructions addressing one wallet into a single signed
// transaction, submits it, and awaits confirmation. The whole batch lands
// atomically or not at all.
type TxSubmitter interface {
	Submit(ctx context.Context, wallet string, instructions []Instruction) (string, error)
}

// NodeClient is the RPC surface a submitter needs from the chain client.
type NodeClient interface {
	SendTransaction(ctx context.Context, txBase64 string) (string, error)
	ConfirmTransaction(ctx context.Context, signature string) error
}

// ChainSubmitter signs with the resolver authority and submits through the
// node RPC.
type ChainSubmitter struct {
	Node        NodeClient
	Authority   *Authority
	ProgramID   string
	GlobalState string
}

const txMessageVersion = 0x01

func (s *ChainSubmitter) Submit(ctx context.Context, wallet string, instructions []Instruction) (string, error) {
	if len(instructions) == 0 {
		return "", fmt.Errorf("no instructions to submit")
	}
	message, err := s.packMessage(wallet, instructions)
	if err != nil {
		return "", err
	}
	signature := s.Authority.Sign(message)
	tx := make([]byte, 0, len(signature)+len(message))
	tx = append(tx, signature...)
	tx = append(tx, message...)

	sig, err := s.Node.SendTransaction(ctx, base64.StdEncoding.EncodeToString(tx))
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	if err := s.Node.ConfirmTransaction(ctx, sig); err != nil {
		return "", fmt.Errorf("confirm transaction: %w", err)
	}
	return sig, nil
}

// packMessage lays out version, program id, the three accounts every
// instruction addresses (wallet, global state, authority), then the
// length-prefixed instruction payloads.
func (s *ChainSubmitter) packMessage(wallet string, instructions []Instruction) ([]byte, error) {
	walletKey, err := DecodeAddress(wallet)
	if err != nil {
		return nil, fmt.Errorf("wallet address: %w", err)
	}
	programKey, err := DecodeAddress(s.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("program id: %w", err)
	}
	globalKey, err := DecodeAddress(s.GlobalState)
	if err != nil {
		return nil, fmt.Errorf("global state address: %w", err)
	}

	message := []byte{txMessageVersion}
	message = append(message, programKey[:]...)
	message = append(message, walletKey[:]...)
	message = append(message, globalKey[:]...)
	message = append(message, s.Authority.PublicKey()...)

	var count [2]byte
	binary.LittleEndian.PutUint16(count[:], uint16(len(instructions)))
	message = append(message, count[:]...)
	for _, ix := range instructions {
		var size [2]byte
		binary.LittleEndian.PutUint16(size[:], uint16(len(ix.Data)))
		message = append(message, size[:]...)
		message = append(message, ix.Data...)
	}
	return message, nil
}

// DecodeAddress parses a hex-encoded 32-byte ledger address.
func DecodeAddress(address string) ([ownerSize]byte, error) {
	var key [ownerSize]byte
	raw, err := hex.DecodeString(address)
	if err != nil {
		return key, fmt.Errorf("address %q is not hex: %w", address, err)
	}
	if len(raw) != ownerSize {
		return key, fmt.Errorf("address %q has %d bytes, want %d", address, len(raw), ownerSize)
	}
	copy(key[:], raw)
	return key, nil
}
