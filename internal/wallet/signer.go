package wallet

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

// Signer is the signing capability the trade executor depends on. A Signer
// takes an unsigned raw transaction, obtains approval, and returns the
// signature of the submitted transaction. Implementations may suspend
// indefinitely waiting for user approval; the executor imposes no timeout
// on this step.
type Signer interface {
	// Ready reports whether the signer can currently sign.
	Ready() bool
	// Address returns the base58 public key of the signing wallet, empty
	// when no wallet is connected.
	Address() string
	// SignAndSubmit signs the raw transaction and submits it, returning
	// the transaction signature.
	SignAndSubmit(ctx context.Context, rawTx []byte) (string, error)
}

// TransactionSubmitter submits a fully signed transaction to the ledger.
// Implemented by chain.HTTPClient.
type TransactionSubmitter interface {
	SendTransaction(ctx context.Context, signedTx []byte) (string, error)
}

// LocalSigner signs with an in-process ed25519 keypair and submits through
// the chain RPC client. It is the CLI's stand-in for a wallet app.
type LocalSigner struct {
	priv      ed25519.PrivateKey
	address   string
	submitter TransactionSubmitter
}

// NewLocalSigner builds a LocalSigner from a base58-encoded 32-byte seed.
// The derived public key is validated to be a canonical on-curve point.
func NewLocalSigner(seedBase58 string, submitter TransactionSubmitter) (*LocalSigner, error) {
	seed, err := base58.Decode(seedBase58)
	if err != nil {
		return nil, fmt.Errorf("wallet: decode seed: %w", err)
	}
	if len(seed) != seedLen {
		return nil, fmt.Errorf("wallet: expected %d-byte seed, got %d bytes", seedLen, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	if _, err := new(edwards25519.Point).SetBytes(pub); err != nil {
		return nil, fmt.Errorf("wallet: public key not on curve: %w", err)
	}

	return &LocalSigner{
		priv:      priv,
		address:   base58.Encode(pub),
		submitter: submitter,
	}, nil
}

// Ready reports whether the signer holds a key and a submitter.
func (s *LocalSigner) Ready() bool {
	return s != nil && len(s.priv) > 0 && s.submitter != nil
}

// Address returns the wallet's base58 public key.
func (s *LocalSigner) Address() string {
	if s == nil {
		return ""
	}
	return s.address
}

// SignAndSubmit signs the fee-payer slot of the raw transaction and submits
// it through the chain client. The returned signature is the ledger's
// identity for the transaction.
func (s *LocalSigner) SignAndSubmit(ctx context.Context, rawTx []byte) (string, error) {
	if !s.Ready() {
		return "", domain.ErrNotReady
	}

	numSlots, headerLen, err := decodeSignatureHeader(rawTx)
	if err != nil {
		return "", fmt.Errorf("wallet: parse transaction: %w", err)
	}
	if numSlots < 1 {
		return "", fmt.Errorf("wallet: transaction has no signature slots")
	}

	messageStart := headerLen + numSlots*ed25519.SignatureSize
	if len(rawTx) <= messageStart {
		return "", fmt.Errorf("wallet: transaction truncated: %d bytes, message starts at %d", len(rawTx), messageStart)
	}

	signed := make([]byte, len(rawTx))
	copy(signed, rawTx)

	// The fee payer signs the message bytes; its signature occupies slot 0.
	sig := ed25519.Sign(s.priv, rawTx[messageStart:])
	copy(signed[headerLen:], sig)

	submitted, err := s.submitter.SendTransaction(ctx, signed)
	if err != nil {
		return "", err
	}
	if submitted != "" {
		return submitted, nil
	}
	return base58.Encode(sig), nil
}

// decodeSignatureHeader reads the compact-u16 signature count that prefixes
// a wire transaction, returning the count and the header's byte length.
func decodeSignatureHeader(rawTx []byte) (count, headerLen int, err error) {
	var value uint32
	for i := 0; i < 3; i++ {
		if i >= len(rawTx) {
			return 0, 0, fmt.Errorf("truncated signature count")
		}
		b := rawTx[i]
		value |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return int(value), i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("malformed signature count")
}
