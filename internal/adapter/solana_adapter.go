package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/TicketsPartners/service-tickets/internal/domain"
	"github.com/TicketsPartners/service-tickets/internal/domain/payment"
)

// ChainClient is the anti-corruption layer over the Solana JSON-RPC API.
type ChainClient interface {
	// FindSignatureByReference returns the most recent signature that references
	// the given account, or "" when there is none yet.
	FindSignatureByReference(ctx context.Context, reference string) (string, error)

	// GetParsedTransaction returns the transaction at confirmed commitment, or nil
	// when the node does not have it yet.
	GetParsedTransaction(ctx context.Context, signature string) (*payment.Transaction, error)
}

// SolanaRPCAdapter implements ChainClient with solana-go.
type SolanaRPCAdapter struct {
	client  *rpc.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewSolanaRPCAdapter creates an adapter for the given RPC endpoint.
func NewSolanaRPCAdapter(endpoint string, timeout time.Duration, logger *zap.Logger) *SolanaRPCAdapter {
	return &SolanaRPCAdapter{
		client:  rpc.New(endpoint),
		timeout: timeout,
		logger:  logger,
	}
}

// FindSignatureByReference queries getSignaturesForAddress with limit 1.
func (a *SolanaRPCAdapter) FindSignatureByReference(ctx context.Context, reference string) (string, error) {
	key, err := solana.PublicKeyFromBase58(reference)
	if err != nil {
		return "", domain.NewValidationError("Invalid reference")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	limit := 1
	sigs, err := a.client.GetSignaturesForAddressWithOpts(ctx, key, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("get signatures for %s: %w", reference, err)
	}
	if len(sigs) == 0 || sigs[0] == nil {
		return "", nil
	}
	return sigs[0].Signature.String(), nil
}

// GetParsedTransaction fetches the jsonParsed form of the transaction.
func (a *SolanaRPCAdapter) GetParsedTransaction(ctx context.Context, signature string) (*payment.Transaction, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %s: %w", signature, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	maxVersion := uint64(0)
	out, err := a.client.GetParsedTransaction(ctx, sig, &rpc.GetParsedTransactionOpts{
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get parsed transaction %s: %w", signature, err)
	}
	if out == nil || out.Transaction == nil {
		return nil, nil
	}

	tx := &payment.Transaction{Signature: signature, Slot: out.Slot}
	for _, inst := range out.Transaction.Message.Instructions {
		if inst == nil {
			continue
		}
		tx.Instructions = append(tx.Instructions, toInstruction(inst, a.logger))
	}
	return tx, nil
}

// Close releases the underlying RPC connection.
func (a *SolanaRPCAdapter) Close() error {
	return a.client.Close()
}

type parsedTransferInfo struct {
	Type string `json:"type"`
	Info struct {
		Source      string `json:"source"`
		Destination string `json:"destination"`
		Lamports    uint64 `json:"lamports"`
	} `json:"info"`
}

// toInstruction flattens a jsonParsed instruction. Instructions the node could
// not parse keep only their program id.
func toInstruction(inst *rpc.ParsedInstruction, logger *zap.Logger) payment.Instruction {
	out := payment.Instruction{ProgramID: inst.ProgramId.String()}
	if inst.Parsed == nil {
		return out
	}
	raw, err := json.Marshal(inst.Parsed)
	if err != nil {
		logger.Debug("unreadable parsed instruction", zap.String("program", out.ProgramID), zap.Error(err))
		return out
	}
	var info parsedTransferInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		// string-form instructions (e.g. memo) do not decode into an object
		return out
	}
	out.Type = info.Type
	out.Source = info.Info.Source
	out.Destination = info.Info.Destination
	out.Lamports = info.Info.Lamports
	return out
}
