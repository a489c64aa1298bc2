package blockchain

import (
	"context"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ChainBid is one entry of the on-chain auction's authoritative bidder list
type ChainBid struct {
	WalletAddress string
	Amount        decimal.Decimal
}

// auctionAccount is the Borsh layout of the on-chain auction state
type auctionAccount struct {
	AuctionID uint64
	Host      solana.PublicKey
	TokenMint solana.PublicKey
	Bids      []auctionAccountBid
}

type auctionAccountBid struct {
	Bidder solana.PublicKey
	Amount uint64
}

// AuctionLedger reads the auction program's state. The chain is the
// authoritative bidder source; the service only ever reads it, except for the
// detached fee-distribution trigger fired after settlement.
type AuctionLedger struct {
	client    *SolanaClient
	programID solana.PublicKey
}

// NewAuctionLedger creates a ledger client for the auction program
func NewAuctionLedger(client *SolanaClient) (*AuctionLedger, error) {
	programID, err := solana.PublicKeyFromBase58(client.ProgramID())
	if err != nil {
		return nil, fmt.Errorf("invalid auction program id: %w", err)
	}
	return &AuctionLedger{client: client, programID: programID}, nil
}

// auctionPDA derives the program address of an auction account
func (l *AuctionLedger) auctionPDA(chainAuctionID int64) (solana.PublicKey, error) {
	idBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(idBytes, uint64(chainAuctionID))

	pda, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("auction"), idBytes},
		l.programID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive auction pda: %w", err)
	}
	return pda, nil
}

// GetBidders fetches the authoritative bidder list for an auction
func (l *AuctionLedger) GetBidders(ctx context.Context, chainAuctionID int64) ([]ChainBid, error) {
	pda, err := l.auctionPDA(chainAuctionID)
	if err != nil {
		return nil, err
	}

	data, err := l.client.GetAccountData(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch auction account %d: %w", chainAuctionID, err)
	}

	var account auctionAccount
	if err := bin.NewBorshDecoder(data).Decode(&account); err != nil {
		return nil, fmt.Errorf("failed to decode auction account %d: %w", chainAuctionID, err)
	}

	bids := make([]ChainBid, 0, len(account.Bids))
	for _, b := range account.Bids {
		bids = append(bids, ChainBid{
			WalletAddress: b.Bidder.String(),
			Amount:        decimal.NewFromUint64(b.Amount),
		})
	}

	log.Infof("[AuctionLedger] Fetched %d authoritative bidders for auction %d", len(bids), chainAuctionID)
	return bids, nil
}

// TriggerDistribution fires the post-settlement fee distribution instruction.
// Callers invoke this detached; a failure here never rolls back settlement.
func (l *AuctionLedger) TriggerDistribution(ctx context.Context, chainAuctionID int64) (string, error) {
	wallet := l.client.ServerWallet()
	if wallet == nil {
		return "", fmt.Errorf("server wallet not configured")
	}

	pda, err := l.auctionPDA(chainAuctionID)
	if err != nil {
		return "", err
	}

	blockhash, err := l.client.GetRecentBlockhash(ctx)
	if err != nil {
		return "", err
	}

	// Instruction data: discriminator 2 = distribute, then the auction id
	data := make([]byte, 9)
	data[0] = 2
	binary.LittleEndian.PutUint64(data[1:], uint64(chainAuctionID))

	instruction := solana.NewInstruction(
		l.programID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(pda, true, false),
			solana.NewAccountMeta(wallet.PublicKey(), true, true),
		},
		data,
	)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		blockhash,
		solana.TransactionPayer(wallet.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build distribution transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(wallet.PublicKey()) {
			pk := wallet.PrivateKey
			return &pk
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign distribution transaction: %w", err)
	}

	sig, err := l.client.SendTransaction(ctx, tx)
	if err != nil {
		return "", err
	}

	log.Infof("[AuctionLedger] Distribution triggered for auction %d: %s", chainAuctionID, sig)
	return sig.String(), nil
}
