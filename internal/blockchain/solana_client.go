package blockchain

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

// SolanaClient handles Solana blockchain interactions
type SolanaClient struct {
	rpcClient    *rpc.Client
	network      string
	programID    string
	serverWallet *solana.Wallet
	httpClient   *http.Client
}

// NewSolanaClient creates a new Solana client
func NewSolanaClient(network, programID, privateKey string) *SolanaClient {
	var rpcURL string
	switch network {
	case "mainnet-beta":
		rpcURL = "https://api.mainnet-beta.solana.com"
	case "devnet":
		rpcURL = "https://api.devnet.solana.com"
	case "testnet":
		rpcURL = "https://api.testnet.solana.com"
	default:
		rpcURL = "https://api.devnet.solana.com"
	}

	client := &SolanaClient{
		rpcClient: rpc.New(rpcURL),
		network:   network,
		programID: programID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	// Initialize server wallet if private key is provided
	if privateKey != "" {
		wallet, err := solana.WalletFromPrivateKeyBase58(privateKey)
		if err != nil {
			log.Warnf("Failed to load server wallet: %v", err)
		} else {
			client.serverWallet = wallet
			log.Infof("Server wallet loaded: %s", wallet.PublicKey())
		}
	}

	return client
}

// SendTransaction sends a signed transaction to the network
func (s *SolanaClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := s.rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// GetRecentBlockhash gets the latest blockhash
func (s *SolanaClient) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	resp, err := s.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	return resp.Value.Blockhash, nil
}

// GetAccountData fetches the raw data of an on-chain account
func (s *SolanaClient) GetAccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	resp, err := s.rpcClient.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}
	if resp.Value == nil {
		return nil, fmt.Errorf("account %s not found", account)
	}
	return resp.Value.Data.GetBinary(), nil
}

// ServerWallet returns the server signing wallet, or nil when not configured
func (s *SolanaClient) ServerWallet() *solana.Wallet {
	return s.serverWallet
}

// ProgramID returns the configured auction program id
func (s *SolanaClient) ProgramID() string {
	return s.programID
}
