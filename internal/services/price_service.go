package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PriceNormalizer converts token amounts into a common USD-equivalent value.
// The boolean result reports whether the value resolved; consumers fall back
// to raw-amount comparison when it did not.
type PriceNormalizer interface {
	USDValue(ctx context.Context, amount decimal.Decimal, tokenAddress string) (decimal.Decimal, bool)
}

const priceCacheTTL = 60 * time.Second

// PriceService resolves per-token USD prices from an external oracle.
// The designated stablecoin is fixed at 1:1 and never queried. Prices are
// cached with a short TTL so settlement issues one oracle query per distinct
// token, not per bid.
type PriceService struct {
	baseURL           string
	stablecoinAddress string

	pricesMux sync.RWMutex
	prices    map[string]decimal.Decimal // token address -> USD price per unit
	lastFetch map[string]time.Time

	client *http.Client
}

func NewPriceService(baseURL, stablecoinAddress string) *PriceService {
	return &PriceService{
		baseURL:           baseURL,
		stablecoinAddress: stablecoinAddress,
		prices:            make(map[string]decimal.Decimal),
		lastFetch:         make(map[string]time.Time),
		client:            &http.Client{Timeout: 10 * time.Second},
	}
}

// USDValue converts amount of the given token into USD. Oracle failure is
// absorbed: the second result is false and the caller decides the fallback.
func (ps *PriceService) USDValue(ctx context.Context, amount decimal.Decimal, tokenAddress string) (decimal.Decimal, bool) {
	if tokenAddress == ps.stablecoinAddress {
		return amount, true
	}

	price, ok := ps.getPrice(ctx, tokenAddress)
	if !ok {
		return decimal.Zero, false
	}

	return amount.Mul(price), true
}

// getPrice returns a cached price when fresh, otherwise queries the oracle
func (ps *PriceService) getPrice(ctx context.Context, tokenAddress string) (decimal.Decimal, bool) {
	ps.pricesMux.RLock()
	price, hasPrice := ps.prices[tokenAddress]
	lastFetch, hasFetch := ps.lastFetch[tokenAddress]
	ps.pricesMux.RUnlock()

	if hasPrice && hasFetch && time.Since(lastFetch) < priceCacheTTL {
		return price, true
	}

	fresh, err := ps.fetchPrice(ctx, tokenAddress)
	if err != nil {
		log.Warnf("[PriceService] oracle lookup failed for %s: %v", tokenAddress, err)
		// Serve a stale cached price over nothing
		if hasPrice {
			return price, true
		}
		return decimal.Zero, false
	}

	ps.pricesMux.Lock()
	ps.prices[tokenAddress] = fresh
	ps.lastFetch[tokenAddress] = time.Now()
	ps.pricesMux.Unlock()

	return fresh, true
}

// fetchPrice queries the oracle for one token's USD price.
// Example: GET {base}/simple/token_price/solana?contract_addresses=X&vs_currencies=usd
// Response: {"<address>":{"usd":1.23}}
func (ps *PriceService) fetchPrice(ctx context.Context, tokenAddress string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/simple/token_price/solana?contract_addresses=%s&vs_currencies=usd",
		ps.baseURL, tokenAddress)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := ps.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return decimal.Zero, fmt.Errorf("oracle returned %d: %s", resp.StatusCode, string(body))
	}

	var result map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, fmt.Errorf("oracle parse error: %w", err)
	}

	tokenData, ok := result[tokenAddress]
	if !ok {
		return decimal.Zero, fmt.Errorf("oracle returned no data for %s", tokenAddress)
	}

	usdPrice, ok := tokenData["usd"]
	if !ok || usdPrice == 0 {
		return decimal.Zero, fmt.Errorf("oracle returned no USD price for %s", tokenAddress)
	}

	log.Infof("[PriceService] %s price: $%.6f", tokenAddress, usdPrice)
	return decimal.NewFromFloat(usdPrice), nil
}
