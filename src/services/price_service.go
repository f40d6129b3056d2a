package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/username/stockfolio/src/config"
	"github.com/username/stockfolio/src/database"
	"github.com/username/stockfolio/src/logger"
	"github.com/username/stockfolio/src/model"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

type priceServiceImpl struct {
	httpClient    http.Client
	limiter       *rate.Limiter
	isInitialized bool
	crumb         string
	mu            sync.Mutex
}

func NewPriceService() PriceService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	client := http.Client{
		Jar:     jar,
		Timeout: 20 * time.Second,
	}

	s := &priceServiceImpl{
		httpClient:    client,
		limiter:       rate.NewLimiter(rate.Every(config.Cfg.QuoteRequestInterval), 1),
		isInitialized: false,
	}

	go s.initializeYahooSession()

	return s
}

func (s *priceServiceImpl) initializeYahooSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isInitialized && s.crumb != "" {
		return
	}

	logger.L.Info("Initializing Yahoo Finance session and fetching Crumb...")

	req1, _ := http.NewRequest("GET", "https://fc.yahoo.com", nil)
	req1.Header.Set("User-Agent", userAgent)
	resp1, err := s.httpClient.Do(req1)
	if err == nil {
		io.Copy(io.Discard, resp1.Body)
		resp1.Body.Close()
	}

	req2, _ := http.NewRequest("GET", "https://finance.yahoo.com", nil)
	req2.Header.Set("User-Agent", userAgent)
	resp2, err := s.httpClient.Do(req2)
	if err == nil {
		io.Copy(io.Discard, resp2.Body)
		resp2.Body.Close()
	}

	req3, _ := http.NewRequest("GET", config.Cfg.QuoteBaseURL+"/v1/test/getcrumb", nil)
	req3.Header.Set("User-Agent", userAgent)
	resp3, err := s.httpClient.Do(req3)
	if err != nil {
		logger.L.Error("Failed to fetch crumb", "error", err)
		return
	}
	defer resp3.Body.Close()

	if resp3.StatusCode == http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp3.Body)
		s.crumb = string(bodyBytes)
		s.isInitialized = true
		logger.L.Info("Yahoo session initialized successfully")
	} else {
		logger.L.Warn("Failed to fetch crumb", "status", resp3.Status)
	}
}

func (s *priceServiceImpl) ensureSession() {
	s.mu.Lock()
	needsInit := !s.isInitialized || s.crumb == ""
	s.mu.Unlock()

	if needsInit {
		s.initializeYahooSession()
	}
}

// GetPrices serves quotes from the on-disk cache when they are younger than
// the configured TTL and fetches the rest. Every requested symbol gets an
// entry; unresolvable symbols map to 0.
func (s *priceServiceImpl) GetPrices(symbols []string) map[string]float64 {
	results := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		results[symbol] = 0
	}
	if len(symbols) == 0 {
		return results
	}

	cached, err := model.ListCachedPrices(database.DB)
	if err != nil {
		logger.L.Error("Failed to read price cache", "error", err)
	}

	now := time.Now()
	var symbolsToFetch []string
	for _, symbol := range symbols {
		if cp, ok := cached[symbol]; ok && now.Sub(cp.UpdatedAt) < config.Cfg.PriceCacheTTL {
			results[symbol] = cp.Price
		} else {
			symbolsToFetch = append(symbolsToFetch, symbol)
		}
	}

	if len(symbolsToFetch) > 0 {
		s.fetchAndStore(context.Background(), symbolsToFetch, results)
	}
	return results
}

// RefreshAll ignores cache freshness and re-fetches every symbol. It stops
// early when the context is cancelled.
func (s *priceServiceImpl) RefreshAll(ctx context.Context, symbols []string) (map[string]float64, error) {
	results := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		results[symbol] = 0
	}
	if err := s.fetchAndStore(ctx, symbols, results); err != nil {
		return results, err
	}
	return results, nil
}

func (s *priceServiceImpl) fetchAndStore(ctx context.Context, symbols []string, results map[string]float64) error {
	s.ensureSession()

	for _, symbol := range symbols {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		price, err := s.fetchQuote(ctx, symbol)
		if err != nil {
			logger.L.Warn("Could not get quote for symbol", "symbol", symbol, "error", err)
			continue
		}
		results[symbol] = price
		if err := model.UpsertPrice(database.DB, symbol, price, time.Now()); err != nil {
			logger.L.Error("Failed to cache price", "symbol", symbol, "error", err)
		}
	}
	return nil
}

func (s *priceServiceImpl) fetchQuote(ctx context.Context, symbol string) (float64, error) {
	quoteURL := fmt.Sprintf("%s/v8/finance/chart/%s?crumb=%s", config.Cfg.QuoteBaseURL, symbol, s.crumb)
	req, err := http.NewRequestWithContext(ctx, "GET", quoteURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call Yahoo chart API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == 401 {
		s.mu.Lock()
		s.isInitialized = false
		s.mu.Unlock()
		return 0, fmt.Errorf("status 401 (Unauthorized) - Crumb invalid")
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("yahoo chart API returned non-OK status %d", resp.StatusCode)
	}
	var chartData yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chartData); err != nil {
		return 0, fmt.Errorf("failed to decode Yahoo chart response: %w", err)
	}
	if chartData.Chart.Error != nil {
		return 0, fmt.Errorf("yahoo chart API returned an error: %v", chartData.Chart.Error)
	}
	if len(chartData.Chart.Result) == 0 || chartData.Chart.Result[0].Meta.RegularMarketPrice == 0 {
		return 0, fmt.Errorf("no price data found")
	}
	return chartData.Chart.Result[0].Meta.RegularMarketPrice, nil
}
