package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/stockfolio/src/database"
	"github.com/username/stockfolio/src/logger"
	"github.com/username/stockfolio/src/model"
	"github.com/username/stockfolio/src/models"
	"github.com/username/stockfolio/src/processors"
)

const (
	ckHoldings             = "res_holdings"
	ckSaleRecords          = "res_sale_records"
	ckSummary              = "agg_summary_pf_%s"
	ckCashFlowSummary      = "agg_cashflow_summary"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type portfolioServiceImpl struct {
	holdingsProcessor *processors.HoldingsProcessor
	salesProcessor    *processors.SalesProcessor
	summaryProcessor  *processors.SummaryProcessor
	priceService      PriceService
	reportCache       *cache.Cache
}

func NewPortfolioService(
	holdingsProcessor *processors.HoldingsProcessor,
	salesProcessor *processors.SalesProcessor,
	summaryProcessor *processors.SummaryProcessor,
	priceService PriceService,
	reportCache *cache.Cache,
) PortfolioService {
	return &portfolioServiceImpl{
		holdingsProcessor: holdingsProcessor,
		salesProcessor:    salesProcessor,
		summaryProcessor:  summaryProcessor,
		priceService:      priceService,
		reportCache:       reportCache,
	}
}

func (s *portfolioServiceImpl) loadInputs() ([]models.Transaction, map[string]float64, error) {
	txs, err := model.ListTransactions(database.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	symbols, err := model.DistinctSymbols(database.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load symbols: %w", err)
	}
	return txs, s.priceService.GetPrices(symbols), nil
}

func (s *portfolioServiceImpl) GetHoldings() ([]models.Holding, error) {
	if cached, found := s.reportCache.Get(ckHoldings); found {
		return cached.([]models.Holding), nil
	}

	txs, prices, err := s.loadInputs()
	if err != nil {
		return nil, err
	}

	bySymbol := s.holdingsProcessor.Process(txs, prices, time.Now())
	holdings := make([]models.Holding, 0, len(bySymbol))
	for _, h := range bySymbol {
		holdings = append(holdings, h)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	s.reportCache.Set(ckHoldings, holdings, cache.DefaultExpiration)
	return holdings, nil
}

func (s *portfolioServiceImpl) GetSaleRecords() ([]models.SaleRecord, error) {
	if cached, found := s.reportCache.Get(ckSaleRecords); found {
		return cached.([]models.SaleRecord), nil
	}

	txs, prices, err := s.loadInputs()
	if err != nil {
		return nil, err
	}

	records := s.salesProcessor.Process(txs, prices)
	s.reportCache.Set(ckSaleRecords, records, cache.DefaultExpiration)
	return records, nil
}

func (s *portfolioServiceImpl) GetSummary(portfolio string) (models.PortfolioSummary, error) {
	cacheKey := fmt.Sprintf(ckSummary, portfolio)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(models.PortfolioSummary), nil
	}

	txs, prices, err := s.loadInputs()
	if err != nil {
		return models.PortfolioSummary{}, err
	}

	now := time.Now()
	holdings := s.holdingsProcessor.Process(txs, prices, now)
	sales := s.salesProcessor.Process(txs, prices)
	summary := s.summaryProcessor.Summarize(txs, holdings, sales, portfolio, now)

	s.reportCache.Set(cacheKey, summary, cache.DefaultExpiration)
	return summary, nil
}

func (s *portfolioServiceImpl) GetCashFlowSummary() (models.CashFlowSummary, error) {
	if cached, found := s.reportCache.Get(ckCashFlowSummary); found {
		return cached.(models.CashFlowSummary), nil
	}

	flows, err := model.ListCashFlows(database.DB)
	if err != nil {
		return models.CashFlowSummary{}, fmt.Errorf("failed to load cash flows: %w", err)
	}

	holdings, err := s.GetHoldings()
	if err != nil {
		return models.CashFlowSummary{}, err
	}
	var currentValue float64
	for _, h := range holdings {
		currentValue += h.CurrentValue
	}

	summary := s.summaryProcessor.SummarizeCashFlows(flows, currentValue, time.Now())
	s.reportCache.Set(ckCashFlowSummary, summary, cache.DefaultExpiration)
	return summary, nil
}

func (s *portfolioServiceImpl) InvalidateCache() {
	s.reportCache.Flush()
	logger.L.Debug("Report cache flushed")
}
