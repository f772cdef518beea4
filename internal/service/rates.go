package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ReferenceRateClient получает справочную ставку кредитования из
// веб-сервиса BCR (Banco Central de Reserva de El Salvador).
// Ставка используется по умолчанию при создании группы без явной ставки.
type ReferenceRateClient struct {
	httpClient *http.Client
	endpoint   string
	logger     *logrus.Logger
}

const defaultRateEndpoint = "https://www.bcr.gob.sv/svc/TasasInteres.asmx/TasaReferencia"

// NewReferenceRateClient создаёт клиента веб-сервиса BCR
func NewReferenceRateClient(logger *logrus.Logger) *ReferenceRateClient {
	return &ReferenceRateClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		endpoint: defaultRateEndpoint,
		logger:   logger,
	}
}

// fetchRateDocument запрашивает XML со справочными ставками
func (c *ReferenceRateClient) fetchRateDocument() ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка при выполнении HTTP-запроса: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("веб-сервис BCR вернул статус %d", resp.StatusCode)
	}

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении ответа: %v", err)
	}

	return rawBody, nil
}

// parseRateResponse извлекает значение ставки из XML-ответа
func parseRateResponse(rawBody []byte) (decimal.Decimal, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return decimal.Zero, fmt.Errorf("ошибка при разборе XML: %v", err)
	}

	rateElements := doc.FindElements("//TasaReferencia/Tasa")
	if len(rateElements) == 0 {
		return decimal.Zero, errors.New("данные по справочной ставке не найдены")
	}

	rateStr := rateElements[0].Text()
	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ошибка при преобразовании ставки: %v", err)
	}

	return rate, nil
}

// GetReferenceRate получает актуальную справочную ставку, % годовых
func (c *ReferenceRateClient) GetReferenceRate() (decimal.Decimal, error) {
	c.logger.Info("Запрос справочной ставки BCR...")

	rawBody, err := c.fetchRateDocument()
	if err != nil {
		c.logger.WithError(err).Error("Ошибка при запросе к веб-сервису BCR")
		return decimal.Zero, err
	}

	rate, err := parseRateResponse(rawBody)
	if err != nil {
		c.logger.WithError(err).Error("Ошибка при разборе XML-ответа BCR")
		return decimal.Zero, err
	}

	c.logger.WithField("reference_rate", rate).Info("Справочная ставка успешно получена")
	return rate, nil
}
