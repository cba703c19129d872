package listing

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"gitlab.connectwisedev.com/product-listing-service/models"
)

// codecVersion is embedded in every cached payload. Decoding rejects any
// other version, which the caller treats as a miss.
const codecVersion = 1

// timestampMarker tags timestamp values on the wire. Timestamps are carried
// as a marker plus an RFC 3339 string rather than a format-native type, so
// the payload stays self-describing across codec changes.
const timestampMarker = "ts"

// DecodeError reports an unusable cached payload: truncated, corrupt, or
// written by an incompatible codec version. Callers recover from it by
// falling through to the store.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cached envelope unusable: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type wireTimestamp struct {
	Marker string `msgpack:"t"`
	Value  string `msgpack:"v"`
}

type wireProduct struct {
	ID            int           `msgpack:"id"`
	Name          string        `msgpack:"name"`
	Description   string        `msgpack:"description"`
	Price         float64       `msgpack:"price"`
	Category      string        `msgpack:"category"`
	StockQuantity int           `msgpack:"stock_quantity"`
	CreatedAt     wireTimestamp `msgpack:"created_at"`
	UpdatedAt     wireTimestamp `msgpack:"updated_at"`
}

type wireEnvelope struct {
	Version    int           `msgpack:"ver"`
	Data       []wireProduct `msgpack:"data"`
	TotalCount int           `msgpack:"total_count"`
	Page       int           `msgpack:"page"`
	Limit      int           `msgpack:"limit"`
}

// EncodeEnvelope serializes a result page to the binary cache format.
func EncodeEnvelope(page *models.ProductPage) ([]byte, error) {
	env := wireEnvelope{
		Version:    codecVersion,
		Data:       make([]wireProduct, len(page.Data)),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		Limit:      page.Limit,
	}
	for i, p := range page.Data {
		env.Data[i] = wireProduct{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			Price:         p.Price,
			Category:      p.Category,
			StockQuantity: p.StockQuantity,
			CreatedAt:     encodeTimestamp(p.CreatedAt),
			UpdatedAt:     encodeTimestamp(p.UpdatedAt),
		}
	}

	payload, err := msgpack.Marshal(&env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return payload, nil
}

// DecodeEnvelope reconstructs a result page from its binary cache form.
// Every failure is a *DecodeError.
func DecodeEnvelope(payload []byte) (*models.ProductPage, error) {
	var env wireEnvelope
	if err := msgpack.Unmarshal(payload, &env); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if env.Version != codecVersion {
		return nil, &DecodeError{Err: fmt.Errorf("payload version %d, want %d", env.Version, codecVersion)}
	}

	page := &models.ProductPage{
		Data:       make([]models.Product, len(env.Data)),
		TotalCount: env.TotalCount,
		Page:       env.Page,
		Limit:      env.Limit,
	}
	for i, w := range env.Data {
		createdAt, err := decodeTimestamp(w.CreatedAt)
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		updatedAt, err := decodeTimestamp(w.UpdatedAt)
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		page.Data[i] = models.Product{
			ID:            w.ID,
			Name:          w.Name,
			Description:   w.Description,
			Price:         w.Price,
			Category:      w.Category,
			StockQuantity: w.StockQuantity,
			CreatedAt:     createdAt,
			UpdatedAt:     updatedAt,
		}
	}
	return page, nil
}

func encodeTimestamp(t time.Time) wireTimestamp {
	return wireTimestamp{
		Marker: timestampMarker,
		Value:  t.UTC().Format(time.RFC3339Nano),
	}
}

func decodeTimestamp(w wireTimestamp) (time.Time, error) {
	if w.Marker != timestampMarker {
		return time.Time{}, fmt.Errorf("timestamp marker %q, want %q", w.Marker, timestampMarker)
	}
	t, err := time.Parse(time.RFC3339Nano, w.Value)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp value %q: %w", w.Value, err)
	}
	return t, nil
}
