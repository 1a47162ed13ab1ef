// Package dataset covers the data side of the pipelines: downloading a raw
// dataset, preprocessing it into the canonical source/target frame, and the
// indexable adapters batching reads from.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"labd/internal/tabular"
)

// DefaultRowsURL is the public HuggingFace datasets-server rows endpoint.
const DefaultRowsURL = "https://datasets-server.huggingface.co/rows"

// pageSize is the maximum row count the rows API serves per request.
const pageSize = 100

// Importer downloads one split of a hosted dataset and materializes it as a
// raw frame. No retries; a failed fetch surfaces to the caller.
type Importer struct {
	hfName     string
	configName string
	split      string
	limit      int

	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger

	raw *tabular.Frame
}

// ImporterOption tweaks an Importer.
type ImporterOption func(*Importer)

// WithRowsURL points the importer at a different rows endpoint (tests, mirrors).
func WithRowsURL(u string) ImporterOption {
	return func(im *Importer) { im.baseURL = u }
}

// WithConfig selects a dataset config (e.g., "1.0.0" for cnn_dailymail).
func WithConfig(name string) ImporterOption {
	return func(im *Importer) { im.configName = name }
}

// WithSplit selects the split to download. Defaults to "train".
func WithSplit(split string) ImporterOption {
	return func(im *Importer) { im.split = split }
}

// WithLimit caps the number of rows fetched. Zero means all rows.
func WithLimit(n int) ImporterOption {
	return func(im *Importer) { im.limit = n }
}

// WithLogger installs a structured logger.
func WithLogger(l zerolog.Logger) ImporterOption {
	return func(im *Importer) { im.log = l }
}

// NewImporter builds an importer for the named dataset.
func NewImporter(hfName string, opts ...ImporterOption) *Importer {
	im := &Importer{
		hfName:     hfName,
		split:      "train",
		baseURL:    DefaultRowsURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Raw returns the downloaded frame, or nil before Obtain succeeds.
func (im *Importer) Raw() *tabular.Frame { return im.raw }

type rowsPage struct {
	Features []struct {
		Name string `json:"name"`
	} `json:"features"`
	Rows []struct {
		Row map[string]json.RawMessage `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// Obtain fetches the configured split page by page and stores it as the raw
// frame. A value that cannot be flattened into a cell fails with the typed
// not-tabular error.
func (im *Importer) Obtain(ctx context.Context) error {
	start := time.Now()
	var frame *tabular.Frame
	var cols []string
	offset := 0
	for {
		page, err := im.fetchPage(ctx, offset)
		if err != nil {
			return err
		}
		if frame == nil {
			if len(page.Features) == 0 {
				return ErrNotTabular("response carries no feature schema")
			}
			cols = make([]string, 0, len(page.Features))
			for _, f := range page.Features {
				cols = append(cols, f.Name)
			}
			frame = tabular.New(cols...)
		}
		for _, r := range page.Rows {
			cells := make([]string, len(cols))
			for i, c := range cols {
				v, err := coerceCell(r.Row[c])
				if err != nil {
					return ErrNotTabular(fmt.Sprintf("column %q: %v", c, err))
				}
				cells[i] = v
			}
			if err := frame.Append(cells...); err != nil {
				return ErrNotTabular(err.Error())
			}
			if im.limit > 0 && frame.NumRows() >= im.limit {
				im.raw = frame
				im.logDone(start)
				return nil
			}
		}
		offset += len(page.Rows)
		if len(page.Rows) == 0 || offset >= page.NumRowsTotal {
			break
		}
	}
	if frame == nil {
		return ErrNotTabular("empty response")
	}
	im.raw = frame
	im.logDone(start)
	return nil
}

func (im *Importer) logDone(start time.Time) {
	im.log.Info().
		Str("dataset", im.hfName).
		Str("split", im.split).
		Int("rows", im.raw.NumRows()).
		Dur("dur", time.Since(start)).
		Msg("dataset obtained")
	rowsImported.Add(float64(im.raw.NumRows()))
}

func (im *Importer) fetchPage(ctx context.Context, offset int) (*rowsPage, error) {
	q := url.Values{}
	q.Set("dataset", im.hfName)
	if im.configName != "" {
		q.Set("config", im.configName)
	} else {
		q.Set("config", "default")
	}
	q.Set("split", im.split)
	q.Set("offset", strconv.Itoa(offset))
	length := pageSize
	if im.limit > 0 && im.limit-offset < length {
		length = im.limit - offset
	}
	q.Set("length", strconv.Itoa(length))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, im.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := im.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.New("rows api: " + resp.Status + ": " + string(b))
	}
	var page rowsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, ErrNotTabular(err.Error())
	}
	return &page, nil
}

// coerceCell flattens a JSON scalar into a cell. Nested objects and arrays
// have no tabular representation and are rejected.
func coerceCell(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10), nil
		}
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value %s", string(raw))
	}
}
