package configs

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/document/schema"
	"github.com/goliatone/go-viewdef/pkg/faults"
	"github.com/goliatone/go-viewdef/pkg/store"
)

// Body formats.
const (
	FormatJSON = store.FormatJSON
	FormatXML  = store.FormatXML
)

// TypeViewDefinition is the configuration type edited with the form builder.
const TypeViewDefinition = "ViewDefinition"

// Types lists the configuration types offered by the listing filter.
var Types = []string{
	"CurrencyMatrix",
	"CurveSpecificationBuilderConfiguration",
	"HistoricalTimeSeriesRating",
	"SimpleCurrencyMatrix",
	"TimeSeriesMetaDataConfiguration",
	TypeViewDefinition,
	"VolatilitySurfaceDefinition",
	"VolatilitySurfaceSpecification",
	"YieldCurveDefinition",
}

// Config is one configuration as served by the configuration service.
type Config struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Format  string `json:"format"`
	Body    string `json:"body,omitempty"`
	Version int64  `json:"version"`
	Deleted bool   `json:"deleted,omitempty"`
}

// SaveRequest replaces the body of an existing configuration.
type SaveRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Data is JSON text, or XML text when it starts with '<'.
	Data    string `json:"data"`
	Version int64  `json:"version,omitempty"`
}

// CreateRequest adds a configuration. An empty Type is taken from the XML
// root element, or ViewDefinition for JSON bodies.
type CreateRequest struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	Data string `json:"data"`
}

// Query filters the listing.
type Query struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// Service is the configuration service the controller talks to.
type Service interface {
	Get(ctx context.Context, id string) (Config, error)
	Save(ctx context.Context, req SaveRequest) (Config, error)
	Create(ctx context.Context, req CreateRequest) (Config, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q Query) ([]Config, error)
}

// FormatOf reports the wire format of data.
func FormatOf(data string) string {
	return store.DetectFormat(data)
}

// StoreService serves configurations from a store. ViewDefinition JSON bodies
// are validated against the document schema before they are written.
type StoreService struct {
	store store.Store
}

func NewStoreService(s store.Store) *StoreService {
	return &StoreService{store: s}
}

func (s *StoreService) Get(ctx context.Context, id string) (Config, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return Config{}, err
	}
	return fromRecord(rec), nil
}

func (s *StoreService) Save(ctx context.Context, req SaveRequest) (Config, error) {
	current, err := s.store.Get(ctx, req.ID)
	if err != nil {
		return Config{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = current.Name
	}
	format := FormatOf(req.Data)
	if err := checkBody(ctx, current.Type, format, req.Data); err != nil {
		return Config{}, err
	}
	rec, err := s.store.Update(ctx, store.Record{
		ID:      current.ID,
		Name:    name,
		Type:    current.Type,
		Format:  format,
		Body:    req.Data,
		Version: req.Version,
	})
	if err != nil {
		return Config{}, err
	}
	return fromRecord(rec), nil
}

func (s *StoreService) Create(ctx context.Context, req CreateRequest) (Config, error) {
	format := FormatOf(req.Data)
	typ := strings.TrimSpace(req.Type)
	if typ == "" {
		detected, err := detectType(format, req.Data)
		if err != nil {
			return Config{}, err
		}
		typ = detected
	}
	if err := checkBody(ctx, typ, format, req.Data); err != nil {
		return Config{}, err
	}
	rec, err := s.store.Create(ctx, store.Record{Name: req.Name, Type: typ, Format: format, Body: req.Data})
	if err != nil {
		return Config{}, err
	}
	return fromRecord(rec), nil
}

func (s *StoreService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *StoreService) Search(ctx context.Context, q Query) ([]Config, error) {
	records, err := s.store.Search(ctx, store.Query{Name: q.Name, Type: q.Type})
	if err != nil {
		return nil, err
	}
	out := make([]Config, 0, len(records))
	for _, rec := range records {
		cfg := fromRecord(rec)
		cfg.Body = ""
		out = append(out, cfg)
	}
	return out, nil
}

func fromRecord(rec store.Record) Config {
	return Config{
		ID:      rec.ID,
		Name:    rec.Name,
		Type:    rec.Type,
		Format:  rec.Format,
		Body:    rec.Body,
		Version: rec.Version,
		Deleted: rec.Deleted,
	}
}

func checkBody(ctx context.Context, typ, format, data string) error {
	if strings.TrimSpace(data) == "" {
		return faults.Newf(faults.KindValidation, "configs: data required")
	}
	if format == FormatXML {
		return checkXML(data)
	}
	if !json.Valid([]byte(data)) {
		return faults.Newf(faults.KindValidation, "configs: data is not valid JSON")
	}
	if typ != TypeViewDefinition {
		return nil
	}
	doc, err := document.Unmarshal([]byte(data))
	if err != nil {
		return err
	}
	return schema.Validate(ctx, doc)
}

func checkXML(data string) error {
	dec := xml.NewDecoder(strings.NewReader(data))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return faults.New(faults.KindValidation, fmt.Errorf("configs: data is not valid XML: %w", err))
		}
	}
}

func detectType(format, data string) (string, error) {
	if format != FormatXML {
		return TypeViewDefinition, nil
	}
	dec := xml.NewDecoder(bytes.NewReader([]byte(data)))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", faults.New(faults.KindValidation, fmt.Errorf("configs: data is not valid XML: %w", err))
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}
