package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/cropledger/internal/domain/models"
	"github.com/mamadbah2/cropledger/internal/metrics"
	"github.com/mamadbah2/cropledger/internal/repository/mongodb"
	"github.com/mamadbah2/cropledger/internal/repository/sheets"
	"github.com/mamadbah2/cropledger/pkg/clients/weather"
)

// ErrInvalidRecord indicates the submitted record failed validation.
var ErrInvalidRecord = errors.New("invalid record")

// ProductionInput is a production record as submitted by a client. Climate
// fields left nil are filled from the weather service when one is wired.
type ProductionInput struct {
	Date        time.Time `json:"date"`
	Location    string    `json:"location" validate:"required"`
	Crop        string    `json:"crop" validate:"required"`
	BoxesGrade1 int       `json:"boxes_grade1" validate:"gte=0"`
	BoxesGrade2 int       `json:"boxes_grade2" validate:"gte=0"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity" validate:"omitempty,gte=0,lte=100"`
	Rainfall    *float64  `json:"rainfall" validate:"omitempty,gte=0"`
	City        string    `json:"city"`
	Note        string    `json:"note"`
}

// SheetMirror appends captured records to the spreadsheet source.
type SheetMirror struct {
	Repo            sheets.Repository
	ProductionRange string
	CostsRange      string
}

// Service captures production and input-cost records.
type Service struct {
	store    mongodb.RecordStore
	weather  weather.Client
	mirror   *SheetMirror
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService constructs a record capture service. weather and mirror are optional.
func NewService(store mongodb.RecordStore, weatherClient weather.Client, mirror *SheetMirror, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		weather:  weatherClient,
		mirror:   mirror,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CaptureProduction validates, completes and stores a production record.
func (s *Service) CaptureProduction(ctx context.Context, in ProductionInput) (models.ProductionRecord, error) {
	in.Location = strings.TrimSpace(in.Location)
	in.Crop = strings.TrimSpace(in.Crop)
	if err := s.validate.Struct(in); err != nil {
		return models.ProductionRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	record := models.ProductionRecord{
		ID:          s.newID(),
		Date:        in.Date,
		Location:    in.Location,
		Crop:        in.Crop,
		BoxesGrade1: in.BoxesGrade1,
		BoxesGrade2: in.BoxesGrade2,
		Note:        strings.TrimSpace(in.Note),
	}
	if record.Date.IsZero() {
		record.Date = today(s.now())
	}

	climate := s.lookupClimate(ctx, in)
	record.Temperature = pick(in.Temperature, climate.Temperature)
	record.Humidity = pick(in.Humidity, climate.Humidity)
	record.Rainfall = pick(in.Rainfall, climate.Rainfall)

	if err := s.store.SaveProduction(ctx, record); err != nil {
		return models.ProductionRecord{}, err
	}
	metrics.RecordsCaptured.WithLabelValues("production").Inc()

	if s.mirror != nil {
		if err := s.mirror.Repo.WriteRow(ctx, s.mirror.ProductionRange, sheets.ProductionRow(record)); err != nil {
			s.logger.Warn("failed to mirror production record to sheet", zap.String("id", record.ID), zap.Error(err))
		}
	}

	s.logger.Info("production record captured",
		zap.String("id", record.ID),
		zap.String("location", record.Location),
		zap.String("crop", record.Crop),
		zap.Int("total", record.Total()),
	)
	return record, nil
}

// CaptureCost validates, completes and stores an input-cost record. The
// category label is normalized and total_cost is derived from quantity and
// unit cost when it is unset.
func (s *Service) CaptureCost(ctx context.Context, record models.InputCostRecord) (models.InputCostRecord, error) {
	record.Location = strings.TrimSpace(record.Location)
	record.Crop = strings.TrimSpace(record.Crop)
	record.Type = models.ParseInputType(string(record.Type))
	if err := s.validate.Struct(record); err != nil {
		return models.InputCostRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	record = record.ResolveTotal()
	record.ID = s.newID()
	if record.Date.IsZero() {
		record.Date = today(s.now())
	}

	if err := s.store.SaveCost(ctx, record); err != nil {
		return models.InputCostRecord{}, err
	}
	metrics.RecordsCaptured.WithLabelValues("cost").Inc()

	if s.mirror != nil {
		if err := s.mirror.Repo.WriteRow(ctx, s.mirror.CostsRange, sheets.CostRow(record)); err != nil {
			s.logger.Warn("failed to mirror cost record to sheet", zap.String("id", record.ID), zap.Error(err))
		}
	}

	s.logger.Info("input cost captured",
		zap.String("id", record.ID),
		zap.String("type", string(record.Type)),
		zap.Float64("total_cost", record.TotalCost),
	)
	return record, nil
}

// lookupClimate fetches current conditions when the input leaves any climate
// field unset. Failures fall back to zero readings.
func (s *Service) lookupClimate(ctx context.Context, in ProductionInput) models.ClimateReading {
	if s.weather == nil || (in.Temperature != nil && in.Humidity != nil && in.Rainfall != nil) {
		return models.ClimateReading{}
	}

	reading, err := s.weather.Current(ctx, in.City)
	if err != nil {
		metrics.WeatherLookups.WithLabelValues("error").Inc()
		s.logger.Warn("weather lookup failed, storing record without climate data", zap.String("city", in.City), zap.Error(err))
		return models.ClimateReading{}
	}
	metrics.WeatherLookups.WithLabelValues("ok").Inc()
	return reading
}

func pick(value *float64, fallback float64) float64 {
	if value != nil {
		return *value
	}
	return fallback
}

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
