package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"power_monitor/internal/models"
	"power_monitor/internal/repository"

	"github.com/shopspring/decimal"
)

// ErrNoData is returned when there is no history to forecast from.
var ErrNoData = errors.New("no historical data available for prediction")

// ForecastMethod selects how history is turned into a monthly estimate.
type ForecastMethod string

const (
	// MethodDaily buckets readings per calendar day, treating each reading as
	// one minute of load: day kWh = sum(W/60)/1000. Monthly energy is the
	// mean day times 30. Energy and cost are rounded to 2 places.
	MethodDaily ForecastMethod = "daily"
	// MethodFlat multiplies the mean power by 30 and prices energy/1000.
	// Energy is reported unrounded in the history's own units.
	MethodFlat ForecastMethod = "flat"
)

const (
	daysPerMonth    = 30
	minutesPerHour  = 60
	wattsPerKW      = 1000
	dailyPlaces     = 2
	dayBucketLayout = "2006-01-02"
)

var errUnknownForecastMethod = errors.New("unknown forecast method")

// ParseForecastMethod maps a config string to a method. Empty means daily.
func ParseForecastMethod(s string) (ForecastMethod, error) {
	switch m := ForecastMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MethodDaily, nil
	case MethodDaily, MethodFlat:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownForecastMethod, s)
	}
}

// ForecastResult is the monthly estimate returned to callers.
type ForecastResult struct {
	Energy  float64        `json:"energy"`
	Cost    float64        `json:"cost"`
	Method  ForecastMethod `json:"method"`
	Samples int            `json:"samples"`
	Days    int            `json:"days,omitempty"`
}

// ForecastDaily implements MethodDaily. Readings are bucketed by their
// calendar day in loc.
func ForecastDaily(readings []models.Reading, loc *time.Location) (ForecastResult, error) {
	if len(readings) == 0 {
		return ForecastResult{}, ErrNoData
	}
	if loc == nil {
		loc = time.Local
	}

	perMinute := decimal.NewFromInt(minutesPerHour)
	perKW := decimal.NewFromInt(wattsPerKW)

	order := make([]string, 0, 8)
	daily := make(map[string]decimal.Decimal)
	for _, r := range readings {
		day := r.Timestamp.In(loc).Format(dayBucketLayout)
		sum, ok := daily[day]
		if !ok {
			order = append(order, day)
		}
		daily[day] = sum.Add(decimal.NewFromFloat(r.Power).Div(perMinute))
	}

	total := decimal.Zero
	for _, day := range order {
		total = total.Add(daily[day].Div(perKW))
	}
	avgDay := total.Div(decimal.NewFromInt(int64(len(order))))
	energy := avgDay.Mul(decimal.NewFromInt(daysPerMonth))
	cost := monthlyCost(energy).Round(tariffPlaces)

	return ForecastResult{
		Energy:  energy.Round(dailyPlaces).InexactFloat64(),
		Cost:    cost.Round(dailyPlaces).InexactFloat64(),
		Method:  MethodDaily,
		Samples: len(readings),
		Days:    len(order),
	}, nil
}

// ForecastFlat implements MethodFlat.
func ForecastFlat(readings []models.Reading) (ForecastResult, error) {
	if len(readings) == 0 {
		return ForecastResult{}, ErrNoData
	}
	sum := 0.0
	for _, r := range readings {
		sum += r.Power
	}
	mean := sum / float64(len(readings))
	energy := mean * daysPerMonth
	return ForecastResult{
		Energy:  energy,
		Cost:    MonthlyCost(energy / wattsPerKW),
		Method:  MethodFlat,
		Samples: len(readings),
	}, nil
}

type ForecastService struct {
	readings repository.ReadingRepo
	method   ForecastMethod
	loc      *time.Location
}

func NewForecastService(readings repository.ReadingRepo, method ForecastMethod, loc *time.Location) *ForecastService {
	if method == "" {
		method = MethodDaily
	}
	if loc == nil {
		loc = time.Local
	}
	return &ForecastService{readings: readings, method: method, loc: loc}
}

// Predict loads every reading with power > 0 (oldest first) and applies the
// configured method.
func (s *ForecastService) Predict(ctx context.Context) (ForecastResult, error) {
	readings, err := s.readings.List(ctx, repository.ReadingFilter{PositivePower: true})
	if err != nil {
		return ForecastResult{}, fmt.Errorf("load forecast history: %w", err)
	}
	if s.method == MethodFlat {
		return ForecastFlat(readings)
	}
	return ForecastDaily(readings, s.loc)
}
