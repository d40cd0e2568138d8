package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/repository"
)

// historyLimit caps calculator and health metric histories.
const historyLimit = 10

// activityFactors maps an activity level to its TDEE multiplier.
var activityFactors = map[string]float64{
	"sedentary":  1.2,
	"lightly":    1.375,
	"moderately": 1.55,
	"very":       1.725,
	"extra":      1.9,
}

// ActivityFactor returns the multiplier for level, 1.2 when unknown.
func ActivityFactor(level string) float64 {
	if f, ok := activityFactors[strings.ToLower(strings.TrimSpace(level))]; ok {
		return f
	}
	return 1.2
}

// BMR is the Harris-Benedict basal metabolic rate. Weight is kg, height cm.
func BMR(age int, weight float64, height int, gender string) float64 {
	a, h := float64(age), float64(height)
	if strings.EqualFold(strings.TrimSpace(gender), "male") {
		return 88.362 + 13.397*weight + 4.799*h - 5.677*a
	}
	return 447.593 + 9.247*weight + 3.098*h - 4.330*a
}

// CalorieInput is the calculator form after numeric coercion.
type CalorieInput struct {
	Age           float64
	Weight        float64
	Height        float64
	Gender        string
	ActivityLevel string
}

// CalorieResult is the calculator response.
type CalorieResult struct {
	RestingCalories int `json:"restingCalories"`
	CalorieIntake   int `json:"calorieIntake"`
	CaloriesBurned  int `json:"caloriesBurned"`
}

// Calculate runs the calculator without persisting anything.
func Calculate(in CalorieInput) (CalorieResult, error) {
	if !(in.Age > 0) || !(in.Weight > 0) || !(in.Height > 0) {
		return CalorieResult{}, ErrInvalidInput
	}
	age, height := int(in.Age), int(in.Height)
	if age <= 0 || height <= 0 {
		return CalorieResult{}, ErrInvalidInput
	}

	bmr := BMR(age, in.Weight, height, in.Gender)
	resting := int(math.Round(bmr))
	intake := int(math.Round(bmr * ActivityFactor(in.ActivityLevel)))
	return CalorieResult{
		RestingCalories: resting,
		CalorieIntake:   intake,
		CaloriesBurned:  intake - resting,
	}, nil
}

// CalorieService handles the BMR/TDEE calculator.
type CalorieService struct {
	store  CalorieStore
	logger *slog.Logger
}

// NewCalorieService creates a new CalorieService.
func NewCalorieService(store CalorieStore, logger *slog.Logger) *CalorieService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalorieService{store: store, logger: logger}
}

// Calculate computes the result and records the measurement and the
// calculation in one transaction.
func (s *CalorieService) Calculate(ctx context.Context, userID string, in CalorieInput) (CalorieResult, error) {
	res, err := Calculate(in)
	if err != nil {
		return CalorieResult{}, err
	}

	err = s.store.InTx(ctx, func(tx CalorieStore) error {
		if err := tx.UpsertMeasurement(ctx, &model.Measurement{
			UserID:        userID,
			Age:           int(in.Age),
			Weight:        in.Weight,
			Height:        int(in.Height),
			Gender:        in.Gender,
			ActivityLevel: in.ActivityLevel,
		}); err != nil {
			return err
		}
		return tx.CreateCalorieCalculation(ctx, &model.CalorieCalculation{
			ID:              repository.NewID(),
			UserID:          userID,
			RestingCalories: res.RestingCalories,
			CalorieIntake:   res.CalorieIntake,
			CaloriesBurned:  res.CaloriesBurned,
			ActivityLevel:   in.ActivityLevel,
		})
	})
	if err != nil {
		return CalorieResult{}, fmt.Errorf("failed to save calculation: %w", err)
	}
	return res, nil
}

// History returns the most recent calculations.
func (s *CalorieService) History(ctx context.Context, userID string) ([]*model.CalorieCalculation, error) {
	return s.store.ListCalorieCalculations(ctx, userID, historyLimit)
}
