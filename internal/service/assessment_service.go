package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"food-quality-api/internal/assess"
	"food-quality-api/internal/features"
	"food-quality-api/internal/llm"
	"food-quality-api/internal/logger"
	"food-quality-api/internal/reference"
	"food-quality-api/internal/shelflife"
	"food-quality-api/internal/storage"
	"food-quality-api/pkg/models"
)

// AssessmentService ties the extractor, the reference cache, the rule-based
// classifier, and the model collaborators into the operations the HTTP
// surface exposes.
type AssessmentService interface {
	AssessUpload(ctx context.Context, upload *storage.Upload, foodName string) *models.PredictResponse
	FoodInfo(ctx context.Context, foodName string) reference.Profile
	AssessText(ctx context.Context, req models.TextPredictRequest) *models.TextPredictResponse
	StatsWithText(ctx context.Context, upload *storage.Upload) (*models.StatsPredictResponse, error)
	StatsWithOllama(ctx context.Context, upload *storage.Upload) (*models.ResultResponse, error)
	StatsWithVision(ctx context.Context, upload *storage.Upload) (*models.ResultResponse, error)
}

type assessmentService struct {
	extractor      features.Extractor
	profiles       *reference.Cache
	assessor       *assess.Assessor
	statsCompleter llm.TextCompleter
	localCompleter llm.TextCompleter
	vision         llm.VisionCompleter
	mealClassifier llm.MealClassifier
}

// NewAssessmentService wires the pipeline components together
func NewAssessmentService(
	extractor features.Extractor,
	profiles *reference.Cache,
	assessor *assess.Assessor,
	statsCompleter llm.TextCompleter,
	localCompleter llm.TextCompleter,
	vision llm.VisionCompleter,
	mealClassifier llm.MealClassifier,
) AssessmentService {
	return &assessmentService{
		extractor:      extractor,
		profiles:       profiles,
		assessor:       assessor,
		statsCompleter: statsCompleter,
		localCompleter: localCompleter,
		vision:         vision,
		mealClassifier: mealClassifier,
	}
}

// AssessUpload runs the full pipeline: features, reference baseline, then
// the vision collaborator verdict. Collaborator trouble never fails the
// request; the verdict degrades toward BAD instead.
func (s *assessmentService) AssessUpload(ctx context.Context, upload *storage.Upload, foodName string) *models.PredictResponse {
	f := s.extractor.Extract(upload.Image)
	profile := s.profiles.Get(ctx, foodName)
	verdict := s.assessor.Assess(ctx, upload.Raw, upload.MIMEType, foodName, f, profile)

	return &models.PredictResponse{
		FoodName:        foodName,
		Assessment:      verdict.Assessment,
		Confidence:      verdict.Confidence,
		Reasoning:       verdict.Reasoning,
		Recommendations: verdict.Recommendations,
		VisualFeatures:  visualFeatures(f),
	}
}

// FoodInfo returns the cached or freshly fetched reference profile
func (s *assessmentService) FoodInfo(ctx context.Context, foodName string) reference.Profile {
	return s.profiles.Get(ctx, foodName)
}

// AssessText is the metadata-only path: meal type from the classifier
// collaborator, quality from the shelf-life rules. A classifier failure
// falls back to an unrecognized label, which leaves the rule table at its
// storage-based baseline.
func (s *assessmentService) AssessText(ctx context.Context, req models.TextPredictRequest) *models.TextPredictResponse {
	mealType, err := s.mealClassifier.ClassifyMeal(ctx, req.Food)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"food": req.Food,
		}).Warn("Meal classifier failed, using unknown meal type")
		mealType = "unknown"
	}

	verdict := shelflife.Classify(req.Food, mealType, req.HoursOld, req.Storage)

	return &models.TextPredictResponse{
		Food:     req.Food,
		MealType: mealType,
		HoursOld: req.HoursOld,
		Storage:  req.Storage,
		Quality:  string(verdict.Status),
	}
}

// StatsWithText sends the numeric descriptors to the hosted text completer
func (s *assessmentService) StatsWithText(ctx context.Context, upload *storage.Upload) (*models.StatsPredictResponse, error) {
	f := s.extractor.Extract(upload.Image)
	result, err := assess.StatsCompletion(ctx, s.statsCompleter, f)
	if err != nil {
		return nil, err
	}
	return &models.StatsPredictResponse{
		Result:     result,
		HSV:        f.AvgHSV,
		Brightness: f.Brightness,
		Vibrancy:   f.Vibrancy,
	}, nil
}

// StatsWithOllama sends the numeric descriptors to the local model server
func (s *assessmentService) StatsWithOllama(ctx context.Context, upload *storage.Upload) (*models.ResultResponse, error) {
	f := s.extractor.Extract(upload.Image)
	result, err := assess.StatsCompletion(ctx, s.localCompleter, f)
	if err != nil {
		return nil, err
	}
	return &models.ResultResponse{Result: result}, nil
}

// StatsWithVision sends both the descriptors and the image to the vision
// collaborator
func (s *assessmentService) StatsWithVision(ctx context.Context, upload *storage.Upload) (*models.ResultResponse, error) {
	f := s.extractor.Extract(upload.Image)
	result, err := assess.StatsVisionCompletion(ctx, s.vision, upload.Raw, upload.MIMEType, f)
	if err != nil {
		return nil, err
	}
	return &models.ResultResponse{Result: result}, nil
}

func visualFeatures(f features.Features) models.VisualFeatures {
	return models.VisualFeatures{
		AvgHSV:         f.AvgHSV,
		Brightness:     f.Brightness,
		Vibrancy:       f.Vibrancy,
		MoldPercentage: f.MoldPercentage,
	}
}
