package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"food-quality-api/internal/assess"
	"food-quality-api/internal/config"
	"food-quality-api/internal/features"
	"food-quality-api/internal/llm"
	"food-quality-api/internal/reference"
	"food-quality-api/internal/service"
	"food-quality-api/internal/storage"
	"food-quality-api/pkg/models"
)

type fakeVision struct {
	response string
	err      error
}

func (f *fakeVision) CompleteVision(_ context.Context, _ string, _ []byte, _ string) (string, error) {
	return f.response, f.err
}

type fakeText struct {
	response string
	err      error
}

func (f *fakeText) CompleteText(_ context.Context, _ string) (string, error) {
	return f.response, f.err
}

type fakeClassifier struct {
	label string
	err   error
}

func (f *fakeClassifier) ClassifyMeal(_ context.Context, _ string) (string, error) {
	return f.label, f.err
}

type collaborators struct {
	vision     llm.VisionCompleter
	reference  llm.TextCompleter
	stats      llm.TextCompleter
	local      llm.TextCompleter
	classifier llm.MealClassifier
}

func defaultCollaborators() collaborators {
	return collaborators{
		vision:     &fakeVision{response: `{"assessment":"GOOD","confidence":95,"reasoning":"Fresh","recommendations":"Enjoy"}`},
		reference:  &fakeText{err: errors.New("unavailable")},
		stats:      &fakeText{response: "Looks fresh."},
		local:      &fakeText{response: "Quite fresh."},
		classifier: &fakeClassifier{label: "lunch"},
	}
}

func newTestHandler(t *testing.T, c collaborators) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Host:                "127.0.0.1",
		Port:                "8080",
		RequestTimeout:      5 * time.Second,
		CollaboratorTimeout: 5 * time.Second,
		MaxUploadSize:       1 << 20,
	}

	svc := service.NewAssessmentService(
		features.NewExtractor(),
		reference.NewCache(c.reference, reference.Options{}),
		assess.NewAssessor(c.vision),
		c.stats,
		c.local,
		c.vision,
		c.classifier,
	)
	return NewHandler(svc, storage.NewUploadReader(cfg.MaxUploadSize), cfg)
}

func imageUploadRequest(t *testing.T, path string, withName string, payload []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "food.png")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if withName != "" {
		writer.WriteField("name", withName)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{230, 200, 60, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestPredict_HappyPath(t *testing.T) {
	handler := newTestHandler(t, defaultCollaborators())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, imageUploadRequest(t, "/predict", "banana", testPNG(t)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.PredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.FoodName != "banana" {
		t.Errorf("Expected food_name banana, got %q", resp.FoodName)
	}
	if resp.Assessment != models.AssessmentGood {
		t.Errorf("Expected GOOD assessment, got %q", resp.Assessment)
	}
	if resp.VisualFeatures.Brightness == 0 {
		t.Error("Expected non-zero brightness for the test image")
	}
}

func TestPredict_MissingName(t *testing.T) {
	handler := newTestHandler(t, defaultCollaborators())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, imageUploadRequest(t, "/predict", "", testPNG(t)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing name, got %d", rec.Code)
	}
}

func TestPredict_CorruptImage(t *testing.T) {
	handler := newTestHandler(t, defaultCollaborators())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, imageUploadRequest(t, "/predict", "banana", []byte("not an image")))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for corrupt image, got %d", rec.Code)
	}
}

func TestPredict_CollaboratorFailureStillAnswersBad(t *testing.T) {
	c := defaultCollaborators()
	c.vision = &fakeVision{err: errors.New("model down")}
	handler := newTestHandler(t, c)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, imageUploadRequest(t, "/predict", "banana", testPNG(t)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected fail-soft 200, got %d", rec.Code)
	}
	var resp models.PredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Assessment != models.AssessmentBad || resp.Confidence != 0 {
		t.Errorf("Expected BAD/0 fallback verdict, got %+v", resp)
	}
}

func TestFoodInfo_FallsBackToDefaultProfile(t *testing.T) {
	handler := newTestHandler(t, defaultCollaborators())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info/banana", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		FoodName      string            `json:"food_name"`
		ReferenceData reference.Profile `json:"reference_data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.FoodName != "banana" {
		t.Errorf("Expected food_name banana, got %q", resp.FoodName)
	}
	if resp.ReferenceData.ShelfLifeDays != 7 {
		t.Errorf("Expected default shelf life 7, got %f", resp.ReferenceData.ShelfLifeDays)
	}
}

func TestPredictText(t *testing.T) {
	handler := newTestHandler(t, defaultCollaborators())

	body := bytes.NewBufferString(`{"food":"chicken biryani","hours_old":5.6,"storage":"fridge"}`)
	req := httptest.NewRequest(http.MethodPost, "/predict/text", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.TextPredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.MealType != "lunch" {
		t.Errorf("Expected meal_type lunch, got %q", resp.MealType)
	}
	if resp.Quality != "Good" {
		t.Errorf("Expected quality Good, got %q", resp.Quality)
	}
}

func TestPredictText_MissingFood(t *testing.T) {
	handler := newTestHandler(t, defaultCollaborators())

	req := httptest.NewRequest(http.MethodPost, "/predict/text", bytes.NewBufferString(`{"hours_old":2}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing food, got %d", rec.Code)
	}
}

func TestPredictText_ClassifierFailureFallsBack(t *testing.T) {
	c := defaultCollaborators()
	c.classifier = &fakeClassifier{err: errors.New("sidecar down")}
	handler := newTestHandler(t, c)

	body := bytes.NewBufferString(`{"food":"toast","hours_old":1,"storage":"room temp"}`)
	req := httptest.NewRequest(http.MethodPost, "/predict/text", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected fail-soft 200, got %d", rec.Code)
	}
	var resp models.TextPredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.MealType != "unknown" {
		t.Errorf("Expected unknown meal type, got %q", resp.MealType)
	}
	if resp.Quality != "Good" {
		t.Errorf("Expected quality Good from the storage baseline, got %q", resp.Quality)
	}
}

func TestPredictStats(t *testing.T) {
	handler := newTestHandler(t, defaultCollaborators())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, imageUploadRequest(t, "/predict/stats", "", testPNG(t)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.StatsPredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Result != "Looks fresh." {
		t.Errorf("Unexpected result: %q", resp.Result)
	}
	if resp.Brightness == 0 {
		t.Error("Expected non-zero brightness in stats response")
	}
}

func TestPredictOllama_CollaboratorDown(t *testing.T) {
	c := defaultCollaborators()
	c.local = &fakeText{err: errors.New("connection refused")}
	handler := newTestHandler(t, c)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, imageUploadRequest(t, "/predict/ollama", "", testPNG(t)))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 for plain error, got %d", rec.Code)
	}
}

func TestPredictGemini(t *testing.T) {
	handler := newTestHandler(t, defaultCollaborators())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, imageUploadRequest(t, "/predict/gemini", "", testPNG(t)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp models.ResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Result == "" {
		t.Error("Expected non-empty result")
	}
}

func TestCapabilities(t *testing.T) {
	handler := newTestHandler(t, defaultCollaborators())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		API       string                   `json:"api"`
		Endpoints []map[string]interface{} `json:"endpoints"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.API == "" || len(resp.Endpoints) == 0 {
		t.Errorf("Expected populated capability listing, got %+v", resp)
	}
}

func TestHealthCheck(t *testing.T) {
	handler := newTestHandler(t, defaultCollaborators())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}
