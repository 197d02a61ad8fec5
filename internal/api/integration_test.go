package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gridmatch/internal/api/handlers"
	"gridmatch/internal/config"
	"gridmatch/internal/repository/memory"
	"gridmatch/internal/services"
)

func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.NewDefaultConfig()
	cfg.Grid = config.GridConfig{
		MinLat:          37.70,
		MinLng:          -122.50,
		MaxLat:          37.80,
		MaxLng:          -122.40,
		CellSizeDegrees: 0.001,
	}

	edgeRepo := memory.NewEdgeRepository()
	indexService, err := services.NewIndexService(cfg, edgeRepo)
	if err != nil {
		t.Fatalf("NewIndexService: %v", err)
	}
	candidateService := services.NewCandidateService(cfg, indexService, edgeRepo)

	edgeHandler := handlers.NewEdgeHandler(indexService, edgeRepo)
	candidateHandler := handlers.NewCandidateHandler(candidateService)
	gridHandler := handlers.NewGridHandler(indexService)

	router := NewRouter(edgeHandler, candidateHandler, gridHandler)
	engine := gin.New()
	router.Setup(engine)

	return engine
}

func doJSON(engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

const edgeBody = `{
	"id": "edge-1",
	"name": "Market St",
	"class": "primary",
	"shape": [
		{"lat": 37.7501, "lng": -122.451},
		{"lat": 37.7501, "lng": -122.449}
	]
}`

func TestHealthEndpoint(t *testing.T) {
	engine := setupTestServer(t)

	w := doJSON(engine, "GET", "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestCreateEdge_RequiresIngestRole(t *testing.T) {
	engine := setupTestServer(t)

	// No token at all.
	w := doJSON(engine, "POST", "/edges", "", edgeBody)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", w.Code)
	}

	// A query client may not write.
	w = doJSON(engine, "POST", "/edges", "client-1", edgeBody)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for a client token, got %d", w.Code)
	}
}

func TestCreateEdgeEndpoint(t *testing.T) {
	engine := setupTestServer(t)

	w := doJSON(engine, "POST", "/edges", "ingest-1", edgeBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["id"] != "edge-1" {
		t.Errorf("Expected id edge-1, got %v", response["id"])
	}

	// Re-posting the same ID conflicts.
	w = doJSON(engine, "POST", "/edges", "ingest-1", edgeBody)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for a duplicate edge, got %d", w.Code)
	}
}

func TestCreateEdge_GeneratesID(t *testing.T) {
	engine := setupTestServer(t)

	body := `{"name": "unnamed", "shape": [{"lat": 37.751, "lng": -122.46}, {"lat": 37.752, "lng": -122.46}]}`
	w := doJSON(engine, "POST", "/edges", "ingest-1", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	id, _ := response["id"].(string)
	if id == "" {
		t.Error("Expected a generated edge ID")
	}
}

func TestCreateEdge_RejectsShortShape(t *testing.T) {
	engine := setupTestServer(t)

	body := `{"name": "stub", "shape": [{"lat": 37.751, "lng": -122.46}]}`
	w := doJSON(engine, "POST", "/edges", "ingest-1", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a one-point shape, got %d", w.Code)
	}
}

func TestGetEdgeEndpoint(t *testing.T) {
	engine := setupTestServer(t)
	doJSON(engine, "POST", "/edges", "ingest-1", edgeBody)

	w := doJSON(engine, "GET", "/edges/edge-1", "client-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["name"] != "Market St" {
		t.Errorf("Expected name Market St, got %v", response["name"])
	}

	w = doJSON(engine, "GET", "/edges/no-such-edge", "client-1", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown edge, got %d", w.Code)
	}
}

func TestCandidatesEndpoint(t *testing.T) {
	engine := setupTestServer(t)
	doJSON(engine, "POST", "/edges", "ingest-1", edgeBody)

	body := `{
		"location": {"lat": 37.7500, "lng": -122.4500, "stop_type": "through", "street": "Market St"},
		"radius_meters": 200
	}`
	w := doJSON(engine, "POST", "/candidates", "client-1", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var response struct {
		Location struct {
			StopType string `json:"stop_type"`
			Street   string `json:"street"`
		} `json:"location"`
		Candidates []struct {
			Edge struct {
				ID string `json:"id"`
			} `json:"edge"`
			DistanceMeters float64 `json:"distance_meters"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if response.Location.StopType != "through" {
		t.Errorf("Expected stop_type through echoed back, got %q", response.Location.StopType)
	}
	if response.Location.Street != "Market St" {
		t.Errorf("Expected street echoed back, got %q", response.Location.Street)
	}
	if len(response.Candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(response.Candidates))
	}
	if response.Candidates[0].Edge.ID != "edge-1" {
		t.Errorf("Expected candidate edge-1, got %s", response.Candidates[0].Edge.ID)
	}
	if response.Candidates[0].DistanceMeters > 30 {
		t.Errorf("Expected the edge within ~30 m, got %.1f", response.Candidates[0].DistanceMeters)
	}
}

func TestCandidatesEndpoint_InvalidStopType(t *testing.T) {
	engine := setupTestServer(t)

	body := `{"location": {"lat": 37.75, "lng": -122.45, "stop_type": "detour"}}`
	w := doJSON(engine, "POST", "/candidates", "client-1", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a bad stop_type, got %d", w.Code)
	}
}

func TestDebugGridEndpoints(t *testing.T) {
	engine := setupTestServer(t)
	doJSON(engine, "POST", "/edges", "ingest-1", edgeBody)

	w := doJSON(engine, "GET", "/debug/grid", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var shape struct {
		Grid struct {
			NumCols int `json:"num_cols"`
			NumRows int `json:"num_rows"`
		} `json:"grid"`
		EdgeCount int `json:"edge_count"`
	}
	json.Unmarshal(w.Body.Bytes(), &shape)
	if shape.Grid.NumCols != 100 || shape.Grid.NumRows != 100 {
		t.Errorf("Expected a 100x100 grid, got %dx%d", shape.Grid.NumCols, shape.Grid.NumRows)
	}
	if shape.EdgeCount != 1 {
		t.Errorf("Expected edge_count 1, got %d", shape.EdgeCount)
	}

	// A valid cell answers; an out-of-range cell is a 404, not a crash.
	w = doJSON(engine, "GET", "/debug/cell/0/0", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for cell (0, 0), got %d", w.Code)
	}
	w = doJSON(engine, "GET", "/debug/cell/1000/0", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an out-of-range cell, got %d", w.Code)
	}
	w = doJSON(engine, "GET", "/debug/cell/x/0", "", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a non-integer cell, got %d", w.Code)
	}
}
