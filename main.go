package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouteRequest struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

type RouteResponse struct {
	Path     []Point `json:"path"`
	Success  bool    `json:"success"`
	Message  string  `json:"message,omitempty"`
	Cost     int     `json:"cost,omitempty"`
	Expanded int     `json:"expanded,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

// maxZonesBody caps the GeoJSON accepted by /zones
const maxZonesBody = 32 << 20

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️  Failed to encode response: %v\n", err)
	}
}

// routeStatus maps a dispatcher error to an HTTP status and message
func routeStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNoGrid):
		return http.StatusBadRequest, "Navigation grid not built. POST zones to /zones first"
	case errors.Is(err, ErrQueueFull), errors.Is(err, ErrManagerClosed):
		return http.StatusServiceUnavailable, "Planner busy, retry later"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Path search timed out"
	case errors.Is(err, ErrMisconfigured):
		return http.StatusInternalServerError, "Pathfinder misconfigured: " + err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func (s *Service) routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Route request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	log.Printf("   Start: (%.3f, %.3f)\n", req.Start.X, req.Start.Y)
	log.Printf("   End:   (%.3f, %.3f)\n", req.End.X, req.End.Y)

	ctx := r.Context()
	if timeout := s.cfg.Server.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := s.requests.Request(ctx, req.Start, req.End)
	if err != nil {
		status, message := routeStatus(err)
		log.Printf("❌ %s (%v)\n", message, err)
		writeJSON(w, status, RouteResponse{Path: []Point{}, Success: false, Message: message})
		log.Println("========================================")
		return
	}

	response := RouteResponse{
		Path:     result.Waypoints,
		Success:  result.Success,
		Cost:     result.Cost,
		Expanded: result.Expanded,
	}

	if !result.Success {
		log.Println("❌ No path found")
		response.Message = "No path found"
	} else {
		response.Distance = PathLength(append([]Point{req.Start}, result.Waypoints...))
		log.Printf("✅ Path found with %d waypoints\n", len(result.Waypoints))
		log.Printf("   Cost: %d, expanded: %d\n", result.Cost, result.Expanded)
	}

	writeJSON(w, http.StatusOK, response)
	log.Println("========================================")
}

// GET /health - Health check endpoint
func (s *Service) healthHandler(w http.ResponseWriter, r *http.Request) {
	grid := s.Grid()

	status := "ready"
	cols, rows := 0, 0
	if grid == nil {
		status = "waiting for grid"
	} else {
		cols, rows = grid.Size()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"hasGrid":   grid != nil,
		"cols":      cols,
		"rows":      rows,
		"zoneCount": s.ZoneCount(),
	})
}

// POST /zones - Rebuild the grid from a GeoJSON feature collection
func (s *Service) zonesHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🗺️  Zones update received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxZonesBody))
	if err != nil {
		log.Printf("❌ Failed to read body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	zones, err := ParseZones(data)
	if err != nil {
		log.Printf("❌ Invalid GeoJSON: %v\n", err)
		http.Error(w, "Invalid GeoJSON", http.StatusBadRequest)
		return
	}
	log.Printf("   Zones: %d polygons\n", len(zones))

	if err := s.Rebuild(zones); err != nil {
		log.Printf("❌ Grid rebuild failed: %v\n", err)
		http.Error(w, "Grid rebuild failed", http.StatusInternalServerError)
		return
	}

	cols, rows := s.Grid().Size()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"zoneCount": s.ZoneCount(),
		"cols":      cols,
		"rows":      rows,
	})
	log.Println("========================================")
}

// GET /grid - Cell walkability and penalties for visualization
func (s *Service) gridHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	grid := s.Grid()
	if grid == nil {
		http.Error(w, "Navigation grid not built. POST zones to /zones first", http.StatusBadRequest)
		return
	}

	cols, rows := grid.Size()
	walkable := make([][]bool, rows)
	penalties := make([][]int, rows)
	for row := 0; row < rows; row++ {
		walkable[row] = make([]bool, cols)
		penalties[row] = make([]int, cols)
		for col := 0; col < cols; col++ {
			cell := grid.Cell(col, row)
			walkable[row][col] = cell.Walkable
			penalties[row][col] = cell.MovementPenalty
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cols":      cols,
		"rows":      rows,
		"cellSize":  grid.CellSize(),
		"origin":    grid.Origin(),
		"walkable":  walkable,
		"penalties": penalties,
	})
}

// Routes registers every endpoint on a new mux
func (s *Service) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/route", corsMiddleware(s.routeHandler))
	mux.HandleFunc("/zones", corsMiddleware(s.zonesHandler))
	mux.HandleFunc("/grid", corsMiddleware(s.gridHandler))
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
	mux.HandleFunc("/ws", s.wsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

type cliArgs struct {
	configFile string
	genConfig  bool
	addr       string
	zonesDir   string
}

func parseArgs() cliArgs {
	configFile := flag.String("config", "planner.yaml", "YAML config file; use -genConfig to produce an example")
	genConfig := flag.Bool("genConfig", false, "Write the default config to -config, then exit")
	addr := flag.String("addr", "", "Listen address, overrides server.addr")
	zonesDir := flag.String("zones", "", "Directory of GeoJSON zone files, overrides zones.dir")
	flag.Parse()

	return cliArgs{
		configFile: *configFile,
		genConfig:  *genConfig,
		addr:       *addr,
		zonesDir:   *zonesDir,
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	args := parseArgs()

	if args.genConfig {
		if err := WriteConfig(args.configFile, DefaultConfig()); err != nil {
			log.Fatal(err)
		}
		return
	}

	log.Println("========================================")
	log.Println("🚀 Grid Path Planner Server (A*)")
	log.Println("========================================")

	cfg, err := LoadConfig(args.configFile)
	if err != nil {
		log.Printf("ℹ️  Using default config (%v)\n", err)
		cfg = DefaultConfig()
	}
	if args.addr != "" {
		cfg.Server.Addr = args.addr
	}
	if args.zonesDir != "" {
		cfg.Zones.Dir = args.zonesDir
	}

	service := NewService(cfg)
	defer service.Close()

	zones, err := LoadZonesFromDir(cfg.Zones.Dir)
	if err != nil {
		log.Printf("⚠️  Failed to load zones: %v\n", err)
	}
	if err := service.Rebuild(zones); err != nil {
		log.Fatal(err)
	}
	log.Println("")

	log.Printf("Server starting on %s\n", cfg.Server.Addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /route    - Compute route with start and end points")
	log.Println("  POST /zones    - Rebuild grid from GeoJSON zones")
	log.Println("  GET  /grid     - Get grid cells for visualization")
	log.Println("  GET  /ws       - Websocket route requests")
	log.Println("  GET  /health   - Check server status")
	log.Println("  GET  /metrics  - Prometheus metrics")
	log.Println("")
	log.Println("CORS enabled for all origins")
	log.Println("========================================")
	log.Println("")

	if err := http.ListenAndServe(cfg.Server.Addr, service.Routes()); err != nil {
		log.Fatal(err)
	}
}
