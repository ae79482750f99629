package api

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/james-see/svsbridge/pkg/model"
	"github.com/james-see/svsbridge/pkg/sparse"
	"github.com/james-see/svsbridge/pkg/timing"
)

// TimingRequest asks for tick and second conversions under a tempo map.
// Tempo positions are canonical ticks.
type TimingRequest struct {
	Tempos  []model.SongTempo `json:"tempos"`
	Ticks   []float64         `json:"ticks"`
	Seconds []float64         `json:"seconds"`
}

// TimingResponse answers a TimingRequest in the same order
type TimingResponse struct {
	Tempos  []model.SongTempo `json:"tempos"`
	Seconds []float64         `json:"seconds"`
	Ticks   []float64         `json:"ticks"`
}

// PitchDecodeRequest carries an engine event stream. Tempo positions are in
// the engine's own tempo ticks.
type PitchDecodeRequest struct {
	Tempos []model.SongTempo `json:"tempos"`
	Events []sparse.Event    `json:"events"`
}

// PitchDecodeResponse is the decoded absolute pitch curve
type PitchDecodeResponse struct {
	Points   []model.Point   `json:"points"`
	Warnings []model.Warning `json:"warnings"`
}

// PitchEncodeRequest carries an absolute pitch curve to encode
type PitchEncodeRequest struct {
	Tempos []model.SongTempo `json:"tempos"`
	Points []model.Point     `json:"points"`
}

// PitchEncodeResponse is the encoded event stream
type PitchEncodeResponse struct {
	Events []sparse.Event `json:"events"`
}

// handleTiming godoc
// @Summary Convert between ticks and seconds
// @Description Converts tick positions to seconds and seconds to ticks under a tempo map
// @Tags timing
// @Accept json
// @Produce json
// @Param request body TimingRequest true "Tempo map and positions"
// @Success 200 {object} TimingResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/timing [post]
func handleTiming(c *gin.Context) {
	var req TimingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sync := timing.NewSynchronizer(req.Tempos, model.TicksPerBeat)
	resp := TimingResponse{
		Tempos:  sync.Tempos(),
		Seconds: make([]float64, len(req.Ticks)),
		Ticks:   make([]float64, len(req.Seconds)),
	}
	for i, tick := range req.Ticks {
		resp.Seconds[i] = sync.TicksToSeconds(tick)
	}
	for i, sec := range req.Seconds {
		resp.Ticks[i] = sync.SecondsToTicks(sec)
	}
	c.JSON(http.StatusOK, resp)
}

// handlePitchDecode godoc
// @Summary Decode a sparse pitch stream
// @Description Decodes an engine event stream into an absolute pitch curve in semicents
// @Tags pitch
// @Accept json
// @Produce json
// @Param engine path string true "Engine (cevio, voisona)"
// @Param resample query int false "Resampling interval in ticks, 0 disables"
// @Param request body PitchDecodeRequest true "Tempo map and events"
// @Success 200 {object} PitchDecodeResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/pitch/{engine}/decode [post]
func (s *Server) handlePitchDecode(c *gin.Context) {
	engine, ok := sparse.EngineByName(c.Param("engine"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown engine"})
		return
	}

	interval := s.cfg.ResampleInterval
	if q := c.Query("resample"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resample interval"})
			return
		}
		interval = n
	}

	var req PitchDecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var w model.Warnings
	curve := sparse.NewCodec(engine, req.Tempos).Decode(req.Events, &w)
	if interval > 0 {
		curve = curve.Resample(interval, model.PitchSentinel)
	}
	s.metrics.RecordPitchCodec(c.Request.Context(), engine.Name, "decode", len(req.Events), curve.Len(), w.Len())

	c.JSON(http.StatusOK, PitchDecodeResponse{
		Points:   curve.Points,
		Warnings: append([]model.Warning{}, w.List()...),
	})
}

// handlePitchEncode godoc
// @Summary Encode a pitch curve as a sparse stream
// @Description Encodes an absolute pitch curve in semicents into an engine event stream
// @Tags pitch
// @Accept json
// @Produce json
// @Param engine path string true "Engine (cevio, voisona)"
// @Param request body PitchEncodeRequest true "Tempo map and curve points"
// @Success 200 {object} PitchEncodeResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/pitch/{engine}/encode [post]
func (s *Server) handlePitchEncode(c *gin.Context) {
	engine, ok := sparse.EngineByName(c.Param("engine"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown engine"})
		return
	}

	var req PitchEncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points := slices.Clone(req.Points)
	slices.SortStableFunc(points, func(a, b model.Point) int { return a.X - b.X })

	events := sparse.NewCodec(engine, req.Tempos).Encode(model.ParamCurve{Points: points})
	s.metrics.RecordPitchCodec(c.Request.Context(), engine.Name, "encode", len(events), len(req.Points), 0)

	c.JSON(http.StatusOK, PitchEncodeResponse{Events: append([]sparse.Event{}, events...)})
}
