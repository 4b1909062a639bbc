// Package server exposes the validators, the document pipeline and the
// numbering ledger over an HTTP API.
package server

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rezonia/taxcheck/internal/bzst"
	"github.com/rezonia/taxcheck/internal/document"
	"github.com/rezonia/taxcheck/internal/ledger"
	"github.com/rezonia/taxcheck/internal/model"
	"github.com/rezonia/taxcheck/internal/parser/xml"
	"github.com/rezonia/taxcheck/internal/parser/zugferd"
	"github.com/rezonia/taxcheck/internal/report"
	"github.com/rezonia/taxcheck/internal/validator"
)

// Config holds server configuration.
type Config struct {
	Address      string
	BZStBaseURL  string
	OwnVATID     string
	BZStTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server is the HTTP API server.
type Server struct {
	config     *Config
	router     *gin.Engine
	validators *validator.Registry
	xmlParsers *xml.Registry
	extractor  *zugferd.Extractor
	ledger     *ledger.Ledger
	log        zerolog.Logger
}

// NewServer creates the API server over the given numbering ledger. The
// BZSt confirmation client is wired only when a base URL is configured;
// without it German VAT-IDs get a format-only verdict.
func NewServer(config *Config, led *ledger.Ledger, log zerolog.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	var registryOpts []validator.RegistryOption
	if config.BZStBaseURL != "" {
		clientOpts := []bzst.Option{bzst.WithLogger(log)}
		if config.BZStTimeout > 0 {
			clientOpts = append(clientOpts, bzst.WithTimeout(config.BZStTimeout))
		}
		checker := bzst.NewClient(config.BZStBaseURL, clientOpts...)
		registryOpts = append(registryOpts, validator.WithVATIDOptions(
			validator.WithChecker(checker, config.OwnVATID),
		))
	}

	s := &Server{
		config:     config,
		router:     router,
		validators: validator.NewRegistry(registryOpts...),
		xmlParsers: xml.NewRegistry(),
		extractor:  zugferd.NewExtractor(),
		ledger:     led,
		log:        log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Identifier validation
		v1.POST("/validate", s.handleValidateAuto)
		v1.POST("/validate/batch", s.handleValidateBatch)
		v1.POST("/validate/:class", s.handleValidateClass)

		// Invoice document validation (XML or ZUGFeRD PDF)
		v1.POST("/invoice/validate", s.handleInvoiceValidate)

		// Numbering ledger
		v1.POST("/numbers/generate", s.handleNumberGenerate)
		v1.POST("/numbers/register", s.handleNumberRegister)
		v1.GET("/numbers/audit", s.handleNumberAudit)
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleValidateAuto(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "a non-empty value is required"})
		return
	}

	verdict, err := s.validators.Validate(c.Request.Context(), req.Value)
	if err != nil {
		s.renderValidationError(c, verdict, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

func (s *Server) handleValidateClass(c *gin.Context) {
	class := model.Class(c.Param("class"))
	v := s.validators.Get(class)
	if v == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown identifier class: " + string(class)})
		return
	}

	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "a non-empty value is required"})
		return
	}

	// Qualified VAT-ID check when address fields are present.
	if vv, ok := v.(*validator.VATIDValidator); ok && req.CompanyName != "" {
		verdict, err := vv.ValidateQualified(c.Request.Context(), req.Value, req.CompanyName, req.City, req.PostalCode)
		if err != nil {
			s.renderValidationError(c, verdict, err)
			return
		}
		c.JSON(http.StatusOK, verdict)
		return
	}

	verdict, err := v.Validate(c.Request.Context(), req.Value)
	if err != nil {
		s.renderValidationError(c, verdict, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

func (s *Server) handleValidateBatch(c *gin.Context) {
	var req BatchValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Values) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "a non-empty values list is required"})
		return
	}

	rep := report.New()
	for _, value := range req.Values {
		verdict, err := s.validators.Validate(c.Request.Context(), value)
		if err != nil && verdict == nil {
			verdict = model.NewVerdict(model.Class("unknown"), value)
			verdict.AddDefect("input", err.Error())
		}
		rep.Add(verdict)
	}
	c.JSON(http.StatusOK, rep)
}

// handleInvoiceValidate accepts CII XML, UBL XML or a ZUGFeRD PDF and
// returns the document verdict. PDFs are recognized by their magic bytes;
// the embedded XML attachment is validated as CII.
func (s *Server) handleInvoiceValidate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	if bytes.HasPrefix(body, []byte("%PDF")) {
		body, err = s.extractor.ExtractBytes(body)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
			return
		}
	}

	doc, profile, err := s.xmlParsers.Parse(c.Request.Context(), body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}

	// The GoBD profile is a subset; allow forcing it via query param.
	if c.Query("profile") == string(document.ProfileGoBD) {
		profile = document.ProfileGoBD
	}

	verdict, err := document.Validate(doc, profile)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, InvoiceResponse{
		Profile:  profile,
		Document: doc,
		Verdict:  verdict,
	})
}

func (s *Server) handleNumberGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prefix == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "a non-empty prefix is required"})
		return
	}

	entry, err := s.ledger.Generate(c.Request.Context(), req.Prefix)
	if err != nil {
		s.log.Error().Err(err).Str("prefix", req.Prefix).Msg("number generation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleNumberRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prefix == "" || req.Sequence <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "prefix, year and a positive sequence are required"})
		return
	}

	entry, err := s.ledger.Register(c.Request.Context(), req.Prefix, req.Year, req.Sequence, req.IssuedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleNumberAudit(c *gin.Context) {
	prefix := c.Query("prefix")
	if prefix == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "the prefix query parameter is required"})
		return
	}

	audit, err := s.ledger.Audit(c.Request.Context(), prefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, audit)
}

// renderValidationError maps registry unreachability to 503 and keeps the
// tri-state verdict in the response so the caller still sees the format
// outcome.
func (s *Server) renderValidationError(c *gin.Context, verdict *model.Verdict, err error) {
	var unavailable *model.ServiceUnavailableError
	if errors.As(err, &unavailable) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Verdict: verdict})
		return
	}
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Verdict: verdict})
}
