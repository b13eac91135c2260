package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sandrolain/goformula"
	"github.com/sandrolain/goformula/pkg/formulactx"
	"github.com/sandrolain/goformula/pkg/functions"
	"github.com/sandrolain/goformula/pkg/types"
)

type formulaRequest struct {
	Formula string `json:"formula" binding:"max=10000"`
}

type validateRequest struct {
	Formula string                `json:"formula" binding:"max=10000"`
	Context *types.FormulaContext `json:"context"`
}

type evaluateRequest struct {
	Formula     string                `json:"formula" binding:"max=10000"`
	Context     *types.FormulaContext `json:"context"`
	TestContext bool                  `json:"testContext"`
}

type extractResponse struct {
	Variables []string `json:"variables"`
	Functions []string `json:"functions"`
}

type functionInfo struct {
	Name        string             `json:"name"`
	Category    functions.Category `json:"category"`
	Signature   string             `json:"signature"`
	Description string             `json:"description"`
	MinArgs     int                `json:"minArgs"`
	MaxArgs     int                `json:"maxArgs"`
	StringArg   bool               `json:"stringArg,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func fail(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     err.Error(),
		RequestID: c.GetString(requestIDKey),
	})
}

// bind decodes the JSON body into req.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return false
	}
	return true
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": goformula.Version()})
}

func (s *Server) listFunctions(c *gin.Context) {
	defs := functions.Search(c.Query("q"))
	out := make([]functionInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, functionInfo{
			Name:        d.Name,
			Category:    d.Category,
			Signature:   d.Signature,
			Description: d.Description,
			MinArgs:     d.MinArgs,
			MaxArgs:     d.MaxArgs,
			StringArg:   d.StringArg,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) testContext(c *gin.Context) {
	c.JSON(http.StatusOK, goformula.CreateTestContext())
}

func (s *Server) validate(c *gin.Context) {
	var req validateRequest
	if !bind(c, &req) {
		return
	}

	if req.Context == nil {
		c.JSON(http.StatusOK, s.engine.Validate(req.Formula))
		return
	}
	if err := formulactx.Validate(req.Context); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.ValidateAgainst(req.Formula, req.Context))
}

func (s *Server) evaluate(c *gin.Context) {
	var req evaluateRequest
	if !bind(c, &req) {
		return
	}

	fctx := req.Context
	switch {
	case fctx != nil && req.TestContext:
		fail(c, http.StatusBadRequest, errors.New("context and testContext are mutually exclusive"))
		return
	case req.TestContext:
		fctx = goformula.CreateTestContext()
	case fctx != nil:
		if err := formulactx.Validate(fctx); err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
	}

	res, err := s.engine.EvaluateContext(c.Request.Context(), req.Formula, fctx)
	if err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		fail(c, status, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) extract(c *gin.Context) {
	var req formulaRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, extractResponse{
		Variables: goformula.ExtractVariables(req.Formula),
		Functions: goformula.ExtractFunctions(req.Formula),
	})
}
