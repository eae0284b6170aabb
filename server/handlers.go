package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vidlink-cli/vidlink/log"
	"github.com/vidlink-cli/vidlink/pipeline"
	"github.com/vidlink-cli/vidlink/video"
)

type analyzeRequest struct {
	URL   string `json:"url"`
	Query string `json:"query"`
}

type downloadRequest struct {
	URL     string `json:"url"`
	Query   string `json:"query"`
	Format  string `json:"format"`
	Quality string `json:"quality"`
}

func (s *Server) analyze(c echo.Context) error {
	var body analyzeRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid JSON body"))
	}

	p, release, err := s.factory()
	if err != nil {
		return s.fail(c, err)
	}
	defer release()

	report, err := p.Analyze(c.Request().Context(), pipeline.Request{URL: body.URL, Query: body.Query})
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, success(report))
}

func (s *Server) download(c echo.Context) error {
	var body downloadRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid JSON body"))
	}

	p, release, err := s.factory()
	if err != nil {
		return s.fail(c, err)
	}
	defer release()

	outcome, err := p.Resolve(c.Request().Context(), pipeline.Request{
		URL:     body.URL,
		Query:   body.Query,
		Format:  body.Format,
		Quality: body.Quality,
	})
	if err != nil {
		return s.fail(c, err)
	}

	log.WithFields(log.Fields{
		"request_id": requestID(c),
		"provider":   outcome.Provider,
		"video":      outcome.Identity.ID,
	}).Info("resolved")

	return c.JSON(http.StatusOK, success(outcome))
}

func (s *Server) fail(c echo.Context, err error) error {
	status, body := failureOf(err)

	log.WithFields(log.Fields{
		"request_id": requestID(c),
		"status":     status,
	}).Warn(err)

	return c.JSON(status, body)
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// failureOf maps invalid input to 400, exhausted providers to 502 and anything else to 500.
func failureOf(err error) (int, *envelope) {
	body := failure(err.Error())
	body.Reason = video.ReasonOf(err)

	var exhausted *pipeline.ExhaustedError
	switch {
	case errors.Is(err, video.ErrInvalidInput):
		return http.StatusBadRequest, body
	case errors.As(err, &exhausted):
		body.Attempts = make([]attempt, len(exhausted.Attempts))
		for i, a := range exhausted.Attempts {
			body.Attempts[i] = attempt{Provider: a.Provider, Reason: a.Reason(), Error: a.Err.Error()}
		}
		return http.StatusBadGateway, body
	default:
		return http.StatusInternalServerError, body
	}
}
