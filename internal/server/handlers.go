package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"nailsxlauren/internal/services"

	goahttp "goa.design/goa/v3/http"
)

const msgInvalidBody = "Invalid request body"

type errorBody struct {
	Error string `json:"error"`
}

type loginResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type rootResult struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

type servicesResult struct {
	Version  string      `json:"version"`
	Currency string      `json:"currency"`
	Services interface{} `json:"services"`
}

type deletePayload struct {
	ID string `json:"id"`
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	enc := goahttp.ResponseEncoder(r.Context(), w)
	w.WriteHeader(status)
	if err := enc.Encode(v); err != nil {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to encode response")
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := services.StatusCode(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	s.respond(w, r, status, errorBody{Error: services.PublicMessage(err)})
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := goahttp.RequestDecoder(r).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, rootResult{Service: s.cfg.App.Name, Version: s.cfg.App.Version})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, s.deps.Health.Check(r.Context()))
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	c := s.deps.Catalog
	s.respond(w, r, http.StatusOK, servicesResult{Version: c.Version, Currency: c.Currency, Services: c.Services})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var p services.SubmitPayload
	if err := decodeBody(w, r, &p); err != nil {
		s.fail(w, r, services.BadRequest(msgInvalidBody))
		return
	}
	res, err := s.deps.Bookings.Submit(r.Context(), &p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, res)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var p services.LoginPayload
	if err := decodeBody(w, r, &p); err != nil {
		s.respond(w, r, http.StatusBadRequest, loginResult{Message: msgInvalidBody})
		return
	}
	sess, err := s.deps.Auth.Login(r.Context(), &p)
	if err != nil {
		status := services.StatusCode(err)
		if status >= http.StatusInternalServerError {
			s.log.Error().Err(err).Msg("login error")
		}
		s.respond(w, r, status, loginResult{Message: services.PublicMessage(err)})
		return
	}
	http.SetCookie(w, services.NewSessionCookie(s.deps.Auth.CookieName(), sess.Value, sess.MaxAge, !s.cfg.App.Debug))
	s.respond(w, r, http.StatusOK, loginResult{OK: true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, services.ClearSessionCookie(s.deps.Auth.CookieName(), !s.cfg.App.Debug))
	s.respond(w, r, http.StatusOK, loginResult{OK: true})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.deps.Admin.List(r.Context(), services.ParseListParams(q.Get("search"), q.Get("page"), q.Get("limit")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, res)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var p deletePayload
	if err := decodeBody(w, r, &p); err != nil {
		s.fail(w, r, services.BadRequest(msgInvalidBody))
		return
	}
	id := p.ID
	if strings.TrimSpace(id) == "" {
		id = r.URL.Query().Get("id")
	}
	res, err := s.deps.Admin.Delete(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, res)
}

func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	var p services.ReschedulePayload
	if err := decodeBody(w, r, &p); err != nil {
		s.fail(w, r, services.BadRequest(msgInvalidBody))
		return
	}
	res, err := s.deps.Admin.Reschedule(r.Context(), &p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := &services.ExportPayload{
		ListPayload: *services.ParseListParams(q.Get("search"), q.Get("page"), q.Get("limit")),
		Format:      q.Get("format"),
		Range:       q.Get("range"),
	}
	file, err := s.deps.Admin.Export(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Body); err != nil {
		s.log.Warn().Err(err).Str("file", file.Filename).Msg("export write interrupted")
	}
}
