package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sfxgraph/sfxgraph"
	"github.com/sfxgraph/sfxgraph/analysis"
	"github.com/sfxgraph/sfxgraph/presets"
)

type (
	reportJSON struct {
		Duration     float64 `json:"duration"`
		SamplePeak   string  `json:"samplePeak"`
		TruePeak     string  `json:"truePeak"`
		RMS          string  `json:"rms"`
		MaxMomentary string  `json:"maxMomentary"`
		Integrated   string  `json:"integrated"`
	}

	jobJSON struct {
		ID     string      `json:"id"`
		Name   string      `json:"name"`
		Status JobStatus   `json:"status"`
		Error  string      `json:"error,omitempty"`
		Report *reportJSON `json:"report,omitempty"`
	}
)

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.presets.Names())
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.presets.Find(chi.URLParam(r, "name"))
	if err != nil {
		s.renderError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := p.Sound.Write(w, sfxgraph.JSON); err != nil {
		s.logger.Error("write preset", slog.Any("error", err))
	}
}

// handleRender renders the posted sound document synchronously and answers
// with the WAV file.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	sound, ok := s.readSound(w, r)
	if !ok {
		return
	}
	wav, report, err := renderWav(r.Context(), s.renderer, sound)
	if err != nil {
		s.renderError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.writeWav(w, sound, wav, report)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	sound, ok := s.readSound(w, r)
	if !ok {
		return
	}
	job := s.jobs.Start(sound)
	w.Header().Set("Location", "/renders/"+job.ID)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"id": job.ID})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.Get(chi.URLParam(r, "id"))
	if !ok {
		s.renderError(w, "Not found", http.StatusNotFound)
		return
	}
	ret := jobJSON{ID: job.ID, Name: job.Sound.Name(), Status: job.Status, Error: job.Error}
	if job.Status == StatusComplete {
		rep := toReportJSON(job.Report)
		ret.Report = &rep
	}
	s.writeJSON(w, http.StatusOK, ret)
}

func (s *Server) handleJobWav(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.Get(chi.URLParam(r, "id"))
	if !ok {
		s.renderError(w, "Not found", http.StatusNotFound)
		return
	}
	switch job.Status {
	case StatusComplete:
		s.writeWav(w, job.Sound, job.Wav, job.Report)
	case StatusFailed:
		s.renderError(w, job.Error, http.StatusUnprocessableEntity)
	default:
		s.renderError(w, fmt.Sprintf("render is %s", job.Status), http.StatusConflict)
	}
}

// handleExport answers with the generated Web Audio module, or the demo page
// with ?file=html.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sound, ok := s.readSound(w, r)
	if !ok {
		return
	}
	files, err := s.compiler.Sound(sound)
	if err != nil {
		s.logger.Error("export failed", slog.Any("error", err))
		s.renderError(w, "Internal error", http.StatusInternalServerError)
		return
	}
	ext, contentType := ".js", "application/javascript"
	if r.URL.Query().Get("file") == "html" {
		ext, contentType = ".html", "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	io.WriteString(w, files[ext])
}

// readSound decodes a JSON or YAML sound document from the request body,
// answering with 400 if it is not one.
func (s *Server) readSound(w http.ResponseWriter, r *http.Request) (sfxgraph.SoundDescription, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	sound, err := sfxgraph.ReadSoundDescription(r.Body)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.renderError(w, err.Error(), status)
		return sfxgraph.SoundDescription{}, false
	}
	return sound, true
}

func (s *Server) writeWav(w http.ResponseWriter, sound sfxgraph.SoundDescription, wav []byte, report analysis.Report) {
	name := presets.NameToFilename(sound.Name())
	if name == "" {
		name = "sound"
	}
	h := w.Header()
	h.Set("Content-Type", sfxgraph.WavMIMEType)
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.wav"`, name))
	h.Set("Content-Length", strconv.Itoa(len(wav)))
	h.Set("X-Sample-Peak", report.SamplePeak.String())
	h.Set("X-True-Peak", report.TruePeak.String())
	h.Set("X-Integrated-Loudness", report.Integrated.String())
	io.Copy(w, bytes.NewReader(wav))
}

func toReportJSON(r analysis.Report) reportJSON {
	return reportJSON{
		Duration:     r.Duration,
		SamplePeak:   r.SamplePeak.String(),
		TruePeak:     r.TruePeak.String(),
		RMS:          r.RMS.String(),
		MaxMomentary: r.MaxMomentary.String(),
		Integrated:   r.Integrated.String(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", slog.Any("error", err))
	}
}

func (s *Server) renderError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
